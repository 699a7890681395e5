/*
 * Copyright (c) 2021 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package abe

import (
	"math/big"
	"sort"
	"strings"
	"unicode"

	"github.com/fentec-project/bn256"
	"github.com/pkg/errors"
)

// PublicKey is the public part of an authority's key for one attribute.
type PublicKey struct {
	EggToAlpha *bn256.GT
	GToY       *bn256.G2
}

// SecretKey is the secret part of an authority's key for one attribute.
type SecretKey struct {
	Alpha *big.Int `json:"alpha"`
	Y     *big.Int `json:"y"`
}

// AuthorityKeys holds the keys of all the attributes governed by one
// authority. The secret keys must be protected like any private key.
type AuthorityKeys struct {
	ID         string                `json:"id"`
	PublicKeys map[string]*PublicKey `json:"public_keys"`
	SecretKeys map[string]*SecretKey `json:"secret_keys"`
}

// AuthoritySetup creates the keys of a new authority governing the given
// attributes. Every attribute gets an independent key pair.
func (gp *GlobalParams) AuthoritySetup(id string, attribs ...string) (*AuthorityKeys, error) {
	// sanity checks
	if len(attribs) == 0 {
		return nil, errors.New("empty set of authority attributes")
	}
	if len(id) == 0 {
		return nil, errors.New("empty id string")
	}

	ak := &AuthorityKeys{
		ID:         id,
		PublicKeys: make(map[string]*PublicKey),
		SecretKeys: make(map[string]*SecretKey),
	}
	if err := ak.AddAttributes(gp, attribs...); err != nil {
		return nil, err
	}

	return ak, nil
}

// AddAttributes generates key pairs for the attributes that the
// authority does not govern yet. Attributes already present keep their
// keys, so adding the same attribute twice has no effect.
func (ak *AuthorityKeys) AddAttributes(gp *GlobalParams, attribs ...string) error {
	for _, at := range attribs {
		if err := validateAttrib(at); err != nil {
			return err
		}
	}
	if ak.PublicKeys == nil {
		ak.PublicKeys = make(map[string]*PublicKey)
	}
	if ak.SecretKeys == nil {
		ak.SecretKeys = make(map[string]*SecretKey)
	}
	for _, at := range attribs {
		if _, ok := ak.SecretKeys[at]; ok {
			continue
		}
		if err := ak.generate(gp, at); err != nil {
			return err
		}
	}

	return nil
}

// RemoveAttributes deletes the keys of the given attributes. Unknown
// attributes are ignored.
func (ak *AuthorityKeys) RemoveAttributes(attribs ...string) {
	for _, at := range attribs {
		delete(ak.PublicKeys, at)
		delete(ak.SecretKeys, at)
	}
}

// RegenerateKey replaces the key pair of an attribute, e.g. when it
// was compromised. Personal keys issued for the old pair stop working
// for ciphertexts encrypted under the new public key.
func (ak *AuthorityKeys) RegenerateKey(gp *GlobalParams, attrib string) error {
	if _, ok := ak.SecretKeys[attrib]; !ok {
		return errors.Wrapf(ErrMissingAttribute, "attribute %q is not governed by authority %q", attrib, ak.ID)
	}

	if ak.PublicKeys == nil {
		ak.PublicKeys = make(map[string]*PublicKey)
	}

	return ak.generate(gp, attrib)
}

// Attributes returns the sorted attributes governed by the authority.
func (ak *AuthorityKeys) Attributes() []string {
	attribs := make([]string, 0, len(ak.SecretKeys))
	for at := range ak.SecretKeys {
		attribs = append(attribs, at)
	}
	sort.Strings(attribs)

	return attribs
}

func (ak *AuthorityKeys) generate(gp *GlobalParams, attrib string) error {
	sampler := gp.sampler()
	alpha, err := sampler.Sample()
	if err != nil {
		return err
	}
	y, err := sampler.Sample()
	if err != nil {
		return err
	}

	ak.SecretKeys[attrib] = &SecretKey{Alpha: alpha, Y: y}
	ak.PublicKeys[attrib] = &PublicKey{
		EggToAlpha: new(bn256.GT).ScalarMult(gp.Egg, alpha),
		GToY:       new(bn256.G2).ScalarMult(gp.G2, y),
	}

	return nil
}

func validateAttrib(attrib string) error {
	if len(attrib) == 0 {
		return errors.New("attribute cannot be empty")
	}
	if strings.IndexFunc(attrib, unicode.IsSpace) >= 0 {
		return errors.Errorf("attribute %q contains whitespace", attrib)
	}
	switch strings.ToLower(attrib) {
	case "and", "or":
		return errors.Errorf("attribute %q is a policy keyword", attrib)
	}

	return nil
}

// PublicKeys aggregates the public keys of many authorities, keyed by
// attribute. It is all that is needed to encrypt.
type PublicKeys map[string]*PublicKey

// NewPublicKeys returns an empty set of public keys.
func NewPublicKeys() PublicKeys {
	return make(PublicKeys)
}

// Subscribe merges the public keys of an authority into pks. If two
// authorities publish a key for the same attribute, the last one wins.
func (pks PublicKeys) Subscribe(authorityPks map[string]*PublicKey) {
	for at, pk := range authorityPks {
		pks[at] = pk
	}
}
