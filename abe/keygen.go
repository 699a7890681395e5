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
	"sort"

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/dcpabe/internal"
	"github.com/pkg/errors"
)

// PersonalKey is a key for one attribute, issued by the authority
// governing the attribute to the user with global identifier GID.
type PersonalKey struct {
	GID    string
	Attrib string
	Key    *bn256.G1
}

// KeyGen derives the personal key of the user gid for the attribute,
// K = G1^alpha * H(gid)^y. The derivation is deterministic. Keys issued
// to different users can not be combined, since each of them is bound to
// the hash of its own GID.
func (gp *GlobalParams) KeyGen(gid, attrib string, ak *AuthorityKeys) (*PersonalKey, error) {
	// sanity checks
	if len(gid) == 0 {
		return nil, errors.New("GID cannot be empty")
	}
	if len(attrib) == 0 {
		return nil, errors.New("attribute cannot be empty")
	}
	sk, ok := ak.SecretKeys[attrib]
	if !ok {
		return nil, errors.Wrapf(ErrMissingAttribute, "attribute %q not found in secret keys of authority %q", attrib, ak.ID)
	}
	if sk == nil || sk.Alpha == nil || sk.Y == nil {
		return nil, errors.Wrapf(internal.MalformedSecKey, "attribute %q", attrib)
	}

	hash, err := bn256.HashG1(gid)
	if err != nil {
		return nil, err
	}
	k := new(bn256.G1).Add(gp.expG1(gp.G1, sk.Alpha), gp.expG1(hash, sk.Y))

	return &PersonalKey{
		GID:    gid,
		Attrib: attrib,
		Key:    k,
	}, nil
}

// PersonalKeys is the set of personal keys of one user, keyed by
// attribute.
type PersonalKeys struct {
	GID  string                  `json:"gid"`
	Keys map[string]*PersonalKey `json:"keys"`
}

// NewPersonalKeys returns an empty key set for the user gid.
func NewPersonalKeys(gid string) *PersonalKeys {
	return &PersonalKeys{
		GID:  gid,
		Keys: make(map[string]*PersonalKey),
	}
}

// PersonalKeysGen issues the personal keys of the user gid for all the
// given attributes of one authority.
func (gp *GlobalParams) PersonalKeysGen(gid string, ak *AuthorityKeys, attribs ...string) (*PersonalKeys, error) {
	pks := NewPersonalKeys(gid)
	for _, at := range attribs {
		k, err := gp.KeyGen(gid, at, ak)
		if err != nil {
			return nil, err
		}
		if err := pks.Add(k); err != nil {
			return nil, err
		}
	}

	return pks, nil
}

// Add adds a key to the set, replacing an existing key for the same
// attribute. Keys issued to another user are rejected.
func (pks *PersonalKeys) Add(k *PersonalKey) error {
	if k == nil || k.Key == nil {
		return errors.Wrap(ErrMalformedKey, "nil personal key")
	}
	if k.GID != pks.GID {
		return errors.Wrapf(ErrMalformedKey, "key for attribute %q belongs to %q, not to %q", k.Attrib, k.GID, pks.GID)
	}
	if pks.Keys == nil {
		pks.Keys = make(map[string]*PersonalKey)
	}
	pks.Keys[k.Attrib] = k

	return nil
}

// Merge adds all the keys of other, which must belong to the same user.
func (pks *PersonalKeys) Merge(other *PersonalKeys) error {
	if other.GID != pks.GID {
		return errors.Wrapf(ErrMalformedKey, "can not merge keys of %q into keys of %q", other.GID, pks.GID)
	}
	for _, k := range other.Keys {
		if err := pks.Add(k); err != nil {
			return err
		}
	}

	return nil
}

// Attributes returns the sorted attributes the user holds keys for.
func (pks *PersonalKeys) Attributes() []string {
	attribs := make([]string, 0, len(pks.Keys))
	for at := range pks.Keys {
		attribs = append(attribs, at)
	}
	sort.Strings(attribs)

	return attribs
}
