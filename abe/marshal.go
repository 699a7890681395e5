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
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/dcpabe/data"
	"github.com/fentec-project/dcpabe/internal"
	"github.com/pkg/errors"
)

// Group elements are encoded with their fixed-length Marshal form,
// which encoding/json turns into base64. Decoding is strict: trailing
// bytes and identity elements are rejected. Scalars and matrix entries
// use the JSON number encoding of big.Int.

type globalParamsJSON struct {
	Curve string `json:"curve"`
	G1    []byte `json:"g1"`
	G2    []byte `json:"g2"`
}

// MarshalJSON encodes the curve and the generators.
func (gp *GlobalParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(globalParamsJSON{
		Curve: gp.Curve,
		G1:    gp.G1.Marshal(),
		G2:    gp.G2.Marshal(),
	})
}

// UnmarshalJSON decodes global parameters. The decoded value uses the
// default workers and randomness source.
func (gp *GlobalParams) UnmarshalJSON(b []byte) error {
	var enc globalParamsJSON
	if err := json.Unmarshal(b, &enc); err != nil {
		return err
	}
	g1, err := unmarshalG1(enc.G1)
	if err != nil {
		return errors.Wrap(err, "generator of G1")
	}
	g2, err := unmarshalG2(enc.G2)
	if err != nil {
		return errors.Wrap(err, "generator of G2")
	}
	conf := DefaultConfig()
	conf.Curve = enc.Curve
	restored, err := RestoreGlobalParams(conf, g1, g2)
	if err != nil {
		return err
	}
	*gp = *restored

	return nil
}

type publicKeyJSON struct {
	EggToAlpha []byte `json:"egg_alpha"`
	GToY       []byte `json:"g_y"`
}

// MarshalJSON encodes the public key of an attribute.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeyJSON{
		EggToAlpha: pk.EggToAlpha.Marshal(),
		GToY:       pk.GToY.Marshal(),
	})
}

// UnmarshalJSON decodes the public key of an attribute.
func (pk *PublicKey) UnmarshalJSON(b []byte) error {
	var enc publicKeyJSON
	if err := json.Unmarshal(b, &enc); err != nil {
		return err
	}
	eggToAlpha, err := unmarshalGT(enc.EggToAlpha)
	if err != nil {
		return errors.Wrap(internal.MalformedPubKey, err.Error())
	}
	gToY, err := unmarshalG2(enc.GToY)
	if err != nil {
		return errors.Wrap(internal.MalformedPubKey, err.Error())
	}
	pk.EggToAlpha, pk.GToY = eggToAlpha, gToY

	return nil
}

type personalKeyJSON struct {
	GID    string `json:"gid"`
	Attrib string `json:"attrib"`
	Key    []byte `json:"key"`
}

// MarshalJSON encodes a personal key.
func (k *PersonalKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(personalKeyJSON{
		GID:    k.GID,
		Attrib: k.Attrib,
		Key:    k.Key.Marshal(),
	})
}

// UnmarshalJSON decodes a personal key.
func (k *PersonalKey) UnmarshalJSON(b []byte) error {
	var enc personalKeyJSON
	if err := json.Unmarshal(b, &enc); err != nil {
		return err
	}
	key, err := unmarshalG1(enc.Key)
	if err != nil {
		return errors.Wrap(internal.MalformedDecKey, err.Error())
	}
	k.GID, k.Attrib, k.Key = enc.GID, enc.Attrib, key

	return nil
}

type cipherRowJSON struct {
	Attrib string      `json:"attrib"`
	Row    data.Vector `json:"row"`
	C1     []byte      `json:"c1"`
	C2     []byte      `json:"c2"`
	C3     []byte      `json:"c3"`
}

type ciphertextJSON struct {
	C0     []byte          `json:"c0"`
	Rows   []cipherRowJSON `json:"rows"`
	SymEnc []byte          `json:"sym_enc"`
	Nonce  []byte          `json:"nonce"`
}

// MarshalJSON encodes a ciphertext, one entry per row of its matrix.
func (ct *Ciphertext) MarshalJSON() ([]byte, error) {
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	rows := make([]cipherRowJSON, len(ct.RowToAttrib))
	for i, at := range ct.RowToAttrib {
		rows[i] = cipherRowJSON{
			Attrib: at,
			Row:    ct.Mat[i],
			C1:     ct.C1[i].Marshal(),
			C2:     ct.C2[i].Marshal(),
			C3:     ct.C3[i].Marshal(),
		}
	}

	return json.Marshal(ciphertextJSON{
		C0:     ct.C0.Marshal(),
		Rows:   rows,
		SymEnc: ct.SymEnc,
		Nonce:  ct.Nonce,
	})
}

// UnmarshalJSON decodes a ciphertext and checks its consistency.
func (ct *Ciphertext) UnmarshalJSON(b []byte) error {
	var enc ciphertextJSON
	if err := json.Unmarshal(b, &enc); err != nil {
		return err
	}
	c0, err := unmarshalGT(enc.C0)
	if err != nil {
		return errors.Wrapf(internal.MalformedCipher, "C0: %v", err)
	}

	dec := Ciphertext{
		C0:          c0,
		C1:          make([]*bn256.GT, len(enc.Rows)),
		C2:          make([]*bn256.G2, len(enc.Rows)),
		C3:          make([]*bn256.G2, len(enc.Rows)),
		Mat:         make(data.Matrix, len(enc.Rows)),
		RowToAttrib: make([]string, len(enc.Rows)),
		SymEnc:      enc.SymEnc,
		Nonce:       enc.Nonce,
	}
	for i, row := range enc.Rows {
		if dec.C1[i], err = unmarshalGT(row.C1); err != nil {
			return errors.Wrapf(internal.MalformedCipher, "C1 of row %d: %v", i, err)
		}
		if dec.C2[i], err = unmarshalG2(row.C2); err != nil {
			return errors.Wrapf(internal.MalformedCipher, "C2 of row %d: %v", i, err)
		}
		if dec.C3[i], err = unmarshalG2(row.C3); err != nil {
			return errors.Wrapf(internal.MalformedCipher, "C3 of row %d: %v", i, err)
		}
		dec.Mat[i] = row.Row
		dec.RowToAttrib[i] = row.Attrib
	}
	if err := dec.Validate(); err != nil {
		return err
	}
	*ct = dec

	return nil
}

// Encodings of the identity elements, which never occur in honestly
// generated keys, parameters or ciphertexts.
var (
	g1Identity = new(bn256.G1).ScalarBaseMult(big.NewInt(0)).Marshal()
	g2Identity = new(bn256.G2).ScalarBaseMult(big.NewInt(0)).Marshal()
	gtIdentity = new(bn256.GT).ScalarBaseMult(big.NewInt(0)).Marshal()
)

// checkElement rejects input that was not consumed completely by
// Unmarshal and elements equal to the identity.
func checkElement(rest, enc, identity []byte) error {
	if len(rest) != 0 {
		return errors.Errorf("%d trailing bytes", len(rest))
	}
	if bytes.Equal(enc, identity) {
		return errors.New("identity element")
	}
	return nil
}

func unmarshalG1(b []byte) (*bn256.G1, error) {
	x := new(bn256.G1)
	rest, err := x.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	if err := checkElement(rest, x.Marshal(), g1Identity); err != nil {
		return nil, err
	}
	return x, nil
}

func unmarshalG2(b []byte) (*bn256.G2, error) {
	x := new(bn256.G2)
	rest, err := x.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	if err := checkElement(rest, x.Marshal(), g2Identity); err != nil {
		return nil, err
	}
	return x, nil
}

func unmarshalGT(b []byte) (*bn256.GT, error) {
	x := new(bn256.GT)
	rest, err := x.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	if err := checkElement(rest, x.Marshal(), gtIdentity); err != nil {
		return nil, err
	}
	return x, nil
}
