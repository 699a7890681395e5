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

package abe_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/dcpabe/abe"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reencode marshals v and decodes the result into out.
func reencode(t *testing.T, v, out interface{}) {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func TestJSON_DecryptAfterDecoding(t *testing.T) {
	f := newFixture(t, abe.DefaultConfig())

	var gp abe.GlobalParams
	reencode(t, f.gp, &gp)
	assert.True(t, f.gp.Equal(&gp))

	var auth1, auth2 abe.AuthorityKeys
	reencode(t, f.auth1, &auth1)
	reencode(t, f.auth2, &auth2)
	assert.Equal(t, "auth1", auth1.ID)
	assert.Equal(t, f.auth1.Attributes(), auth1.Attributes())

	var pks abe.PublicKeys
	reencode(t, f.pks, &pks)

	// encrypt with the decoded material
	as, err := abe.NewAccessStructure("and a or d and b c")
	require.NoError(t, err)
	msg := []byte("Attack at dawn!")
	ct, err := gp.Encrypt(msg, as, pks)
	require.NoError(t, err)

	var decodedCt abe.Ciphertext
	reencode(t, ct, &decodedCt)
	assert.Equal(t, ct.RowToAttrib, decodedCt.RowToAttrib)

	// issue keys with the decoded secrets and decrypt the decoded ciphertext
	keys, err := gp.PersonalKeysGen("alice", &auth1, "a")
	require.NoError(t, err)
	more, err := gp.PersonalKeysGen("alice", &auth2, "d")
	require.NoError(t, err)
	require.NoError(t, keys.Merge(more))
	var decodedKeys abe.PersonalKeys
	reencode(t, keys, &decodedKeys)

	dec, err := f.gp.Decrypt(&decodedCt, &decodedKeys)
	require.NoError(t, err)
	assert.Equal(t, msg, dec)

	// the access structure travels with the ciphertext
	assert.True(t, decodedCt.AccessStructure().IsSatisfiedBy([]string{"a", "b", "c"}))
	assert.False(t, decodedCt.AccessStructure().IsSatisfiedBy([]string{"b", "c", "d"}))
}

func TestJSON_Malformed(t *testing.T) {
	f := newFixture(t, abe.DefaultConfig())
	as, err := abe.NewAccessStructure("or a c")
	require.NoError(t, err)
	ct, err := f.gp.Encrypt([]byte("msg"), as, f.pks)
	require.NoError(t, err)

	b, err := json.Marshal(ct)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))

	// corrupt an element of the first row
	rows := raw["rows"].([]interface{})
	rows[0].(map[string]interface{})["c2"] = "AAAA"
	b, err = json.Marshal(raw)
	require.NoError(t, err)
	var decoded abe.Ciphertext
	err = json.Unmarshal(b, &decoded)
	assert.Equal(t, abe.ErrMalformedCiphertext, errors.Cause(err))

	raw["rows"] = []interface{}{}
	b, err = json.Marshal(raw)
	require.NoError(t, err)
	err = json.Unmarshal(b, &decoded)
	assert.Equal(t, abe.ErrMalformedCiphertext, errors.Cause(err))

	var gp abe.GlobalParams
	err = json.Unmarshal([]byte(`{"curve":"bn256","g1":"AAAA","g2":"AAAA"}`), &gp)
	assert.Error(t, err)
	err = json.Unmarshal([]byte(`{"curve":"p256"}`), &gp)
	assert.Error(t, err)

	var pk abe.PublicKey
	err = json.Unmarshal([]byte(`{"egg_alpha":"AAAA","g_y":"AAAA"}`), &pk)
	assert.Equal(t, abe.ErrMalformedPubKey, errors.Cause(err))
}

func TestJSON_StrictElements(t *testing.T) {
	f := newFixture(t, abe.DefaultConfig())
	pk := f.pks["a"]
	eggAlpha := pk.EggToAlpha.Marshal()
	gY := pk.GToY.Marshal()

	decodePk := func(eggAlpha, gY []byte) error {
		b, err := json.Marshal(map[string][]byte{"egg_alpha": eggAlpha, "g_y": gY})
		require.NoError(t, err)
		var decoded abe.PublicKey
		return json.Unmarshal(b, &decoded)
	}
	require.NoError(t, decodePk(eggAlpha, gY))

	// trailing bytes after a valid element
	err := decodePk(append(append([]byte{}, eggAlpha...), 1, 2, 3), gY)
	assert.Equal(t, abe.ErrMalformedPubKey, errors.Cause(err))
	err = decodePk(eggAlpha, append(append([]byte{}, gY...), 0))
	assert.Equal(t, abe.ErrMalformedPubKey, errors.Cause(err))

	// the point at infinity, alone or followed by garbage
	infinity := new(bn256.G2).ScalarBaseMult(big.NewInt(0)).Marshal()
	err = decodePk(eggAlpha, infinity)
	assert.Equal(t, abe.ErrMalformedPubKey, errors.Cause(err))
	err = decodePk(eggAlpha, []byte{0, 9, 9})
	assert.Equal(t, abe.ErrMalformedPubKey, errors.Cause(err))

	// a personal key that is the identity of G1
	b, err := json.Marshal(map[string]interface{}{
		"gid":    "alice",
		"attrib": "a",
		"key":    new(bn256.G1).ScalarBaseMult(big.NewInt(0)).Marshal(),
	})
	require.NoError(t, err)
	var k abe.PersonalKey
	err = json.Unmarshal(b, &k)
	assert.Equal(t, abe.ErrMalformedKey, errors.Cause(err))

	// a ciphertext with a missing element is not encoded
	as, err := abe.NewAccessStructure("or a c")
	require.NoError(t, err)
	ct, err := f.gp.Encrypt([]byte("msg"), as, f.pks)
	require.NoError(t, err)
	ct.C3[1] = nil
	_, err = json.Marshal(ct)
	assert.Error(t, err)

	// nor decoded with a padded one
	ct, err = f.gp.Encrypt([]byte("msg"), as, f.pks)
	require.NoError(t, err)
	b, err = json.Marshal(ct)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	rows := raw["rows"].([]interface{})
	rows[1].(map[string]interface{})["c3"] = append(ct.C3[1].Marshal(), 0)
	b, err = json.Marshal(raw)
	require.NoError(t, err)
	var decoded abe.Ciphertext
	err = json.Unmarshal(b, &decoded)
	assert.Equal(t, abe.ErrMalformedCiphertext, errors.Cause(err))
}
