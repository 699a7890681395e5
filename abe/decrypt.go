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

	"github.com/fentec-project/bn256"
	"github.com/pkg/errors"
)

// Decrypt decrypts the ciphertext with the personal keys of one user.
// If the keys do not satisfy the access structure of the ciphertext, an
// error wrapping ErrUnauthorized is returned and no message.
func (gp *GlobalParams) Decrypt(ct *Ciphertext, keys *PersonalKeys) ([]byte, error) {
	// sanity checks
	if ct == nil {
		return nil, errors.Wrap(ErrMalformedCiphertext, "nil ciphertext")
	}
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	if keys == nil || len(keys.Keys) == 0 {
		return nil, errors.Wrap(ErrUnauthorized, "empty set of personal keys")
	}
	for at, k := range keys.Keys {
		if k == nil || k.Key == nil {
			return nil, errors.Wrapf(ErrMalformedKey, "missing key for attribute %q", at)
		}
		if k.Attrib != at {
			return nil, errors.Wrapf(ErrMalformedKey, "key for attribute %q stored under %q", k.Attrib, at)
		}
		if k.GID != keys.GID {
			return nil, errors.Wrapf(ErrUnauthorized, "key for attribute %q belongs to %q, not to %q", at, k.GID, keys.GID)
		}
	}

	// find out which rows can be used and the coefficients combining them,
	// nothing is paired if the keys are not sufficient
	has := make(map[string]bool)
	for at := range keys.Keys {
		has[at] = true
	}
	coeffs, err := reconstructionVector(ct.Mat, ct.RowToAttrib, has, gp.P)
	if err != nil {
		return nil, err
	}
	rows := make([]int, 0, len(coeffs))
	for i := range coeffs {
		rows = append(rows, i)
	}
	sort.Ints(rows)

	// get hashed GID
	hash, err := bn256.HashG1(keys.GID)
	if err != nil {
		return nil, err
	}

	// compute e(g1,g2)^(lambda_i*c_i) * e(H(GID),g2)^(omega_i*c_i) for
	// every used row
	parts := make([]*bn256.GT, len(rows))
	err = gp.forEachRow(len(rows), func(j int) error {
		i := rows[j]
		k := keys.Keys[ct.RowToAttrib[i]]
		num := new(bn256.GT).Add(ct.C1[i], bn256.Pair(hash, ct.C3[i]))
		den := new(bn256.GT).Neg(bn256.Pair(k.Key, ct.C2[i]))
		parts[j] = gp.expGT(new(bn256.GT).Add(num, den), coeffs[i])
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the omega shares sum to zero, leaving e(g1,g2)^s
	eggs := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for _, part := range parts {
		eggs.Add(eggs, part)
	}

	// calculate key for symmetric encryption and decrypt the message with it
	symKey := new(bn256.GT).Add(ct.C0, new(bn256.GT).Neg(eggs))

	return openMessage(symKey, ct.Nonce, ct.SymEnc, ct.C0.Marshal())
}
