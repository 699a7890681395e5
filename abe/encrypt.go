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

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/dcpabe/data"
	"github.com/pkg/errors"
)

// Ciphertext represents a message encrypted under an access structure.
// Row i of Mat is labeled with attribute RowToAttrib[i] and owns the
// elements C1[i], C2[i], C3[i]. The message itself is encrypted with a
// symmetric key hidden in C0.
type Ciphertext struct {
	C0          *bn256.GT
	C1          []*bn256.GT
	C2          []*bn256.G2
	C3          []*bn256.G2
	Mat         data.Matrix
	RowToAttrib []string
	SymEnc      []byte // symmetric encryption of the message
	Nonce       []byte // nonce of the symmetric encryption
}

// Encrypt encrypts msg so that only users holding personal keys for a
// set of attributes satisfying as can decrypt it. pks must contain the
// public key of every attribute of the policy.
func (gp *GlobalParams) Encrypt(msg []byte, as *AccessStructure, pks PublicKeys) (*Ciphertext, error) {
	// sanity checks
	if as == nil || as.Mat.Rows() == 0 || as.Mat.Cols() == 0 {
		return nil, errors.New("empty msp matrix")
	}
	mspRows := as.Mat.Rows()
	mspCols := as.Mat.Cols()
	if len(as.RowToAttrib) != mspRows || !as.Mat.CheckDims(mspRows, mspCols) {
		return nil, errors.Wrap(ErrMalformedPolicy, "msp matrix does not match its row labels")
	}
	if len(msg) == 0 {
		return nil, errors.New("message cannot be empty")
	}
	rowPks := make([]*PublicKey, mspRows)
	for i, at := range as.RowToAttrib {
		pk, ok := pks[at]
		if !ok || pk == nil {
			return nil, errors.Wrapf(ErrMissingAttribute, "no public key for attribute %q of row %d", at, i)
		}
		if pk.EggToAlpha == nil || pk.GToY == nil {
			return nil, errors.Wrapf(ErrMalformedPubKey, "attribute %q", at)
		}
		rowPks[i] = pk
	}

	// all the randomness is drawn here, before the rows are computed
	// concurrently
	sampler := gp.sampler()
	// pick random vector v with random s as first element
	v, err := data.NewRandomVector(mspCols, sampler)
	if err != nil {
		return nil, err
	}
	s := v[0]
	lambda, err := as.Mat.MulVecMod(v, gp.P)
	if err != nil {
		return nil, err
	}
	// pick random vector w with 0 as first element
	w, err := data.NewRandomVector(mspCols, sampler)
	if err != nil {
		return nil, err
	}
	w[0] = big.NewInt(0)
	omega, err := as.Mat.MulVecMod(w, gp.P)
	if err != nil {
		return nil, err
	}
	r, err := data.NewRandomVector(mspRows, sampler)
	if err != nil {
		return nil, err
	}

	// msg is encrypted with a key derived from a random element of GT,
	// the element is then encrypted with DCP-ABE
	_, symKey, err := bn256.RandomGT(gp.source())
	if err != nil {
		return nil, err
	}
	c0 := new(bn256.GT).Add(symKey, new(bn256.GT).ScalarMult(gp.Egg, s))
	nonce, symEnc, err := sealMessage(symKey, msg, c0.Marshal(), gp.source())
	if err != nil {
		return nil, err
	}

	c1 := make([]*bn256.GT, mspRows)
	c2 := make([]*bn256.G2, mspRows)
	c3 := make([]*bn256.G2, mspRows)
	err = gp.forEachRow(mspRows, func(i int) error {
		pk := rowPks[i]
		eggLambda := new(bn256.GT).ScalarMult(gp.Egg, lambda[i])
		c1[i] = new(bn256.GT).Add(eggLambda, new(bn256.GT).ScalarMult(pk.EggToAlpha, r[i]))
		c2[i] = new(bn256.G2).ScalarMult(gp.G2, r[i])
		c3[i] = new(bn256.G2).Add(new(bn256.G2).ScalarMult(pk.GToY, r[i]), new(bn256.G2).ScalarMult(gp.G2, omega[i]))
		return nil
	})
	if err != nil {
		return nil, err
	}

	rowToAttrib := make([]string, mspRows)
	copy(rowToAttrib, as.RowToAttrib)

	return &Ciphertext{
		C0:          c0,
		C1:          c1,
		C2:          c2,
		C3:          c3,
		Mat:         as.Mat.Copy(),
		RowToAttrib: rowToAttrib,
		SymEnc:      symEnc,
		Nonce:       nonce,
	}, nil
}

// AccessStructure returns the access structure the ciphertext was
// encrypted under, without its policy string.
func (ct *Ciphertext) AccessStructure() *AccessStructure {
	return &AccessStructure{
		Mat:         ct.Mat,
		RowToAttrib: ct.RowToAttrib,
	}
}

// Validate checks that the ciphertext is internally consistent.
func (ct *Ciphertext) Validate() error {
	if ct.C0 == nil {
		return errors.Wrap(ErrMalformedCiphertext, "missing C0")
	}
	rows := len(ct.RowToAttrib)
	if rows == 0 {
		return errors.Wrap(ErrMalformedCiphertext, "no rows")
	}
	if ct.Mat.Cols() == 0 || !ct.Mat.CheckDims(rows, ct.Mat.Cols()) {
		return errors.Wrapf(ErrMalformedCiphertext, "matrix does not have %d rows of equal length", rows)
	}
	if len(ct.C1) != rows || len(ct.C2) != rows || len(ct.C3) != rows {
		return errors.Wrapf(ErrMalformedCiphertext,
			"row count mismatch: %d labels, %d/%d/%d elements", rows, len(ct.C1), len(ct.C2), len(ct.C3))
	}
	for i := 0; i < rows; i++ {
		if ct.C1[i] == nil || ct.C2[i] == nil || ct.C3[i] == nil {
			return errors.Wrapf(ErrMalformedCiphertext, "missing elements of row %d (attribute %q)", i, ct.RowToAttrib[i])
		}
		for _, x := range ct.Mat[i] {
			if x == nil {
				return errors.Wrapf(ErrMalformedCiphertext, "missing matrix entry in row %d", i)
			}
		}
	}
	if len(ct.SymEnc) == 0 || len(ct.Nonce) == 0 {
		return errors.Wrap(ErrMalformedCiphertext, "missing symmetric encryption")
	}

	return nil
}
