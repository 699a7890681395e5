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

package data

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoSolution is returned by GaussianEliminationSolver when the
// equation has no solution.
var ErrNoSolution = errors.New("no solution")

// Matrix wraps a slice of Vector elements. It represents a row-major.
// order matrix.
//
// The j-th element from the i-th vector of the matrix can be obtained
// as m[i][j].
type Matrix []Vector

// NewMatrix accepts a slice of Vector elements and
// returns a new Matrix instance.
// It returns error if not all the vectors have the same number of elements.
func NewMatrix(vectors []Vector) (Matrix, error) {
	l := -1
	newVectors := make([]Vector, len(vectors))

	if len(vectors) > 0 {
		l = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != l {
			return nil, errors.Errorf("all vectors should be of the same length: row %d has %d entries, expected %d", i, len(v), l)
		}
		newVectors[i] = NewVector(v)
	}

	return Matrix(newVectors), nil
}

// Rows returns the number of rows of matrix m.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns of matrix m.
func (m Matrix) Cols() int {
	if len(m) != 0 {
		return len(m[0])
	}

	return 0
}

// CheckDims checks whether dimensions of matrix m match
// the provided rows and cols arguments.
func (m Matrix) CheckDims(rows, cols int) bool {
	if m.Rows() != rows {
		return false
	}
	for _, row := range m {
		if len(row) != cols {
			return false
		}
	}

	return true
}

// Copy creates a new matrix with the same values of the entries.
func (m Matrix) Copy() Matrix {
	newMat := make(Matrix, len(m))
	for i, row := range m {
		newMat[i] = row.Copy()
	}

	return newMat
}

// GetCol returns i-th column of matrix m as a vector.
// It returns error if i >= the number of m's columns.
func (m Matrix) GetCol(i int) (Vector, error) {
	if i >= m.Cols() {
		return nil, errors.Errorf("column index %d exceeds matrix dimensions", i)
	}

	column := make([]*big.Int, m.Rows())
	for j := 0; j < m.Rows(); j++ {
		column[j] = m[j][i]
	}

	return NewVector(column), nil
}

// Transpose transposes matrix m and returns
// the result in a new Matrix.
func (m Matrix) Transpose() Matrix {
	transposed := make([]Vector, m.Cols())
	for i := 0; i < m.Cols(); i++ {
		transposed[i], _ = m.GetCol(i)
	}

	mT, _ := NewMatrix(transposed)

	return mT
}

// SelectRows returns a new Matrix consisting of the rows of m
// with the given indices, in the given order. The rows are shared
// with m, not copied.
func (m Matrix) SelectRows(indices []int) (Matrix, error) {
	sub := make(Matrix, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= m.Rows() {
			return nil, errors.Errorf("row index %d out of range", idx)
		}
		sub[i] = m[idx]
	}

	return sub, nil
}

// MulVec multiplies matrix m and vector v.
// It returns the resulting vector.
// Error is returned if the number of columns of m differs from the number
// of elements of v.
func (m Matrix) MulVec(v Vector) (Vector, error) {
	if m.Cols() != len(v) {
		return nil, errors.Errorf("cannot multiply matrix with %d columns by a vector of length %d", m.Cols(), len(v))
	}

	res := make(Vector, m.Rows())
	for i, row := range m {
		res[i], _ = row.Dot(v)
	}

	return res, nil
}

// MulVecMod multiplies matrix m and vector v over Z_p. All the entries
// of the result are in [0, p).
func (m Matrix) MulVecMod(v Vector, p *big.Int) (Vector, error) {
	res, err := m.MulVec(v)
	if err != nil {
		return nil, err
	}

	return res.Mod(p), nil
}

// String produces a string representation of a matrix, one row per line.
func (m Matrix) String() string {
	var b strings.Builder
	for _, row := range m {
		fmt.Fprintln(&b, strings.TrimSpace(row.String()))
	}

	return b.String()
}

// GaussianEliminationSolver solves a vector equation mat * x = v and finds vector x,
// using Gaussian elimination. Arithmetic operations are considered to be over
// Z_p, where p should be a prime number. If such x does not exist, then the
// function returns ErrNoSolution.
func GaussianEliminationSolver(mat Matrix, v Vector, p *big.Int) (Vector, error) {
	if mat.Rows() == 0 || mat.Cols() == 0 {
		return nil, errors.New("the matrix should not be empty")
	}
	if mat.Rows() != len(v) {
		return nil, errors.Errorf("dimensions should match: "+
			"rows of the matrix %d, length of the vector %d", mat.Rows(), len(v))
	}

	// we copy matrix mat into m and v into u, reduced modulo p
	cpMat := make([]Vector, mat.Rows())
	u := make(Vector, mat.Rows())
	for i := 0; i < mat.Rows(); i++ {
		if len(mat[i]) != mat.Cols() {
			return nil, errors.Errorf("row %d of the matrix has a wrong length", i)
		}
		cpMat[i] = mat[i].Mod(p)
		u[i] = new(big.Int).Mod(v[i], p)
	}
	m, _ := NewMatrix(cpMat) // error is impossible to happen

	// m and u are transformed to be in the upper triangular form
	ret := make(Vector, mat.Cols())
	h, k := 0, 0
	for h < mat.Rows() && k < mat.Cols() {
		zero := true
		for i := h; i < mat.Rows(); i++ {
			if m[i][k].Sign() != 0 {
				m[h], m[i] = m[i], m[h]

				u[h], u[i] = u[i], u[h]
				zero = false
				break
			}
		}
		if zero {
			ret[k] = big.NewInt(0)
			k++
			continue
		}
		mHKInv := new(big.Int).ModInverse(m[h][k], p)
		for i := h + 1; i < mat.Rows(); i++ {
			f := new(big.Int).Mul(mHKInv, m[i][k])
			m[i][k] = big.NewInt(0)
			for j := k + 1; j < mat.Cols(); j++ {
				m[i][j].Sub(m[i][j], new(big.Int).Mul(f, m[h][j]))
				m[i][j].Mod(m[i][j], p)
			}
			u[i].Sub(u[i], new(big.Int).Mul(f, u[h]))
			u[i].Mod(u[i], p)
		}
		k++
		h++
	}

	for i := h; i < mat.Rows(); i++ {
		if u[i].Sign() != 0 {
			return nil, ErrNoSolution
		}
	}
	for j := k; j < mat.Cols(); j++ {
		ret[j] = big.NewInt(0)
	}

	// use the upper triangular form to obtain the solution
	for i := h - 1; i >= 0; i-- {
		for j := k - 1; j >= 0; j-- {
			if ret[j] == nil {
				tmpSum, _ := m[i][j+1:].Dot(ret[j+1:])
				ret[j] = new(big.Int).Sub(u[i], tmpSum)
				mHKInv := new(big.Int).ModInverse(m[i][j], p)
				ret[j].Mul(ret[j], mHKInv)
				ret[j].Mod(ret[j], p)
				break
			}
		}
	}

	return ret, nil
}
