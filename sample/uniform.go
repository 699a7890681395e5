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

package sample

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// Sampler samples random values.
type Sampler interface {
	Sample() (*big.Int, error)
}

// UniformRange samples random values from the interval [min, max).
type UniformRange struct {
	min *big.Int
	max *big.Int
	src io.Reader
}

// NewUniformRange returns an instance of the UniformRange sampler.
// It accepts lower and upper bounds on the sampled values and the
// source of randomness. If src is nil, crypto/rand.Reader is used.
func NewUniformRange(min, max *big.Int, src io.Reader) *UniformRange {
	if src == nil {
		src = rand.Reader
	}
	return &UniformRange{
		min: min,
		max: max,
		src: src,
	}
}

// Sample samples a random value from the interval [min, max).
func (u *UniformRange) Sample() (*big.Int, error) {
	width := new(big.Int).Sub(u.max, u.min)
	if width.Sign() <= 0 {
		return nil, errors.Errorf("empty sampling interval [%s, %s)", u.min, u.max)
	}
	r, err := rand.Int(u.src, width)
	if err != nil {
		return nil, errors.Wrap(err, "reading randomness")
	}

	return r.Add(r, u.min), nil
}

// NewUniform returns an instance of the UniformRange sampler
// sampling from the interval [0, max).
func NewUniform(max *big.Int, src io.Reader) *UniformRange {
	return NewUniformRange(big.NewInt(0), max, src)
}

// NewUniformNonZero returns a sampler over [1, max), used where
// a zero exponent would give a degenerate group element.
func NewUniformNonZero(max *big.Int, src io.Reader) *UniformRange {
	return NewUniformRange(big.NewInt(1), max, src)
}
