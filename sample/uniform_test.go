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

package sample_test

import (
	"math/big"
	"testing"

	"github.com/fentec-project/dcpabe/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	max := big.NewInt(1000)
	sampler := sample.NewUniform(max, nil)
	for i := 0; i < 100; i++ {
		x, err := sampler.Sample()
		require.NoError(t, err)
		assert.True(t, x.Sign() >= 0 && x.Cmp(max) < 0, "value out of range: %s", x)
	}
}

func TestUniformNonZero(t *testing.T) {
	sampler := sample.NewUniformNonZero(big.NewInt(2), nil)
	for i := 0; i < 20; i++ {
		x, err := sampler.Sample()
		require.NoError(t, err)
		assert.Equal(t, int64(1), x.Int64())
	}
}

func TestUniformRange_Empty(t *testing.T) {
	sampler := sample.NewUniformRange(big.NewInt(5), big.NewInt(5), nil)
	_, err := sampler.Sample()
	assert.Error(t, err)
}

func TestKeyStream(t *testing.T) {
	var key [32]byte
	key[0] = 42

	s1 := sample.NewKeyStream(&key)
	s2 := sample.NewKeyStream(&key)

	max := new(big.Int).Lsh(big.NewInt(1), 200)
	v1, err := sample.NewUniform(max, s1).Sample()
	require.NoError(t, err)
	v2, err := sample.NewUniform(max, s2).Sample()
	require.NoError(t, err)
	assert.Equal(t, 0, v1.Cmp(v2), "same key should give the same values")

	// consecutive reads use different nonces
	v3, err := sample.NewUniform(max, s1).Sample()
	require.NoError(t, err)
	assert.NotEqual(t, 0, v1.Cmp(v3))

	key[0] = 43
	other := make([]byte, 32)
	same := make([]byte, 32)
	_, _ = sample.NewKeyStream(&key).Read(other)
	key[0] = 42
	_, _ = sample.NewKeyStream(&key).Read(same)
	assert.NotEqual(t, other, same)
}
