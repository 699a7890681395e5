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
	"crypto/rand"
	"io"
	"math/big"
	"runtime"
	"strings"

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/dcpabe/sample"
	"github.com/pkg/errors"
)

// CurveBN256 is the name of the only supported pairing setting, the
// asymmetric Barreto-Naehrig curve implemented by
// github.com/fentec-project/bn256.
const CurveBN256 = "bn256"

// Config describes the algebraic setting and the resources used by
// the scheme.
type Config struct {
	// Curve names the pairing setting.
	Curve string
	// Workers bounds the number of goroutines computing ciphertext rows
	// in Encrypt and Decrypt. Zero means runtime.NumCPU().
	Workers int
	// Rand is the source of randomness. Nil means crypto/rand.Reader.
	// Replacing it with a seeded source (see sample.KeyStream) gives
	// reproducible fixtures and must be limited to tests.
	Rand io.Reader
}

// DefaultConfig returns the configuration used by NewDefaultGlobalParams.
func DefaultConfig() Config {
	return Config{
		Curve:   CurveBN256,
		Workers: runtime.NumCPU(),
		Rand:    rand.Reader,
	}
}

func (c Config) normalize() (Config, error) {
	c.Curve = strings.ToLower(strings.TrimSpace(c.Curve))
	if c.Curve == "" {
		c.Curve = CurveBN256
	}
	if c.Curve != CurveBN256 {
		return c, errors.Wrapf(ErrInvalidConfig, "unsupported curve %q", c.Curve)
	}
	if c.Workers < 0 {
		return c, errors.Wrapf(ErrInvalidConfig, "negative number of workers %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Rand == nil {
		c.Rand = rand.Reader
	}

	return c, nil
}

// GlobalParams represents the public parameters shared by all the
// authorities and users of a DCP-ABE system: the pairing setting and
// the generators of G1 and G2. Keys and ciphertexts created under one
// instance are not interoperable with any other instance.
//
// GlobalParams is the receiver of every operation of the scheme and is
// never modified after creation.
type GlobalParams struct {
	Curve string
	P     *big.Int
	G1    *bn256.G1
	G2    *bn256.G2
	// Egg caches the pairing e(G1, G2).
	Egg *bn256.GT

	workers int
	rand    io.Reader
}

// NewGlobalParams configures a new instance of the scheme. The
// generators are sampled uniformly at random.
func NewGlobalParams(conf Config) (*GlobalParams, error) {
	conf, err := conf.normalize()
	if err != nil {
		return nil, err
	}

	sampler := sample.NewUniformNonZero(bn256.Order, conf.Rand)
	k1, err := sampler.Sample()
	if err != nil {
		return nil, err
	}
	k2, err := sampler.Sample()
	if err != nil {
		return nil, err
	}
	g1 := new(bn256.G1).ScalarBaseMult(k1)
	g2 := new(bn256.G2).ScalarBaseMult(k2)

	return &GlobalParams{
		Curve:   conf.Curve,
		P:       new(big.Int).Set(bn256.Order),
		G1:      g1,
		G2:      g2,
		Egg:     bn256.Pair(g1, g2),
		workers: conf.Workers,
		rand:    conf.Rand,
	}, nil
}

// NewDefaultGlobalParams is NewGlobalParams(DefaultConfig()).
func NewDefaultGlobalParams() (*GlobalParams, error) {
	return NewGlobalParams(DefaultConfig())
}

// RestoreGlobalParams rebuilds global parameters from previously
// published generators, e.g. after decoding them. The configuration
// only contributes the curve, workers and randomness source.
func RestoreGlobalParams(conf Config, g1 *bn256.G1, g2 *bn256.G2) (*GlobalParams, error) {
	conf, err := conf.normalize()
	if err != nil {
		return nil, err
	}
	if g1 == nil || g2 == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "missing generator")
	}

	return &GlobalParams{
		Curve:   conf.Curve,
		P:       new(big.Int).Set(bn256.Order),
		G1:      g1,
		G2:      g2,
		Egg:     bn256.Pair(g1, g2),
		workers: conf.Workers,
		rand:    conf.Rand,
	}, nil
}

// Equal reports whether gp and other describe the same setting with
// the same generators.
func (gp *GlobalParams) Equal(other *GlobalParams) bool {
	if other == nil {
		return false
	}
	return gp.Curve == other.Curve &&
		gp.P.Cmp(other.P) == 0 &&
		bytes.Equal(gp.G1.Marshal(), other.G1.Marshal()) &&
		bytes.Equal(gp.G2.Marshal(), other.G2.Marshal())
}

func (gp *GlobalParams) source() io.Reader {
	if gp.rand == nil {
		return rand.Reader
	}
	return gp.rand
}

func (gp *GlobalParams) sampler() sample.Sampler {
	return sample.NewUniform(gp.P, gp.source())
}

// expGT computes base^k in GT for an arbitrary integer k.
func (gp *GlobalParams) expGT(base *bn256.GT, k *big.Int) *bn256.GT {
	return new(bn256.GT).ScalarMult(base, new(big.Int).Mod(k, gp.P))
}

// expG1 computes base^k in G1 for an arbitrary integer k.
func (gp *GlobalParams) expG1(base *bn256.G1, k *big.Int) *bn256.G1 {
	return new(bn256.G1).ScalarMult(base, new(big.Int).Mod(k, gp.P))
}

// expG2 computes base^k in G2 for an arbitrary integer k.
func (gp *GlobalParams) expG2(base *bn256.G2, k *big.Int) *bn256.G2 {
	return new(bn256.G2).ScalarMult(base, new(big.Int).Mod(k, gp.P))
}
