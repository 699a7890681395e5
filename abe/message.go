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
	"crypto/sha256"
	"io"

	"github.com/fentec-project/bn256"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var messageKeyInfo = []byte("dcpabe message key")

// messageKey derives the symmetric key protecting the message from the
// GT element hidden in the ciphertext.
func messageKey(k *bn256.GT) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, k.Marshal(), nil, messageKeyInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}

	return key, nil
}

// sealMessage encrypts msg with a key derived from k. The additional
// data ad binds the symmetric ciphertext to the rest of the ciphertext.
func sealMessage(k *bn256.GT, msg, ad []byte, rand io.Reader) (nonce, symEnc []byte, err error) {
	key, err := messageKey(k)
	if err != nil {
		return nil, nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand, nonce); err != nil {
		return nil, nil, errors.Wrap(err, "reading nonce")
	}

	return nonce, aead.Seal(nil, nonce, msg, ad), nil
}

// openMessage reverses sealMessage. A wrong k is detected and reported
// as ErrUnauthorized.
func openMessage(k *bn256.GT, nonce, symEnc, ad []byte) ([]byte, error) {
	key, err := messageKey(k)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, errors.Wrapf(ErrMalformedCiphertext, "nonce has length %d", len(nonce))
	}
	msg, err := aead.Open(nil, nonce, symEnc, ad)
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, "message authentication failed")
	}
	if msg == nil {
		msg = []byte{}
	}

	return msg, nil
}

// RandomMessage returns size random bytes from the randomness source
// of gp, e.g. to be used as a symmetric key encrypted under a policy.
func (gp *GlobalParams) RandomMessage(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid message size %d", size)
	}
	msg := make([]byte, size)
	if _, err := io.ReadFull(gp.source(), msg); err != nil {
		return nil, err
	}

	return msg, nil
}
