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
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/salsa20"
)

// KeyStream is a deterministic io.Reader producing the salsa20
// keystream determined by a 32 byte key. Every call to Read consumes
// a fresh nonce, so the output depends only on the key and on the
// sequence of read lengths. It must never be used outside of tests
// and reproducible fixtures.
type KeyStream struct {
	mu      sync.Mutex
	key     [32]byte
	counter uint64
}

// NewKeyStream returns a KeyStream seeded with key.
func NewKeyStream(key *[32]byte) *KeyStream {
	return &KeyStream{key: *key}
}

// Read fills p with keystream bytes. It never fails.
func (k *KeyStream) Read(p []byte) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, k.counter)
	k.counter++

	in := make([]byte, len(p)) // input is initialized to zeros
	salsa20.XORKeyStream(p, in, nonce, &k.key)

	return len(p), nil
}
