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
	"github.com/fentec-project/dcpabe/internal"
	"github.com/pkg/errors"
)

// Errors returned by the scheme. Returned errors wrap one of these
// with the context of the failure (attribute, row or token), so callers
// should compare against errors.Cause(err) or use errors.Is.
var (
	// ErrInvalidConfig is returned for unsupported or invalid global
	// parameter descriptions.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedPolicy is returned when a policy string can not be parsed.
	ErrMalformedPolicy = errors.New("malformed policy")
	// ErrMissingAttribute is returned when key material for an attribute
	// is needed but not available.
	ErrMissingAttribute = errors.New("missing attribute")
	// ErrUnauthorized is returned by Decrypt when the personal keys do
	// not satisfy the access structure of the ciphertext.
	ErrUnauthorized = errors.New("not authorized to decrypt")
	// ErrMalformedCiphertext is returned when a ciphertext is internally
	// inconsistent.
	ErrMalformedCiphertext = internal.MalformedCipher
	// ErrMalformedKey is returned for inconsistent key structures.
	ErrMalformedKey = internal.MalformedDecKey
	// ErrMalformedPubKey is returned for inconsistent public keys.
	ErrMalformedPubKey = internal.MalformedPubKey
)
