/*
 * Copyright (c) 2018 XLAB d.o.o
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

// Package internal holds the sentinel errors shared by the packages of
// this module.
package internal

import (
	"github.com/pkg/errors"
)

const malformedStr = "is not of the proper form"

var (
	// MalformedPubKey is returned for authority public keys that do not
	// decode to group elements.
	MalformedPubKey = errors.Errorf("authority public key %s", malformedStr)
	// MalformedSecKey is returned when an authority holds no usable
	// secret for an attribute.
	MalformedSecKey = errors.Errorf("authority secret key %s", malformedStr)
	MalformedDecKey = errors.Errorf("personal key %s", malformedStr)
	MalformedCipher = errors.Errorf("ciphertext %s", malformedStr)
)
