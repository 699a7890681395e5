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

package main

import (
	"fmt"
	"strings"

	"github.com/fentec-project/dcpabe/abe"
	"github.com/pkg/errors"
)

func runSetup(e *env, args []string) error {
	fs := newFlagSet("setup")
	out := fs.StringP("out", "o", "gp.json", "file to write the global parameters to")
	curve := fs.String("curve", abe.CurveBN256, "pairing setting")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	conf := abe.DefaultConfig()
	conf.Curve = *curve
	gp, err := abe.NewGlobalParams(conf)
	if err != nil {
		return err
	}
	if err := writeJSON(*out, gp); err != nil {
		return err
	}
	e.log.Info("global parameters created", "curve", gp.Curve, "file", *out)

	return nil
}

func runAuthority(e *env, args []string) error {
	fs := newFlagSet("authority")
	gpPath := fs.String("gp", "gp.json", "global parameters")
	id := fs.String("id", "", "identifier of the authority")
	out := fs.StringP("out", "o", "", "file to write the authority keys to (default <id>.json)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	if *out == "" {
		*out = *id + ".json"
	}

	gp, err := loadParams(*gpPath, 0)
	if err != nil {
		return err
	}
	ak, err := gp.AuthoritySetup(*id, fs.Args()...)
	if err != nil {
		return err
	}
	if err := writeJSON(*out, ak); err != nil {
		return err
	}
	e.log.Info("authority set up", "id", ak.ID, "attributes", ak.Attributes(), "file", *out)

	return nil
}

func runAddAttributes(e *env, args []string) error {
	fs := newFlagSet("add-attributes")
	gpPath := fs.String("gp", "gp.json", "global parameters")
	keysPath := fs.String("keys", "", "authority keys to extend")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required("keys", *keysPath); err != nil {
		return err
	}

	gp, err := loadParams(*gpPath, 0)
	if err != nil {
		return err
	}
	var ak abe.AuthorityKeys
	if err := readJSON(*keysPath, &ak); err != nil {
		return err
	}
	before := len(ak.SecretKeys)
	if err := ak.AddAttributes(gp, fs.Args()...); err != nil {
		return err
	}
	if err := writeJSON(*keysPath, &ak); err != nil {
		return err
	}
	e.log.Info("attributes added", "id", ak.ID, "new", len(ak.SecretKeys)-before)

	return nil
}

func runRemoveAttributes(e *env, args []string) error {
	fs := newFlagSet("remove-attributes")
	keysPath := fs.String("keys", "", "authority keys to shrink")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required("keys", *keysPath); err != nil {
		return err
	}

	var ak abe.AuthorityKeys
	if err := readJSON(*keysPath, &ak); err != nil {
		return err
	}
	ak.RemoveAttributes(fs.Args()...)
	if err := writeJSON(*keysPath, &ak); err != nil {
		return err
	}
	e.log.Info("attributes removed", "id", ak.ID, "remaining", ak.Attributes())

	return nil
}

func runPublish(e *env, args []string) error {
	fs := newFlagSet("publish")
	out := fs.StringP("out", "o", "pub.json", "aggregated public keys, extended if it exists")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError{errors.New("no authority key files given")}
	}

	pks := abe.NewPublicKeys()
	if fileExists(*out) {
		if err := readJSON(*out, &pks); err != nil {
			return err
		}
	}
	for _, path := range fs.Args() {
		var ak abe.AuthorityKeys
		if err := readJSON(path, &ak); err != nil {
			return err
		}
		for at := range ak.PublicKeys {
			if _, ok := pks[at]; ok {
				e.log.Warn("attribute published again, replacing its key", "attribute", at, "authority", ak.ID)
			}
		}
		pks.Subscribe(ak.PublicKeys)
		e.log.Debug("authority subscribed", "id", ak.ID, "attributes", len(ak.PublicKeys))
	}
	if err := writeJSON(*out, pks); err != nil {
		return err
	}
	e.log.Info("public keys published", "attributes", len(pks), "file", *out)

	return nil
}

func runKeyGen(e *env, args []string) error {
	fs := newFlagSet("keygen")
	gpPath := fs.String("gp", "gp.json", "global parameters")
	keysPath := fs.String("keys", "", "keys of the authority issuing the personal keys")
	user := fs.String("user", "", "global identifier of the user")
	out := fs.StringP("out", "o", "", "personal keys of the user, extended if it exists (default <user>.json)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required("keys", *keysPath); err != nil {
		return err
	}
	if err := required("user", *user); err != nil {
		return err
	}
	if *out == "" {
		*out = *user + ".json"
	}

	gp, err := loadParams(*gpPath, 0)
	if err != nil {
		return err
	}
	var ak abe.AuthorityKeys
	if err := readJSON(*keysPath, &ak); err != nil {
		return err
	}
	issued, err := gp.PersonalKeysGen(*user, &ak, fs.Args()...)
	if err != nil {
		return err
	}

	keys := abe.NewPersonalKeys(*user)
	if fileExists(*out) {
		if err := readJSON(*out, keys); err != nil {
			return err
		}
	}
	if err := keys.Merge(issued); err != nil {
		return err
	}
	if err := writeJSON(*out, keys); err != nil {
		return err
	}
	e.log.Info("personal keys issued", "user", *user, "authority", ak.ID,
		"attributes", issued.Attributes(), "file", *out)

	return nil
}

func runEncrypt(e *env, args []string) error {
	fs := newFlagSet("encrypt")
	gpPath := fs.String("gp", "gp.json", "global parameters")
	pubPath := fs.String("pub", "pub.json", "aggregated public keys")
	policy := fs.String("policy", "", "policy in prefix notation, e.g. \"and a or b c\"")
	in := fs.StringP("in", "i", "-", "message to encrypt")
	out := fs.StringP("out", "o", "-", "file to write the ciphertext to")
	workers := fs.Int("workers", 0, "goroutines computing ciphertext rows (0 means one per CPU)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required("policy", *policy); err != nil {
		return err
	}

	gp, err := loadParams(*gpPath, *workers)
	if err != nil {
		return err
	}
	var pks abe.PublicKeys
	if err := readJSON(*pubPath, &pks); err != nil {
		return err
	}
	as, err := abe.NewAccessStructure(*policy)
	if err != nil {
		return err
	}
	msg, err := e.readInput(*in)
	if err != nil {
		return err
	}
	ct, err := gp.Encrypt(msg, as, pks)
	if err != nil {
		return err
	}
	b, err := ct.MarshalJSON()
	if err != nil {
		return err
	}
	if err := e.writeOutput(*out, append(b, '\n')); err != nil {
		return err
	}
	e.log.Info("message encrypted", "policy", as.String(), "rows", as.Mat.Rows(), "bytes", len(msg))

	return nil
}

func runDecrypt(e *env, args []string) error {
	fs := newFlagSet("decrypt")
	gpPath := fs.String("gp", "gp.json", "global parameters")
	keysPath := fs.String("keys", "", "personal keys of the user")
	in := fs.StringP("in", "i", "-", "ciphertext to decrypt")
	out := fs.StringP("out", "o", "-", "file to write the message to")
	workers := fs.Int("workers", 0, "goroutines computing pairings (0 means one per CPU)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required("keys", *keysPath); err != nil {
		return err
	}

	gp, err := loadParams(*gpPath, *workers)
	if err != nil {
		return err
	}
	var keys abe.PersonalKeys
	if err := readJSON(*keysPath, &keys); err != nil {
		return err
	}
	b, err := e.readInput(*in)
	if err != nil {
		return err
	}
	var ct abe.Ciphertext
	if err := ct.UnmarshalJSON(b); err != nil {
		return err
	}
	e.log.Debug("decrypting", "user", keys.GID, "attributes", keys.Attributes(), "rows", len(ct.RowToAttrib))
	msg, err := gp.Decrypt(&ct, &keys)
	if err != nil {
		return err
	}
	if err := e.writeOutput(*out, msg); err != nil {
		return err
	}
	e.log.Info("message decrypted", "user", keys.GID, "bytes", len(msg))

	return nil
}

func runPolicy(e *env, args []string) error {
	fs := newFlagSet("policy")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError{errors.New("no policy given")}
	}

	as, err := abe.NewAccessStructure(strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, as.String())
	fmt.Fprint(e.stdout, as.MatrixString())

	return nil
}
