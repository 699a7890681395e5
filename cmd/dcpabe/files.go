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
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/fentec-project/dcpabe/abe"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// usageError marks errors in the command line itself.
type usageError struct {
	error
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{errors.Wrap(err, "parsing flags")}
	}
	return nil
}

func required(name, value string) error {
	if value == "" {
		return usageError{errors.Errorf("flag --%s is required", name)}
	}
	return nil
}

func exitCode(log hclog.Logger, err error) int {
	if _, ok := err.(usageError); ok {
		log.Error("invalid arguments", "error", err)
		return exitUsage
	}
	if errors.Cause(err) == abe.ErrUnauthorized {
		log.Warn("decryption refused", "reason", err)
		return exitUnauthorized
	}
	log.Error("command failed", "error", err)
	return exitError
}

func readJSON(path string, v interface{}) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

// writeJSON writes v to path readable only by the owner, since most of
// the files hold secrets.
func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, append(b, '\n'), 0600)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (e *env) readInput(path string) ([]byte, error) {
	if path == "-" {
		return ioutil.ReadAll(e.stdin)
	}
	return ioutil.ReadFile(path)
}

func (e *env) writeOutput(path string, b []byte) error {
	if path == "-" {
		_, err := e.stdout.Write(b)
		return err
	}
	return ioutil.WriteFile(path, b, 0600)
}

// loadParams reads global parameters and applies the worker setting.
func loadParams(path string, workers int) (*abe.GlobalParams, error) {
	var gp abe.GlobalParams
	if err := readJSON(path, &gp); err != nil {
		return nil, err
	}
	conf := abe.DefaultConfig()
	conf.Curve = gp.Curve
	if workers > 0 {
		conf.Workers = workers
	}
	return abe.RestoreGlobalParams(conf, gp.G1, gp.G2)
}
