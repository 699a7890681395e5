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

// Command dcpabe is a command line front end of the decentralized
// CP-ABE scheme. Key material, public keys and ciphertexts are kept in
// JSON files.
//
// Usage:
//
//	dcpabe setup -o gp.json
//	dcpabe authority --gp gp.json --id auth1 -o auth1.json a b
//	dcpabe add-attributes --gp gp.json --keys auth1.json e
//	dcpabe remove-attributes --keys auth1.json e
//	dcpabe publish -o pub.json auth1.json auth2.json
//	dcpabe keygen --gp gp.json --keys auth1.json --user alice -o alice.json a
//	dcpabe encrypt --gp gp.json --pub pub.json --policy "and a or d and b c" -i msg -o ct.json
//	dcpabe decrypt --gp gp.json --keys alice.json -i ct.json -o msg
//	dcpabe policy and a or d and b c
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
)

const (
	exitOK = iota
	exitError
	exitUsage
	exitUnauthorized
)

type command struct {
	summary string
	run     func(env *env, args []string) error
}

var commands = map[string]command{
	"setup":             {"create global parameters", runSetup},
	"authority":         {"set up an authority governing attributes", runAuthority},
	"add-attributes":    {"add attributes to an authority", runAddAttributes},
	"remove-attributes": {"remove attributes from an authority", runRemoveAttributes},
	"publish":           {"aggregate public keys of authorities", runPublish},
	"keygen":            {"issue personal keys to a user", runKeyGen},
	"encrypt":           {"encrypt a file under a policy", runEncrypt},
	"decrypt":           {"decrypt a ciphertext with personal keys", runDecrypt},
	"policy":            {"print the access structure of a policy", runPolicy},
}

// env is what commands share: the streams and the logger.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	log    hclog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	level := hclog.Info
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--verbose") {
		level = hclog.Debug
		args = args[1:]
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "dcpabe",
		Level:  level,
		Output: stderr,
	})

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		logger.Error("unknown command", "command", args[0])
		usage(stderr)
		return exitUsage
	}

	e := &env{stdin: stdin, stdout: stdout, log: logger.Named(args[0])}
	if err := cmd.run(e, args[1:]); err != nil {
		return exitCode(e.log, err)
	}

	return exitOK
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: dcpabe [-v] <command> [flags] [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].summary)
	}
}
