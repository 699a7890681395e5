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
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t   *testing.T
	dir string
}

func (c *cli) path(name string) string {
	return filepath.Join(c.dir, name)
}

func (c *cli) run(stdin string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c *cli) mustRun(args ...string) string {
	code, out, errOut := c.run("", args...)
	require.Equal(c.t, exitOK, code, "dcpabe %s: %s", strings.Join(args, " "), errOut)
	return out
}

func TestCLI(t *testing.T) {
	c := &cli{t: t, dir: t.TempDir()}
	gp := c.path("gp.json")
	pub := c.path("pub.json")

	c.mustRun("setup", "-o", gp)
	c.mustRun("authority", "--gp", gp, "--id", "auth1", "-o", c.path("auth1.json"), "a", "b")
	c.mustRun("authority", "--gp", gp, "--id", "auth2", "-o", c.path("auth2.json"), "c")
	c.mustRun("add-attributes", "--gp", gp, "--keys", c.path("auth2.json"), "d", "e")
	c.mustRun("remove-attributes", "--keys", c.path("auth2.json"), "e")
	c.mustRun("publish", "-o", pub, c.path("auth1.json"), c.path("auth2.json"))

	alice := c.path("alice.json")
	c.mustRun("keygen", "--gp", gp, "--keys", c.path("auth1.json"), "--user", "alice", "-o", alice, "a")
	c.mustRun("keygen", "--gp", gp, "--keys", c.path("auth2.json"), "--user", "alice", "-o", alice, "d")
	bob := c.path("bob.json")
	c.mustRun("keygen", "--gp", gp, "--keys", c.path("auth1.json"), "--user", "bob", "-o", bob, "a", "b")

	msg := "attack at dawn"
	ct := c.path("ct.json")
	code, _, errOut := c.run(msg, "encrypt", "--gp", gp, "--pub", pub, "--policy", "and a or d and b c", "-o", ct)
	require.Equal(t, exitOK, code, errOut)

	out := c.mustRun("decrypt", "--gp", gp, "--keys", alice, "-i", ct)
	assert.Equal(t, msg, out)

	code, out, errOut = c.run("", "decrypt", "--gp", gp, "--keys", bob, "-i", ct)
	assert.Equal(t, exitUnauthorized, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "decryption refused")

	c.mustRun("decrypt", "--gp", gp, "--keys", alice, "-i", ct, "-o", c.path("msg"), "--workers", "2")
	b, err := ioutil.ReadFile(c.path("msg"))
	require.NoError(t, err)
	assert.Equal(t, msg, string(b))
}

func TestCLIRemovedAttribute(t *testing.T) {
	c := &cli{t: t, dir: t.TempDir()}
	gp := c.path("gp.json")
	keys := c.path("auth.json")
	pub := c.path("pub.json")

	c.mustRun("setup", "-o", gp)
	c.mustRun("authority", "--gp", gp, "--id", "auth", "-o", keys, "a", "b")
	c.mustRun("remove-attributes", "--keys", keys, "b")
	c.mustRun("publish", "-o", pub, keys)

	code, _, _ := c.run("", "keygen", "--gp", gp, "--keys", keys, "--user", "alice", "-o", c.path("alice.json"), "b")
	assert.Equal(t, exitError, code)

	code, _, errOut := c.run("m", "encrypt", "--gp", gp, "--pub", pub, "--policy", "or a b", "-o", c.path("ct.json"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "command failed")
}

func TestCLIUsage(t *testing.T) {
	c := &cli{t: t, dir: t.TempDir()}

	code, _, errOut := c.run("")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "usage: dcpabe")

	code, _, errOut = c.run("", "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "unknown command")

	code, _, _ = c.run("", "authority", "--gp", c.path("gp.json"))
	assert.Equal(t, exitUsage, code)

	code, _, errOut = c.run("", "setup", "--no-such-flag")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "parsing flags")

	code, _, _ = c.run("", "policy")
	assert.Equal(t, exitUsage, code)
}

func TestCLIPolicy(t *testing.T) {
	c := &cli{t: t, dir: t.TempDir()}

	out := c.mustRun("policy", "and", "a", "or", "d", "and", "b", "c")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "a AND (d OR (b AND c))", lines[0])
	assert.Len(t, lines, 5)

	code, _, errOut := c.run("", "policy", "and", "a")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "command failed")
}

func TestCLIBadCurve(t *testing.T) {
	c := &cli{t: t, dir: t.TempDir()}

	code, _, _ := c.run("", "setup", "-o", c.path("gp.json"), "--curve", "bls12")
	assert.Equal(t, exitError, code)
}
