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

package abe

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/dcpabe/data"
	"github.com/pkg/errors"
)

type gate int

const (
	leafGate gate = iota
	andGate
	orGate
)

// policyNode is a node of the binary expression tree of a policy.
type policyNode struct {
	gate        gate
	attrib      string
	left, right *policyNode
}

// AccessStructure represents a monotone span program (MSP), i.e. a
// linear secret sharing scheme, describing a policy defining which
// attributes are needed to decrypt the ciphertext. It includes a matrix
// Mat and a mapping from the rows of Mat to attributes. A set of
// attributes A satisfies the policy if and only if the rows of Mat
// mapped to an element of A span the vector [1, 0,..., 0].
type AccessStructure struct {
	Policy      string
	Mat         data.Matrix
	RowToAttrib []string

	root *policyNode
}

// NewAccessStructure takes as an input a boolean expression (without a
// NOT gate) in prefix notation, e.g. "and a or d and b c" meaning
// a AND (d OR (b AND c)), and compiles it into an access structure.
// The keywords "and" and "or" are case-insensitive, every other token
// is an attribute. The same attribute may appear several times, each
// occurrence gets its own row.
func NewAccessStructure(policy string) (*AccessStructure, error) {
	tokens := strings.Fields(policy)
	if len(tokens) == 0 {
		return nil, errors.Wrap(ErrMalformedPolicy, "empty policy")
	}

	root, next, err := parsePrefix(tokens, 0)
	if err != nil {
		return nil, err
	}
	if next != len(tokens) {
		return nil, errors.Wrapf(ErrMalformedPolicy,
			"unexpected token %q at position %d after a complete expression", tokens[next], next)
	}

	// by the Lewko-Waters algorithm we obtain a MSP struct with the property
	// that the boolean expression is satisfied if and only if the
	// corresponding rows of the msp matrix span the vector [1, 0,..., 0]
	vec := data.NewUnitVector(1)
	rows, rowToAttrib, c := compilePolicy(root, vec, 1)
	mat := make(data.Matrix, len(rows))
	for i, row := range rows {
		mat[i] = row.Pad(c)
	}

	return &AccessStructure{
		Policy:      strings.Join(tokens, " "),
		Mat:         mat,
		RowToAttrib: rowToAttrib,
		root:        root,
	}, nil
}

// parsePrefix parses the expression starting at tokens[pos] and returns
// its tree together with the position of the first unconsumed token.
func parsePrefix(tokens []string, pos int) (*policyNode, int, error) {
	if pos >= len(tokens) {
		return nil, pos, errors.Wrapf(ErrMalformedPolicy,
			"unexpected end of policy at position %d, an operand is missing", pos)
	}

	tok := tokens[pos]
	var g gate
	switch strings.ToLower(tok) {
	case "and":
		g = andGate
	case "or":
		g = orGate
	default:
		return &policyNode{gate: leafGate, attrib: tok}, pos + 1, nil
	}

	left, next, err := parsePrefix(tokens, pos+1)
	if err != nil {
		return nil, next, errors.WithMessagef(err, "left operand of %q at position %d", tok, pos)
	}
	right, next, err := parsePrefix(tokens, next)
	if err != nil {
		return nil, next, errors.WithMessagef(err, "right operand of %q at position %d", tok, pos)
	}

	return &policyNode{gate: g, left: left, right: right}, next, nil
}

// compilePolicy recursively builds the rows of the msp matrix. vec is the
// vector assigned to node n and c is the current number of columns. It
// returns the rows of the subtree (not yet padded to the final width),
// their labels and the updated number of columns.
func compilePolicy(n *policyNode, vec data.Vector, c int) ([]data.Vector, []string, int) {
	switch n.gate {
	case orGate:
		rows1, attribs1, c1 := compilePolicy(n.left, vec, c)
		rows2, attribs2, c2 := compilePolicy(n.right, vec, c1)
		return append(rows1, rows2...), append(attribs1, attribs2...), c2
	case andGate:
		vec1, vec2 := makeAndVecs(vec, c)
		rows1, attribs1, c1 := compilePolicy(n.left, vec1, c+1)
		rows2, attribs2, c2 := compilePolicy(n.right, vec2, c1)
		return append(rows1, rows2...), append(attribs1, attribs2...), c2
	default:
		return []data.Vector{vec.Pad(c)}, []string{n.attrib}, c
	}
}

// makeAndVecs is a helping function that given a vector and a counter
// creates the two vectors assigned to the children of an AND gate: the
// parent's vector with 1 in the new column, and a zero vector with -1
// in the new column.
func makeAndVecs(vec data.Vector, c int) (data.Vector, data.Vector) {
	vec1 := vec.Pad(c + 1)
	vec2 := data.NewConstantVector(c+1, big.NewInt(0))
	vec1[c].SetInt64(1)
	vec2[c].SetInt64(-1)

	return vec1, vec2
}

// Attributes returns the distinct attributes appearing in the policy,
// in order of their first row.
func (as *AccessStructure) Attributes() []string {
	seen := make(map[string]bool)
	attribs := make([]string, 0, len(as.RowToAttrib))
	for _, at := range as.RowToAttrib {
		if !seen[at] {
			seen[at] = true
			attribs = append(attribs, at)
		}
	}

	return attribs
}

// IsSatisfiedBy evaluates the boolean formula of the policy assigning
// true to the given attributes.
func (as *AccessStructure) IsSatisfiedBy(attribs []string) bool {
	has := make(map[string]bool)
	for _, at := range attribs {
		has[at] = true
	}
	if as.root == nil {
		_, err := reconstructionVector(as.Mat, as.RowToAttrib, has, bn256.Order)
		return err == nil
	}

	return evaluate(as.root, has)
}

func evaluate(n *policyNode, has map[string]bool) bool {
	switch n.gate {
	case andGate:
		return evaluate(n.left, has) && evaluate(n.right, has)
	case orGate:
		return evaluate(n.left, has) || evaluate(n.right, has)
	default:
		return has[n.attrib]
	}
}

// ReconstructionVector finds constants c_i over Z_p, such that the sum
// of c_i times the i-th row of the matrix equals [1, 0,..., 0], using
// only rows mapped to the given attributes. It returns a map from the
// row index to c_i, omitting rows with c_i = 0. If the attributes do not
// satisfy the policy, ErrUnauthorized is returned.
func (as *AccessStructure) ReconstructionVector(attribs []string, p *big.Int) (map[int]*big.Int, error) {
	has := make(map[string]bool)
	for _, at := range attribs {
		has[at] = true
	}

	return reconstructionVector(as.Mat, as.RowToAttrib, has, p)
}

func reconstructionVector(mat data.Matrix, rowToAttrib []string, has map[string]bool, p *big.Int) (map[int]*big.Int, error) {
	goodRows := make([]int, 0, len(rowToAttrib))
	for i, at := range rowToAttrib {
		if has[at] {
			goodRows = append(goodRows, i)
		}
	}
	if len(goodRows) == 0 {
		return nil, errors.Wrap(ErrUnauthorized, "no attribute of the policy is available")
	}

	goodMat, err := mat.SelectRows(goodRows)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedCiphertext, err.Error())
	}

	// choose consts c_x, such that \sum c_x A_x = (1,0,...,0)
	// if they don't exist, the attributes are not sufficient
	c, err := data.GaussianEliminationSolver(goodMat.Transpose(), data.NewUnitVector(goodMat.Cols()), p)
	if errors.Cause(err) == data.ErrNoSolution {
		return nil, errors.Wrap(ErrUnauthorized, "attributes do not satisfy the policy")
	}
	if err != nil {
		return nil, errors.Wrap(ErrMalformedCiphertext, err.Error())
	}

	coeffs := make(map[int]*big.Int)
	for i, row := range goodRows {
		if c[i].Sign() != 0 {
			coeffs[row] = c[i]
		}
	}

	return coeffs, nil
}

// String returns the policy in infix notation with full parentheses.
func (as *AccessStructure) String() string {
	if as.root == nil {
		return as.Policy
	}
	return infix(as.root, true)
}

func infix(n *policyNode, top bool) string {
	var op string
	switch n.gate {
	case andGate:
		op = "AND"
	case orGate:
		op = "OR"
	default:
		return n.attrib
	}
	s := fmt.Sprintf("%s %s %s", infix(n.left, false), op, infix(n.right, false))
	if top {
		return s
	}
	return "(" + s + ")"
}

// MatrixString returns a printable form of the matrix with the
// attribute of each row.
func (as *AccessStructure) MatrixString() string {
	width := 0
	for _, at := range as.RowToAttrib {
		if len(at) > width {
			width = len(at)
		}
	}

	var b strings.Builder
	for i, row := range as.Mat {
		fmt.Fprintf(&b, "%-*s |", width, as.RowToAttrib[i])
		for _, x := range row {
			fmt.Fprintf(&b, " %2s", x.String())
		}
		b.WriteString("\n")
	}

	return b.String()
}
