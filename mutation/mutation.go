/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Author: Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package mutation compares an isolate's aligned sequence to a reference and
// encodes the point substitutions found.

package mutation

import (
	"fmt"
	"strconv"
	"strings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrLengthMismatch = Error("isolate and reference sequences differ in length")
	ErrBadToken       = Error("invalid substitution token")

	// Sentinel is the encoding of an isolate with no substitutions, and the
	// value of table cells for isolates not seen in a protein's alignment.
	Sentinel = "X"

	// Masked residues in an isolate always match the reference.
	Masked = 'X'

	separator = ";"
)

// Substitution is a single residue change at a 1-based position.
type Substitution struct {
	Ref byte
	Pos int
	Alt byte
}

// String returns the wire form, eg. "T3V".
func (s Substitution) String() string {
	return string([]byte{s.Ref}) + strconv.Itoa(s.Pos) + string([]byte{s.Alt})
}

// Substitutions returns every position where isolate differs from reference,
// ignoring positions where the isolate residue is Masked.
func Substitutions(isolate, reference string) ([]Substitution, error) {
	if len(isolate) != len(reference) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(isolate), len(reference))
	}

	var subs []Substitution

	for i := 0; i < len(isolate); i++ {
		if isolate[i] == Masked || isolate[i] == reference[i] {
			continue
		}

		subs = append(subs, Substitution{Ref: reference[i], Pos: i + 1, Alt: isolate[i]})
	}

	return subs, nil
}

// Compare returns the encoding of the substitutions in isolate relative to
// reference: tokens like "T3V" joined with ";", or Sentinel if there are none.
// The sequences must be the same length.
func Compare(isolate, reference string) (string, error) {
	subs, err := Substitutions(isolate, reference)
	if err != nil {
		return "", err
	}

	return Encode(subs), nil
}

// Encode joins the given substitutions in to their wire form.
func Encode(subs []Substitution) string {
	if len(subs) == 0 {
		return Sentinel
	}

	tokens := make([]string, len(subs))
	for i, s := range subs {
		tokens[i] = s.String()
	}

	return strings.Join(tokens, separator)
}

// Parse decodes an encoding made by Compare. Sentinel decodes to no
// substitutions.
func Parse(encoding string) ([]Substitution, error) {
	if encoding == Sentinel {
		return nil, nil
	}

	tokens := strings.Split(encoding, separator)
	subs := make([]Substitution, len(tokens))

	for i, token := range tokens {
		s, err := parseToken(token)
		if err != nil {
			return nil, err
		}

		subs[i] = s
	}

	return subs, nil
}

func parseToken(token string) (Substitution, error) {
	const minTokenLength = 3

	if len(token) < minTokenLength {
		return Substitution{}, fmt.Errorf("%w: %q", ErrBadToken, token)
	}

	pos, err := strconv.Atoi(token[1 : len(token)-1])
	if err != nil || pos < 1 {
		return Substitution{}, fmt.Errorf("%w: %q", ErrBadToken, token)
	}

	return Substitution{Ref: token[0], Pos: pos, Alt: token[len(token)-1]}, nil
}

// Apply returns a copy of reference with the given substitutions made. It
// fails if a substitution is out of range or its Ref doesn't match the
// reference residue.
func Apply(reference string, subs []Substitution) (string, error) {
	seq := []byte(reference)

	for _, s := range subs {
		if s.Pos < 1 || s.Pos > len(seq) || seq[s.Pos-1] != s.Ref {
			return "", fmt.Errorf("%w: %s does not fit reference", ErrBadToken, s)
		}

		seq[s.Pos-1] = s.Alt
	}

	return string(seq), nil
}
