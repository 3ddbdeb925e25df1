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

// package reference picks the sequence in an alignment that isolates are
// compared against.

package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gyamps/protein-mutation-sheet/fasta"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrReferenceNotFound = Error("no reference sequence found")
	ErrCancelled         = Error("reference selection cancelled")
	ErrNoCandidates      = Error("at least one reference candidate is required")
)

// DefaultCandidates are the M. tuberculosis reference strains we look for, in
// priority order.
var DefaultCandidates = []string{ //nolint:gochecknoglobals
	"H37Rv", "CDC1551", "F11", "H37Ra", "Erdman", "HN878", "KZN 1435",
}

// Fallback is consulted when none of the candidates are in an alignment. It
// should return the id of a sequence in the alignment to use as the reference,
// ErrReferenceNotFound if it can't, or ErrCancelled to abort the whole run.
// It should give up with ErrCancelled if ctx is done.
type Fallback interface {
	Reference(ctx context.Context, a *fasta.Alignment) (string, error)
}

// Resolver finds the reference sequence in alignments.
type Resolver struct {
	candidates []string
	fallback   Fallback
}

// New returns a Resolver that looks for the given candidates in priority
// order. fallback may be nil.
func New(candidates []string, fallback Fallback) (*Resolver, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	return &Resolver{candidates: candidates, fallback: fallback}, nil
}

// Candidates returns our candidate ids in priority order.
func (r *Resolver) Candidates() []string {
	return append([]string(nil), r.candidates...)
}

// Lookup returns the id and sequence of the first of our candidates present
// in the alignment. A candidate can match a sequence id or a whole header
// title, so "KZN 1435" finds a sequence with the header ">KZN 1435", whose id
// is "KZN". It returns ErrReferenceNotFound if none are present.
func (r *Resolver) Lookup(a *fasta.Alignment) (string, string, error) {
	for _, name := range r.candidates {
		if id, ok := a.Find(name); ok {
			seq, _ := a.Sequence(id)

			return id, seq, nil
		}
	}

	return "", "", fmt.Errorf("%w in %s (tried %s)", ErrReferenceNotFound,
		a.Protein, strings.Join(r.candidates, ", "))
}

// Resolve is like Lookup, but if no candidate is present it asks our Fallback
// for an id. An id from the Fallback that isn't in the alignment is treated as
// ErrReferenceNotFound. ErrCancelled from the Fallback is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, a *fasta.Alignment) (string, string, error) {
	id, seq, err := r.Lookup(a)
	if err == nil || r.fallback == nil {
		return id, seq, err
	}

	name, err := r.fallback.Reference(ctx, a)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return "", "", err
		}

		return "", "", fmt.Errorf("%w in %s: %w", ErrReferenceNotFound, a.Protein, err)
	}

	id, ok := a.Find(name)
	if !ok {
		return "", "", fmt.Errorf("%w in %s: %s is not in the alignment",
			ErrReferenceNotFound, a.Protein, name)
	}

	seq, _ = a.Sequence(id)

	return id, seq, nil
}

// Present returns the ids of every sequence in the alignment that one of our
// candidates names, in candidate order. These are reference strains rather
// than isolates, even when a higher priority candidate is the reference.
func (r *Resolver) Present(a *fasta.Alignment) []string {
	var ids []string

	seen := make(map[string]bool)

	for _, name := range r.candidates {
		if id, ok := a.Find(name); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids
}

// Candidates parses a comma separated list of ids, ignoring blank entries.
// Use it to combine a user supplied reference with DefaultCandidates.
func Candidates(list string, extra ...string) []string {
	var ids []string

	seen := make(map[string]bool)

	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}

		seen[id] = true
		ids = append(ids, id)
	}

	for _, id := range strings.Split(list, ",") {
		add(id)
	}

	for _, id := range extra {
		add(id)
	}

	return ids
}
