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

// package fasta reads alignment files of equal-length, FASTA formatted
// sequences, one file per protein.

package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInputNotFound = Error("alignment input not found")
	ErrParse         = Error("malformed alignment")

	headerPrefix  = '>'
	maxLineLength = 64 * 1024 * 1024
)

// Alignment holds the sequences of one alignment file. IDs are in the order
// they appeared in the file. Titles holds the whole header line of each id,
// with runs of whitespace collapsed to single spaces.
type Alignment struct {
	Protein   string
	IDs       []string
	Titles    map[string]string
	Sequences map[string]string
}

func newAlignment(protein string) *Alignment {
	return &Alignment{
		Protein:   protein,
		Titles:    make(map[string]string),
		Sequences: make(map[string]string),
	}
}

// Has tells you if the given id is amongst our sequences.
func (a *Alignment) Has(id string) bool {
	_, ok := a.Sequences[id]

	return ok
}

// Sequence returns the sequence with the given id, and false if there is no
// such sequence.
func (a *Alignment) Sequence(id string) (string, bool) {
	seq, ok := a.Sequences[id]

	return seq, ok
}

// Find returns the id of the sequence named by name, which may be either an
// id or a whole header title such as "KZN 1435". Ids take precedence over
// titles, and earlier titles over later ones.
func (a *Alignment) Find(name string) (string, bool) {
	name = collapseSpace(name)
	if name == "" {
		return "", false
	}

	if a.Has(name) {
		return name, true
	}

	for _, id := range a.IDs {
		if a.Titles[id] == name {
			return id, true
		}
	}

	return "", false
}

// Len returns the number of sequences in the alignment.
func (a *Alignment) Len() int {
	return len(a.IDs)
}

func (a *Alignment) add(id, title, seq string) error {
	if id == "" {
		return fmt.Errorf("%w: empty sequence identifier in %s", ErrParse, a.Protein)
	}

	if seq == "" {
		return fmt.Errorf("%w: zero length sequence for %s in %s", ErrParse, id, a.Protein)
	}

	if a.Has(id) {
		return fmt.Errorf("%w: duplicate sequence identifier %s in %s", ErrParse, id, a.Protein)
	}

	if i := nonASCII(seq); i >= 0 {
		return fmt.Errorf("%w: non-ASCII residue at position %d of %s in %s", ErrParse, i+1, id, a.Protein)
	}

	a.IDs = append(a.IDs, id)
	a.Titles[id] = title
	a.Sequences[id] = seq

	return nil
}

// ProteinName returns the basename of the given path with the given extension
// removed. Our alignment files are named after the protein they hold.
func ProteinName(path, ext string) string {
	base := filepath.Base(path)

	if ext != "" && strings.HasSuffix(base, ext) {
		return strings.TrimSuffix(base, ext)
	}

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Read parses the alignment file at the given path. The returned Alignment's
// Protein is the file's basename without its extension.
//
// Returns an error wrapping ErrInputNotFound if the file doesn't exist, or
// ErrParse if it isn't valid FASTA.
func Read(path string) (*Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}

		return nil, err
	}

	defer f.Close()

	a, err := Parse(ProteinName(path, filepath.Ext(path)), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return a, nil
}

// Parse reads FASTA formatted sequences from r. The identifier of each
// sequence is the first whitespace separated word of its header line. Sequence
// lines are joined with whitespace removed.
func Parse(protein string, r io.Reader) (*Alignment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineLength)

	a := newAlignment(protein)

	var (
		id      string
		title   string
		seq     strings.Builder
		inEntry bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line[0] == headerPrefix {
			if inEntry {
				if err := a.add(id, title, seq.String()); err != nil {
					return nil, err
				}
			}

			title = collapseSpace(line[1:])
			id = headerID(line)
			seq.Reset()
			inEntry = true

			continue
		}

		if !inEntry {
			return nil, fmt.Errorf("%w: sequence data before first header in %s", ErrParse, protein)
		}

		seq.WriteString(strings.Join(strings.Fields(line), ""))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if !inEntry {
		return nil, fmt.Errorf("%w: no sequences found in %s", ErrParse, protein)
	}

	if err := a.add(id, title, seq.String()); err != nil {
		return nil, err
	}

	return a, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonASCII(seq string) int {
	for i := 0; i < len(seq); i++ {
		if seq[i] > unicode.MaxASCII {
			return i
		}
	}

	return -1
}

func headerID(line string) string {
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}
