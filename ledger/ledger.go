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

// package ledger accumulates the mutations found for each isolate of each
// protein over a run, and gives every isolate a stable row number.

package ledger

import "fmt"

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrProteinRecorded = Error("protein already recorded")
	ErrDuplicateID     = Error("isolate recorded twice for one protein")
	ErrEmptyName       = Error("protein and isolate names must not be empty")
)

// Record is the mutation encoding of one isolate for one protein.
type Record struct {
	IsolateID string
	Mutation  string
}

// Ledger maps proteins, in the order they were first recorded, to the Records
// of their isolates, in the order they were recorded. Isolates whose id is
// one of the excluded ids are never recorded.
//
// A Ledger is not safe for concurrent use; have a single goroutine write to
// it.
type Ledger struct {
	proteins []string
	records  map[string][]Record
	seen     map[string]map[string]bool
	excluded map[string]bool
	index    *Index
}

// New returns an empty Ledger that will ignore isolates with any of the given
// ids, which would normally be the reference candidate ids.
func New(excluded ...string) *Ledger {
	ex := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		ex[id] = true
	}

	return &Ledger{
		records:  make(map[string][]Record),
		seen:     make(map[string]map[string]bool),
		excluded: ex,
		index:    NewIndex(),
	}
}

// Excluded tells you if the given isolate id would be ignored by Record().
func (l *Ledger) Excluded(id string) bool {
	return l.excluded[id]
}

// Record appends the mutation of the given isolate to the given protein's
// records, creating them if this is the first time we've seen the protein.
// The isolate is given a row in our Index if it doesn't have one yet.
//
// Returns false without recording anything if the isolate id is excluded, or
// was already recorded for this protein, or either name is empty.
func (l *Ledger) Record(protein, isolateID, mutation string) bool {
	if protein == "" || isolateID == "" || l.excluded[isolateID] {
		return false
	}

	l.addProtein(protein)

	if l.seen[protein][isolateID] {
		return false
	}

	l.seen[protein][isolateID] = true
	l.records[protein] = append(l.records[protein], Record{IsolateID: isolateID, Mutation: mutation})
	l.index.Assign(isolateID)

	return true
}

func (l *Ledger) addProtein(protein string) {
	if _, exists := l.records[protein]; exists {
		return
	}

	l.proteins = append(l.proteins, protein)
	l.records[protein] = []Record{}
	l.seen[protein] = make(map[string]bool)
}

// RecordProtein records all the given records for a protein not yet in the
// ledger, in order, or none of them if there's a problem. The protein gets a
// column even if every record is excluded. Excluded isolates are skipped, and
// the number actually recorded is returned.
//
// ignore are further isolate ids to skip for this protein only, such as a
// reference chosen by hand.
func (l *Ledger) RecordProtein(protein string, records []Record, ignore ...string) (int, error) {
	if err := l.checkProtein(protein, records); err != nil {
		return 0, err
	}

	skip := make(map[string]bool, len(ignore))
	for _, id := range ignore {
		skip[id] = true
	}

	l.addProtein(protein)

	n := 0

	for _, r := range records {
		if skip[r.IsolateID] {
			continue
		}

		if l.Record(protein, r.IsolateID, r.Mutation) {
			n++
		}
	}

	return n, nil
}

func (l *Ledger) checkProtein(protein string, records []Record) error {
	if protein == "" {
		return ErrEmptyName
	}

	if _, exists := l.records[protein]; exists {
		return fmt.Errorf("%w: %s", ErrProteinRecorded, protein)
	}

	ids := make(map[string]bool, len(records))

	for _, r := range records {
		if r.IsolateID == "" {
			return fmt.Errorf("%w: in %s", ErrEmptyName, protein)
		}

		if ids[r.IsolateID] {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateID, r.IsolateID, protein)
		}

		ids[r.IsolateID] = true
	}

	return nil
}

// Proteins returns the recorded protein names in the order they were first
// recorded.
func (l *Ledger) Proteins() []string {
	return append([]string(nil), l.proteins...)
}

// Records returns a copy of the records for the given protein.
func (l *Ledger) Records(protein string) []Record {
	return append([]Record(nil), l.records[protein]...)
}

// Mutations returns a copy of everything recorded, keyed on protein. Use
// Proteins() to get the keys in order.
func (l *Ledger) Mutations() map[string][]Record {
	m := make(map[string][]Record, len(l.records))
	for protein, records := range l.records {
		m[protein] = append([]Record{}, records...)
	}

	return m
}

// Index returns the isolate row index built up as isolates were recorded.
func (l *Ledger) Index() *Index {
	return l.index
}
