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

// package table lays out the contents of a ledger as an isolate by protein
// grid.

package table

import (
	"github.com/Gyamps/protein-mutation-sheet/ledger"
	"github.com/Gyamps/protein-mutation-sheet/mutation"
)

// IDHeader is the header of the first column, which holds isolate ids.
const IDHeader = "Isolate ID"

// Grid is a dense table with a header row of IDHeader followed by protein
// names, and one row per isolate. Every cell holds a mutation encoding or
// mutation.Sentinel.
type Grid struct {
	Header []string
	Rows   [][]string

	rowOf map[string]int
	colOf map[string]int
}

// Assemble builds a Grid from the ledger. Columns are the given proteins in
// order, or the ledger's proteins if none are given. Rows are isolates in the
// order of the ledger's Index. Cells for an isolate absent from a protein's
// records are mutation.Sentinel.
func Assemble(l *ledger.Ledger, proteins ...string) *Grid {
	if len(proteins) == 0 {
		proteins = l.Proteins()
	}

	g := newGrid(l.Index().IDs(), proteins)

	for col, protein := range proteins {
		for _, r := range l.Records(protein) {
			row, ok := l.Index().Row(r.IsolateID)
			if !ok {
				continue
			}

			g.Rows[row-1][col+1] = r.Mutation
		}
	}

	return g
}

func newGrid(ids, proteins []string) *Grid {
	g := &Grid{
		Header: append([]string{IDHeader}, proteins...),
		Rows:   make([][]string, len(ids)),
		rowOf:  make(map[string]int, len(ids)),
		colOf:  make(map[string]int, len(proteins)),
	}

	for col, protein := range proteins {
		if _, dup := g.colOf[protein]; !dup {
			g.colOf[protein] = col + 1
		}
	}

	for i, id := range ids {
		row := make([]string, len(g.Header))
		row[0] = id

		for j := 1; j < len(row); j++ {
			row[j] = mutation.Sentinel
		}

		g.Rows[i] = row
		g.rowOf[id] = i
	}

	return g
}

// Cell returns the value for the given isolate and protein, and false if
// there is no such row or column.
func (g *Grid) Cell(isolateID, protein string) (string, bool) {
	row, ok := g.rowOf[isolateID]
	if !ok {
		return "", false
	}

	col, ok := g.colOf[protein]
	if !ok {
		return "", false
	}

	return g.Rows[row][col], true
}

// Values returns the header followed by the rows, for writers that want the
// whole table.
func (g *Grid) Values() [][]string {
	values := make([][]string, 0, len(g.Rows)+1)
	values = append(values, g.Header)

	return append(values, g.Rows...)
}

// Mutated returns the number of cells that hold something other than the
// sentinel.
func (g *Grid) Mutated() int {
	n := 0

	for _, row := range g.Rows {
		for _, cell := range row[1:] {
			if cell != mutation.Sentinel {
				n++
			}
		}
	}

	return n
}
