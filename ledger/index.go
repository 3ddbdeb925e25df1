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

package ledger

// Index gives isolate ids a 1-based row number in the order they are first
// assigned. Row numbers never change once given out.
type Index struct {
	rows  map[string]int
	order []string
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{rows: make(map[string]int)}
}

// Assign returns the row of the given id, giving it the next row if it
// doesn't have one yet.
func (i *Index) Assign(id string) int {
	if row, ok := i.rows[id]; ok {
		return row
	}

	i.order = append(i.order, id)
	row := len(i.order)
	i.rows[id] = row

	return row
}

// Row returns the row of the given id, and false if it has none.
func (i *Index) Row(id string) (int, bool) {
	row, ok := i.rows[id]

	return row, ok
}

// IDs returns all ids in row order.
func (i *Index) IDs() []string {
	return append([]string(nil), i.order...)
}

// Len returns the number of rows assigned.
func (i *Index) Len() int {
	return len(i.order)
}
