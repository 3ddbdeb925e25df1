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

// package output persists mutation tables as xlsx workbooks or delimited text.

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Gyamps/protein-mutation-sheet/ledger"
	"github.com/Gyamps/protein-mutation-sheet/table"
	"github.com/xuri/excelize/v2"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrBadSheetName = Error("invalid worksheet name")

	DefaultSheetName = "Mutations"
	MutationsHeader  = "Mutations"

	xlsxExtension    = ".xlsx"
	tsvExtension     = ".tsv"
	maxSheetNameLen  = 31
	idColumnWidth    = 24
	invalidSheetRune = '_'
	unnamedSheet     = "Protein"
	sheetNameChars   = `:\/?*[]`
)

// WriteFile writes the grid to path in a format chosen by its extension:
// xlsx for ".xlsx", tab separated for ".tsv" and comma separated otherwise.
// For xlsx, if l is not nil, each protein in the grid also gets its own
// worksheet listing its isolates from the ledger.
func WriteFile(g *table.Grid, l *ledger.Ledger, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case xlsxExtension:
		return WriteWorkbook(g, l, path, DefaultSheetName)
	case tsvExtension:
		return WriteDelimited(g, path, '\t')
	default:
		return WriteDelimited(g, path, ',')
	}
}

// WriteXLSX writes the grid to a single worksheet with the given name in a new
// workbook at path, with the header row in bold. The file only appears at path
// once completely written.
func WriteXLSX(g *table.Grid, path, sheet string) error {
	return WriteWorkbook(g, nil, path, sheet)
}

// WriteWorkbook is like WriteXLSX, but if l is not nil, follows the grid's
// worksheet with one per protein column of the grid, in column order. Each of
// those holds the isolate ids and mutations recorded for that protein in the
// ledger, in the order they were recorded. Their names are the protein names
// made valid with ProteinSheetName.
func WriteWorkbook(g *table.Grid, l *ledger.Ledger, path, sheet string) error {
	if !validSheetName(sheet) {
		return fmt.Errorf("%w: %q", ErrBadSheetName, sheet)
	}

	return writeAtomically(path, func(out *os.File) error {
		f := excelize.NewFile()
		defer f.Close()

		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return err
		}

		if err := streamRows(f, sheet, g.Values()); err != nil {
			return err
		}

		if l != nil {
			if err := addProteinSheets(f, g, l, sheet); err != nil {
				return err
			}
		}

		return f.Write(out)
	})
}

func validSheetName(name string) bool {
	return name != "" && utf8.RuneCountInString(name) <= maxSheetNameLen &&
		!strings.ContainsAny(name, sheetNameChars) &&
		!strings.HasPrefix(name, "'") && !strings.HasSuffix(name, "'")
}

func addProteinSheets(f *excelize.File, g *table.Grid, l *ledger.Ledger, summary string) error {
	used := map[string]bool{strings.ToLower(summary): true}
	done := make(map[string]bool, len(g.Header))

	for _, protein := range g.Header[1:] {
		if done[protein] {
			continue
		}

		done[protein] = true
		name := ProteinSheetName(protein, used)

		if _, err := f.NewSheet(name); err != nil {
			return err
		}

		if err := streamRows(f, name, proteinRows(l.Records(protein))); err != nil {
			return err
		}
	}

	return nil
}

func proteinRows(records []ledger.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{table.IDHeader, MutationsHeader})

	for _, r := range records {
		rows = append(rows, []string{r.IsolateID, r.Mutation})
	}

	return rows
}

// ProteinSheetName returns a valid worksheet name for the protein: characters
// not allowed in names are replaced with underscores, surrounding apostrophes
// removed, and the result cut to 31 characters. If the name (ignoring case) is
// already in used, a "~2", "~3" etc. suffix is added. The returned name is
// added to used.
func ProteinSheetName(protein string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(sheetNameChars, r) {
			return invalidSheetRune
		}

		return r
	}, protein)

	name = truncateRunes(strings.Trim(name, "'"), maxSheetNameLen)
	if name == "" {
		name = unnamedSheet
	}

	candidate := name

	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		candidate = strings.TrimRight(truncateRunes(name, maxSheetNameLen-len(suffix)), "'") + suffix
	}

	used[strings.ToLower(candidate)] = true

	return candidate
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}

func streamRows(f *excelize.File, sheet string, rows [][]string) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	if err = sw.SetColWidth(1, 1, idColumnWidth); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		var opts []excelize.RowOpts
		if i == 0 {
			opts = append(opts, excelize.RowOpts{StyleID: bold})
		}

		if err = sw.SetRow(cell, toCells(row), opts...); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}

	return cells
}

// WriteDelimited writes the header and rows of the grid to path, separating
// fields with comma. The file only appears at path once completely written.
func WriteDelimited(g *table.Grid, path string, comma rune) error {
	return writeAtomically(path, func(out *os.File) error {
		w := csv.NewWriter(out)
		w.Comma = comma

		if err := w.WriteAll(g.Values()); err != nil {
			return err
		}

		return w.Error()
	})
}
