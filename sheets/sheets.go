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

// package sheets mirrors mutation tables to Google sheets.

package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	googleSheets "google.golang.org/api/sheets/v4"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingColumn = Error("column not found in sheet")

	valueInputRaw = "RAW"
)

// Sheets allows the reading and writing of sheets in Google docs.
type Sheets struct {
	srv *googleSheets.Service
}

// New returns a Sheets that you can Read() and Write() sheets in Google docs
// with, authenticating as the given service account.
func New(cr *Credentials) (*Sheets, error) {
	ctx := context.Background()
	client := cr.jwtConfig().Client(ctx)

	srv, err := googleSheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return &Sheets{srv: srv}, nil
}

// Sheet contains the retrieved cells in a Google sheet.
type Sheet struct {
	ColumnHeaders []string
	Rows          [][]string
}

// Columns returns the values of the named columns for every row, in the order
// the names were given.
func (s *Sheet) Columns(names ...string) ([][]string, error) {
	indexes := make([]int, len(names))

	for i, name := range names {
		indexes[i] = -1

		for j, header := range s.ColumnHeaders {
			if header == name {
				indexes[i] = j

				break
			}
		}

		if indexes[i] == -1 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	cols := make([][]string, len(s.Rows))

	for r, row := range s.Rows {
		cols[r] = make([]string, len(indexes))

		for i, j := range indexes {
			if j < len(row) {
				cols[r][i] = row[j]
			}
		}
	}

	return cols, nil
}

// Read retrieves the contents of a given document and sheet within that
// document. The id of a Google sheet is the long string of characters in the
// URL when viewing that document.
func (s *Sheets) Read(docID, sheetName string) (*Sheet, error) {
	valRange, err := s.srv.Spreadsheets.Values.Get(docID, sheetName).Do()
	if err != nil {
		return nil, err
	}

	return valuesToSheet(valRange.Values), nil
}

func valuesToSheet(values [][]any) *Sheet {
	sheet := &Sheet{}

	if len(values) == 0 {
		return sheet
	}

	sheet.ColumnHeaders = rowToStringSlice(values[0])
	sheet.Rows = make([][]string, len(values)-1)

	for i, row := range values[1:] {
		sheet.Rows[i] = rowToStringSlice(row)
	}

	return sheet
}

func rowToStringSlice(in []any) []string {
	out := make([]string, len(in))

	for i, cols := range in {
		out[i] = fmt.Sprint(cols)
	}

	return out
}

// Write replaces the contents of the named sheet in the given document with
// the given rows, creating the sheet if necessary. Values are stored as typed,
// without interpretation as formulas or numbers.
func (s *Sheets) Write(docID, sheetName string, rows [][]string) error {
	if err := s.ensureSheet(docID, sheetName); err != nil {
		return err
	}

	_, err := s.srv.Spreadsheets.Values.Clear(docID, sheetName, &googleSheets.ClearValuesRequest{}).Do()
	if err != nil {
		return err
	}

	_, err = s.srv.Spreadsheets.Values.Update(docID, sheetName, &googleSheets.ValueRange{
		Values: stringsToValues(rows),
	}).ValueInputOption(valueInputRaw).Do()

	return err
}

func (s *Sheets) ensureSheet(docID, sheetName string) error {
	doc, err := s.srv.Spreadsheets.Get(docID).Do()
	if err != nil {
		return err
	}

	if hasSheet(doc, sheetName) {
		return nil
	}

	_, err = s.srv.Spreadsheets.BatchUpdate(docID, &googleSheets.BatchUpdateSpreadsheetRequest{
		Requests: []*googleSheets.Request{
			{AddSheet: &googleSheets.AddSheetRequest{
				Properties: &googleSheets.SheetProperties{Title: sheetName},
			}},
		},
	}).Do()

	return err
}

func hasSheet(doc *googleSheets.Spreadsheet, sheetName string) bool {
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return true
		}
	}

	return false
}

func stringsToValues(rows [][]string) [][]any {
	values := make([][]any, len(rows))

	for i, row := range rows {
		values[i] = make([]any, len(row))

		for j, v := range row {
			values[i][j] = v
		}
	}

	return values
}
