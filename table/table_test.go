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

package table

import (
	"testing"

	"github.com/Gyamps/protein-mutation-sheet/ledger"
	"github.com/Gyamps/protein-mutation-sheet/mutation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssemble(t *testing.T) {
	Convey("Given a ledger with isolates spread over proteins", t, func() {
		l := ledger.New("H37Rv")

		_, err := l.RecordProtein("geneA", []ledger.Record{
			{IsolateID: "H37Rv", Mutation: mutation.Sentinel},
			{IsolateID: "Iso1", Mutation: "T3V"},
			{IsolateID: "Iso2", Mutation: mutation.Sentinel},
		})
		So(err, ShouldBeNil)

		_, err = l.RecordProtein("geneB", []ledger.Record{
			{IsolateID: "Iso2", Mutation: "M1A;K2R"},
			{IsolateID: "Iso3", Mutation: "S5L"},
		})
		So(err, ShouldBeNil)

		Convey("Assemble lays isolates out in first-seen order and proteins in processing order", func() {
			g := Assemble(l)
			So(g.Header, ShouldResemble, []string{IDHeader, "geneA", "geneB"})
			So(g.Rows, ShouldResemble, [][]string{
				{"Iso1", "T3V", mutation.Sentinel},
				{"Iso2", mutation.Sentinel, "M1A;K2R"},
				{"Iso3", mutation.Sentinel, "S5L"},
			})

			cell, ok := g.Cell("Iso1", "geneB")
			So(ok, ShouldBeTrue)
			So(cell, ShouldEqual, mutation.Sentinel)

			cell, ok = g.Cell("Iso3", "geneA")
			So(ok, ShouldBeTrue)
			So(cell, ShouldEqual, mutation.Sentinel)

			cell, ok = g.Cell("Iso2", "geneB")
			So(ok, ShouldBeTrue)
			So(cell, ShouldEqual, "M1A;K2R")

			_, ok = g.Cell("H37Rv", "geneA")
			So(ok, ShouldBeFalse)

			_, ok = g.Cell("Iso1", "geneZ")
			So(ok, ShouldBeFalse)

			So(g.Mutated(), ShouldEqual, 3)

			values := g.Values()
			So(values, ShouldHaveLength, 4)
			So(values[0], ShouldResemble, g.Header)
			So(values[3][0], ShouldEqual, "Iso3")

			for _, row := range g.Rows {
				So(row, ShouldHaveLength, len(g.Header))

				for _, cell := range row {
					So(cell, ShouldNotBeBlank)
				}
			}
		})

		Convey("Assemble can use a given protein order, with unknown proteins all sentinel", func() {
			g := Assemble(l, "geneB", "geneC", "geneA")
			So(g.Header, ShouldResemble, []string{IDHeader, "geneB", "geneC", "geneA"})
			So(g.Rows[0], ShouldResemble, []string{"Iso1", mutation.Sentinel, mutation.Sentinel, "T3V"})
			So(g.Rows[1], ShouldResemble, []string{"Iso2", "M1A;K2R", mutation.Sentinel, mutation.Sentinel})
		})

		Convey("Assembling after more proteins are recorded keeps existing rows in place", func() {
			before := Assemble(l)

			_, err := l.RecordProtein("geneC", []ledger.Record{
				{IsolateID: "Iso4", Mutation: "A1G"},
				{IsolateID: "Iso1", Mutation: mutation.Sentinel},
			})
			So(err, ShouldBeNil)

			after := Assemble(l)
			So(after.Rows, ShouldHaveLength, 4)

			for i, row := range before.Rows {
				So(after.Rows[i][0], ShouldEqual, row[0])
			}

			So(after.Rows[3], ShouldResemble, []string{"Iso4", mutation.Sentinel, mutation.Sentinel, "A1G"})
		})
	})

	Convey("An empty ledger gives a header-only grid", t, func() {
		g := Assemble(ledger.New())
		So(g.Header, ShouldResemble, []string{IDHeader})
		So(g.Rows, ShouldBeEmpty)
		So(g.Values(), ShouldResemble, [][]string{{IDHeader}})
	})
}
