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

package fasta

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const filePerm = 0644

func TestParse(t *testing.T) {
	Convey("Parse reads ids and sequences in file order", t, func() {
		input := ">H37Rv reference strain\nMKT\nAL\n>Iso2\nMKV AL\n\n>Iso1 desc\nMXTAL\n"

		a, err := Parse("katG", strings.NewReader(input))
		So(err, ShouldBeNil)
		So(a.Protein, ShouldEqual, "katG")
		So(a.IDs, ShouldResemble, []string{"H37Rv", "Iso2", "Iso1"})
		So(a.Len(), ShouldEqual, 3)
		So(a.Has("Iso1"), ShouldBeTrue)
		So(a.Has("Iso3"), ShouldBeFalse)

		seq, ok := a.Sequence("H37Rv")
		So(ok, ShouldBeTrue)
		So(seq, ShouldEqual, "MKTAL")

		seq, ok = a.Sequence("Iso2")
		So(ok, ShouldBeTrue)
		So(seq, ShouldEqual, "MKVAL")

		_, ok = a.Sequence("missing")
		So(ok, ShouldBeFalse)

		So(a.Titles["H37Rv"], ShouldEqual, "H37Rv reference strain")
		So(a.Titles["Iso2"], ShouldEqual, "Iso2")
	})

	Convey("Sequences can be found by id or by whole header title", t, func() {
		input := ">KZN   1435\nMKT\n>Iso1\nMKV\n>Iso2 KZN 1435\nMKA\n"

		a, err := Parse("katG", strings.NewReader(input))
		So(err, ShouldBeNil)
		So(a.IDs, ShouldResemble, []string{"KZN", "Iso1", "Iso2"})

		id, ok := a.Find("KZN 1435")
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "KZN")

		id, ok = a.Find(" Iso1 ")
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "Iso1")

		id, ok = a.Find("Iso2 KZN 1435")
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "Iso2")

		_, ok = a.Find("KZN 9999")
		So(ok, ShouldBeFalse)

		_, ok = a.Find("")
		So(ok, ShouldBeFalse)
	})

	Convey("Parse rejects malformed input", t, func() {
		for _, input := range []string{
			"",
			"\n\n",
			"MKT\n>Iso1\nMKT\n",
			">Iso1\n>Iso2\nMKT\n",
			">Iso1\nMKT\n>Iso2\n",
			">\nMKT\n",
			">Iso1\nMKT\n>Iso1\nMKV\n",
			">Iso1\nMK\xc3\xa9\n",
		} {
			a, err := Parse("p", strings.NewReader(input))
			So(a, ShouldBeNil)
			So(errors.Is(err, ErrParse), ShouldBeTrue)
		}
	})
}

func TestRead(t *testing.T) {
	Convey("Given an alignment file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "rpoB.mfa")

		err := os.WriteFile(path, []byte(">H37Rv\nMKT\n>Iso1\nMKV\n"), filePerm)
		So(err, ShouldBeNil)

		Convey("Read names the alignment after the file", func() {
			a, err := Read(path)
			So(err, ShouldBeNil)
			So(a.Protein, ShouldEqual, "rpoB")
			So(a.IDs, ShouldResemble, []string{"H37Rv", "Iso1"})
		})

		Convey("Read reports missing files as ErrInputNotFound", func() {
			_, err := Read(filepath.Join(dir, "missing.mfa"))
			So(errors.Is(err, ErrInputNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "missing.mfa")
		})

		Convey("Read reports bad content as ErrParse, naming the file", func() {
			bad := filepath.Join(dir, "bad.mfa")
			err := os.WriteFile(bad, []byte("not fasta\n"), filePerm)
			So(err, ShouldBeNil)

			_, err = Read(bad)
			So(errors.Is(err, ErrParse), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, bad)
		})
	})

	Convey("ProteinName strips the given extension, or the last one", t, func() {
		So(ProteinName("/a/b/katG.mfa", ".mfa"), ShouldEqual, "katG")
		So(ProteinName("katG.aln.fa", ".aln.fa"), ShouldEqual, "katG")
		So(ProteinName("katG.fasta", ""), ShouldEqual, "katG")
		So(ProteinName("katG.fasta", ".mfa"), ShouldEqual, "katG")
	})
}
