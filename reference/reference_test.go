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

package reference

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Gyamps/protein-mutation-sheet/fasta"
	. "github.com/smartystreets/goconvey/convey"
)

type staticFallback struct {
	id    string
	err   error
	calls int
}

func (s *staticFallback) Reference(_ context.Context, _ *fasta.Alignment) (string, error) {
	s.calls++

	return s.id, s.err
}

func alignment(protein string, ids ...string) *fasta.Alignment {
	a := &fasta.Alignment{Protein: protein, Sequences: make(map[string]string)}

	for i, id := range ids {
		a.IDs = append(a.IDs, id)
		a.Sequences[id] = strings.Repeat(string(rune('A'+i)), 3)
	}

	return a
}

func TestResolver(t *testing.T) {
	Convey("You need at least one candidate to make a Resolver", t, func() {
		r, err := New(nil, nil)
		So(err, ShouldEqual, ErrNoCandidates)
		So(r, ShouldBeNil)
	})

	Convey("Given a Resolver with the default candidates", t, func() {
		r, err := New(DefaultCandidates, nil)
		So(err, ShouldBeNil)
		So(r.Candidates(), ShouldResemble, DefaultCandidates)

		Convey("The first candidate present in priority order wins", func() {
			a := alignment("katG", "Iso1", "Erdman", "CDC1551")

			id, seq, err := r.Lookup(a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "CDC1551")
			So(seq, ShouldEqual, "CCC")

			id, _, err = r.Resolve(context.Background(), a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "CDC1551")
		})

		Convey("Candidates with spaces match the whole header of a parsed file", func() {
			a, err := fasta.Parse("geneK", strings.NewReader(">KZN 1435\nMKT\n>Iso1\nMKV\n"))
			So(err, ShouldBeNil)

			id, seq, err := r.Lookup(a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "KZN")
			So(seq, ShouldEqual, "MKT")

			So(r.Present(a), ShouldResemble, []string{"KZN"})
		})

		Convey("Present lists every candidate in the alignment, not just the reference", func() {
			a, err := fasta.Parse("geneK", strings.NewReader(
				">Iso1\nMKV\n>KZN 1435\nMKT\n>H37Rv\nMKT\n>Erdman x\nMKT\n"))
			So(err, ShouldBeNil)

			id, _, err := r.Lookup(a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "H37Rv")
			So(r.Present(a), ShouldResemble, []string{"H37Rv", "Erdman", "KZN"})
			So(r.Present(alignment("p", "Iso1")), ShouldBeEmpty)
		})

		Convey("Without a candidate or a fallback, you get ErrReferenceNotFound", func() {
			a := alignment("katG", "Iso1", "Iso2")

			_, _, err := r.Lookup(a)
			So(errors.Is(err, ErrReferenceNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "katG")

			_, _, err = r.Resolve(context.Background(), a)
			So(errors.Is(err, ErrReferenceNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a Resolver with a fallback", t, func() {
		fb := &staticFallback{id: "Iso2"}
		r, err := New([]string{"H37Rv"}, fb)
		So(err, ShouldBeNil)

		Convey("The fallback isn't used when a candidate is present", func() {
			id, _, err := r.Resolve(context.Background(), alignment("p", "Iso2", "H37Rv"))
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "H37Rv")
			So(fb.calls, ShouldEqual, 0)
		})

		Convey("The fallback's id is used when no candidate is present", func() {
			id, seq, err := r.Resolve(context.Background(), alignment("p", "Iso1", "Iso2"))
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "Iso2")
			So(seq, ShouldEqual, "BBB")
			So(fb.calls, ShouldEqual, 1)
		})

		Convey("A fallback id not in the alignment is ErrReferenceNotFound", func() {
			fb.id = "Iso9"

			_, _, err := r.Resolve(context.Background(), alignment("p", "Iso1", "Iso2"))
			So(errors.Is(err, ErrReferenceNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Iso9")
		})

		Convey("Fallback cancellation is distinct from not finding a reference", func() {
			fb.err = ErrCancelled

			_, _, err := r.Resolve(context.Background(), alignment("p", "Iso1"))
			So(errors.Is(err, ErrCancelled), ShouldBeTrue)
			So(errors.Is(err, ErrReferenceNotFound), ShouldBeFalse)
		})
	})

	Convey("Candidates parses a comma separated list and appends extras without duplicates", t, func() {
		So(Candidates("MyRef, H37Rv,,", DefaultCandidates...), ShouldResemble, []string{
			"MyRef", "H37Rv", "CDC1551", "F11", "H37Ra", "Erdman", "HN878", "KZN 1435",
		})
		So(Candidates(""), ShouldBeEmpty)
	})
}

func TestPrompter(t *testing.T) {
	Convey("Given an alignment without a known reference", t, func() {
		a := alignment("embB", "Iso1", "Ref")
		out := &bytes.Buffer{}

		Convey("A Prompter keeps asking until it gets an id in the alignment", func() {
			p := NewPrompter(strings.NewReader("Nope\nRef\n"), out)

			id, err := p.Reference(context.Background(), a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "Ref")
			So(out.String(), ShouldContainSubstring, "Nope is not in embB")
			So(out.String(), ShouldContainSubstring, "Iso1, Ref")
		})

		Convey("The exit word cancels", func() {
			p := NewPrompter(strings.NewReader("exit\n"), out)

			_, err := p.Reference(context.Background(), a)
			So(err, ShouldEqual, ErrCancelled)
		})

		Convey("End of input cancels", func() {
			p := NewPrompter(strings.NewReader(""), out)

			_, err := p.Reference(context.Background(), a)
			So(err, ShouldEqual, ErrCancelled)

			p = NewPrompter(strings.NewReader("Nope"), out)

			_, err = p.Reference(context.Background(), a)
			So(err, ShouldEqual, ErrCancelled)
		})

		Convey("A final answer without a newline is accepted", func() {
			p := NewPrompter(strings.NewReader("Ref"), out)

			id, err := p.Reference(context.Background(), a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "Ref")
		})

		Convey("A blank answer skips the alignment", func() {
			p := NewPrompter(strings.NewReader("\n"), out)

			_, err := p.Reference(context.Background(), a)
			So(err, ShouldEqual, ErrReferenceNotFound)
		})

		Convey("A whole header title can be typed instead of an id", func() {
			k, err := fasta.Parse("embB", strings.NewReader(">Iso1\nMKV\n>KZN 1435\nMKT\n"))
			So(err, ShouldBeNil)

			r, err := New([]string{"H37Rv"}, NewPrompter(strings.NewReader("KZN 1435\n"), out))
			So(err, ShouldBeNil)

			id, seq, err := r.Resolve(context.Background(), k)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "KZN")
			So(seq, ShouldEqual, "MKT")
		})

		Convey("Cancelling the context stops waiting for an answer", func() {
			pr, pw := io.Pipe()
			defer pw.Close()

			ctx, cancel := context.WithCancel(context.Background())
			p := NewPrompter(pr, out)

			errCh := make(chan error, 1)

			go func() {
				_, err := p.Reference(ctx, a)
				errCh <- err
			}()

			cancel()

			err := <-errCh
			So(errors.Is(err, ErrCancelled), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("Through a Resolver, the prompted id is used", func() {
			r, err := New(DefaultCandidates, NewPrompter(strings.NewReader("Ref\n"), out))
			So(err, ShouldBeNil)

			id, seq, err := r.Resolve(context.Background(), a)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "Ref")
			So(seq, ShouldEqual, "BBB")
		})
	})
}
