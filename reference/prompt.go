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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Gyamps/protein-mutation-sheet/fasta"
)

// ExitWord typed at a Prompter cancels the run.
const ExitWord = "exit"

// Prompter is a Fallback that asks a user to type the reference id, or the
// whole header title of the reference sequence.
//
// Entering a name that isn't in the alignment asks again. A blank line skips
// the alignment, and ExitWord, end of input or the context being cancelled
// (eg. by Ctrl-C) cancels.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan answer
	once  sync.Once
}

type answer struct {
	line string
	err  error
}

// NewPrompter returns a Prompter that reads answers from in and writes
// questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, lines: make(chan answer)}
}

// readLines sends lines of our input to p.lines until the input ends. Reading
// happens in its own goroutine so that a blocked read doesn't stop us noticing
// cancellation.
func (p *Prompter) readLines() {
	defer close(p.lines)

	for {
		line, err := p.in.ReadString('\n')
		p.lines <- answer{line: line, err: err}

		if err != nil {
			return
		}
	}
}

func (p *Prompter) next(ctx context.Context) (answer, error) {
	p.once.Do(func() { go p.readLines() })

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)

		return answer{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case a, ok := <-p.lines:
		if !ok {
			return answer{err: io.EOF}, nil
		}

		return a, nil
	}
}

// Reference implements Fallback.
func (p *Prompter) Reference(ctx context.Context, a *fasta.Alignment) (string, error) {
	fmt.Fprintf(p.out, "\nCould not find a reference sequence in %s.\n", a.Protein)
	fmt.Fprintf(p.out, "Sequence ids: %s\n", strings.Join(a.IDs, ", "))

	for {
		fmt.Fprintf(p.out, "Enter the reference id (blank to skip, %q to quit): ", ExitWord)

		ans, err := p.next(ctx)
		if err != nil {
			return "", err
		}

		name := strings.TrimSpace(ans.line)

		switch {
		case name == ExitWord:
			return "", ErrCancelled
		case name == "" && ans.err != nil:
			return "", ErrCancelled
		case name == "":
			return "", ErrReferenceNotFound
		}

		if id, ok := a.Find(name); ok {
			return id, nil
		}

		fmt.Fprintf(p.out, "%s is not in %s.\n", name, a.Protein)

		if ans.err != nil {
			return "", ErrCancelled
		}
	}
}
