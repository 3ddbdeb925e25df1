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

// package pipeline compares the isolates in a series of alignment files to
// their reference and accumulates the results in a ledger.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Gyamps/protein-mutation-sheet/fasta"
	"github.com/Gyamps/protein-mutation-sheet/ledger"
	"github.com/Gyamps/protein-mutation-sheet/mutation"
	"github.com/Gyamps/protein-mutation-sheet/reference"
	"github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"
)

// Resolver finds the reference sequence of an alignment.
type Resolver interface {
	// Lookup tries the reference candidates without doing any I/O.
	Lookup(a *fasta.Alignment) (string, string, error)

	// Resolve is like Lookup, but may fall back to asking someone.
	Resolve(ctx context.Context, a *fasta.Alignment) (string, string, error)

	// Candidates returns the ids of the possible references.
	Candidates() []string

	// Present returns the ids of the sequences in the alignment that any
	// candidate names.
	Present(a *fasta.Alignment) []string
}

// Options are options for a Pipeline.
type Options struct {
	// Jobs is the number of alignment files to read and compare at once.
	// Values below 2 process each file fully before starting the next.
	Jobs int

	// Strict makes any per-file problem, including an unresolved reference,
	// fail the run. Otherwise problem files are logged and skipped.
	Strict bool

	// Logger receives per-file progress. Defaults to discarding.
	Logger log15.Logger

	// RunID is added to log context if set.
	RunID string
}

// FileError is a problem with one alignment file that caused it to be
// skipped.
type FileError struct {
	File File
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.File.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Stats summarises a run.
type Stats struct {
	Files      int
	Recorded   int
	Unresolved int
	Failed     int
	Isolates   int
	Records    int
}

// Result holds the outcome of a Run.
type Result struct {
	Ledger     *ledger.Ledger
	Unresolved []FileError
	Failed     []FileError
	Stats      Stats
}

// Pipeline runs alignment files through reference resolution and comparison
// and in to a ledger.
type Pipeline struct {
	resolver Resolver
	opts     Options
	log      log15.Logger
}

// New returns a Pipeline that uses the given Resolver.
func New(resolver Resolver, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	if opts.RunID != "" {
		logger = logger.New("run", opts.RunID)
	}

	return &Pipeline{resolver: resolver, opts: opts, log: logger}
}

// prepared is a file read and, if a candidate reference was present,
// compared. If alignment is set, the reference still needs to be resolved.
type prepared struct {
	file      File
	alignment *fasta.Alignment
	refID     string
	ignore    []string
	records   []ledger.Record
	err       error
}

// Run processes the given files in order, returning a Result with a Ledger
// that excludes the resolver's candidates, and the sequences they name by
// header title.
//
// Per-file problems are collected in the Result and the file skipped, unless
// Options.Strict is set, in which case the first problem is returned. Either
// way a file is either fully recorded or not at all. reference.ErrCancelled
// and context cancellation always end the run with an error and no Result.
func (p *Pipeline) Run(ctx context.Context, files []File) (*Result, error) {
	result := &Result{Ledger: ledger.New(p.resolver.Candidates()...)}

	var err error
	if p.opts.Jobs > 1 {
		err = p.runConcurrently(ctx, files, result)
	} else {
		err = p.runSequentially(ctx, files, result)
	}

	if err != nil {
		return nil, err
	}

	result.Stats.Files = len(files)
	result.Stats.Unresolved = len(result.Unresolved)
	result.Stats.Failed = len(result.Failed)
	result.Stats.Isolates = result.Ledger.Index().Len()

	return result, nil
}

func (p *Pipeline) runSequentially(ctx context.Context, files []File, result *Result) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.commit(ctx, p.prepare(f), result); err != nil {
			return err
		}
	}

	return nil
}

// runConcurrently prepares files in parallel, then commits them one at a time
// in the given order, so row numbers match a sequential run.
func (p *Pipeline) runConcurrently(ctx context.Context, files []File, result *Result) error {
	prepped := make([]*prepared, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			prepped[i] = p.prepare(f)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, prep := range prepped {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.commit(ctx, prep, result); err != nil {
			return err
		}
	}

	return nil
}

// prepare reads the file and compares its isolates if one of the candidate
// references is present.
func (p *Pipeline) prepare(f File) *prepared {
	prep := &prepared{file: f}

	a, err := fasta.Read(f.Path)
	if err != nil {
		prep.err = err

		return prep
	}

	a.Protein = f.Protein
	prep.ignore = p.resolver.Present(a)

	refID, refSeq, err := p.resolver.Lookup(a)
	if err != nil {
		prep.alignment = a

		return prep
	}

	prep.refID = refID
	prep.records, prep.err = compare(a, refID, refSeq, prep.ignore)

	return prep
}

// compare encodes every sequence in the alignment other than the reference
// and the ignored ids.
func compare(a *fasta.Alignment, refID, refSeq string, ignore []string) ([]ledger.Record, error) {
	records := make([]ledger.Record, 0, a.Len())

	for _, id := range a.IDs {
		if id == refID || slices.Contains(ignore, id) {
			continue
		}

		seq, _ := a.Sequence(id)

		enc, err := mutation.Compare(seq, refSeq)
		if err != nil {
			return nil, fmt.Errorf("isolate %s vs reference %s in %s: %w", id, refID, a.Protein, err)
		}

		records = append(records, ledger.Record{IsolateID: id, Mutation: enc})
	}

	return records, nil
}

// commit resolves any outstanding reference and records the prepared file in
// the ledger.
func (p *Pipeline) commit(ctx context.Context, prep *prepared, result *Result) error {
	logger := p.log.New("protein", prep.file.Protein, "file", prep.file.Path)

	if prep.err != nil {
		return p.fail(logger, prep.file, prep.err, result)
	}

	if prep.alignment != nil {
		if err := p.resolveLate(ctx, prep); err != nil {
			return p.unresolved(logger, prep.file, err, result)
		}
	}

	n, err := result.Ledger.RecordProtein(prep.file.Protein, prep.records, append(prep.ignore, prep.refID)...)
	if err != nil {
		return p.fail(logger, prep.file, err, result)
	}

	result.Stats.Recorded++
	result.Stats.Records += n

	logger.Debug("compared isolates to reference", "reference", prep.refID, "isolates", n)

	return nil
}

func (p *Pipeline) resolveLate(ctx context.Context, prep *prepared) error {
	refID, refSeq, err := p.resolver.Resolve(ctx, prep.alignment)
	if err != nil {
		return err
	}

	records, err := compare(prep.alignment, refID, refSeq, prep.ignore)
	if err != nil {
		return err
	}

	prep.refID = refID
	prep.records = records
	prep.alignment = nil

	return nil
}

func (p *Pipeline) unresolved(logger log15.Logger, f File, err error, result *Result) error {
	if !errors.Is(err, reference.ErrReferenceNotFound) {
		return p.fail(logger, f, err, result)
	}

	if p.opts.Strict {
		return FileError{File: f, Err: err}
	}

	logger.Warn("skipping file without a reference", "err", err)

	result.Unresolved = append(result.Unresolved, FileError{File: f, Err: err})

	return nil
}

func (p *Pipeline) fail(logger log15.Logger, f File, err error, result *Result) error {
	if errors.Is(err, reference.ErrCancelled) {
		return err
	}

	if p.opts.Strict {
		return FileError{File: f, Err: err}
	}

	logger.Error("skipping file", "err", err)

	result.Failed = append(result.Failed, FileError{File: f, Err: err})

	return nil
}
