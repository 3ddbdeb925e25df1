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

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gyamps/protein-mutation-sheet/config"
	"github.com/Gyamps/protein-mutation-sheet/ledger"
	"github.com/Gyamps/protein-mutation-sheet/metrics"
	"github.com/Gyamps/protein-mutation-sheet/mutdb"
	"github.com/Gyamps/protein-mutation-sheet/output"
	"github.com/Gyamps/protein-mutation-sheet/pipeline"
	"github.com/Gyamps/protein-mutation-sheet/reference"
	"github.com/Gyamps/protein-mutation-sheet/sheets"
	"github.com/Gyamps/protein-mutation-sheet/table"
	"github.com/google/uuid"
	"github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	ErrNoSheetConfig = Error("--sheet needs " + config.EnvVarCreds + " and " + config.EnvVarSheet)
	ErrNoSQLConfig   = Error("--sql needs the " + config.EnvVarUser + " etc. environment variables")
	ErrNoFiles       = Error("no alignment files to compare")
	ErrBadJobs       = Error("--jobs must be at least 1")

	defaultOutput = "mutations.xlsx"
)

// compareOptions are the settings of a compare run, from the config overridden
// by command line flags.
type compareOptions struct {
	dir         string
	ext         string
	references  []string
	output      string
	csvPath     string
	sheetName   string
	toSQL       bool
	metricsFile string
	interactive bool
	jobs        int
	strict      bool
}

// options for this cmd.
var (
	compareDir         string
	compareExt         string
	compareReference   string
	compareOutput      string
	compareCSV         string
	compareSheet       string
	compareSQL         bool
	compareMetricsFile string
	compareInteractive bool
	compareJobs        int
	compareStrict      bool
)

// compareCmd represents the compare command.
var compareCmd = &cobra.Command{
	Use:   "compare [protein...]",
	Short: "Tabulate isolate mutations against a reference.",
	Long: `Tabulate isolate mutations against a reference.

Every alignment file in the -d directory with the -e extension (default .mfa)
is read, in name order. If you supply protein names as arguments, only those
files are read, in the order given. The protein name is the file's basename
without the extension.

In each file, the first of the reference ids that is present is used as the
reference sequence. The reference ids are any you give with -r (comma
separated), followed by those in PROTEIN_MUTATION_SHEET_REFERENCES, or by
default: H37Rv, CDC1551, F11, H37Ra, Erdman, HN878, KZN 1435. Reference
sequences never get a row of their own.

Files without any of the references are skipped with a warning, unless you
use --interactive, in which case you will be asked to type the id or whole
header of a sequence in the file to use instead (type exit, or press Ctrl-C,
to cancel the whole run).
Files that can't be read or compared are also skipped, unless you use
--strict, in which case the run fails.

The table is written to -o (default mutations.xlsx), as a spreadsheet, or as
tab separated values if the name ends .tsv, or comma separated otherwise.
--csv writes an extra comma separated copy. Nothing is written if the run
fails or is cancelled.

You can also upload the table to a tab of a Google sheet with --sheet (needs
PROTEIN_MUTATION_SHEET_CREDENTIALS_FILE and _SPREADSHEET_ID), store it in a
MySQL database with --sql (needs PROTEIN_MUTATION_SHEET_SQL_USER, _PASS,
_HOST, _PORT and _DB), and write run statistics for Prometheus' node exporter
with --metrics_file.

--jobs reads and compares that many files at once; the table is the same
regardless. Defaults come from PROTEIN_MUTATION_SHEET_JOBS, _STRICT and
_EXTENSION.
`,
	Run: func(cmd *cobra.Command, proteins []string) {
		c, err := config.FromEnv()
		if err != nil {
			die(err)
		}

		opts, err := compareOptionsFrom(cmd, c)
		if err != nil {
			die(err)
		}

		if opts.interactive && !stdinIsTerminal() {
			warnf("stdin is not a terminal; files without a reference will be skipped")

			opts.interactive = false
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err = compareAlignments(ctx, c, opts, proteins, os.Stdin, os.Stderr); err != nil {
			stop()
			die(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVarP(&compareDir, "dir", "d", ".",
		"directory containing alignment files")
	compareCmd.Flags().StringVarP(&compareExt, "extension", "e", pipeline.DefaultExtension,
		"extension of alignment files")
	compareCmd.Flags().StringVarP(&compareReference, "reference", "r", "",
		"comma separated reference ids to try before the defaults")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", defaultOutput,
		"path to write the table to (.xlsx, .tsv or .csv)")
	compareCmd.Flags().StringVar(&compareCSV, "csv", "",
		"path to also write the table to as comma separated values")
	compareCmd.Flags().StringVar(&compareSheet, "sheet", "",
		"name of a tab in the configured Google sheet to upload the table to")
	compareCmd.Flags().BoolVar(&compareSQL, "sql", false,
		"store the table in the configured MySQL database")
	compareCmd.Flags().StringVar(&compareMetricsFile, "metrics_file", "",
		"path to write Prometheus metrics about the run to")
	compareCmd.Flags().BoolVarP(&compareInteractive, "interactive", "i", false,
		"ask for a reference id when a file has none of the references")
	compareCmd.Flags().IntVarP(&compareJobs, "jobs", "j", 1,
		"number of files to read and compare at once")
	compareCmd.Flags().BoolVar(&compareStrict, "strict", false,
		"fail the run if any file can't be resolved, read or compared")
}

// compareOptionsFrom combines the config with our flags, where flags the user
// set take precedence.
func compareOptionsFrom(cmd *cobra.Command, c *config.Config) (compareOptions, error) {
	opts := compareOptions{
		dir:         compareDir,
		ext:         compareExt,
		references:  reference.Candidates(compareReference, c.References...),
		output:      compareOutput,
		csvPath:     compareCSV,
		sheetName:   compareSheet,
		toSQL:       compareSQL,
		metricsFile: compareMetricsFile,
		interactive: compareInteractive,
		jobs:        compareJobs,
		strict:      compareStrict,
	}

	flags := cmd.Flags()

	if !flags.Changed("extension") && c.Extension != "" {
		opts.ext = c.Extension
	}

	if !flags.Changed("jobs") {
		opts.jobs = c.Jobs
	}

	if !flags.Changed("strict") {
		opts.strict = c.Strict
	}

	if opts.jobs < 1 {
		return opts, ErrBadJobs
	}

	if opts.sheetName != "" && !c.HasSheet() {
		return opts, ErrNoSheetConfig
	}

	if opts.toSQL && !c.HasSQL() {
		return opts, ErrNoSQLConfig
	}

	return opts, nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// alignmentFiles returns the files for the given proteins, or every alignment
// file in the directory if none are given.
func alignmentFiles(dir, ext string, proteins []string) ([]pipeline.File, error) {
	var (
		files []pipeline.File
		err   error
	)

	if len(proteins) > 0 {
		files = pipeline.Files(dir, ext, proteins)
	} else {
		files, err = pipeline.Discover(dir, ext)
	}

	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	return files, nil
}

// compareAlignments runs the pipeline over the alignment files and writes the
// resulting table to every requested destination. When interactive, prompts
// are written to out and answers read from in.
func compareAlignments(ctx context.Context, c *config.Config, opts compareOptions,
	proteins []string, in io.Reader, out io.Writer) error {
	var fallback reference.Fallback
	if opts.interactive {
		fallback = reference.NewPrompter(in, out)
	}

	resolver, err := reference.New(opts.references, fallback)
	if err != nil {
		return err
	}

	files, err := alignmentFiles(opts.dir, opts.ext, proteins)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	start := time.Now()

	infof("comparing %d alignment files (run %s)", len(files), runID)

	p := pipeline.New(resolver, pipeline.Options{
		Jobs:   opts.jobs,
		Strict: opts.strict,
		Logger: appLogger,
		RunID:  runID,
	})

	result, err := p.Run(ctx, files)
	if err != nil {
		return err
	}

	grid := table.Assemble(result.Ledger)

	if err = writeTable(c, opts, runID, grid, result.Ledger); err != nil {
		return err
	}

	if opts.metricsFile != "" {
		m := metrics.New(runID)
		m.Observe(result.Stats, grid.Mutated(), time.Since(start))

		if err = m.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}

	logSummary(appLogger, result, grid)

	return nil
}

// writeTable writes the grid to the output file and any optional
// destinations.
func writeTable(c *config.Config, opts compareOptions, runID string, grid *table.Grid, l *ledger.Ledger) error {
	if err := output.WriteFile(grid, l, opts.output); err != nil {
		return err
	}

	infof("wrote table to %s", opts.output)

	if opts.csvPath != "" {
		if err := output.WriteDelimited(grid, opts.csvPath, ','); err != nil {
			return err
		}

		infof("wrote table to %s", opts.csvPath)
	}

	if opts.sheetName != "" {
		if err := uploadTable(c, opts.sheetName, grid); err != nil {
			return err
		}
	}

	if opts.toSQL {
		return storeTable(c, runID, grid)
	}

	return nil
}

func uploadTable(c *config.Config, sheetName string, grid *table.Grid) error {
	s, err := sheets.NewFromConfig(c)
	if err != nil {
		return err
	}

	if err = s.Write(c.SheetID, sheetName, grid.Values()); err != nil {
		return err
	}

	sheet, err := s.Read(c.SheetID, sheetName)
	if err != nil {
		return err
	}

	infof("uploaded %d rows to sheet %s", len(sheet.Rows), sheetName)

	return nil
}

func storeTable(c *config.Config, runID string, grid *table.Grid) error {
	db, err := mutdb.New(mutdb.MySQLConfigFromConfig(c))
	if err != nil {
		return err
	}

	defer db.Close()

	if err = db.CreateTable(); err != nil {
		return err
	}

	if err = db.Store(runID, grid); err != nil {
		return err
	}

	infof("stored table in database %s as run %s", c.DBName, runID)

	return nil
}

func logSummary(logger log15.Logger, result *pipeline.Result, grid *table.Grid) {
	logger.Info("run complete",
		"files", result.Stats.Files,
		"recorded", result.Stats.Recorded,
		"unresolved", result.Stats.Unresolved,
		"failed", result.Stats.Failed,
		"isolates", result.Stats.Isolates,
		"mutated", grid.Mutated())

	for _, fe := range result.Unresolved {
		warnf("no reference for %s", filepath.Base(fe.File.Path))
	}

	if len(result.Failed) > 0 {
		names := make([]string, len(result.Failed))
		for i, fe := range result.Failed {
			names[i] = filepath.Base(fe.File.Path)
		}

		warnf("skipped unreadable files: %s", strings.Join(names, ", "))
	}
}
