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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Gyamps/protein-mutation-sheet/config"
	"github.com/Gyamps/protein-mutation-sheet/fasta"
	"github.com/Gyamps/protein-mutation-sheet/pipeline"
	"github.com/Gyamps/protein-mutation-sheet/reference"
	"github.com/spf13/cobra"
)

const noReference = "-"

// options for this cmd.
var (
	infoDir       string
	infoExt       string
	infoReference string
)

// infoCmd represents the info command.
var infoCmd = &cobra.Command{
	Use:   "info [protein...]",
	Short: "Show the reference each alignment file would use.",
	Long: `Show the reference each alignment file would use.

For each alignment file that "compare" would read given the same -d, -e and
-r options and protein arguments, prints the protein name, the number of
sequences in the file, and the id of the reference sequence isolates would be
compared to, or - if the file has none of the references.

Nothing is compared and no table is written, so you can use this to check
your files before a run, and decide if you need --interactive.
`,
	Run: func(cmd *cobra.Command, proteins []string) {
		c, err := config.FromEnv()
		if err != nil {
			die(err)
		}

		ext := infoExt
		if !cmd.Flags().Changed("extension") && c.Extension != "" {
			ext = c.Extension
		}

		if err = alignmentInfo(os.Stdout, infoDir, ext,
			reference.Candidates(infoReference, c.References...), proteins); err != nil {
			die(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoDir, "dir", "d", ".",
		"directory containing alignment files")
	infoCmd.Flags().StringVarP(&infoExt, "extension", "e", pipeline.DefaultExtension,
		"extension of alignment files")
	infoCmd.Flags().StringVarP(&infoReference, "reference", "r", "",
		"comma separated reference ids to try before the defaults")
}

// alignmentInfo writes a tab separated line per alignment file to w, giving
// the protein, number of sequences and the reference id that was found.
// Unreadable files are reported with a warning and skipped.
func alignmentInfo(w io.Writer, dir, ext string, candidates []string, proteins []string) error {
	resolver, err := reference.New(candidates, nil)
	if err != nil {
		return err
	}

	files, err := alignmentFiles(dir, ext, proteins)
	if err != nil {
		return err
	}

	for _, f := range files {
		a, err := fasta.Read(f.Path)
		if err != nil {
			warnf("%s", err)

			continue
		}

		refID, _, err := resolver.Lookup(a)
		if errors.Is(err, reference.ErrReferenceNotFound) {
			refID = noReference
		} else if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%d\t%s\n", f.Protein, a.Len(), refID)
	}

	return nil
}
