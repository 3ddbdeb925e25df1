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

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gyamps/protein-mutation-sheet/fasta"
)

// DefaultExtension is the extension of alignment files if none is given.
const DefaultExtension = ".mfa"

// File is an alignment file and the name of the protein it holds.
type File struct {
	Protein string
	Path    string
}

// Discover returns a File for every regular file in dir with the given
// extension (DefaultExtension if blank), in name order. The protein name is
// the basename without the extension.
//
// Returns an error wrapping fasta.ErrInputNotFound if dir doesn't exist.
func Discover(dir, ext string) ([]File, error) {
	ext = extension(ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", fasta.ErrInputNotFound, dir)
		}

		return nil, err
	}

	var files []File

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) || name == ext {
			continue
		}

		files = append(files, File{
			Protein: fasta.ProteinName(name, ext),
			Path:    filepath.Join(dir, name),
		})
	}

	return files, nil
}

// Files returns a File for each of the given proteins in dir, in the given
// order, without checking they exist. Duplicate proteins are only returned
// once.
func Files(dir, ext string, proteins []string) []File {
	ext = extension(ext)
	files := make([]File, 0, len(proteins))
	done := make(map[string]bool, len(proteins))

	for _, protein := range proteins {
		protein = strings.TrimSuffix(protein, ext)
		if protein == "" || done[protein] {
			continue
		}

		done[protein] = true

		files = append(files, File{
			Protein: protein,
			Path:    filepath.Join(dir, protein+ext),
		})
	}

	return files
}

func extension(ext string) string {
	if ext == "" {
		return DefaultExtension
	}

	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}

	return ext
}
