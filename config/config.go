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

package config

import (
	"fmt"
	"os"

	"github.com/Gyamps/protein-mutation-sheet/reference"
	"github.com/joho/godotenv"
)

const (
	EnvVarReferences = "PROTEIN_MUTATION_SHEET_REFERENCES"
	EnvVarExtension  = "PROTEIN_MUTATION_SHEET_EXTENSION"
	EnvVarJobs       = "PROTEIN_MUTATION_SHEET_JOBS"
	EnvVarStrict     = "PROTEIN_MUTATION_SHEET_STRICT"
	EnvVarCreds      = "PROTEIN_MUTATION_SHEET_CREDENTIALS_FILE"
	EnvVarSheet      = "PROTEIN_MUTATION_SHEET_SPREADSHEET_ID"
	EnvVarUser       = "PROTEIN_MUTATION_SHEET_SQL_USER"
	EnvVarPass       = "PROTEIN_MUTATION_SHEET_SQL_PASS"
	EnvVarHost       = "PROTEIN_MUTATION_SHEET_SQL_HOST"
	EnvVarPort       = "PROTEIN_MUTATION_SHEET_SQL_PORT"
	EnvVarDBName     = "PROTEIN_MUTATION_SHEET_SQL_DB"

	defaultJobs = 1
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrIncompleteSQL    = Error("some but not all SQL environment variables set")
	ErrIncompleteSheets = Error("google sheets needs both a credentials file and a spreadsheet id")
	ErrBadJobs          = Error("jobs must be a positive integer")
	ErrBadStrict        = Error("strict must be a boolean")
)

type Config struct {
	References      []string
	Extension       string
	Jobs            int
	Strict          bool
	CredentialsPath string
	SheetID         string
	User            string
	Password        string
	Host            string
	Port            string
	DBName          string
}

// FromEnv returns a new Config with properies populated from environment
// variables PROTEIN_MUTATION_SHEET_*, where * is amongst: REFERENCES,
// EXTENSION, JOBS, STRICT, CREDENTIALS_FILE, SPREADSHEET_ID, SQL_USER, SQL_PASS,
// SQL_HOST, SQL_PORT and SQL_DB.
//
// All are optional. REFERENCES is a comma separated list of reference ids that
// defaults to reference.DefaultCandidates. The Google sheet and SQL settings
// must either all be set or none of them, per group.
//
// If these environment variables are defined in a file called .env (and not
// previously set in an environment variable), they will be automatically
// loaded.
//
// Optionally supply a directory to look for the .env file in.
func FromEnv(dir ...string) (*Config, error) {
	var parentDir string
	if len(dir) == 1 {
		parentDir = dir[0] + string(os.PathSeparator)
	}

	godotenv.Load(parentDir + ".env") //nolint:errcheck

	c := &Config{
		References:      reference.Candidates(os.Getenv(EnvVarReferences)),
		Extension:       os.Getenv(EnvVarExtension),
		CredentialsPath: os.Getenv(EnvVarCreds),
		SheetID:         os.Getenv(EnvVarSheet),
		User:            os.Getenv(EnvVarUser),
		Password:        os.Getenv(EnvVarPass),
		Host:            os.Getenv(EnvVarHost),
		Port:            os.Getenv(EnvVarPort),
		DBName:          os.Getenv(EnvVarDBName),
	}

	if len(c.References) == 0 {
		c.References = append([]string(nil), reference.DefaultCandidates...)
	}

	if err := c.setJobs(os.Getenv(EnvVarJobs)); err != nil {
		return nil, err
	}

	if err := c.setStrict(os.Getenv(EnvVarStrict)); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) setJobs(s string) error {
	if s == "" {
		c.Jobs = defaultJobs

		return nil
	}

	conv := &converter{}
	c.Jobs = conv.ToInt(s)

	if conv.Err != nil || c.Jobs < 1 {
		return fmt.Errorf("%w: %s=%s", ErrBadJobs, EnvVarJobs, s)
	}

	return nil
}

func (c *Config) setStrict(s string) error {
	conv := &converter{}
	c.Strict = conv.ToBool(s)

	if conv.Err != nil {
		return fmt.Errorf("%w: %s=%s", ErrBadStrict, EnvVarStrict, s)
	}

	return nil
}

func (c *Config) validate() error {
	if (c.CredentialsPath == "") != (c.SheetID == "") {
		return ErrIncompleteSheets
	}

	sql := []string{c.User, c.Password, c.Host, c.Port, c.DBName}
	set := 0

	for _, v := range sql {
		if v != "" {
			set++
		}
	}

	if set != 0 && set != len(sql) {
		return ErrIncompleteSQL
	}

	if set != 0 {
		conv := &converter{}
		conv.ToInt(c.Port)

		if conv.Err != nil {
			return fmt.Errorf("%w: bad port %s", ErrIncompleteSQL, c.Port)
		}
	}

	return nil
}

// HasSheet returns true if Google sheet details were configured.
func (c *Config) HasSheet() bool {
	return c.SheetID != ""
}

// HasSQL returns true if MySQL details were configured.
func (c *Config) HasSQL() bool {
	return c.DBName != ""
}
