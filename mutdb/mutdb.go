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

// package mutdb stores mutation tables in a MySQL database, one row per
// isolate and protein.

package mutdb

import (
	"database/sql"
	"net"
	"time"

	"github.com/Gyamps/protein-mutation-sheet/config"
	"github.com/Gyamps/protein-mutation-sheet/table"
	"github.com/go-sql-driver/mysql"
)

const (
	sqlDriverName   = "mysql"
	sqlNetwork      = "tcp"
	connMaxLifetime = time.Minute * 3
	maxOpenConns    = 10
	maxIdleConns    = 10
)

// DB is a connection to a database holding mutation tables.
type DB struct {
	pool *sql.DB
}

// MySQLConfigFromConfig returns a mysql.Config using the SQL details of the
// given config.
func MySQLConfigFromConfig(c *config.Config) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = sqlNetwork
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true

	return mc
}

// New returns a new DB connection using mysql.Config that you can get from
// MySQLConfigFromConfig(config.FromEnv()).
func New(c *mysql.Config) (*DB, error) {
	pool, err := sql.Open(sqlDriverName, c.FormatDSN())
	if err != nil {
		return nil, err
	}

	pool.SetConnMaxLifetime(connMaxLifetime)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)

	return &DB{pool: pool}, pool.Ping()
}

const createTable = `
CREATE TABLE IF NOT EXISTS protein_mutations (
	run_id CHAR(36) NOT NULL,
	protein VARCHAR(255) NOT NULL,
	isolate_id VARCHAR(255) NOT NULL,
	mutation TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (run_id, protein, isolate_id)
)
`

// CreateTable creates the protein_mutations table if it doesn't already
// exist.
func (d *DB) CreateTable() error {
	_, err := d.pool.Exec(createTable)

	return err
}

const insertMutation = `
INSERT INTO protein_mutations (run_id, protein, isolate_id, mutation)
VALUES (?, ?, ?, ?)
`

// Store inserts every cell of the grid under the given run id in a single
// transaction, so either all of the grid is stored or none of it.
func (d *DB) Store(runID string, g *table.Grid) error {
	tx, err := d.pool.Begin()
	if err != nil {
		return err
	}

	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(insertMutation)
	if err != nil {
		return err
	}

	defer stmt.Close()

	for _, r := range Rows(runID, g) {
		if _, err = stmt.Exec(r.RunID, r.Protein, r.IsolateID, r.Mutation); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Row is one cell of a stored mutation table.
type Row struct {
	RunID     string
	Protein   string
	IsolateID string
	Mutation  string
}

// Rows converts a grid to long format, protein by protein in column order.
// Repeated columns are only included once.
func Rows(runID string, g *table.Grid) []Row {
	var rows []Row

	seen := make(map[string]bool, len(g.Header))

	for col := 1; col < len(g.Header); col++ {
		protein := g.Header[col]
		if seen[protein] {
			continue
		}

		seen[protein] = true

		for _, row := range g.Rows {
			rows = append(rows, Row{
				RunID:     runID,
				Protein:   protein,
				IsolateID: row[0],
				Mutation:  row[col],
			})
		}
	}

	return rows
}

const getRun = `
SELECT run_id, protein, isolate_id, mutation
FROM protein_mutations
WHERE run_id = ?
ORDER BY protein, isolate_id
`

// Run returns the rows stored for the given run id, sorted by protein and
// isolate.
func (d *DB) Run(runID string) ([]Row, error) {
	rows, err := d.pool.Query(getRun, runID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var result []Row

	for rows.Next() {
		var r Row

		if err := rows.Scan(&r.RunID, &r.Protein, &r.IsolateID, &r.Mutation); err != nil {
			return nil, err
		}

		result = append(result, r)
	}

	if err := rows.Close(); err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteRun removes everything stored for the given run id.
func (d *DB) DeleteRun(runID string) error {
	_, err := d.pool.Exec("DELETE FROM protein_mutations WHERE run_id = ?", runID)

	return err
}

// Close closes the connection to the database.
func (d *DB) Close() error {
	return d.pool.Close()
}
