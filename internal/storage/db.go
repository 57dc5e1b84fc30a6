package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"bankinfo/internal"
)

// MetaLastRun holds the trace id of the most recently finished scrape run.
const MetaLastRun = "scrape.last_run"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL UNIQUE,
  source TEXT NOT NULL,
  startedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  finishedAt TEXT,
  countsJson TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS branch_addresses (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  number TEXT NOT NULL,
  institution TEXT NOT NULL,
  branch TEXT NOT NULL,
  url TEXT NOT NULL,
  branchName TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  line TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  error TEXT,
  scrapedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(runId, number),
  FOREIGN KEY(runId) REFERENCES runs(traceId)
);
CREATE INDEX IF NOT EXISTS idx_branch_addresses_number ON branch_addresses(number);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(traceID, source string) error {
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, source) VALUES (?, ?)`, traceID, source)
	return err
}

func (d *DB) FinishRun(traceID string, counts map[string]int) error {
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`UPDATE runs SET finishedAt = CURRENT_TIMESTAMP, countsJson = ? WHERE traceId = ?`, string(countsJSON), traceID)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, source, startedAt, finishedAt, countsJson
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var countsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Source, &row.StartedAt, &row.FinishedAt, &countsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) LatestRunID() (*string, error) {
	var traceID string
	err := d.conn.QueryRow(`SELECT traceId FROM runs ORDER BY id DESC LIMIT 1`).Scan(&traceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &traceID, nil
}

// ResolveRunID maps "latest" (or "") to the last finished run, falling back
// to the newest run started.
func (d *DB) ResolveRunID(runID string) (string, error) {
	if runID != "" && runID != "latest" {
		return runID, nil
	}
	last, err := d.GetMetadata(MetaLastRun)
	if err != nil {
		return "", err
	}
	if last != nil && *last != "" {
		return *last, nil
	}
	latest, err := d.LatestRunID()
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", errors.New("no scrape runs recorded")
	}
	return *latest, nil
}

func (d *DB) InsertAddress(row internal.AddressRow) error {
	_, err := d.conn.Exec(`
INSERT INTO branch_addresses (runId, number, institution, branch, url, branchName, address, line, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(runId, number) DO UPDATE SET
  url=excluded.url,
  branchName=excluded.branchName,
  address=excluded.address,
  line=excluded.line,
  status=excluded.status,
  error=excluded.error,
  scrapedAt=CURRENT_TIMESTAMP
`, row.RunID, row.Number, row.Institution, row.Branch, row.URL, row.BranchName, row.Address, row.Line, string(row.Status), row.Error)
	return err
}

func (d *DB) ListAddresses(runID string) ([]internal.AddressRow, error) {
	rows, err := d.conn.Query(`
SELECT id, runId, number, institution, branch, url, branchName, address, line, status, error, scrapedAt
FROM branch_addresses WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.AddressRow
	for rows.Next() {
		var row internal.AddressRow
		var status string
		if err := rows.Scan(
			&row.ID, &row.RunID, &row.Number, &row.Institution, &row.Branch, &row.URL,
			&row.BranchName, &row.Address, &row.Line, &status, &row.Error, &row.ScrapedAt,
		); err != nil {
			return nil, err
		}
		row.Status = internal.AddressStatus(status)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) MustAddresses(runID string) ([]internal.AddressRow, error) {
	rows, err := d.ListAddresses(runID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no addresses for run=%s", runID)
	}
	return rows, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
