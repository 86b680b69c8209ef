// Package history keeps a sqlite log of every prompt sent to the model and
// what came back, so bad games can be replayed and prompts compared.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/lmorris/morrisbot/explainer"
)

type Repository struct {
	db *sql.DB

	insertExchange *sql.Stmt
	insertRules    *sql.Stmt
}

// Row is a stored exchange.
type Row struct {
	ID        int64
	Timestamp time.Time
	Player    string
	Model     string
	RulesHash string
	Prompt    string
	Response  string
	Error     string
	Latency   time.Duration
}

// Open opens or creates the database at path. ":memory:" works for tests.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; this also keeps an in-memory database alive
	// on a single connection.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{createExchangeTable, createRulesTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	repo := &Repository{db: db}
	repo.insertExchange, err = db.Prepare(insertExchangeStmt)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("prepare: %w", err)
	}
	repo.insertRules, err = db.Prepare(insertRulesStmt)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return repo, nil
}

// RulesHash fingerprints a system instruction. The full text is stored once
// per hash in the rules table.
func RulesHash(rules string) string {
	return strconv.FormatUint(xxhash.Sum64String(rules), 16)
}

// Record stores one exchange. It satisfies explainer.Recorder.
func (r *Repository) Record(ctx context.Context, ex *explainer.Exchange) error {
	hash := RulesHash(ex.System)
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if _, err := txn.StmtContext(ctx, r.insertRules).ExecContext(ctx, hash, ex.System); err != nil {
		return err
	}
	errText := ""
	if ex.Err != nil {
		errText = ex.Err.Error()
	}
	_, err = txn.StmtContext(ctx, r.insertExchange).ExecContext(ctx,
		time.Now().UTC(), string(ex.Player), ex.Model, hash,
		ex.Prompt, ex.Response, errText, ex.Latency.Milliseconds(),
	)
	if err != nil {
		return err
	}
	return txn.Commit()
}

// Recent returns up to n exchanges, newest first.
func (r *Repository) Recent(ctx context.Context, n int) ([]*Row, error) {
	rows, err := r.db.QueryContext(ctx, recentExchangesStmt, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Row
	for rows.Next() {
		row := &Row{}
		var latencyMS int64
		if err := rows.Scan(&row.ID, &row.Timestamp, &row.Player, &row.Model,
			&row.RulesHash, &row.Prompt, &row.Response, &row.Error, &latencyMS); err != nil {
			return nil, err
		}
		row.Latency = time.Duration(latencyMS) * time.Millisecond
		out = append(out, row)
	}
	return out, rows.Err()
}

// Rules returns the system instruction stored under hash.
func (r *Repository) Rules(ctx context.Context, hash string) (string, error) {
	var text string
	err := r.db.QueryRowContext(ctx, `SELECT text FROM rules WHERE hash = ?`, hash).Scan(&text)
	return text, err
}

func (r *Repository) Close() {
	r.db.Close()
}
