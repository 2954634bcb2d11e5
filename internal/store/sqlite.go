package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stellarlinkco/bizbench/internal/pipeline"
	"github.com/stellarlinkco/bizbench/internal/runner"
)

const defaultListLimit = 50

// SQLiteStore persists benchmark runs and unit results in SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertRunStmt   *sql.Stmt
	insertUnitStmt  *sql.Stmt
	getRunStmt      *sql.Stmt
	listRunsStmt    *sql.Stmt
	unitsByRunStmt  *sql.Stmt
	leaderboardStmt *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS benchmark_runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			completed_at INTEGER NOT NULL,
			total_units INTEGER NOT NULL,
			summary_json TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS unit_results (
			run_id TEXT NOT NULL,
			model TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			scenario_name TEXT,
			category TEXT NOT NULL,
			run_index INTEGER NOT NULL,
			status TEXT NOT NULL,
			failure_detail TEXT,
			overall_score REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			detail BLOB NOT NULL,
			UNIQUE(run_id, model, scenario_id, run_index),
			FOREIGN KEY(run_id) REFERENCES benchmark_runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_unit_results_run_id ON unit_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_unit_results_model ON unit_results(model)`,
		`CREATE INDEX IF NOT EXISTS idx_unit_results_created_at ON unit_results(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()
	type stmtSpec struct {
		dst    **sql.Stmt
		query  string
		errFmt string
	}

	specs := []stmtSpec{
		{
			dst: &s.insertRunStmt,
			query: `
				INSERT INTO benchmark_runs (id, started_at, completed_at, total_units, summary_json)
				VALUES (?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert run: %w",
		},
		{
			dst: &s.insertUnitStmt,
			query: `
				INSERT INTO unit_results (
					run_id, model, scenario_id, scenario_name, category, run_index,
					status, failure_detail, overall_score, duration_ms, created_at, detail
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert unit: %w",
		},
		{
			dst: &s.getRunStmt,
			query: `
				SELECT id, started_at, completed_at, total_units, summary_json
				FROM benchmark_runs WHERE id = ?
			`,
			errFmt: "store: prepare get run: %w",
		},
		{
			dst: &s.listRunsStmt,
			query: `
				SELECT id, started_at, completed_at, total_units, summary_json
				FROM benchmark_runs
				ORDER BY started_at DESC
				LIMIT ?
			`,
			errFmt: "store: prepare list runs: %w",
		},
		{
			dst: &s.unitsByRunStmt,
			query: `
				SELECT run_id, model, scenario_id, scenario_name, category, run_index,
					status, failure_detail, overall_score, duration_ms, created_at, detail
				FROM unit_results
				WHERE run_id = ?
				ORDER BY model ASC, scenario_id ASC, run_index ASC
			`,
			errFmt: "store: prepare units by run: %w",
		},
		{
			dst: &s.leaderboardStmt,
			query: `
				SELECT model,
					COUNT(*) AS attempted,
					SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS completed,
					COALESCE(AVG(CASE WHEN status = 'completed' THEN overall_score END), 0) AS avg_score
				FROM unit_results
				GROUP BY model
				ORDER BY avg_score DESC, model ASC
			`,
			errFmt: "store: prepare leaderboard: %w",
		},
	}

	for _, spec := range specs {
		stmt, err := s.db.PrepareContext(ctx, spec.query)
		if err != nil {
			return fmt.Errorf(spec.errFmt, err)
		}
		*spec.dst = stmt
	}
	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	stmts := []*sql.Stmt{
		s.insertRunStmt,
		s.insertUnitStmt,
		s.getRunStmt,
		s.listRunsStmt,
		s.unitsByRunStmt,
		s.leaderboardStmt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveReport persists a benchmark report and all of its unit results in one
// transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *pipeline.Report) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if report == nil {
		return errors.New("store: nil report")
	}
	id := strings.TrimSpace(report.RunID)
	if id == "" {
		return errors.New("store: empty run id")
	}
	if report.StartedAt.IsZero() || report.CompletedAt.IsZero() {
		return errors.New("store: missing run timestamps")
	}

	summaryJSON := []byte("null")
	if report.Summary != nil {
		var err error
		summaryJSON, err = json.Marshal(report.Summary)
		if err != nil {
			return fmt.Errorf("store: marshal summary: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	runStmt := tx.StmtContext(ctx, s.insertRunStmt)
	defer runStmt.Close()
	_, err = runStmt.ExecContext(
		ctx,
		id,
		report.StartedAt.UTC().UnixMilli(),
		report.CompletedAt.UTC().UnixMilli(),
		len(report.Results),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	unitStmt := tx.StmtContext(ctx, s.insertUnitStmt)
	defer unitStmt.Close()
	now := time.Now().UTC().UnixMilli()
	for _, res := range report.Results {
		if res == nil {
			continue
		}
		detail, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("store: marshal unit detail: %w", err)
		}
		_, err = unitStmt.ExecContext(
			ctx,
			id,
			res.Model,
			res.ScenarioID,
			res.ScenarioName,
			res.Category,
			res.RunIndex,
			string(res.Status),
			res.FailureDetail,
			res.OverallScore,
			res.DurationMs,
			now,
			detail,
		)
		if err != nil {
			return fmt.Errorf("store: insert unit %s/%s/%d: %w", res.Model, res.ScenarioID, res.RunIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// GetRun fetches one benchmark run. Returns sql.ErrNoRows wrapped when the
// id is unknown.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	row := s.getRunStmt.QueryRowContext(ctx, strings.TrimSpace(id))
	rec, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("store: get run %q: %w", id, err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.listRunsStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

// UnitResults returns every unit result of a run in stable order.
func (s *SQLiteStore) UnitResults(ctx context.Context, runID string) ([]*UnitRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	rows, err := s.unitsByRunStmt.QueryContext(ctx, strings.TrimSpace(runID))
	if err != nil {
		return nil, fmt.Errorf("store: units by run: %w", err)
	}
	defer rows.Close()

	var out []*UnitRecord
	for rows.Next() {
		var (
			rec       UnitRecord
			status    string
			createdAt int64
			detail    []byte
		)
		err := rows.Scan(
			&rec.RunID, &rec.Model, &rec.ScenarioID, &rec.ScenarioName, &rec.Category,
			&rec.RunIndex, &status, &rec.FailureDetail, &rec.OverallScore,
			&rec.DurationMs, &createdAt, &detail,
		)
		if err != nil {
			return nil, fmt.Errorf("store: scan unit: %w", err)
		}
		rec.Status = status
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		if len(detail) > 0 {
			var full runner.RunResult
			if err := json.Unmarshal(detail, &full); err != nil {
				return nil, fmt.Errorf("store: unmarshal unit detail: %w", err)
			}
			rec.Detail = &full
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: units by run: %w", err)
	}
	return out, nil
}

// Leaderboard ranks models by mean overall score over completed units across
// all persisted runs.
func (s *SQLiteStore) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	rows, err := s.leaderboardStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", err)
	}
	defer rows.Close()

	var out []*LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Model, &e.Attempted, &e.Completed, &e.AvgScore); err != nil {
			return nil, fmt.Errorf("store: scan leaderboard: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		rec         RunRecord
		startedAt   int64
		completedAt int64
		summaryJSON sql.NullString
	)
	if err := row.Scan(&rec.ID, &startedAt, &completedAt, &rec.TotalUnits, &summaryJSON); err != nil {
		return nil, err
	}
	rec.StartedAt = time.UnixMilli(startedAt).UTC()
	rec.CompletedAt = time.UnixMilli(completedAt).UTC()
	if summaryJSON.Valid && summaryJSON.String != "" && summaryJSON.String != "null" {
		var summary pipeline.Summary
		if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		rec.Summary = &summary
	}
	return &rec, nil
}
