// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobs runs research requests in the background and persists their
// state in SQLite so the HTTP API can report on them by id.
package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// ErrNotFound is returned by Get for an unknown job id.
var ErrNotFound = errors.New("job not found")

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusStarted Status = "started"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Done reports whether s is a terminal state.
func (s Status) Done() bool {
	return s == StatusSuccess || s == StatusFailure
}

// timeFormat sorts lexically in creation order.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// interruptedError is recorded for jobs a previous process left unfinished.
const interruptedError = "interrupted before completion"

// RunFunc executes one research request.
type RunFunc func(ctx context.Context, req types.ResearchRequest) (*types.ResearchResult, error)

// Job is the externally visible state of one background run.
type Job struct {
	ID        string                `json:"task_id" yaml:"task_id"`
	Status    Status                `json:"status" yaml:"status"`
	Request   types.ResearchRequest `json:"request" yaml:"request"`
	Result    *types.ResearchResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string                `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time             `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time             `json:"updated_at" yaml:"updated_at"`
}

// jobRow is the database form of a Job.
type jobRow struct {
	ID        string         `db:"id"`
	Status    string         `db:"status"`
	Request   string         `db:"request"`
	Result    sql.NullString `db:"result"`
	Error     string         `db:"error"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	request    TEXT NOT NULL,
	result     TEXT,
	error      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// Store persists jobs and runs them on goroutines it owns.
type Store struct {
	db     *sqlx.DB
	run    RunFunc
	logger *zap.Logger

	// base is the parent context of every job; Close cancels it.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time
}

// Open opens or creates the job database at path. Jobs that a previous
// process left queued or started are marked failed.
func Open(path string, run RunFunc, logger *zap.Logger) (*Store, error) {
	if run == nil {
		return nil, errors.New("jobs: nil run func")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating job database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening job database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating job schema: %w", err)
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:     db,
		run:    run,
		logger: logger,
		base:   base,
		cancel: cancel,
		now:    time.Now,
	}
	n, err := s.failUnfinished()
	if err != nil {
		cancel()
		db.Close()
		return nil, err
	}
	if n > 0 {
		logger.Warn("marked interrupted jobs as failed", zap.Int64("jobs", n))
	}
	return s, nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeFormat)
}

func (s *Store) failUnfinished() (int64, error) {
	res, err := s.db.Exec(
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE status IN (?, ?)`,
		StatusFailure, interruptedError, s.stamp(), StatusQueued, StatusStarted,
	)
	if err != nil {
		return 0, fmt.Errorf("recovering unfinished jobs: %w", err)
	}
	return res.RowsAffected()
}

// Submit stores req as a queued job and starts running it. The job runs
// under the store's context, not ctx, so it outlives the caller.
func (s *Store) Submit(ctx context.Context, req types.ResearchRequest) (Job, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Job{}, fmt.Errorf("encoding request: %w", err)
	}
	ts := s.stamp()
	row := jobRow{
		ID:        uuid.NewString(),
		Status:    string(StatusQueued),
		Request:   string(body),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO jobs (id, status, request, error, created_at, updated_at)
		 VALUES (:id, :status, :request, :error, :created_at, :updated_at)`, row)
	if err != nil {
		return Job{}, fmt.Errorf("inserting job: %w", err)
	}

	s.wg.Add(1)
	go s.execute(row.ID, req)

	s.logger.Info("job queued", zap.String("job", row.ID), zap.String("query", req.Query))
	return row.job()
}

func (s *Store) execute(id string, req types.ResearchRequest) {
	defer s.wg.Done()
	log := s.logger.With(zap.String("job", id))

	if err := s.update(id, StatusStarted, nil, ""); err != nil {
		log.Error("marking job started", zap.Error(err))
		return
	}

	start := time.Now()
	res, err := s.run(s.base, req)
	if err != nil {
		log.Warn("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if uerr := s.update(id, StatusFailure, nil, err.Error()); uerr != nil {
			log.Error("recording job failure", zap.Error(uerr))
		}
		return
	}
	if err := s.update(id, StatusSuccess, res, ""); err != nil {
		log.Error("recording job result", zap.Error(err))
		return
	}
	log.Info("job complete", zap.Duration("elapsed", time.Since(start)))
}

func (s *Store) update(id string, status Status, res *types.ResearchResult, msg string) error {
	var result sql.NullString
	if res != nil {
		body, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		result = sql.NullString{String: string(body), Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE jobs SET status = ?, result = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, result, msg, s.stamp(), id,
	)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}
	return nil
}

// Get returns the job with the given id.
func (s *Store) Get(ctx context.Context, id string) (Job, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("reading job %s: %w", id, err)
	}
	return row.job()
}

// List returns the most recent jobs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM jobs ORDER BY created_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	out := make([]Job, 0, len(rows))
	for _, r := range rows {
		j, err := r.job()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

// Wait blocks until every submitted job has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels running jobs, waits for them and closes the database.
func (s *Store) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.db.Close()
}

func (r jobRow) job() (Job, error) {
	j := Job{
		ID:     r.ID,
		Status: Status(r.Status),
		Error:  r.Error,
	}
	if err := json.Unmarshal([]byte(r.Request), &j.Request); err != nil {
		return Job{}, fmt.Errorf("decoding request of job %s: %w", r.ID, err)
	}
	if r.Result.Valid {
		j.Result = &types.ResearchResult{}
		if err := json.Unmarshal([]byte(r.Result.String), j.Result); err != nil {
			return Job{}, fmt.Errorf("decoding result of job %s: %w", r.ID, err)
		}
	}
	var err error
	if j.CreatedAt, err = time.Parse(timeFormat, r.CreatedAt); err != nil {
		return Job{}, fmt.Errorf("parsing created_at of job %s: %w", r.ID, err)
	}
	if j.UpdatedAt, err = time.Parse(timeFormat, r.UpdatedAt); err != nil {
		return Job{}, fmt.Errorf("parsing updated_at of job %s: %w", r.ID, err)
	}
	return j, nil
}
