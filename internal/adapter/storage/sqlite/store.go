package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists jobs in SQLite. It is the only shared mutable state
// between concurrently running jobs.
type Store struct {
	db *sql.DB
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA busy_timeout = 5000",
				"PRAGMA synchronous = NORMAL",
				"PRAGMA foreign_keys = ON",
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewStore(dataDir string) (*Store, error) {
	registerHook()

	dbPath := filepath.Join(dataDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for SQLite (WAL allows concurrent reads but only one writer)
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, job *domain.Job) error {
	requestJSON, err := json.Marshal(job.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, status, progress, callback_url, request_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, string(job.Status), job.Progress, job.CallbackURL, string(requestJSON), job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// Claim atomically moves the oldest queued job to processing and returns
// it. Returns (nil, nil) when the queue is empty.
func (s *Store) Claim(ctx context.Context) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE jobs
		SET status = ?, started_at = ?
		WHERE id = (
			SELECT id FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1
		)
		RETURNING `+columns, string(domain.JobStatusProcessing), time.Now().UTC(), string(domain.JobStatusQueued))
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (s *Store) SetProgress(ctx context.Context, id string, progress int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET progress = ? WHERE id = ? AND status = ?`,
		progress, id, string(domain.JobStatusProcessing))
	return err
}

func (s *Store) Complete(ctx context.Context, id string, result domain.AssemblyResult) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, progress = ?, result_filename = ?, result_duration = ?, result_size = ?, completed_at = ?
		WHERE id = ?`,
		string(domain.JobStatusCompleted), domain.ProgressDone,
		result.Filename, result.DurationSeconds, result.SizeBytes,
		time.Now().UTC(), id)
	return err
}

func (s *Store) Fail(ctx context.Context, id string, kind domain.Kind, message string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, error_kind = ?, error_message = ?, completed_at = ?
		WHERE id = ?`,
		string(domain.JobStatusFailed), string(kind), message, time.Now().UTC(), id)
	return err
}

// ResetStalled fails jobs left in processing by a previous run. Their
// working directories are gone, so retrying is not an option.
func (s *Store) ResetStalled(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, error_kind = ?, error_message = ?, completed_at = ?
		WHERE status = ?`,
		string(domain.JobStatusFailed), string(domain.KindInternal),
		"interrupted by service restart", time.Now().UTC(),
		string(domain.JobStatusProcessing))
	return err
}

// Sweep removes terminal jobs created before the cutoff.
func (s *Store) Sweep(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE status IN (?, ?) AND created_at < ?`,
		string(domain.JobStatusCompleted), string(domain.JobStatusFailed), olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const columns = `id, status, progress, callback_url, request_json,
	result_filename, result_duration, result_size,
	error_kind, error_message, created_at, started_at, completed_at`

const selectColumns = `SELECT ` + columns

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job            domain.Job
		status         string
		requestJSON    string
		resultFilename string
		resultDuration float64
		resultSize     int64
		errorKind      string
	)
	err := row.Scan(
		&job.ID, &status, &job.Progress, &job.CallbackURL, &requestJSON,
		&resultFilename, &resultDuration, &resultSize,
		&errorKind, &job.ErrorMsg, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(status)
	job.ErrorKind = domain.Kind(errorKind)
	if err := json.Unmarshal([]byte(requestJSON), &job.Request); err != nil {
		return nil, fmt.Errorf("unmarshal request for job %s: %w", job.ID, err)
	}
	if job.Status == domain.JobStatusCompleted {
		job.Result = &domain.AssemblyResult{
			Filename:        resultFilename,
			DurationSeconds: resultDuration,
			SizeBytes:       resultSize,
		}
	}
	return &job, nil
}

var _ port.JobStore = (*Store)(nil)
