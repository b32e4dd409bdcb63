package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"rhetoric/internal/config"
	"rhetoric/internal/services"
)

// Store persists transcripts, verdicts, and metadata in SQLite and keeps the
// per-video mirror files in step with the rows.
type Store struct {
	db             *sql.DB
	path           string
	transcriptsDir string
	resultsDir     string

	// mu serializes commits in-process; lock serializes them across processes.
	mu   sync.Mutex
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 25 * time.Millisecond
	lockTimeout             = 30 * time.Second
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "open", "ensure directories", err)
	}

	dbPath := cfg.Paths.Database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrPersistence, "store", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	// Pragmas are per connection; a single connection keeps foreign_keys in force.
	db.SetMaxOpenConns(1)

	store := &Store{
		db:             db,
		path:           dbPath,
		transcriptsDir: cfg.Paths.TranscriptsDir,
		resultsDir:     cfg.Paths.ResultsDir,
		lock:           flock.New(cfg.LockPath()),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrPersistence, "store", "open", "init schema", err)
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withCommitLock runs fn while holding both the in-process mutex and the
// cross-process file lock.
func (s *Store) withCommitLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire commit lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("acquire commit lock %s: not acquired", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

// commit runs exec inside a transaction, then writeMirror, then commits. A
// failed mirror write rolls the row back; the whole unit is retried on
// SQLITE_BUSY.
func (s *Store) commit(ctx context.Context, exec func(*sql.Tx) error, writeMirror func() error) error {
	ctx = ensureContext(ctx)
	return s.withCommitLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			tx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin tx: %w", err)
			}
			defer func() { _ = tx.Rollback() }()

			if err := exec(tx); err != nil {
				return err
			}
			if writeMirror != nil {
				if err := writeMirror(); err != nil {
					return fmt.Errorf("write mirror: %w", err)
				}
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("commit tx: %w", err)
			}
			return nil
		})
	})
}
