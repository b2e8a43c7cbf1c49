// Package sqlstore persists the catalog in SQLite, MySQL or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// Config selects the database and how to reach it. DSN, when set, is used
// as is (postgres:// URLs are converted first).
type Config struct {
	Driver       string
	Path         string
	DSN          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
}

// Store implements the catalog ports on top of database/sql. It must be
// connected before use.
type Store struct {
	cfg     Config
	dialect Dialect
	logger  *zap.Logger

	mu sync.RWMutex
	db *sql.DB
}

func New(cfg Config, logger *zap.Logger) (*Store, error) {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cfg: cfg, dialect: d, logger: logger.Named("sqlstore")}, nil
}

func (s *Store) Dialect() Dialect { return s.dialect }

// Connect opens the pool, checks it with SELECT 1 and runs the schema
// migration. Calling it on a connected store is a no-op.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	dsn, err := s.dialect.DSN(s.cfg)
	if err != nil {
		return err
	}
	db, err := sql.Open(s.dialect.DriverName(), dsn)
	if err != nil {
		return errors.Wrapf(err, "open %s database", s.dialect.Name())
	}

	maxConns := s.cfg.MaxOpenConns
	if maxConns < 1 {
		maxConns = 10
	}
	if s.dialect.Name() == "sqlite" {
		// one writer at a time; also keeps in-memory databases on a single connection
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrapf(err, "ping %s database", s.dialect.Name())
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		db.Close()
		return errors.Wrap(err, "connection test failed")
	}
	if err := migrate(ctx, db, s.dialect); err != nil {
		db.Close()
		return errors.Wrap(err, "migration failed")
	}

	s.db = db
	s.logger.Info("connected to database",
		zap.String("driver", s.dialect.Name()),
		zap.Int("max_open_conns", maxConns),
	)
	return nil
}

// Close releases the pool. The store can be connected again afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.logger.Info("database connection closed")
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, domain.ErrNotConnected
	}
	return s.db, nil
}

// Query runs a read statement written with ? placeholders.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		s.logger.Error("sql query error", zap.String("sql", truncate(query, 100)), zap.Error(err))
		return nil, errors.Wrap(err, "query")
	}
	return rows, nil
}

// Transaction runs fn inside a transaction on one pooled connection. The
// transaction is committed when fn returns nil and rolled back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		s.logger.Debug("transaction rolled back", zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "commit", Err: err}
	}
	return nil
}

// UpsertBatch writes records in a single transaction, each by its kind's
// conflict key. Statements are prepared once per distinct shape.
func (s *Store) UpsertBatch(ctx context.Context, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		stmts := make(map[string]*sql.Stmt)
		defer func() {
			for _, st := range stmts {
				st.Close()
			}
		}()

		for i, r := range records {
			kind := r.Kind()
			stmt := s.dialect.Upsert(kind.Table(), r.Columns(), kind.ConflictKey())
			prepared, ok := stmts[stmt.SQL]
			if !ok {
				p, err := tx.PrepareContext(ctx, stmt.SQL)
				if err != nil {
					return &domain.StoreError{Op: "prepare", Table: kind.Table(), Err: err}
				}
				stmts[stmt.SQL] = p
				prepared = p
			}
			if _, err := prepared.ExecContext(ctx, stmt.Args...); err != nil {
				return &domain.StoreError{
					Op:    "upsert",
					Table: kind.Table(),
					Err:   errors.Wrapf(err, "record %d", i),
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("upserted batch", zap.String("kind", records[0].Kind().String()), zap.Int("count", len(records)))
	return len(records), nil
}

func migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
