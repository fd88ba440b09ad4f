package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Astemirdum/library-frontend/internal/session"
	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const kvTableName = `kv`

// Repository is a sqlite key/value file. It backs the session of the
// terminal client, one identity per OS user.
type Repository struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

var _ session.Storage = (*Repository)(nil)

// NewSQLite opens (or creates) the file at path and applies migrations.
func NewSQLite(path string, migrations embed.FS, log *zap.Logger) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "create state dir")
		}
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, errors.Wrap(err, "enable WAL")
	}
	if err := migrate(db, migrations); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, err
	}
	return &Repository{
		db:  db,
		log: log.Named("repo"),
		now: time.Now,
	}, nil
}

func migrate(db *sql.DB, migrations embed.FS) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	if err := goose.Up(db, "."); err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func (r *Repository) Load(ctx context.Context, key string) ([]byte, error) {
	query, args, err := qb.Select("value").
		From(kvTableName).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var value []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNoValue
		}
		r.log.Error("Load", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	return value, nil
}

func (r *Repository) Save(ctx context.Context, key string, value []byte) error {
	query, args, err := qb.Insert(kvTableName).
		Columns("key", "value", "updated_at").
		Values(key, value, r.now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.log.Error("Save", zap.String("q", query), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	query, args, err := qb.Delete(kvTableName).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
