package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

// Repository keeps session values server side, keyed by session id.
type Repository interface {
	Get(ctx context.Context, sid uuid.UUID, key string) ([]byte, error)
	Put(ctx context.Context, sid uuid.UUID, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, sid uuid.UUID, key string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
	now func() time.Time
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
		now: time.Now,
	}, nil
}

const sessionsTableName = `sessions`

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) Get(ctx context.Context, sid uuid.UUID, key string) ([]byte, error) {
	query, args, err := qb.Select("value").
		From(sessionsTableName).
		Where(sq.Eq{"id": sid, "key": key}).
		Where(sq.Gt{"expires_at": r.now()}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var value []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Error("Get", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	return value, nil
}

func (r *repository) Put(ctx context.Context, sid uuid.UUID, key string, value []byte, expiresAt time.Time) error {
	query, args, err := qb.Insert(sessionsTableName).
		Columns("id", "key", "value", "expires_at").
		Values(sid, key, value, expiresAt).
		Suffix("on conflict (id, key) do update set value = excluded.value, expires_at = excluded.expires_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Put", zap.String("q", query), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, sid uuid.UUID, key string) error {
	query, args, err := qb.Delete(sessionsTableName).
		Where(sq.Eq{"id": sid, "key": key}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) PurgeExpired(ctx context.Context) (int64, error) {
	query, args, err := qb.Delete(sessionsTableName).
		Where(sq.LtOrEq{"expires_at": r.now()}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
