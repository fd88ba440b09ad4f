package storage

import (
	"context"
	"time"

	"github.com/Astemirdum/library-frontend/frontend/internal/repository"
	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SessionIDCookie carries the id of a server side session.
const SessionIDCookie = "sid"

// PostgresFactory keeps session values in the sessions table. The client
// only holds an opaque id.
type PostgresFactory struct {
	repo repository.Repository
	opts cookieOptions
	log  *zap.Logger
	now  func() time.Time
}

func NewPostgresFactory(repo repository.Repository, ttl time.Duration, secure bool, log *zap.Logger) *PostgresFactory {
	return &PostgresFactory{
		repo: repo,
		opts: cookieOptions{ttl: ttl, secure: secure},
		log:  log.Named("pg-session"),
		now:  time.Now,
	}
}

func (f *PostgresFactory) For(c echo.Context) session.Storage {
	return &pgStorage{f: f, c: c}
}

// PurgeLoop removes expired sessions every interval until ctx is done.
func (f *PostgresFactory) PurgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := f.repo.PurgeExpired(ctx)
			if err != nil {
				f.log.Warn("purge sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				f.log.Debug("purged sessions", zap.Int64("count", n))
			}
		}
	}
}

type pgStorage struct {
	f   *PostgresFactory
	c   echo.Context
	sid uuid.UUID
}

func (s *pgStorage) sessionID() (uuid.UUID, bool) {
	if s.sid != uuid.Nil {
		return s.sid, true
	}
	ck, err := s.c.Cookie(SessionIDCookie)
	if err != nil {
		return uuid.Nil, false
	}
	sid, err := uuid.Parse(ck.Value)
	if err != nil {
		return uuid.Nil, false
	}
	s.sid = sid
	return sid, true
}

func (s *pgStorage) Load(ctx context.Context, key string) ([]byte, error) {
	sid, ok := s.sessionID()
	if !ok {
		return nil, session.ErrNoValue
	}
	value, err := s.f.repo.Get(ctx, sid, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, session.ErrNoValue
		}
		return nil, err
	}
	return value, nil
}

// Save stores value under the request's session id. Writing the identity
// key always starts a new session id so a cookie planted before login never
// carries the identity.
func (s *pgStorage) Save(ctx context.Context, key string, value []byte) error {
	sid, ok := s.sessionID()
	if key == session.Key || !ok {
		if ok {
			if err := s.f.repo.Delete(ctx, sid, key); err != nil {
				return errors.Wrap(err, "drop previous session")
			}
		}
		sid = uuid.New()
		s.sid = sid
	}
	expires := s.f.now().Add(s.f.opts.ttl)
	if err := s.f.repo.Put(ctx, sid, key, value, expires); err != nil {
		return errors.Wrap(err, "store session")
	}
	s.f.opts.set(s.c, SessionIDCookie, sid.String(), expires)
	return nil
}

func (s *pgStorage) Delete(ctx context.Context, key string) error {
	sid, ok := s.sessionID()
	if !ok {
		return nil
	}
	s.f.opts.expire(s.c, SessionIDCookie)
	return s.f.repo.Delete(ctx, sid, key)
}
