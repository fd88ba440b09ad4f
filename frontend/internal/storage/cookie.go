package storage

import (
	"context"
	"time"

	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type valueClaims struct {
	Value string `json:"value"`
	jwt.RegisteredClaims
}

// CookieFactory keeps session values client side in HS256 signed cookies
// named after the key.
type CookieFactory struct {
	secret []byte
	opts   cookieOptions
	log    *zap.Logger
	now    func() time.Time
}

func NewCookieFactory(secret string, ttl time.Duration, secure bool, log *zap.Logger) *CookieFactory {
	return &CookieFactory{
		secret: []byte(secret),
		opts:   cookieOptions{ttl: ttl, secure: secure},
		log:    log.Named("cookie"),
		now:    time.Now,
	}
}

func (f *CookieFactory) For(c echo.Context) session.Storage {
	return &cookieStorage{f: f, c: c}
}

type cookieStorage struct {
	f *CookieFactory
	c echo.Context
}

func (s *cookieStorage) Load(_ context.Context, key string) ([]byte, error) {
	ck, err := s.c.Cookie(key)
	if err != nil || ck.Value == "" {
		return nil, session.ErrNoValue
	}
	claims := new(valueClaims)
	token, err := jwt.ParseWithClaims(ck.Value, claims, func(*jwt.Token) (interface{}, error) {
		return s.f.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.f.now),
		jwt.WithSubject(key),
	)
	if err != nil || !token.Valid {
		s.f.log.Info("rejecting session cookie", zap.String("key", key), zap.Error(err))
		s.f.opts.expire(s.c, key)
		return nil, session.ErrNoValue
	}
	return []byte(claims.Value), nil
}

func (s *cookieStorage) Save(_ context.Context, key string, value []byte) error {
	now := s.f.now()
	expires := now.Add(s.f.opts.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, valueClaims{
		Value: string(value),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.f.secret)
	if err != nil {
		return errors.Wrap(err, "sign session cookie")
	}
	s.f.opts.set(s.c, key, signed, expires)
	return nil
}

func (s *cookieStorage) Delete(_ context.Context, key string) error {
	s.f.opts.expire(s.c, key)
	return nil
}
