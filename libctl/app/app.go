package app

import (
	"context"
	"io"

	"github.com/Astemirdum/library-frontend/internal/dashboard"
	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/service/auth"
	"github.com/Astemirdum/library-frontend/internal/service/book"
	"github.com/Astemirdum/library-frontend/internal/service/category"
	"github.com/Astemirdum/library-frontend/internal/service/reservation"
	"github.com/Astemirdum/library-frontend/internal/service/user"
	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/Astemirdum/library-frontend/internal/view"
	"github.com/Astemirdum/library-frontend/libctl/config"
	"github.com/Astemirdum/library-frontend/libctl/internal/command"
	"github.com/Astemirdum/library-frontend/libctl/internal/repository"
	"github.com/Astemirdum/library-frontend/libctl/migrations"
	"github.com/Astemirdum/library-frontend/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrRedirected reports a command turned away by the access guard.
var ErrRedirected = command.ErrRedirected

// Run executes one libctl invocation. in and out are the terminal streams.
func Run(ctx context.Context, cfg *config.Config, args []string, in io.Reader, out io.Writer) error {
	log := logger.NewLogger(cfg.Log, "libctl")
	defer log.Sync() //nolint:errcheck

	repo, err := repository.NewSQLite(cfg.State, migrations.MigrationFiles, log)
	if err != nil {
		return errors.Wrap(err, "open state")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Warn("close state", zap.Error(err))
		}
	}()

	books := book.NewService(log, cfg.API)
	reservations := reservation.NewService(log, cfg.API)
	cache := view.NewBookCache()

	root := command.NewRoot(command.Deps{
		Store:     session.NewStore(auth.NewService(log, cfg.API), repo, log),
		Books:     books,
		Cache:     cache,
		Lifecycle: lifecycle.NewController(reservations, cache, nil, log, cfg.Lifecycle),
		Dashboard: dashboard.NewLoader(books, category.NewService(log, cfg.API), user.NewService(log, cfg.API), reservations),
		ImageHost: cfg.ImageHost,
		Log:       log,
		In:        in,
		Out:       out,
	})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
