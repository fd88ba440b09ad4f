package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-frontend/frontend/config"
	"github.com/Astemirdum/library-frontend/frontend/internal/handler"
	"github.com/Astemirdum/library-frontend/frontend/internal/repository"
	"github.com/Astemirdum/library-frontend/frontend/internal/server"
	"github.com/Astemirdum/library-frontend/frontend/internal/storage"
	"github.com/Astemirdum/library-frontend/frontend/migrations"
	"github.com/Astemirdum/library-frontend/internal/activity"
	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/Astemirdum/library-frontend/pkg/logger"
	"github.com/Astemirdum/library-frontend/pkg/postgres"
	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const sessionPurgeInterval = 10 * time.Minute

func Run(cfg *config.Config) error {
	if err := cfg.Session.Validate(); err != nil {
		return errors.Wrap(err, "session config")
	}
	log := logger.NewLogger(cfg.Log, "frontend")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sessions handler.SessionStorage
		db       *pgxpool.Pool
	)
	switch cfg.Session.Backend {
	case config.SessionPostgres:
		var err error
		db, err = postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return errors.Wrap(err, "db init")
		}
		defer db.Close()
		repo, err := repository.NewRepository(db, log)
		if err != nil {
			return errors.Wrap(err, "repo")
		}
		pg := storage.NewPostgresFactory(repo, cfg.Session.TTL, cfg.Session.Secure, log)
		go pg.PurgeLoop(ctx, sessionPurgeInterval)
		sessions = pg
	case config.SessionCookie:
		sessions = storage.NewCookieFactory(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure, log)
	default:
		return errors.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	var (
		activityLog activity.Logger
		feed        *activity.Feed
	)
	if cfg.Kafka.Enabled() {
		if err := kafka.CreateTopics(cfg.Kafka); err != nil {
			log.Warn("kafka.CreateTopics", zap.Error(err))
		}
		producer, err := kafka.NewAsyncProducer(cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka.NewAsyncProducer")
		}
		defer closeProducer(producer, log)
		activityLog = activity.NewLog(producer, cfg.Kafka.ActivityTopic, log)

		group, err := kafka.NewConsumerGroup(cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka.NewConsumerGroup")
		}
		defer closeGroup(group, log)
		feed = activity.NewFeed(activity.DefaultFeedSize, log)
		go kafka.Consume(ctx, group, feed, log, cfg.Kafka.ActivityTopic)
	}

	h := handler.New(log, cfg, handler.NewServices(log, cfg.API), sessions, activityLog)
	if feed != nil {
		h.WithFeed(feed)
	}
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func closeProducer(producer sarama.AsyncProducer, log *zap.Logger) {
	if err := producer.Close(); err != nil {
		log.Warn("producer.Close", zap.Error(err))
	}
}

func closeGroup(group sarama.ConsumerGroup, log *zap.Logger) {
	if err := group.Close(); err != nil {
		log.Warn("group.Close", zap.Error(err))
	}
}
