package main

import (
	"errors"
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/library-frontend/frontend/app"
	"github.com/Astemirdum/library-frontend/frontend/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:generate swag init -g ../../cmd/frontend/main.go -d ../../frontend/internal/handler -o ../../swagger

// @title        Library front end
// @version      1.0
// @description  Pages of the library front end as JSON view models.
// @host         localhost:3000
// @BasePath     /
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal("run ", err)
	}
}
