// Command gateway запускает шлюз пакетных запросов $batch
// вместе с ресурсным API, к которому обращаются подзапросы.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/app"
	"github.com/InQaaaaGit/graph_batch.git/internal/buildinfo"
	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/server"
)

// Заполняются через -ldflags "-X main.buildVersion=..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("Gateway stopped with error: %v", err)
	}
}

// run собирает приложение и блокируется до отмены ctx
func run(ctx context.Context, args []string, stdout io.Writer) error {
	info := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	if err := info.Fprint(stdout); err != nil {
		return fmt.Errorf("error printing build info: %w", err)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger, syncLogger, err := server.InitLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer syncLogger()

	logger.Info("Starting gateway", info.Fields()...)

	application, err := app.NewApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("error creating application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Error closing application", zap.Error(err))
		}
	}()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}
	logger.Info("Gateway stopped")
	return nil
}
