package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BuyBridge/shopcore/config"
	"github.com/BuyBridge/shopcore/internal/backend/stub"
)

// shop-stub поднимает фейковый бэкенд, чтобы мобильное приложение и тесты
// могли работать без стендов.
func main() {
	httpAddr := ":8091"
	if p := os.Getenv("configPath"); p != "" {
		cfg, err := config.LoadConfig(p)
		if err != nil {
			slog.Error("load config", "error", err.Error())
			os.Exit(1)
		}
		if cfg.Stub.HTTPAddr != "" {
			httpAddr = cfg.Stub.HTTPAddr
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, httpAddr); err != nil && err != http.ErrServerClosed {
		slog.Error("shop-stub", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, httpAddr string) error {
	lis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: stub.New().Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("stub backend listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
