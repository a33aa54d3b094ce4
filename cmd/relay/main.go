package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"olmkit/internal/logging"
	"olmkit/internal/relay"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	env := flag.String("env", "production", "log environment (development|production)")
	rps := flag.Float64("rps", 30, "requests per second per remote host (0 disables)")
	burst := flag.Int("burst", 60, "rate limiter burst")
	flag.Parse()

	log, err := logging.New(logging.Config{Environment: *env})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	srv := &http.Server{
		Addr: *addr,
		Handler: relay.NewServer(relay.ServerOptions{
			Logger: log.Named("relay"),
			Limit:  relay.LimitConfig{RPS: *rps, Burst: *burst},
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info("relay listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("relay stopped", "err", err)
		os.Exit(1)
	}
}
