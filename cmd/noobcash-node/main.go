// Command noobcash-node runs one participant in the network: the HTTP
// server binding spec §6's endpoints to a node.Controller. It generalizes
// the teacher's cmd/phase_11/main.go bootstrap shape (load config, build
// the node, start it, wait for a termination signal, stop gracefully).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noobcash/noobcash-go/internal/config"
	"github.com/noobcash/noobcash-go/internal/logging"
	"github.com/noobcash/noobcash-go/internal/node"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	log.Info(cfg.String())

	minerBinary := os.Getenv("NOOBCASH_MINER_BINARY")
	if minerBinary == "" {
		minerBinary = "noobcash-miner"
	}

	ctl := node.New(cfg, log, minerBinary)
	srv := node.NewServer(ctl, log)

	httpServer := &http.Server{
		Addr:    cfg.GetListenAddress(),
		Handler: srv,
	}

	go func() {
		log.Infof("listening on %s", cfg.GetListenAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown: %v", err)
	}
}
