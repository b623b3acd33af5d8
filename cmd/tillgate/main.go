package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cashtill/tillgate/config"
	"github.com/cashtill/tillgate/internal/app"
	"github.com/cashtill/tillgate/internal/posapi"
	"github.com/cashtill/tillgate/internal/webserver"
)

var (
	confFile = flag.String("c", "/etc/tillgate.yml", "config file")
	debug    = flag.Bool("d", false, "debug mode")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("tillgate", version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*confFile)
	if *debug {
		cfg.System.Debug = true
		cfg.Logger.Mode = "development"
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	webserver.Init(cfg)
	posapi.Register(application)

	// warm the catalog so the first page load has data
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		application.Store().FetchCategories(ctx)
		application.Store().FetchAllProducts(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- webserver.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zap.S().Errorf("web server stopped: %v", err)
	case sig := <-sigCh:
		zap.S().Infof("received %s, shutting down", sig)
	}
}
