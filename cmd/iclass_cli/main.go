package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"github.com/feelsunbreeze/iclass_portal_tui/internal/config"
	"github.com/feelsunbreeze/iclass_portal_tui/internal/portal"
)

var logger *log.Logger

func newCommandLine(cfg *config.Config, reporter *consoleReporter) (*commandLine, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}

	client := portal.NewClient(cfg.RequestTimeout, cfg.RetryAttempts)
	svc := portal.NewService(client,
		portal.WithEndpoints(endpoints),
		portal.WithReporter(reporter),
		portal.WithThrottle(portal.Delay(cfg.SignDelay)),
		portal.WithBatchSign(cfg.Features.BatchSign),
		portal.WithSemesterStart(cfg.SemesterStart.Date()),
	)

	return &commandLine{
		svc:      svc,
		reporter: reporter,
		out:      os.Stdout,
		start:    cfg.SemesterStart.Date(),
	}, nil
}

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json, toml)")
	envPath := flag.String("env", "", "path to a .env file (default ./.env)")
	flag.Parse()
	defer glog.Flush()

	logger = log.New(os.Stdout, "ICLASS : ", 0)

	cfg, err := config.Load(*configPath, *envPath)
	errAndDie(err)

	cli, err := newCommandLine(cfg, &consoleReporter{logger: logger})
	errAndDie(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errHelp) || errors.Is(err, flag.ErrHelp) {
			return
		}
		stop()
		errAndDie(err)
	}
}

func errAndDie(err error) {
	if err != nil {
		glog.Errorf("cli: %v", err)
		glog.Flush()
		logger.Printf("Error: %v", err)
		os.Exit(1)
	}
}
