package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/feelsunbreeze/iclass_portal_tui/internal/config"
	"github.com/feelsunbreeze/iclass_portal_tui/internal/portal"
)

func newService(cfg *config.Config, journal *portal.Journal) (*portal.Service, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}

	client := portal.NewClient(cfg.RequestTimeout, cfg.RetryAttempts)
	client.Loading = journal

	return portal.NewService(client,
		portal.WithEndpoints(endpoints),
		portal.WithReporter(journal),
		portal.WithThrottle(portal.Delay(cfg.SignDelay)),
		portal.WithBatchSign(cfg.Features.BatchSign),
		portal.WithSemesterStart(cfg.SemesterStart.Date()),
	), nil
}

func StartTUI(configPath, envPath string) error {
	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return err
	}

	journal := portal.NewJournal()
	svc, err := newService(cfg, journal)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(cfg, svc, journal), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json, toml)")
	envPath := flag.String("env", "", "path to a .env file (default ./.env)")
	flag.Parse()
	defer glog.Flush()

	if err := StartTUI(*configPath, *envPath); err != nil {
		glog.Errorf("tui: %v", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		glog.Flush()
		os.Exit(1)
	}
}
