package main

import (
	"os"

	"phasepeak/internal/cli"
	"phasepeak/internal/logging"
	"phasepeak/pkg/config"
)

func main() {
	// Configuration file from the environment, the estimate command can override it
	configPath := os.Getenv("PHASEPEAK_CONFIG")
	if configPath == "" {
		configPath = "phasepeak.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.New("error", "text", os.Stderr).Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	if err := cli.NewRootCmd(cfg, log).Execute(); err != nil {
		os.Exit(1)
	}
}
