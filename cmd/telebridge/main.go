/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// telebridge subscribes to a streaming telemetry feed and forwards
// qualifying events as email alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/carverauto/telebridge/pkg/alerts"
	"github.com/carverauto/telebridge/pkg/auth"
	"github.com/carverauto/telebridge/pkg/config"
	"github.com/carverauto/telebridge/pkg/lifecycle"
	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
	"github.com/carverauto/telebridge/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/telebridge/telebridge.json", "Path to bridge config file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	ctx := context.Background()

	cfgLoader := config.NewConfig(nil)

	var cfg models.BridgeConfig

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return err
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{Level: "warn", Output: "stdout"}
	}

	if *verbose {
		logConfig.Debug = true
	}

	bridgeLogger, err := lifecycle.CreateComponentLogger("telebridge", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	emailPassword, err := resolvePassword("EMAIL_PASSWORD",
		fmt.Sprintf("Enter password for %s: ", cfg.Email.Username))
	if err != nil {
		return err
	}

	var telemetryPassword string

	if !cfg.Telemetry.NoSSL {
		telemetryPassword, err = resolvePassword("TELEMETRY_PASSWORD",
			fmt.Sprintf("Enter password for %s: ", cfg.Telemetry.Host))
		if err != nil {
			return err
		}
	}

	// A failed email login is fatal before the feed is touched.
	mailer, err := alerts.NewEmailAlerter(&cfg.Email, emailPassword, cfg.Telemetry.Host, bridgeLogger)
	if err != nil {
		return err
	}

	defer func() { _ = mailer.Close() }()

	dispatcher := alerts.NewDispatcher(mailer, bridgeLogger)
	dispatcher.Start(ctx)

	defer dispatcher.Stop()

	directory := telemetry.NewDirectory(bridgeLogger)
	enricher := alerts.NewEnricher(directory, dispatcher, bridgeLogger)
	authClient := auth.NewClient(cfg.Telemetry.InsecureSkipVerify, bridgeLogger)

	client := telemetry.New(&cfg.Telemetry, telemetryPassword, authClient, directory, enricher, bridgeLogger)

	return lifecycle.Run(ctx, client, bridgeLogger)
}

// resolvePassword reads a secret from the environment, falling back to an
// interactive prompt so credentials never have to live in the config file.
func resolvePassword(envKey, prompt string) (string, error) {
	if value := os.Getenv(envKey); value != "" {
		return value, nil
	}

	fmt.Fprint(os.Stderr, prompt)

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(secret), nil
}
