// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/gcli/bridge"
	"github.com/bureau-foundation/gcli/lib/process"
	"github.com/bureau-foundation/gcli/lib/servicelocator"
	"github.com/bureau-foundation/gcli/lib/version"
	"github.com/bureau-foundation/gcli/transport"
)

// forcedKillDelay is how long the application gets after an interrupt.
const forcedKillDelay = time.Millisecond

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// exitError carries the application's exit code out of run.
type exitError struct {
	Code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *exitError) ExitCode() int {
	return e.Code
}

func run() error {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}
	if opts.ShowHelp {
		printUsage(os.Stdout, opts.flagSet)
		return nil
	}
	if opts.ShowVersion {
		version.Print(os.Stdout, "g-cli")
		return nil
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	opts.applyConfig(cfg)

	logger := newLogger(os.Stderr, opts.Verbose)
	slog.SetDefault(logger)

	logger.Debug("g-cli started in verbose mode", "version", version.Info())
	logger.Debug("g-cli arguments", "args", quoteArguments(os.Args))
	logger.Debug("arguments passed to the application", "args", strings.Join(opts.ProgramArgs, " "))
	if opts.NoLaunch {
		logger.Error("--no-launch was deprecated in v3.0.0 and is ignored")
	}
	if len(opts.Ignored) > 0 {
		logger.Warn("arguments after the launch target must follow --, ignoring them", "ignored", opts.Ignored)
	}

	workingDirectory, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("reading the working directory: %w", err)
	}

	ctx := context.Background()

	listener, err := transport.Bind()
	if err != nil {
		return fmt.Errorf("creating the network listener: %w", err)
	}
	defer listener.Close()
	listener.Logger = logger

	launch := &launcher{
		Options:  opts,
		Installs: systemInstalls(cfg),
		Locator: &servicelocator.Client{
			BaseURL:     cfg.ServiceLocator.URL,
			RetryBudget: cfg.ServiceLocator.RetryBudget,
			Logger:      logger,
		},
		Logger: logger,
	}
	supervisor, err := launch.Launch(ctx, listener.Port())
	if err != nil {
		return fmt.Errorf("launching the application: %w", err)
	}

	connection, err := listener.Accept(opts.ConnectTimeout)
	if err != nil {
		supervisor.Stop(process.LeaveRunning())
		return fmt.Errorf("no connection established with the application: %w", err)
	}
	defer connection.Close()

	if err := supervisor.SetConnected(ctx); err != nil {
		supervisor.Stop(process.LeaveRunning())
		return err
	}

	interrupts, err := bridge.InstallInterruptHandler()
	if err != nil {
		supervisor.Stop(process.LeaveRunning())
		return err
	}

	session := &bridge.Session{
		Connection: connection,
		Interrupts: interrupts,
		Logger:     logger,
	}
	decision, err := session.Run(opts.ProgramArgs, workingDirectory)
	if err != nil {
		supervisor.Stop(process.LeaveRunning())
		return err
	}

	if decision.Forced {
		logger.Debug("interrupted, exiting and killing the application")
		supervisor.Stop(process.KillAfter(forcedKillDelay))
	} else {
		supervisor.Stop(opts.killPolicy())
		logger.Debug("exiting g-cli", "exit_code", decision.Code)
	}

	if decision.Code != 0 {
		return &exitError{Code: decision.Code}
	}
	return nil
}

func quoteArguments(arguments []string) string {
	quoted := make([]string, len(arguments))
	for index, argument := range arguments {
		quoted[index] = strconv.Quote(argument)
	}
	return strings.Join(quoted, " ")
}
