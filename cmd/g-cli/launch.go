// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bureau-foundation/gcli/lib/config"
	"github.com/bureau-foundation/gcli/lib/labview"
	"github.com/bureau-foundation/gcli/lib/process"
	"github.com/bureau-foundation/gcli/lib/servicelocator"
)

var errNoInstall = errors.New("no LabVIEW install found")

// registrar publishes the listener port for LabVIEW to discover.
type registrar interface {
	Register(ctx context.Context, id string, port int) (*servicelocator.Registration, error)
}

// launchPlan is what to run and how.
type launchPlan struct {
	Application string
	Args        []string

	// RegistrationID is the service locator name for VI launches, empty
	// for executables.
	RegistrationID string
}

// launcher turns the launch target into a supervised process.
type launcher struct {
	Options  *options
	Installs func() (*labview.Installs, error)
	Locator  registrar
	Logger   *slog.Logger

	// start replaces process.Start in tests.
	start func(process.Config) (*process.Supervisor, error)
}

// Launch plans, registers, and starts the application for port.
func (l *launcher) Launch(ctx context.Context, port int) (*process.Supervisor, error) {
	plan, err := l.plan(port)
	if err != nil {
		return nil, err
	}

	supervision := process.Config{
		Path:   plan.Application,
		Args:   plan.Args,
		Logger: l.Logger,
	}

	var registration *servicelocator.Registration
	if plan.RegistrationID != "" {
		registration, err = l.Locator.Register(ctx, plan.RegistrationID, port)
		if err != nil {
			return nil, fmt.Errorf("registering with the service locator: %w", err)
		}
		supervision.Registration = registration
	}

	l.Logger.Debug("launching", "application", plan.Application, "args", strings.Join(plan.Args, " "))

	start := l.start
	if start == nil {
		start = process.Start
	}
	supervisor, err := start(supervision)
	if err != nil {
		if registration != nil {
			if unregisterError := registration.Unregister(ctx); unregisterError != nil {
				l.Logger.Warn("withdrawing service registration after failed launch",
					"registration_id", registration.ID(),
					"error", unregisterError)
			}
		}
		return nil, err
	}
	return supervisor, nil
}

// plan picks the launch method from the target's extension.
func (l *launcher) plan(port int) (launchPlan, error) {
	target := l.Options.Target
	switch strings.ToLower(filepath.Ext(target)) {
	case ".vi":
		return l.planVI(target, port)
	case ".exe":
		return planExecutable(target, port), nil
	case "":
		if isExecutableFile(target) {
			return planExecutable(target, port), nil
		}
		l.Logger.Debug("no extension on the launch target, assuming a VI", "target", target)
		return l.planVI(target+".vi", port)
	default:
		return launchPlan{}, fmt.Errorf("unknown extension %q on %s", filepath.Ext(target), target)
	}
}

func planExecutable(path string, port int) launchPlan {
	return launchPlan{
		Application: path,
		Args:        labview.LaunchArgs(port, true),
	}
}

// planVI opens vi in the selected LabVIEW. A VI that does not exist as
// given is looked up in the install's G CLI Tools folder.
func (l *launcher) planVI(vi string, port int) (launchPlan, error) {
	install, err := l.selectInstall()
	if err != nil {
		return launchPlan{}, err
	}

	location := labview.NewLocation(vi)
	if !location.Exists() {
		l.Logger.Debug("VI not found, checking the G CLI Tools folder", "vi", vi)
		if fallback := labview.NewLocation(install.RelativePath(vi)); fallback.Exists() {
			location = fallback
		}
	}
	if !location.Exists() {
		return launchPlan{}, fmt.Errorf("VI %s does not exist", vi)
	}

	canonical, err := location.CanonicalPath()
	if err != nil {
		return launchPlan{}, err
	}

	args := append([]string{location.String()}, labview.LaunchArgs(port, l.Options.AllowDialogs)...)
	return launchPlan{
		Application:    install.ApplicationPath(),
		Args:           args,
		RegistrationID: servicelocator.RegistrationID(canonical, install.MajorVersion(), install.Bitness.String()),
	}, nil
}

// selectInstall finds the requested LabVIEW, falling back to the default
// install when the requested version is not present.
func (l *launcher) selectInstall() (labview.Install, error) {
	installs, err := l.Installs()
	if err != nil {
		return labview.Install{}, fmt.Errorf("detecting LabVIEW installs: %w", err)
	}
	l.Logger.Debug(strings.TrimSuffix(installs.Details(), "\n"))

	if version := l.Options.LabVIEWVersion; version != "" {
		if install, ok := installs.Get(version, l.Options.Bitness); ok {
			return install, nil
		}
		l.Logger.Warn("requested LabVIEW not installed, using the default install",
			"version", version,
			"bitness", l.Options.Bitness.String())
	}

	install, ok := installs.Default()
	if !ok {
		return labview.Install{}, errNoInstall
	}
	return install, nil
}

// systemInstalls merges detected installs with those declared in cfg.
// Declared installs win for the same version and bitness.
func systemInstalls(cfg *config.Config) func() (*labview.Installs, error) {
	return func() (*labview.Installs, error) {
		installs, err := labview.DetectInstallations()
		if err != nil {
			return nil, err
		}
		installs.Merge(cfg.Installs())
		return installs, nil
	}
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
