// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gcli/lib/config"
	"github.com/bureau-foundation/gcli/lib/labview"
	"github.com/bureau-foundation/gcli/lib/process"
)

const (
	defaultConnectTimeoutMS = 60000
	defaultKillTimeoutMS    = 10000
)

// options is the parsed command line.
type options struct {
	Target      string
	ProgramArgs []string

	// Ignored holds positional arguments between the target and "--".
	Ignored []string

	Verbose        bool
	LabVIEWVersion string
	Bitness        labview.Bitness
	ConnectTimeout time.Duration
	Kill           bool
	KillTimeout    time.Duration
	AllowDialogs   bool
	NoLaunch       bool
	ConfigPath     string
	ShowVersion    bool
	ShowHelp       bool

	connectTimeoutSet bool
	killTimeoutSet    bool

	flagSet *pflag.FlagSet
}

// parseOptions parses g-cli's arguments, not including the binary name.
// Flags end at the launch target; everything after a later "--" goes to
// the application.
func parseOptions(arguments []string) (*options, error) {
	o := &options{}
	var x64 bool
	var connectTimeoutMS, killTimeoutMS int64

	flagSet := pflag.NewFlagSet("g-cli", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)
	flagSet.SetNormalizeFunc(normalizeFlagName)
	flagSet.BoolVarP(&o.Verbose, "verbose", "v", false, "print additional details for debugging")
	flagSet.StringVar(&o.LabVIEWVersion, "lv-ver", "", "LabVIEW version to launch, e.g. 2020")
	flagSet.BoolVar(&x64, "x64", false, "launch the 64-bit LabVIEW")
	flagSet.Int64Var(&connectTimeoutMS, "connect-timeout", defaultConnectTimeoutMS, "time in ms to wait for the application to connect")
	flagSet.BoolVar(&o.Kill, "kill", false, "kill the application after it sends its exit code (see --kill-timeout)")
	flagSet.Int64Var(&killTimeoutMS, "kill-timeout", defaultKillTimeoutMS, "time in ms the application gets to exit by itself when --kill is set")
	flagSet.BoolVar(&o.AllowDialogs, "allow-dialogs", false, "let LabVIEW show dialogs by dropping -unattended (not recommended)")
	flagSet.BoolVar(&o.NoLaunch, "no-launch", false, "deprecated and ignored")
	flagSet.StringVar(&o.ConfigPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.BoolVar(&o.ShowVersion, "version", false, "print version information")
	flagSet.BoolVarP(&o.ShowHelp, "help", "h", false, "show help")
	o.flagSet = flagSet

	if err := flagSet.Parse(arguments); err != nil {
		return nil, err
	}

	if connectTimeoutMS < 0 {
		return nil, fmt.Errorf("--connect-timeout must not be negative, got %d", connectTimeoutMS)
	}
	if killTimeoutMS < 0 {
		return nil, fmt.Errorf("--kill-timeout must not be negative, got %d", killTimeoutMS)
	}
	o.ConnectTimeout = time.Duration(connectTimeoutMS) * time.Millisecond
	o.KillTimeout = time.Duration(killTimeoutMS) * time.Millisecond
	o.connectTimeoutSet = flagSet.Changed("connect-timeout")
	o.killTimeoutSet = flagSet.Changed("kill-timeout")
	if x64 {
		o.Bitness = labview.X64
	}

	if o.ShowHelp || o.ShowVersion {
		return o, nil
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		return nil, fmt.Errorf("missing the VI or executable to run (see g-cli --help)")
	}
	o.Target = positional[0]
	o.Ignored, o.ProgramArgs = splitProgramArguments(positional[1:])
	return o, nil
}

// normalizeFlagName maps the spellings earlier releases accepted.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "timeout":
		name = "connect-timeout"
	case "allowDialogs":
		name = "allow-dialogs"
	}
	return pflag.NormalizedName(name)
}

// splitProgramArguments separates what follows the first "--" from
// anything before it.
// Both results are nil rather than empty when there is nothing in them.
func splitProgramArguments(arguments []string) (ignored, program []string) {
	for index, argument := range arguments {
		if argument == "--" {
			return nonEmpty(arguments[:index]), nonEmpty(arguments[index+1:])
		}
	}
	return nonEmpty(arguments), nil
}

func nonEmpty(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}
	return arguments
}

// applyConfig fills in values the command line left at their defaults.
// A boolean flag can only turn --kill on.
func (o *options) applyConfig(cfg *config.Config) {
	if !o.connectTimeoutSet {
		o.ConnectTimeout = cfg.ConnectTimeout
	}
	if !o.killTimeoutSet {
		o.KillTimeout = cfg.KillTimeout
	}
	if cfg.Kill {
		o.Kill = true
	}
}

// killPolicy is what happens to the application after a clean exit.
func (o *options) killPolicy() process.KillPolicy {
	if o.Kill {
		return process.KillAfter(o.KillTimeout)
	}
	return process.LeaveRunning()
}

// loadConfig reads --config if given, else GCLI_CONFIG, else defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, `g-cli - connect a LabVIEW VI or application to the command line

USAGE
    g-cli [flags] <vi or exe> [-- program arguments...]

EXAMPLES
    # Run a VI in the newest installed LabVIEW
    g-cli build.vi -- --target release

    # Run a VI in 64-bit LabVIEW 2020 and close LabVIEW afterwards
    g-cli --lv-ver 2020 --x64 --kill build.vi

    # Run a built application
    g-cli tester.exe -- suite.json

FLAGS
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
