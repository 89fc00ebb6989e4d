// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/gcli/lib/labview"
	"github.com/bureau-foundation/gcli/lib/process"
	"github.com/bureau-foundation/gcli/lib/servicelocator"
	"github.com/bureau-foundation/gcli/lib/testutil"
)

const testPort = 51234

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeInstall creates an empty LabVIEW install directory.
func fakeInstall(t *testing.T, version string, bitness labview.Bitness) labview.Install {
	t.Helper()
	return labview.Install{Path: t.TempDir(), Version: version, Bitness: bitness}
}

func installSet(installs ...labview.Install) func() (*labview.Installs, error) {
	return func() (*labview.Installs, error) {
		set := labview.NewInstalls()
		for _, install := range installs {
			set.Add(install)
		}
		return set, nil
	}
}

func newLauncher(target string, installs func() (*labview.Installs, error)) *launcher {
	return &launcher{
		Options:  &options{Target: target},
		Installs: installs,
		Logger:   discardLogger(),
	}
}

func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("resolving %s: %v", path, err)
	}
	return resolved
}

func TestPlan_Executable(t *testing.T) {
	plan, err := newLauncher(`C:\builds\tester.exe`, nil).plan(testPort)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	want := launchPlan{
		Application: `C:\builds\tester.exe`,
		Args:        []string{"--", "-p:51234"},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_VI(t *testing.T) {
	install := fakeInstall(t, "2020 SP1", labview.X64)
	vi := testutil.WriteFile(t, t.TempDir(), "build.vi", "", 0o644)

	plan, err := newLauncher(vi, installSet(install)).plan(testPort)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}

	want := launchPlan{
		Application:    install.ApplicationPath(),
		Args:           []string{vi, "-unattended", "--", "-p:51234"},
		RegistrationID: servicelocator.RegistrationID(canonical(t, vi), "2020", "64bit"),
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_VIAllowDialogs(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	vi := testutil.WriteFile(t, t.TempDir(), "build.vi", "", 0o644)

	launch := newLauncher(vi, installSet(install))
	launch.Options.AllowDialogs = true
	plan, err := launch.plan(testPort)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if diff := cmp.Diff([]string{vi, "--", "-p:51234"}, plan.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_VIFallsBackToToolsFolder(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	toolsVI := testutil.WriteFile(t, install.Path, filepath.Join("vi.lib", "G CLI Tools", "Echo.vi"), "", 0o644)

	plan, err := newLauncher("Echo.vi", installSet(install)).plan(testPort)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if plan.Args[0] != toolsVI {
		t.Errorf("VI = %q, want the G CLI Tools copy %q", plan.Args[0], toolsVI)
	}
}

func TestPlan_VIMissing(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	missing := filepath.Join(t.TempDir(), "missing.vi")

	_, err := newLauncher(missing, installSet(install)).plan(testPort)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("plan() error = %v, want a missing VI error", err)
	}
}

func TestPlan_VIInsideLibrary(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	library := testutil.WriteFile(t, t.TempDir(), "tools.llb", "", 0o644)
	vi := filepath.Join(library, "Inner.vi")

	plan, err := newLauncher(vi, installSet(install)).plan(testPort)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if plan.Args[0] != vi {
		t.Errorf("VI = %q, want %q", plan.Args[0], vi)
	}
	wantID := servicelocator.RegistrationID(filepath.Join(canonical(t, library), "Inner.vi"), "2020", "32bit")
	if plan.RegistrationID != wantID {
		t.Errorf("RegistrationID = %q, want %q", plan.RegistrationID, wantID)
	}
}

func TestPlan_NoExtension(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	directory := t.TempDir()

	t.Run("executable file", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("executable bits are not meaningful on Windows")
		}
		binary := testutil.WriteFile(t, directory, "tester", "#!/bin/sh\n", 0o755)
		plan, err := newLauncher(binary, installSet(install)).plan(testPort)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		if plan.Application != binary || plan.RegistrationID != "" {
			t.Errorf("plan = %+v, want a direct launch of %s", plan, binary)
		}
	})

	t.Run("assumed VI", func(t *testing.T) {
		vi := testutil.WriteFile(t, directory, "build.vi", "", 0o644)
		plan, err := newLauncher(strings.TrimSuffix(vi, ".vi"), installSet(install)).plan(testPort)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		if plan.Args[0] != vi {
			t.Errorf("VI = %q, want %q", plan.Args[0], vi)
		}
		if plan.Application != install.ApplicationPath() {
			t.Errorf("Application = %q, want LabVIEW", plan.Application)
		}
	})
}

func TestPlan_UnknownExtension(t *testing.T) {
	_, err := newLauncher("notes.txt", nil).plan(testPort)
	if err == nil || !strings.Contains(err.Error(), "unknown extension") {
		t.Fatalf("plan() error = %v, want unknown extension", err)
	}
}

func TestSelectInstall(t *testing.T) {
	old32 := fakeInstall(t, "2015", labview.X86)
	new32 := fakeInstall(t, "2020 SP1", labview.X86)
	new64 := fakeInstall(t, "2020 SP1", labview.X64)
	installs := installSet(old32, new32, new64)

	tests := []struct {
		name    string
		version string
		bitness labview.Bitness
		want    labview.Install
	}{
		{"default is newest 64bit", "", labview.X86, new64},
		{"requested version", "2015", labview.X86, old32},
		{"service pack matches base version", "2020", labview.X86, new32},
		{"missing version falls back to default", "2011", labview.X86, new64},
		{"missing bitness falls back to default", "2015", labview.X64, new64},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			launch := newLauncher("build.vi", installs)
			launch.Options.LabVIEWVersion = test.version
			launch.Options.Bitness = test.bitness
			got, err := launch.selectInstall()
			if err != nil {
				t.Fatalf("selectInstall() error: %v", err)
			}
			if got != test.want {
				t.Errorf("selectInstall() = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestSelectInstall_Errors(t *testing.T) {
	_, err := newLauncher("build.vi", installSet()).selectInstall()
	if !errors.Is(err, errNoInstall) {
		t.Errorf("selectInstall() with no installs = %v, want errNoInstall", err)
	}

	detectionFailure := errors.New("registry unavailable")
	_, err = newLauncher("build.vi", func() (*labview.Installs, error) {
		return nil, detectionFailure
	}).selectInstall()
	if !errors.Is(err, detectionFailure) {
		t.Errorf("selectInstall() = %v, want the detection error", err)
	}
}

// recordingLocator is a service locator that records request paths.
type recordingLocator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingLocator) ServeHTTP(w http.ResponseWriter, request *http.Request) {
	r.mu.Lock()
	r.paths = append(r.paths, request.URL.Path)
	r.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (r *recordingLocator) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func newLocatorClient(t *testing.T, locator *recordingLocator) *servicelocator.Client {
	t.Helper()
	server := httptest.NewServer(locator)
	t.Cleanup(server.Close)
	return &servicelocator.Client{
		BaseURL:     server.URL,
		RetryBudget: 100 * time.Millisecond,
		Logger:      discardLogger(),
	}
}

func TestLaunch_VIRegistersBeforeStart(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	vi := testutil.WriteFile(t, t.TempDir(), "build.vi", "", 0o644)
	locator := &recordingLocator{}

	var started process.Config
	launch := newLauncher(vi, installSet(install))
	launch.Locator = newLocatorClient(t, locator)
	launch.start = func(config process.Config) (*process.Supervisor, error) {
		started = config
		if got := locator.recorded(); len(got) != 1 || got[0] != "/publish" {
			t.Errorf("locator requests at start = %v, want one publish", got)
		}
		return nil, nil
	}

	if _, err := launch.Launch(context.Background(), testPort); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	if started.Path != install.ApplicationPath() {
		t.Errorf("started %q, want %q", started.Path, install.ApplicationPath())
	}
	registration, ok := started.Registration.(*servicelocator.Registration)
	if !ok {
		t.Fatalf("Registration = %T, want *servicelocator.Registration", started.Registration)
	}
	if registration.ID() != servicelocator.RegistrationID(canonical(t, vi), "2020", "32bit") {
		t.Errorf("registration ID = %q", registration.ID())
	}
}

func TestLaunch_FailedStartWithdrawsRegistration(t *testing.T) {
	install := fakeInstall(t, "2020", labview.X86)
	vi := testutil.WriteFile(t, t.TempDir(), "build.vi", "", 0o644)
	locator := &recordingLocator{}
	launchFailure := errors.New("exec format error")

	launch := newLauncher(vi, installSet(install))
	launch.Locator = newLocatorClient(t, locator)
	launch.start = func(process.Config) (*process.Supervisor, error) {
		return nil, launchFailure
	}

	_, err := launch.Launch(context.Background(), testPort)
	if !errors.Is(err, launchFailure) {
		t.Fatalf("Launch() error = %v, want the start error", err)
	}
	if diff := cmp.Diff([]string{"/publish", "/delete"}, locator.recorded()); diff != "" {
		t.Errorf("locator requests mismatch (-want +got):\n%s", diff)
	}
}

func TestLaunch_ExecutableSkipsRegistration(t *testing.T) {
	var started process.Config
	launch := newLauncher("tester.exe", nil)
	launch.start = func(config process.Config) (*process.Supervisor, error) {
		started = config
		return nil, nil
	}

	if _, err := launch.Launch(context.Background(), testPort); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	if started.Registration != nil {
		t.Errorf("Registration = %v, want none for an executable", started.Registration)
	}
	if diff := cmp.Diff([]string{"--", "-p:51234"}, started.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}
