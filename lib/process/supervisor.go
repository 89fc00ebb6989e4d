// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/gcli/lib/clock"
)

// DefaultPollInterval is the time between process table scans.
const DefaultPollInterval = 100 * time.Millisecond

// ErrNotFound is returned by Start when the executable does not exist.
var ErrNotFound = errors.New("executable not found")

// Registration is a discovery-service lease made so the application can
// find g-cli. It is withdrawn once the application connects.
type Registration interface {
	Unregister(ctx context.Context) error
}

// Config describes the application to launch.
type Config struct {
	// Path is the executable. It is canonicalized before launch and the
	// canonical form is what the process table is matched against.
	Path string

	// Args are passed to the executable after its own name.
	Args []string

	// Registration, if set, is withdrawn by SetConnected.
	Registration Registration

	// Table is scanned for the application. Nil means SystemTable.
	Table ProcessTable

	// Clock drives the poll interval and kill timeout. Nil means
	// clock.Real().
	Clock clock.Clock

	// PollInterval overrides DefaultPollInterval.
	PollInterval time.Duration

	// Logger receives supervision events. Nil means slog.Default().
	Logger *slog.Logger
}

// Supervisor tracks one launched application.
type Supervisor struct {
	path         string
	table        ProcessTable
	clock        clock.Clock
	pollInterval time.Duration
	logger       *slog.Logger
	kill         func(pid int32) error

	pid   atomic.Int32
	state atomic.Int32

	registrationMu sync.Mutex
	registration   Registration

	stop     chan KillPolicy
	stopOnce sync.Once
	done     chan struct{}
	lost     chan struct{}
	lostOnce sync.Once
}

// Start launches the application and begins supervising it.
func Start(config Config) (*Supervisor, error) {
	path, err := CanonicalPath(config.Path)
	if err != nil {
		return nil, err
	}

	// Nil standard streams are connected to the null device, so the
	// application cannot hold g-cli's terminal open.
	cmd := exec.Command(path, config.Args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launching %s: %w", path, err)
	}

	config.Path = path
	supervisor := newSupervisor(int32(cmd.Process.Pid), config)
	supervisor.logger.Debug("launched application",
		"path", path,
		"pid", cmd.Process.Pid,
		"args", config.Args)

	// Reap the direct child so it does not linger as a zombie after it
	// exits or is killed. Supervision itself goes through the table.
	go func() {
		waitError := cmd.Wait()
		supervisor.logger.Debug("launched process reaped", "pid", cmd.Process.Pid, "result", fmt.Sprint(waitError))
	}()

	go supervisor.monitor()
	return supervisor, nil
}

// newSupervisor builds a supervisor for an already running pid without
// starting the monitor.
func newSupervisor(pid int32, config Config) *Supervisor {
	s := &Supervisor{
		path:         config.Path,
		table:        config.Table,
		clock:        config.Clock,
		pollInterval: config.PollInterval,
		logger:       config.Logger,
		kill:         killProcess,
		registration: config.Registration,
		stop:         make(chan KillPolicy, 1),
		done:         make(chan struct{}),
		lost:         make(chan struct{}),
	}
	if s.table == nil {
		s.table = SystemTable{}
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("path", s.path)
	s.pid.Store(pid)
	s.state.Store(int32(StateRunning))
	return s
}

// PID returns the identifier currently being supervised.
func (s *Supervisor) PID() int32 {
	return s.pid.Load()
}

// State returns the current supervision state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Lost is closed when a scan finds no process running the executable.
func (s *Supervisor) Lost() <-chan struct{} {
	return s.lost
}

// SetConnected withdraws the launch-time registration, if there is one.
// Only the first call does anything.
func (s *Supervisor) SetConnected(ctx context.Context) error {
	s.registrationMu.Lock()
	registration := s.registration
	s.registration = nil
	s.registrationMu.Unlock()

	if registration == nil {
		return nil
	}
	if err := registration.Unregister(ctx); err != nil {
		return fmt.Errorf("withdrawing service registration: %w", err)
	}
	s.logger.Debug("service registration withdrawn")
	return nil
}

// Stop ends supervision according to policy and blocks until the
// monitor has finished. Later calls wait for the first one and ignore
// their own policy.
func (s *Supervisor) Stop(policy KillPolicy) {
	s.stopOnce.Do(func() {
		s.stop <- policy
	})
	<-s.done
}

func (s *Supervisor) setState(state State) {
	previous := State(s.state.Swap(int32(state)))
	if previous != state {
		s.logger.Debug("supervision state changed", "from", previous.String(), "to", state.String())
	}
}

// monitor scans the process table until Stop is called.
func (s *Supervisor) monitor() {
	defer close(s.done)

	for {
		select {
		case policy := <-s.stop:
			s.shutdown(policy)
			return
		default:
		}

		if s.State() == StateRunning {
			s.scan()
		}

		select {
		case policy := <-s.stop:
			s.shutdown(policy)
			return
		case <-s.clock.After(s.pollInterval):
		}
	}
}

// scan checks the table once while the application is running and
// records a loss.
func (s *Supervisor) scan() {
	found, err := s.locate()
	if err != nil {
		s.logger.Warn("scanning the process table failed", "error", err)
		return
	}
	if !found {
		s.setState(StateLost)
		s.lostOnce.Do(func() { close(s.lost) })
		s.logger.Warn("launched application is no longer running", "pid", s.PID())
	}
}

// locate re-resolves the tracked identifier against the table. found is
// false when no process runs the executable. A failed scan reports the
// error and leaves the identifier alone.
func (s *Supervisor) locate() (found bool, err error) {
	matches, err := s.table.MatchingPath(s.path)
	if err != nil {
		return true, err
	}

	current := s.PID()
	pid, ok := CheckProcess(current, matches)
	if !ok {
		return false, nil
	}
	if pid != current {
		if len(matches) > 1 {
			s.logger.Warn("several processes run the launched executable, following the lowest pid",
				"pids", matches)
		}
		s.logger.Info("following relaunched application", "previous_pid", current, "pid", pid)
		s.pid.Store(pid)
	}
	return true, nil
}

func (s *Supervisor) shutdown(policy KillPolicy) {
	if !policy.Kill {
		if s.State() == StateRunning {
			s.setState(StateStopped)
		}
		s.logger.Debug("supervision stopped, application left running", "pid", s.PID())
		return
	}
	if s.State() == StateLost {
		s.logger.Debug("nothing to kill, application already lost")
		return
	}

	s.setState(StateAwaitingNaturalExit)
	deadline := s.clock.Now().Add(policy.After)
	for {
		found, err := s.locate()
		if err != nil {
			s.logger.Warn("scanning the process table failed", "error", err)
		} else if !found {
			s.logger.Debug("application exited before the kill timeout", "pid", s.PID())
			s.setState(StateExited)
			return
		}
		remaining := deadline.Sub(s.clock.Now())
		if remaining <= 0 {
			break
		}
		<-s.clock.After(min(s.pollInterval, remaining))
	}

	pid := s.PID()
	if err := s.kill(pid); err != nil {
		s.logger.Warn("killing the application failed", "pid", pid, "error", err)
		s.setState(StateLost)
		return
	}
	s.logger.Info("killed application after timeout", "pid", pid, "timeout", policy.After)
	s.setState(StateKilled)
}
