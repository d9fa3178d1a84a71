// Package pidfile keeps a single bot process per agent. Two processes
// steering the same agent would fight over its movement controls.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// AlreadyRunningError is returned when a live process holds the lock
type AlreadyRunningError struct {
	Path string
	PID  int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("agent already controlled by PID %d (%s)", e.PID, e.Path)
}

// PIDFile is an advisory per-agent lock backed by a file holding the owner's PID
type PIDFile struct {
	path string
	pid  int
}

// New creates a lock at path
func New(path string) *PIDFile {
	return &PIDFile{path: path, pid: os.Getpid()}
}

// ForAgent places the lock for agent inside dir
func ForAgent(dir, agent string) *PIDFile {
	return New(filepath.Join(dir, "excavator-"+sanitize(agent)+".pid"))
}

// Path returns the lock file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire takes the lock. A file left by a dead process is replaced.
func (p *PIDFile) Acquire() error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", p.pid)
			cerr := f.Close()
			if werr != nil {
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			return cerr
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		owner, ok := p.owner()
		if ok && owner != p.pid && isProcessRunning(owner) {
			return &AlreadyRunningError{Path: p.path, PID: owner}
		}
		if ok && owner == p.pid {
			return nil
		}
		// stale or unreadable
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}
	return fmt.Errorf("failed to acquire %s: lost race with another process", p.path)
}

// Release removes the lock if this process still owns it
func (p *PIDFile) Release() error {
	owner, ok := p.owner()
	if ok && owner != p.pid {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) owner() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

func sanitize(agent string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, agent)
}

// isProcessRunning sends signal 0, which checks existence without delivering anything
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
