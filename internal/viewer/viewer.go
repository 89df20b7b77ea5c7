// Package viewer opens files in the desktop's default image viewer.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupported is returned on platforms without a known opener.
var ErrUnsupported = errors.New("no image viewer for this platform")

// System opens files with the platform opener (xdg-open, open, start).
type System struct {
	goos     string
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewSystem() *System {
	return &System{goos: runtime.GOOS, lookPath: exec.LookPath, command: exec.CommandContext}
}

// Command returns the opener argv for path.
func (s *System) Command(path string) ([]string, error) {
	var argv []string
	switch s.goos {
	case "darwin":
		argv = []string{"open", path}
	case "windows":
		argv = []string{"rundll32", "url.dll,FileProtocolHandler", path}
	case "linux", "freebsd", "openbsd", "netbsd":
		argv = []string{"xdg-open", path}
	default:
		return nil, ErrUnsupported
	}
	if _, err := s.lookPath(argv[0]); err != nil {
		return nil, err
	}
	return argv, nil
}

// Open runs the opener. xdg-open, open and rundll32 return once the viewer is
// launched, so this does not block on the viewer window.
func (s *System) Open(ctx context.Context, path string) error {
	argv, err := s.Command(path)
	if err != nil {
		return err
	}
	if out, err := s.command(ctx, argv[0], argv[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
