// Package shell hands URLs and paths to the operating system's default
// handlers.
package shell

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnsupportedTarget is returned for targets that are neither an allowed
// URL nor an existing path
var ErrUnsupportedTarget = errors.New("unsupported open target")

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// Opener launches platform handlers
type Opener struct {
	goos  string
	start func(*exec.Cmd) error
}

// New creates an Opener for the running platform
func New() *Opener {
	return &Opener{
		goos:  runtime.GOOS,
		start: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open opens an http(s)/mailto URL or an existing file or folder with its
// default application.
func (o *Opener) Open(target string) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if err := o.start(openCommand(o.goos, target)); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// Reveal shows path in the system file manager, selecting it where the
// platform supports that.
func (o *Opener) Reveal(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to reveal path: %w", err)
	}
	if err := o.start(revealCommand(o.goos, path)); err != nil {
		return fmt.Errorf("failed to reveal %s: %w", path, err)
	}
	return nil
}

func validateTarget(target string) error {
	if target == "" {
		return fmt.Errorf("%w: empty target", ErrUnsupportedTarget)
	}
	// Existing paths first so "C:\..." is not read as a URL scheme
	if _, err := os.Stat(target); err == nil {
		return nil
	}
	u, err := url.Parse(target)
	if err == nil && allowedSchemes[strings.ToLower(u.Scheme)] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
}

func openCommand(goos, target string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", target)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default: // Linux
		return exec.Command("xdg-open", target)
	}
}

func revealCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", "-R", path) // -R reveals in Finder
	case "windows":
		return exec.Command("explorer", "/select,", path)
	default: // Linux has no portable select, open the containing folder
		return exec.Command("xdg-open", filepath.Dir(path))
	}
}
