// Package dialog presents native file pickers. Cancelling a dialog is a
// normal outcome reported as an absent path, not an error.
package dialog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lyallcooper/folio/internal/config"
)

// ErrUnavailable means no dialog could be shown at all (no UI context,
// no terminal). It is the only dialog failure surfaced to callers.
var ErrUnavailable = errors.New("native dialog unavailable")

// Filter restricts a dialog to a named set of glob patterns
type Filter struct {
	Name     string
	Patterns []string
}

// Label returns the filter name with its patterns, e.g. "PDF Files (*.pdf)"
func (f Filter) Label() string {
	return f.Name + " (" + strings.Join(f.Patterns, ", ") + ")"
}

// OpenOptions configures an open-file dialog
type OpenOptions struct {
	Title     string
	Directory string
	Filters   []Filter
}

// SaveOptions configures a save-file dialog
type SaveOptions struct {
	Title       string
	Directory   string
	DefaultName string
	Filters     []Filter
}

// Backend shows blocking dialogs. An empty path with a nil error means the
// user cancelled.
type Backend interface {
	OpenFile(opts OpenOptions) (string, error)
	SaveFile(opts SaveOptions) (string, error)
}

// FiltersFromConfig converts configured filters to dialog filters
func FiltersFromConfig(cfgs []config.FilterConfig) []Filter {
	filters := make([]Filter, 0, len(cfgs))
	for _, c := range cfgs {
		filters = append(filters, Filter{Name: c.Name, Patterns: append([]string(nil), c.Patterns...)})
	}
	return filters
}

// Recents remembers the folder of the last picked file so the next dialog
// starts there
type Recents interface {
	LastDirectory() string
	RememberDirectory(dir string)
}

// Picker runs dialogs from a Backend on their own goroutine and normalizes
// their results.
type Picker struct {
	backend Backend
	filters []Filter
	logger  *zap.Logger

	// Recents is optional
	Recents Recents
}

// NewPicker creates a Picker using the given backend and filters
func NewPicker(backend Backend, filters []Filter, logger *zap.Logger) *Picker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Picker{backend: backend, filters: filters, logger: logger}
}

// OpenFile asks the user for a file to open. It returns nil when the user
// cancels.
func (p *Picker) OpenFile(ctx context.Context) (*string, error) {
	opts := OpenOptions{Title: "Open Document", Directory: p.lastDirectory(), Filters: p.filters}
	path, err := run(ctx, func() (string, error) {
		return p.backend.OpenFile(opts)
	})
	return p.result("open", path, err)
}

// SaveFile asks the user for a save location, optionally suggesting a file
// name. It returns nil when the user cancels.
func (p *Picker) SaveFile(ctx context.Context, defaultName *string) (*string, error) {
	opts := SaveOptions{Title: "Save Document", Directory: p.lastDirectory(), Filters: p.filters}
	if defaultName != nil {
		opts.DefaultName = *defaultName
	}
	path, err := run(ctx, func() (string, error) {
		return p.backend.SaveFile(opts)
	})
	return p.result("save", path, err)
}

func (p *Picker) result(kind, path string, err error) (*string, error) {
	if err != nil {
		if errors.Is(err, ErrUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Failures after the dialog was shown read as a cancel
		p.logger.Warn("dialog failed, treating as cancel", zap.String("dialog", kind), zap.Error(err))
		return nil, nil
	}
	if path == "" {
		p.logger.Debug("dialog cancelled", zap.String("dialog", kind))
		return nil, nil
	}
	if p.Recents != nil {
		p.Recents.RememberDirectory(filepath.Dir(path))
	}
	return &path, nil
}

func (p *Picker) lastDirectory() string {
	if p.Recents == nil {
		return ""
	}
	return p.Recents.LastDirectory()
}

// run executes a blocking dialog call on its own goroutine so only the
// caller waits on it. If ctx ends first the dialog is abandoned.
func run(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		path string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		path, err := fn()
		ch <- result{path: path, err: err}
	}()

	select {
	case r := <-ch:
		return r.path, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
