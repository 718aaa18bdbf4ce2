package dialog

import (
	"context"
	"strings"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Indirection so tests can run without a Wails frontend
var (
	wailsOpenFile = wailsRuntime.OpenFileDialog
	wailsSaveFile = wailsRuntime.SaveFileDialog
)

// WailsBackend shows dialogs through the Wails runtime. It needs the
// application context handed to OnStartup before it can show anything.
type WailsBackend struct {
	mu  sync.RWMutex
	ctx context.Context
}

// NewWailsBackend creates a backend with no context yet
func NewWailsBackend() *WailsBackend {
	return &WailsBackend{}
}

// Startup records the Wails application context
func (b *WailsBackend) Startup(ctx context.Context) {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
}

func (b *WailsBackend) appContext() (context.Context, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ctx == nil {
		return nil, ErrUnavailable
	}
	return b.ctx, nil
}

// OpenFile shows the native open dialog
func (b *WailsBackend) OpenFile(opts OpenOptions) (string, error) {
	ctx, err := b.appContext()
	if err != nil {
		return "", err
	}
	return wailsOpenFile(ctx, wailsRuntime.OpenDialogOptions{
		Title:            opts.Title,
		DefaultDirectory: opts.Directory,
		Filters:          wailsFilters(opts.Filters),
	})
}

// SaveFile shows the native save dialog
func (b *WailsBackend) SaveFile(opts SaveOptions) (string, error) {
	ctx, err := b.appContext()
	if err != nil {
		return "", err
	}
	return wailsSaveFile(ctx, wailsRuntime.SaveDialogOptions{
		Title:            opts.Title,
		DefaultDirectory: opts.Directory,
		DefaultFilename:  opts.DefaultName,
		Filters:          wailsFilters(opts.Filters),
	})
}

func wailsFilters(filters []Filter) []wailsRuntime.FileFilter {
	out := make([]wailsRuntime.FileFilter, 0, len(filters))
	for _, f := range filters {
		out = append(out, wailsRuntime.FileFilter{
			DisplayName: f.Label(),
			Pattern:     strings.Join(f.Patterns, ";"),
		})
	}
	return out
}
