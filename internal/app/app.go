// Package app provides shared application initialization logic used by both
// the headless server and desktop (Wails) entry points.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lyallcooper/folio/internal/config"
	"github.com/lyallcooper/folio/internal/db"
	"github.com/lyallcooper/folio/internal/dialog"
	"github.com/lyallcooper/folio/internal/documents"
	"github.com/lyallcooper/folio/internal/fsaccess"
	"github.com/lyallcooper/folio/internal/ipc"
	"github.com/lyallcooper/folio/internal/launch"
	"github.com/lyallcooper/folio/internal/scheduler"
	"github.com/lyallcooper/folio/internal/shell"
)

// Options contains what the entry points decide before building the backend.
type Options struct {
	// Config is the loaded configuration. Required.
	Config *config.Config

	// Logger for all components. Defaults to a no-op logger.
	Logger *zap.Logger

	// Dialogs shows native file pickers. Required.
	Dialogs dialog.Backend

	// Launch is the file the process was started with, if any.
	Launch launch.Arg

	// Version string for display.
	Version string

	// Commit hash for display.
	Commit string
}

// Backend owns every component and implements the command surface.
type Backend struct {
	Config    *config.Config
	Logger    *zap.Logger
	Documents *documents.Service
	Picker    *dialog.Picker
	SQL       *db.Manager
	Store     *db.Store
	Scheduler *scheduler.Scheduler
	Shell     *shell.Opener

	launch  launch.Arg
	version string
}

var _ ipc.Commands = (*Backend)(nil)

// New initializes all application components and returns a Backend.
// Call Backend.Cleanup() when done to release resources.
func New(opts Options) (*Backend, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Dialogs == nil {
		return nil, fmt.Errorf("dialog backend is required")
	}
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	versionStr := buildVersionString(opts.Version, opts.Commit)
	logger.Info("folio starting",
		zap.String("version", versionStr),
		zap.String("data_dir", cfg.DataDir),
		zap.String("config_file", cfg.ConfigFile),
		zap.String("write_mode", cfg.WriteMode),
		zap.String("sql_driver", cfg.SQLDriver),
	)
	if path, ok := opts.Launch.Path(); ok {
		logger.Info("opened with file", zap.String("path", path))
	}

	store, err := db.OpenStore(cfg.SQLDriver, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	manager := db.NewManager(cfg.SQLDriver, cfg.DataDir, logger.Named("sql"))

	sched, err := scheduler.New(maintainAll{store, manager}, cfg.MaintenanceSchedule, logger.Named("scheduler"))
	if err != nil {
		store.Close()
		return nil, err
	}
	sched.Start()

	picker := dialog.NewPicker(opts.Dialogs, dialog.FiltersFromConfig(cfg.DialogFilters), logger.Named("dialog"))
	picker.Recents = storeRecents{store: store, logger: logger.Named("dialog")}

	return &Backend{
		Config:    cfg,
		Logger:    logger,
		Documents: documents.NewService(cfg.AtomicWrites(), logger.Named("documents")),
		Picker:    picker,
		SQL:       manager,
		Store:     store,
		Scheduler: sched,
		Shell:     shell.New(),
		launch:    opts.Launch,
		version:   versionStr,
	}, nil
}

// Router returns the HTTP command router. A nil auth disables token checks.
func (b *Backend) Router(auth *ipc.TokenAuth) *echo.Echo {
	return ipc.NewRouter(b, ipc.Options{Logger: b.Logger.Named("ipc"), Auth: auth})
}

// Version returns the display version
func (b *Backend) Version() string {
	return b.version
}

// Cleanup releases all resources held by the backend.
func (b *Backend) Cleanup() {
	if b.Scheduler != nil {
		b.Scheduler.Stop()
	}
	if b.SQL != nil {
		if _, err := b.SQL.Close(nil); err != nil {
			b.Logger.Warn("failed to close databases", zap.Error(err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			b.Logger.Warn("failed to close state store", zap.Error(err))
		}
		b.Store = nil
	}
}

// Dialogs

func (b *Backend) OpenFileDialog(ctx context.Context) (*string, error) {
	return b.Picker.OpenFile(ctx)
}

func (b *Backend) SaveFileDialog(ctx context.Context, defaultName *string) (*string, error) {
	return b.Picker.SaveFile(ctx, defaultName)
}

// Documents

func (b *Backend) ReadFileBytes(path string) (documents.ByteArray, error) {
	return b.Documents.ReadFileBytes(path)
}

func (b *Backend) OpenFile(path string) (io.ReadCloser, int64, error) {
	return b.Documents.Open(path)
}

func (b *Backend) WriteFileBytes(path string, data []byte) error {
	return b.Documents.WriteFileBytes(path, data)
}

func (b *Backend) WriteFileBytesRaw(req documents.WriteRequest) error {
	return b.Documents.WriteFileBytesRaw(req)
}

// GetFileOpenedWith returns the launch file path, or nil
func (b *Backend) GetFileOpenedWith() *string {
	return b.launch.Optional()
}

// GetAppDataDir returns the data directory, creating it if missing
func (b *Backend) GetAppDataDir() (string, error) {
	return b.Config.EnsureDataDir()
}

// Filesystem plugin

func (b *Backend) FsExists(path string) (bool, error) {
	return fsaccess.Exists(path)
}

func (b *Backend) FsStat(path string) (*fsaccess.FileInfo, error) {
	return fsaccess.Stat(path)
}

func (b *Backend) FsReadDir(path string) ([]fsaccess.DirEntry, error) {
	return fsaccess.ReadDir(path)
}

func (b *Backend) FsMkdir(path string, recursive bool) error {
	return fsaccess.Mkdir(path, recursive)
}

func (b *Backend) FsRemove(path string, recursive bool) error {
	return fsaccess.Remove(path, recursive)
}

func (b *Backend) FsRename(from, to string) error {
	return fsaccess.Rename(from, to)
}

// SQL plugin

func (b *Backend) SQLLoad(url string) (string, error) {
	return b.SQL.Load(url)
}

func (b *Backend) SQLExecute(url, query string, values []any) (*db.QueryResult, error) {
	return b.SQL.Execute(url, query, values)
}

func (b *Backend) SQLSelect(url, query string, values []any) ([]map[string]any, error) {
	return b.SQL.Select(url, query, values)
}

func (b *Backend) SQLClose(url *string) (bool, error) {
	return b.SQL.Close(url)
}

// Shell plugin

func (b *Backend) ShellOpen(target string) error {
	return b.Shell.Open(target)
}

func (b *Backend) RevealInFileManager(path string) error {
	return b.Shell.Reveal(path)
}

func buildVersionString(version, commit string) string {
	if version == "" {
		version = "dev"
	}
	if strings.HasPrefix(version, "v") {
		return version
	}
	shortCommit := commit
	if len(shortCommit) > 7 {
		shortCommit = shortCommit[:7]
	}
	if shortCommit == "" {
		shortCommit = "unknown"
	}
	return version + "-" + shortCommit
}
