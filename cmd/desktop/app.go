package main

import (
	"context"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"github.com/lyallcooper/folio/internal/app"
	"github.com/lyallcooper/folio/internal/db"
	"github.com/lyallcooper/folio/internal/dialog"
	"github.com/lyallcooper/folio/internal/documents"
	"github.com/lyallcooper/folio/internal/fsaccess"
	"github.com/lyallcooper/folio/internal/launch"
)

// App struct holds the Wails application context and provides
// methods that can be called from the frontend.
type App struct {
	ctx     context.Context
	backend *app.Backend
	dialogs *dialog.WailsBackend
	launch  launch.Arg
	logger  *zap.Logger

	execJS func(ctx context.Context, script string)
}

// NewApp creates a new App instance.
func NewApp(backend *app.Backend, dialogs *dialog.WailsBackend, arg launch.Arg) *App {
	return &App{
		ctx:     context.Background(),
		backend: backend,
		dialogs: dialogs,
		launch:  arg,
		logger:  backend.Logger,
		execJS:  wailsRuntime.WindowExecJS,
	}
}

// startup is called when the app starts.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.dialogs.Startup(ctx)
}

// domReady hands the launch file to the page. It is fire-and-forget: the
// page can also ask with GetFileOpenedWith.
func (a *App) domReady(ctx context.Context) {
	script, ok := a.launch.Script()
	if !ok {
		return
	}
	path, _ := a.launch.Path()
	a.logger.Info("injecting launch file", zap.String("path", path))
	a.execJS(ctx, script)
}

// shutdown is called when the window closes.
func (a *App) shutdown(ctx context.Context) {
	a.logger.Info("shutting down")
	a.backend.Cleanup()
	a.logger.Info("shutdown complete")
}

// OpenFileDialog shows the native open dialog. Returns null on cancel.
func (a *App) OpenFileDialog() (*string, error) {
	return a.backend.OpenFileDialog(a.ctx)
}

// SaveFileDialog shows the native save dialog. Returns null on cancel.
func (a *App) SaveFileDialog(defaultName *string) (*string, error) {
	return a.backend.SaveFileDialog(a.ctx, defaultName)
}

// ReadFileBytes returns the file contents as a number array.
func (a *App) ReadFileBytes(path string) (documents.ByteArray, error) {
	return a.backend.ReadFileBytes(path)
}

// WriteFileBytes writes a number array to path. Large documents should
// use the raw write route instead. A null payload is rejected.
func (a *App) WriteFileBytes(path string, data documents.ByteArray) error {
	if err := documents.RequireData(data); err != nil {
		return err
	}
	return a.backend.WriteFileBytes(path, data)
}

// GetFileOpenedWith returns the file the app was launched with, or null.
func (a *App) GetFileOpenedWith() *string {
	return a.backend.GetFileOpenedWith()
}

// GetAppDataDir returns the application data directory.
func (a *App) GetAppDataDir() (string, error) {
	return a.backend.GetAppDataDir()
}

func (a *App) FsExists(path string) (bool, error) {
	return a.backend.FsExists(path)
}

func (a *App) FsStat(path string) (*fsaccess.FileInfo, error) {
	return a.backend.FsStat(path)
}

func (a *App) FsReadDir(path string) ([]fsaccess.DirEntry, error) {
	return a.backend.FsReadDir(path)
}

func (a *App) FsMkdir(path string, recursive bool) error {
	return a.backend.FsMkdir(path, recursive)
}

func (a *App) FsRemove(path string, recursive bool) error {
	return a.backend.FsRemove(path, recursive)
}

func (a *App) FsRename(from, to string) error {
	return a.backend.FsRename(from, to)
}

func (a *App) SQLLoad(url string) (string, error) {
	return a.backend.SQLLoad(url)
}

func (a *App) SQLExecute(url, query string, values []any) (*db.QueryResult, error) {
	return a.backend.SQLExecute(url, query, values)
}

func (a *App) SQLSelect(url, query string, values []any) ([]map[string]any, error) {
	return a.backend.SQLSelect(url, query, values)
}

func (a *App) SQLClose(url *string) (bool, error) {
	return a.backend.SQLClose(url)
}

// ShellOpen opens a URL or path with the system handler.
func (a *App) ShellOpen(target string) error {
	return a.backend.ShellOpen(target)
}

// RevealInFileManager opens the system file manager at the specified path.
// This can be called from the frontend to reveal files/folders.
func (a *App) RevealInFileManager(path string) error {
	return a.backend.RevealInFileManager(path)
}
