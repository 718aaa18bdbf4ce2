package main

import (
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"go.uber.org/zap"

	"github.com/lyallcooper/folio/internal/app"
	"github.com/lyallcooper/folio/internal/config"
	"github.com/lyallcooper/folio/internal/dialog"
	"github.com/lyallcooper/folio/internal/launch"
	"github.com/lyallcooper/folio/internal/logging"
	"github.com/lyallcooper/folio/internal/webfs"
)

// Version info - injected at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Captured once, before anything can change argv
	arg := launch.FromArgs(os.Args)

	bootLogger := logging.New("info", os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal("failed to load config", zap.Error(err))
	}
	dataDir, err := cfg.EnsureDataDir()
	if err != nil {
		bootLogger.Fatal("failed to prepare data directory", zap.Error(err))
	}

	logger, logFile, err := logging.NewWithFile(cfg.LogLevel, dataDir)
	if err != nil {
		bootLogger.Warn("file logging unavailable, using stderr", zap.Error(err))
		logger = logging.New(cfg.LogLevel, os.Stderr)
	} else {
		defer logFile.Close()
	}
	defer logger.Sync()

	dialogs := dialog.NewWailsBackend()
	backend, err := app.New(app.Options{
		Config:  cfg,
		Logger:  logger,
		Dialogs: dialogs,
		Launch:  arg,
		Version: version,
		Commit:  commit,
	})
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	assets, err := webfs.Assets()
	if err != nil {
		logger.Fatal("failed to load front-end assets", zap.Error(err))
	}

	// Create Wails application
	desktopApp := NewApp(backend, dialogs, arg)

	err = wails.Run(&options.App{
		Title:     "Folio",
		Width:     1200,
		Height:    800,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
			// Commands posted with fetch, including raw writes
			Handler: backend.Router(nil),
		},
		OnStartup:  desktopApp.startup,
		OnDomReady: desktopApp.domReady,
		OnShutdown: desktopApp.shutdown,
		Bind: []interface{}{
			desktopApp,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: false,
			},
			About: &mac.AboutInfo{
				Title:   "Folio",
				Message: fmt.Sprintf("Document Viewer\n\nVersion: %s", displayVersion()),
			},
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
		},
	})

	if err != nil {
		logger.Fatal("wails error", zap.Error(err))
	}
}

// displayVersion creates a display version string.
func displayVersion() string {
	if version == "dev" {
		return "Development"
	}
	return version
}
