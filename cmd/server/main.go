// Package main provides the headless Folio server. It serves the same
// commands as the desktop shell on a loopback port so the front-end can be
// developed in a regular browser. Dialogs are answered on the terminal.
//
// Usage:
//
//	folio-server serve [options] [FILE]
//	folio-server version
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lyallcooper/folio/internal/app"
	"github.com/lyallcooper/folio/internal/config"
	"github.com/lyallcooper/folio/internal/dialog"
	"github.com/lyallcooper/folio/internal/ipc"
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
	if err := newApp().Run(os.Args); err != nil {
		// ExitErrHandler already handled cli.ExitCoder errors
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "folio-server",
		Usage:          "Serve the Folio command surface over loopback HTTP",
		Version:        fmt.Sprintf("%s (commit: %s)", version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			serveCommand(),
			versionCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Start the command server",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides FOLIO_PORT)",
			},
			&cli.StringFlag{
				Name:  "bind",
				Usage: "Address to bind to (overrides FOLIO_BIND_ADDRESS)",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Application data directory (overrides FOLIO_DATA_DIR)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "no-auth",
				Usage: "Disable the session token (only for trusted machines)",
			},
		},
		Action: serveAction,
	}
}

// applyFlags overrides cfg with flags given on the command line
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("bind") {
		cfg.BindAddress = c.String("bind")
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = config.ExpandPath(c.String("data-dir"))
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg.Validate()
}

func serveAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return cli.Exit("serve accepts at most one FILE argument", 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := applyFlags(c, cfg); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	defer logger.Sync()

	backend, err := app.New(app.Options{
		Config:  cfg,
		Logger:  logger,
		Dialogs: dialog.NewTerminalBackend(os.Stdin, os.Stderr),
		Launch:  launch.FromPath(c.Args().First()),
		Version: version,
		Commit:  commit,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer backend.Cleanup()

	var auth *ipc.TokenAuth
	var pageMiddleware []echo.MiddlewareFunc
	if !c.Bool("no-auth") {
		auth, err = ipc.NewTokenAuth()
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to generate token: %v", err), 1)
		}
		pageMiddleware = append(pageMiddleware, auth.CookieExchange())
	} else {
		logger.Warn("token authentication disabled")
	}

	e := backend.Router(auth)
	if err := webfs.RegisterStaticRoutes(e, pageMiddleware...); err != nil {
		return cli.Exit(fmt.Sprintf("failed to load front-end assets: %v", err), 1)
	}

	addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}()

	fmt.Fprintf(c.App.Writer, "Folio listening on %s\n", pageURL(addr, auth))
	logger.Info("server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return cli.Exit(fmt.Sprintf("server error: %v", err), 1)
	}

	logger.Info("server stopped")
	return nil
}

// pageURL is the address to open in a browser, carrying the token if any
func pageURL(addr string, auth *ipc.TokenAuth) string {
	u := "http://" + addr + "/"
	if auth != nil {
		u += "?" + ipc.TokenQueryParam + "=" + auth.Token()
	}
	return u
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "folio %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
