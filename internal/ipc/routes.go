package ipc

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RoutePrefix is the path under which all commands are served
const RoutePrefix = "/ipc"

// Options configures the router
type Options struct {
	Logger *zap.Logger

	// Auth guards command routes. Nil disables token checks (desktop mode).
	Auth *TokenAuth
}

// NewRouter creates an echo instance serving cmds under /ipc
func NewRouter(cmds Commands, opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(RequestLogger(logger))

	g := e.Group(RoutePrefix)
	if opts.Auth != nil {
		g.Use(opts.Auth.Middleware())
	}
	RegisterRoutes(g, NewHandler(cmds))
	return e
}

// RegisterRoutes registers every command route on g
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/open_file_dialog", h.HandleOpenFileDialog)
	g.POST("/save_file_dialog", h.HandleSaveFileDialog)
	g.POST("/read_file_bytes", h.HandleReadFileBytes)
	g.POST("/write_file_bytes", h.HandleWriteFileBytes)
	g.POST("/write_file_bytes_raw", h.HandleWriteFileBytesRaw)
	g.POST("/get_file_opened_with", h.HandleGetFileOpenedWith)
	g.POST("/get_app_data_dir", h.HandleGetAppDataDir)

	fs := g.Group("/fs")
	fs.POST("/exists", h.HandleFsExists)
	fs.POST("/stat", h.HandleFsStat)
	fs.POST("/read_dir", h.HandleFsReadDir)
	fs.POST("/mkdir", h.HandleFsMkdir)
	fs.POST("/remove", h.HandleFsRemove)
	fs.POST("/rename", h.HandleFsRename)

	sql := g.Group("/sql")
	sql.POST("/load", h.HandleSQLLoad)
	sql.POST("/execute", h.HandleSQLExecute)
	sql.POST("/select", h.HandleSQLSelect)
	sql.POST("/close", h.HandleSQLClose)

	shell := g.Group("/shell")
	shell.POST("/open", h.HandleShellOpen)
	shell.POST("/reveal", h.HandleShellReveal)
}
