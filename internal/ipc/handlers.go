package ipc

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lyallcooper/folio/internal/documents"
)

// Handler adapts Commands to echo handlers
type Handler struct {
	cmds Commands
}

// NewHandler creates a handler for cmds
func NewHandler(cmds Commands) *Handler {
	return &Handler{cmds: cmds}
}

type pathRequest struct {
	Path string `json:"path"`
}

type saveDialogRequest struct {
	DefaultName *string `json:"default_name"`
}

// Data is a pointer so an absent or null payload can be told apart from []
type writeRequest struct {
	Path string               `json:"path"`
	Data *documents.ByteArray `json:"data"`
}

type recursiveRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type queryRequest struct {
	URL    string `json:"url"`
	Query  string `json:"query"`
	Values []any  `json:"values"`
}

type closeRequest struct {
	URL *string `json:"url"`
}

type openRequest struct {
	Target string `json:"target"`
}

// bind decodes the JSON body into v whatever the declared content type.
// An empty body leaves v unchanged.
func bind(c echo.Context, v any) error {
	err := c.Echo().JSONSerializer.Deserialize(c, v)
	if err != nil && !errors.Is(err, io.EOF) {
		return NewBadRequestError("invalid request body", err)
	}
	return nil
}

// bindPath decodes a {path} body and requires a non-empty path
func bindPath(c echo.Context) (string, error) {
	var req pathRequest
	if err := bind(c, &req); err != nil {
		return "", err
	}
	if req.Path == "" {
		return "", NewValidationError("path")
	}
	return req.Path, nil
}

// reply writes v as JSON, or maps err to its envelope
func reply(c echo.Context, v any, err error) error {
	if err != nil {
		return commandError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// HandleOpenFileDialog shows the open dialog and returns the path or null
func (h *Handler) HandleOpenFileDialog(c echo.Context) error {
	path, err := h.cmds.OpenFileDialog(c.Request().Context())
	return reply(c, path, err)
}

// HandleSaveFileDialog shows the save dialog and returns the path or null
func (h *Handler) HandleSaveFileDialog(c echo.Context) error {
	var req saveDialogRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	path, err := h.cmds.SaveFileDialog(c.Request().Context(), req.DefaultName)
	return reply(c, path, err)
}

// HandleReadFileBytes returns the file contents as a number array, or as
// a raw stream when the client accepts application/octet-stream.
func (h *Handler) HandleReadFileBytes(c echo.Context) error {
	path, err := bindPath(c)
	if err != nil {
		return err
	}

	if !acceptsOctetStream(c.Request().Header.Get(echo.HeaderAccept)) {
		data, err := h.cmds.ReadFileBytes(path)
		return reply(c, data, err)
	}

	f, size, err := h.cmds.OpenFile(path)
	if err != nil {
		return commandError(err)
	}
	defer f.Close()
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(size, 10))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, f)
}

// HandleWriteFileBytes writes a number-array payload to path
func (h *Handler) HandleWriteFileBytes(c echo.Context) error {
	var req writeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Path == "" {
		return NewValidationError("path")
	}
	if req.Data == nil {
		return NewValidationError("data")
	}
	return reply(c, nil, h.cmds.WriteFileBytes(req.Path, *req.Data))
}

// HandleWriteFileBytesRaw writes the request body to the path named by the
// X-File-Path header. The body is streamed, never parsed as a whole.
func (h *Handler) HandleWriteFileBytesRaw(c echo.Context) error {
	req, err := documents.NewWriteRequest(c.Request().Header, c.Request().Body)
	if err != nil {
		return commandError(err)
	}
	return reply(c, nil, h.cmds.WriteFileBytesRaw(req))
}

// HandleGetFileOpenedWith returns the launch file path or null
func (h *Handler) HandleGetFileOpenedWith(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cmds.GetFileOpenedWith())
}

// HandleGetAppDataDir returns the application data directory
func (h *Handler) HandleGetAppDataDir(c echo.Context) error {
	dir, err := h.cmds.GetAppDataDir()
	return reply(c, dir, err)
}

// Filesystem plugin

func (h *Handler) HandleFsExists(c echo.Context) error {
	path, err := bindPath(c)
	if err != nil {
		return err
	}
	ok, err := h.cmds.FsExists(path)
	return reply(c, ok, err)
}

func (h *Handler) HandleFsStat(c echo.Context) error {
	path, err := bindPath(c)
	if err != nil {
		return err
	}
	info, err := h.cmds.FsStat(path)
	return reply(c, info, err)
}

func (h *Handler) HandleFsReadDir(c echo.Context) error {
	path, err := bindPath(c)
	if err != nil {
		return err
	}
	entries, err := h.cmds.FsReadDir(path)
	return reply(c, entries, err)
}

func (h *Handler) HandleFsMkdir(c echo.Context) error {
	var req recursiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Path == "" {
		return NewValidationError("path")
	}
	return reply(c, nil, h.cmds.FsMkdir(req.Path, req.Recursive))
}

func (h *Handler) HandleFsRemove(c echo.Context) error {
	var req recursiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Path == "" {
		return NewValidationError("path")
	}
	return reply(c, nil, h.cmds.FsRemove(req.Path, req.Recursive))
}

func (h *Handler) HandleFsRename(c echo.Context) error {
	var req renameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.From == "" {
		return NewValidationError("from")
	}
	if req.To == "" {
		return NewValidationError("to")
	}
	return reply(c, nil, h.cmds.FsRename(req.From, req.To))
}

// SQL plugin

func (h *Handler) HandleSQLLoad(c echo.Context) error {
	var req urlRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.URL == "" {
		return NewValidationError("url")
	}
	handle, err := h.cmds.SQLLoad(req.URL)
	return reply(c, handle, err)
}

func (h *Handler) HandleSQLExecute(c echo.Context) error {
	req, err := bindQuery(c)
	if err != nil {
		return err
	}
	result, err := h.cmds.SQLExecute(req.URL, req.Query, req.Values)
	return reply(c, result, err)
}

func (h *Handler) HandleSQLSelect(c echo.Context) error {
	req, err := bindQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.cmds.SQLSelect(req.URL, req.Query, req.Values)
	return reply(c, rows, err)
}

func (h *Handler) HandleSQLClose(c echo.Context) error {
	var req closeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	closed, err := h.cmds.SQLClose(req.URL)
	return reply(c, closed, err)
}

func bindQuery(c echo.Context) (queryRequest, error) {
	var req queryRequest
	if err := bind(c, &req); err != nil {
		return req, err
	}
	if req.URL == "" {
		return req, NewValidationError("url")
	}
	if strings.TrimSpace(req.Query) == "" {
		return req, NewValidationError("query")
	}
	return req, nil
}

// Shell plugin

func (h *Handler) HandleShellOpen(c echo.Context) error {
	var req openRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Target == "" {
		return NewValidationError("target")
	}
	return reply(c, nil, h.cmds.ShellOpen(req.Target))
}

func (h *Handler) HandleShellReveal(c echo.Context) error {
	path, err := bindPath(c)
	if err != nil {
		return err
	}
	return reply(c, nil, h.cmds.RevealInFileManager(path))
}

func acceptsOctetStream(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(strings.TrimSpace(mediaType), echo.MIMEOctetStream) {
			return true
		}
	}
	return false
}
