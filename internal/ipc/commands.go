// Package ipc serves the backend command surface over HTTP. The desktop
// shell mounts it behind the webview asset server; headless mode serves it
// on a loopback port.
package ipc

import (
	"context"
	"io"

	"github.com/lyallcooper/folio/internal/db"
	"github.com/lyallcooper/folio/internal/documents"
	"github.com/lyallcooper/folio/internal/fsaccess"
)

// Commands is the set of operations the front-end can invoke
type Commands interface {
	OpenFileDialog(ctx context.Context) (*string, error)
	SaveFileDialog(ctx context.Context, defaultName *string) (*string, error)

	ReadFileBytes(path string) (documents.ByteArray, error)
	OpenFile(path string) (io.ReadCloser, int64, error)
	WriteFileBytes(path string, data []byte) error
	WriteFileBytesRaw(req documents.WriteRequest) error

	GetFileOpenedWith() *string
	GetAppDataDir() (string, error)

	FsExists(path string) (bool, error)
	FsStat(path string) (*fsaccess.FileInfo, error)
	FsReadDir(path string) ([]fsaccess.DirEntry, error)
	FsMkdir(path string, recursive bool) error
	FsRemove(path string, recursive bool) error
	FsRename(from, to string) error

	SQLLoad(url string) (string, error)
	SQLExecute(url, query string, values []any) (*db.QueryResult, error)
	SQLSelect(url, query string, values []any) ([]map[string]any, error)
	SQLClose(url *string) (bool, error)

	ShellOpen(target string) error
	RevealInFileManager(path string) error
}
