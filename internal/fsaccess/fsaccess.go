// Package fsaccess provides the small set of filesystem queries and
// mutations the front-end needs besides whole-file reads and writes.
package fsaccess

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"
)

// FileInfo describes a filesystem entry
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	IsDir   bool      `json:"is_dir"`
	IsFile  bool      `json:"is_file"`
	Mode    uint32    `json:"mode"`
	ModTime time.Time `json:"mod_time"`
}

// DirEntry is one entry of a directory listing
type DirEntry struct {
	Name      string `json:"name"`
	IsDir     bool   `json:"is_dir"`
	IsFile    bool   `json:"is_file"`
	IsSymlink bool   `json:"is_symlink"`
}

// Exists reports whether path exists. Errors other than not-exist are
// returned so permission problems are not mistaken for absence.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check path: %w", err)
}

// Stat returns information about path, following symlinks
func Stat(path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	return &FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		IsFile:  info.Mode().IsRegular(),
		Mode:    uint32(info.Mode().Perm()),
		ModTime: info.ModTime(),
	}, nil
}

// ReadDir lists a directory, sorted by name
func ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		t := e.Type()
		out = append(out, DirEntry{
			Name:      e.Name(),
			IsDir:     e.IsDir(),
			IsFile:    t.IsRegular(),
			IsSymlink: t&fs.ModeSymlink != 0,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Mkdir creates a directory, including parents when recursive is set
func Mkdir(path string, recursive bool) error {
	var err error
	if recursive {
		err = os.MkdirAll(path, 0755)
	} else {
		err = os.Mkdir(path, 0755)
	}
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Remove deletes a file or empty directory, or a whole tree when recursive
// is set
func Remove(path string, recursive bool) error {
	if recursive {
		// RemoveAll succeeds on missing paths; keep not-exist visible
		if _, err := os.Lstat(path); err != nil {
			return fmt.Errorf("failed to remove path: %w", err)
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove path: %w", err)
		}
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove path: %w", err)
	}
	return nil
}

// Rename moves from to to, replacing an existing file at to
func Rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename path: %w", err)
	}
	return nil
}
