// Package db is the embedded SQL store used by the front-end. Connections
// are addressed by URLs of the form "sqlite:<name>", where relative names
// live in the application data directory.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const urlPrefix = "sqlite:"

var (
	// ErrNotLoaded is returned when a connection URL has not been loaded
	ErrNotLoaded = errors.New("database not loaded")

	// ErrUnsupportedURL is returned for URLs that are not sqlite:<name>
	ErrUnsupportedURL = errors.New("unsupported database url")
)

// Manager owns the open connections, keyed by URL
type Manager struct {
	driver  string
	dataDir string
	logger  *zap.Logger

	mu    sync.Mutex
	conns map[string]*DB
}

// NewManager creates a manager opening databases with driver, resolving
// relative names against dataDir
func NewManager(driver, dataDir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		driver:  driver,
		dataDir: dataDir,
		logger:  logger,
		conns:   make(map[string]*DB),
	}
}

// resolvePath maps a connection URL to a filesystem path (or :memory:)
func (m *Manager) resolvePath(url string) (string, error) {
	if !strings.HasPrefix(url, urlPrefix) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	}
	name := strings.TrimPrefix(url, urlPrefix)
	var path string
	switch {
	case name == "":
		return "", fmt.Errorf("%w: missing database name", ErrUnsupportedURL)
	case name == ":memory:":
		return name, nil
	case filepath.IsAbs(name):
		path = filepath.Clean(name)
	default:
		path = filepath.Join(m.dataDir, name)
	}
	if path == filepath.Join(m.dataDir, StoreFile) {
		return "", fmt.Errorf("%w: %s is reserved", ErrUnsupportedURL, StoreFile)
	}
	return path, nil
}

// Load opens the database for url, reusing an existing connection. It
// returns the url, which callers use as the connection handle.
func (m *Manager) Load(url string) (string, error) {
	path, err := m.resolvePath(url)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[url]; ok {
		return url, nil
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := Open(m.driver, path)
	if err != nil {
		return "", err
	}
	m.conns[url] = database
	m.logger.Info("database loaded", zap.String("url", url), zap.String("path", path), zap.String("driver", m.driver))
	return url, nil
}

// Get returns the loaded connection for url
func (m *Manager) Get(url string) (*DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	database, ok := m.conns[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, url)
	}
	return database, nil
}

// Execute runs a statement on the connection for url
func (m *Manager) Execute(url, query string, values []any) (*QueryResult, error) {
	database, err := m.Get(url)
	if err != nil {
		return nil, err
	}
	return database.Execute(query, values)
}

// Select runs a query on the connection for url
func (m *Manager) Select(url, query string, values []any) ([]map[string]any, error) {
	database, err := m.Get(url)
	if err != nil {
		return nil, err
	}
	return database.Select(query, values)
}

// Close closes the connection for url, or every connection when url is
// nil. It reports whether anything was closed.
func (m *Manager) Close(url *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var targets []string
	if url != nil {
		if _, ok := m.conns[*url]; !ok {
			return false, nil
		}
		targets = []string{*url}
	} else {
		for u := range m.conns {
			targets = append(targets, u)
		}
	}

	var errs []error
	for _, u := range targets {
		if err := m.conns[u].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", u, err))
		}
		delete(m.conns, u)
	}
	return len(targets) > 0, errors.Join(errs...)
}

// URLs returns the loaded connection URLs in sorted order
func (m *Manager) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.conns))
	for u := range m.conns {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Optimize runs housekeeping on every loaded connection and returns the
// combined errors
func (m *Manager) Optimize() error {
	var errs []error
	for _, u := range m.URLs() {
		database, err := m.Get(u)
		if err != nil {
			continue // closed meanwhile
		}
		if err := database.Optimize(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
		}
	}
	return errors.Join(errs...)
}
