package app

import (
	"errors"

	"go.uber.org/zap"

	"github.com/lyallcooper/folio/internal/db"
	"github.com/lyallcooper/folio/internal/scheduler"
)

// storeRecents keeps the dialogs' last folder in the state store. Store
// failures only cost the convenience, so they are logged and ignored.
type storeRecents struct {
	store  *db.Store
	logger *zap.Logger
}

func (r storeRecents) LastDirectory() string {
	dir, err := r.store.GetSetting(db.SettingLastDirectory)
	if err != nil {
		r.logger.Warn("failed to read last directory", zap.Error(err))
		return ""
	}
	return dir
}

func (r storeRecents) RememberDirectory(dir string) {
	if err := r.store.SetSetting(db.SettingLastDirectory, dir); err != nil {
		r.logger.Warn("failed to remember directory", zap.String("dir", dir), zap.Error(err))
	}
}

// maintainAll runs housekeeping on each target in turn
type maintainAll []scheduler.Maintainer

func (m maintainAll) Optimize() error {
	var errs []error
	for _, t := range m {
		if err := t.Optimize(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
