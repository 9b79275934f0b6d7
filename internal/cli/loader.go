package cli

import (
	"github.com/kestrelworks/playbook/internal/config"
	"github.com/kestrelworks/playbook/internal/playbook"
	"github.com/kestrelworks/playbook/internal/store"
)

// namedLoader is a Loader that can also enumerate the playbooks it sees.
// All store-backed loaders satisfy it.
type namedLoader interface {
	playbook.Loader
	Names() ([]string, error)
}

// watcherCloser is implemented by loaders holding resources that must be
// released when the command finishes.
type watcherCloser interface {
	Close() error
}

// buildLoader constructs the loader selected by configuration: a git
// loader when git_repo is set, a watching directory loader when watch is
// on, and a plain directory loader otherwise. The second return value is
// non-nil when the loader holds resources the caller must close.
func buildLoader(cfg *config.Configuration) (namedLoader, watcherCloser, error) {
	if cfg.GitRepo != "" {
		return store.NewGit(cfg.GitRepo, cfg.GitRef, cfg.GitPath), nil, nil
	}
	if cfg.Watch {
		w, err := store.NewWatcher(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return w, w, nil
	}
	return store.NewDir(cfg.Dir), nil, nil
}
