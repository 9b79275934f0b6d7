package store

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kestrelworks/playbook/internal/playbook"
)

// Git is a read-only loader over playbook files committed to a git
// repository. It resolves a revision once and indexes every playbook file
// under the configured subpath of that revision's tree, so resolution is
// pinned to an exact commit regardless of the working tree.
type Git struct {
	repoPath string
	revision string
	subpath  string

	mu    sync.Mutex
	index map[string]*playbook.Playbook
}

// NewGit creates a loader over repoPath at revision (any rev-parse
// expression: branch, tag, or hash; empty means HEAD), reading playbook
// files under subpath within the tree ("" means the repository root).
func NewGit(repoPath, revision, subpath string) *Git {
	if revision == "" {
		revision = "HEAD"
	}
	return &Git{repoPath: repoPath, revision: revision, subpath: strings.Trim(subpath, "/")}
}

// Load implements playbook.Loader. The returned playbook is a copy.
func (g *Git) Load(_ context.Context, name string) (*playbook.Playbook, bool, error) {
	index, err := g.ensureIndex()
	if err != nil {
		return nil, false, err
	}
	pb, ok := index[strings.ToLower(name)]
	if !ok {
		return nil, false, nil
	}
	return pb.Clone(), true, nil
}

// Names returns the playbook names found at the pinned revision, sorted.
func (g *Git) Names() ([]string, error) {
	index, err := g.ensureIndex()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for _, pb := range index {
		names = append(names, pb.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (g *Git) ensureIndex() (map[string]*playbook.Playbook, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index != nil {
		return g.index, nil
	}

	index, err := g.scan()
	if err != nil {
		return nil, err
	}
	g.index = index
	return index, nil
}

func (g *Git) scan() (map[string]*playbook.Playbook, error) {
	repo, err := git.PlainOpenWithOptions(g.repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", g.repoPath, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(g.revision))
	if err != nil {
		return nil, fmt.Errorf("resolving revision %q: %w", g.revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree for %s: %w", hash, err)
	}
	if g.subpath != "" {
		tree, err = tree.Tree(g.subpath)
		if err != nil {
			return nil, fmt.Errorf("reading %s at %s: %w", g.subpath, hash, err)
		}
	}

	index := make(map[string]*playbook.Playbook)
	sources := make(map[string]string)
	for _, entry := range tree.Entries {
		if !entry.Mode.IsFile() || !playbookExtensions[path.Ext(entry.Name)] {
			continue
		}
		file, err := tree.TreeEntryFile(&entry)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
		}
		pb, err := parseTreeFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		key := strings.ToLower(pb.Name)
		if first, dup := sources[key]; dup {
			return nil, fmt.Errorf("duplicate playbook name %q: first in %s, also in %s", pb.Name, first, entry.Name)
		}
		sources[key] = entry.Name
		index[key] = pb
	}
	return index, nil
}

func parseTreeFile(file *object.File) (*playbook.Playbook, error) {
	reader, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}
