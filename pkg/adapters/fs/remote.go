package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/silt/pkg/core"
)

const documentPattern = "*.json"

// Remote serves documents out of a directory tree. Layout:
//
//	<root>/<collection>/<owner>/<id>.json
//
// Any process (or file syncer) writing into the tree becomes visible to
// subscribers through fsnotify.
type Remote struct {
	root string
}

// NewRemote creates the root directory if needed and returns a remote over it.
func NewRemote(root string) (*Remote, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create remote dir: %w", err)
	}
	return &Remote{root: root}, nil
}

// Collection returns the named collection. The directory is created lazily
// on first write or subscribe.
func (r *Remote) Collection(name string) core.Collection {
	return &Collection{name: name, dir: filepath.Join(r.root, name)}
}

// Collection is one directory of owner-partitioned documents.
type Collection struct {
	name string
	dir  string
}

type ownerProbe struct {
	OwnerID string `json:"ownerId"`
}

// Write stores doc at <dir>/<owner>/<id>.json via an atomic rename.
func (c *Collection) Write(ctx context.Context, id string, doc []byte) error {
	var probe ownerProbe
	if err := json.Unmarshal(doc, &probe); err != nil {
		return fmt.Errorf("invalid document for %s/%s: %w", c.name, id, err)
	}
	if probe.OwnerID == "" {
		return fmt.Errorf("document %s/%s has no owner", c.name, id)
	}

	ownerDir := filepath.Join(c.dir, probe.OwnerID)
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
	}
	path := filepath.Join(ownerDir, id+".json")
	if err := writeFileAtomic(path, doc, snapshotPerm); err != nil {
		return fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
	}
	return nil
}

// QueryByOwner returns every document under ownerID's directory, keyed by id.
func (c *Collection) QueryByOwner(ctx context.Context, ownerID string) (map[string][]byte, error) {
	ownerDir := filepath.Join(c.dir, ownerID)
	entries, err := os.ReadDir(ownerDir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
	}

	out := make(map[string][]byte)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(documentPattern, entry.Name()); !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ownerDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
		}
		out[strings.TrimSuffix(entry.Name(), ".json")] = data
	}
	return out, nil
}

// Subscribe watches ownerID's directory and invokes fn for each document
// write. Atomic temp files carry no .json suffix, so only completed renames
// match the pattern.
func (c *Collection) Subscribe(ctx context.Context, ownerID string, fn func(core.RemoteChange)) (core.Unsubscribe, error) {
	ownerDir := filepath.Join(c.dir, ownerID)
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(ownerDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", ownerDir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	lifecycle.Go(watchCtx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if change, ok := c.mapEvent(event, ownerID); ok {
					fn(change)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				// Watcher errors are transient here; the next full query
				// reconciles anything missed.
			}
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			watcher.Close()
		})
	}, nil
}

// mapEvent converts a filesystem event into a remote change, filtering out
// temp files, removals, and anything that is not a document.
func (c *Collection) mapEvent(event fsnotify.Event, ownerID string) (core.RemoteChange, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return core.RemoteChange{}, false
	}
	name := filepath.Base(event.Name)
	if ok, _ := doublestar.Match(documentPattern, name); !ok {
		return core.RemoteChange{}, false
	}
	return core.RemoteChange{
		Collection: c.name,
		ID:         strings.TrimSuffix(name, ".json"),
		OwnerID:    ownerID,
		Timestamp:  core.NowMillis(),
	}, true
}
