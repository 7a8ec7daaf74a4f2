package pathfinding

import (
	"fmt"
	"strings"
	"time"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
	"github.com/automoto/doomerang-nav/navgraph"
)

// SnapshotStore is a key/value blob store. *gdata.Manager satisfies it.
// LoadItem returns nil data for a missing key.
type SnapshotStore interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

// SnapshotCache keeps encoded graphs keyed by level and build settings, so a
// level is only rebuilt when its settings change.
type SnapshotCache struct {
	store SnapshotStore
}

func NewSnapshotCache(store SnapshotStore) *SnapshotCache {
	return &SnapshotCache{store: store}
}

// Key returns the store key for a level built with cfg.
func (c *SnapshotCache) Key(level string, cfg config.NavConfig) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, level)
	return fmt.Sprintf("navgraph_%s_%016x", clean, cfg.Fingerprint())
}

// Load returns the cached graph for level, or false on a miss.
func (c *SnapshotCache) Load(level string, cfg config.NavConfig) (*navgraph.Graph, bool, error) {
	data, err := c.store.LoadItem(c.Key(level, cfg))
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", level, err)
	}
	if data == nil {
		return nil, false, nil
	}
	g, err := navgraph.DecodeSnapshot(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode snapshot %s: %w", level, err)
	}
	return g, true, nil
}

// Save stores g under level.
func (c *SnapshotCache) Save(level string, cfg config.NavConfig, g *navgraph.Graph) error {
	data, err := navgraph.EncodeSnapshot(g)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", level, err)
	}
	if err := c.store.SaveItem(c.Key(level, cfg), data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", level, err)
	}
	return nil
}

// BuildGraphCached activates the cached graph for level when there is one and
// otherwise builds it and caches the result. A cache that cannot be read or
// written is logged and bypassed. It reports whether the cache was hit.
func (pf *Pathfinder) BuildGraphCached(level string, shapes []geometry.Shape, cfg config.NavConfig) (*navgraph.Graph, bool, error) {
	if pf.cache == nil {
		g, err := pf.BuildGraph(shapes, cfg)
		return g, false, err
	}

	started := time.Now()
	g, ok, err := pf.cache.Load(level, cfg)
	if err != nil {
		pf.log.Warn("snapshot cache unavailable", "level", level, "err", err)
	}
	if ok {
		pf.log.Info("platform graph loaded from cache", "level", level, "nodes", len(g.Nodes), "links", len(g.Links), "took", time.Since(started))
		pf.SetGraph(g)
		return g, true, nil
	}

	g, err = pf.BuildGraph(shapes, cfg)
	if err != nil {
		return nil, false, err
	}
	if err := pf.cache.Save(level, cfg, g); err != nil {
		pf.log.Warn("snapshot not cached", "level", level, "err", err)
	}
	return g, false, nil
}
