// Package catalog serves ordered opportunity listings from versioned cache
// snapshots, one per (sort direction, language) pair.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tkorhonen/opprec/internal/cache"
	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Default catalog configuration constants.
const (
	defaultTTL = time.Minute
)

// Repository yields the raw title rows the catalog is built from. Rows cover
// both opportunity kinds in one query so the alphabetical order is global
// across kinds.
type Repository interface {
	UnionOpportunityTitles(ctx context.Context, lang model.Language) ([]model.TitleRow, error)
}

type cacheKey struct {
	sort model.SortDirection
	lang model.Language
}

// Catalog caches ordered CatalogEntry listings. Each (sort, lang) pair gets
// its own versioned cache, created lazily on first request. Safe for
// concurrent use.
type Catalog struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
	exec cache.Executor
	log  logger.Logger

	mu     sync.Mutex
	caches map[cacheKey]*cache.Cache[[]model.CatalogEntry]
}

// New creates a Catalog over repo with configuration options.
func New(repo Repository, opts ...Option) *Catalog {
	c := &Catalog{
		repo:   repo,
		ttl:    defaultTTL,
		now:    time.Now,
		caches: make(map[cacheKey]*cache.Cache[[]model.CatalogEntry]),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// List returns the ordered catalog entries for the requested view. The first
// call per (sort, lang) pair blocks on the repository; later calls serve the
// cached snapshot and refresh it in the background once stale. Zero rows for
// a language yield an empty listing, not an error.
func (c *Catalog) List(ctx context.Context, sortDir model.SortDirection, lang model.Language) ([]model.CatalogEntry, error) {
	snap, err := c.cacheFor(sortDir, lang).Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Payload, nil
}

// Version reports the snapshot version for a view, or false before its first
// load. Callers can compare versions across reads to detect refreshes without
// comparing payloads.
func (c *Catalog) Version(sortDir model.SortDirection, lang model.Language) (uint64, bool) {
	return c.cacheFor(sortDir, lang).Version()
}

// ClearAtStartup drops every cached snapshot so nothing left over from a
// previous run is ever served.
func (c *Catalog) ClearAtStartup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cc := range c.caches {
		cc.Clear()
	}
}

func (c *Catalog) cacheFor(sortDir model.SortDirection, lang model.Language) *cache.Cache[[]model.CatalogEntry] {
	key := cacheKey{sort: sortDir, lang: lang}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cc, ok := c.caches[key]; ok {
		return cc
	}

	name := fmt.Sprintf("catalog:%s:%s", sortDir, lang)
	cc := cache.New(c.loader(sortDir, lang),
		cache.WithTTL[[]model.CatalogEntry](c.ttl),
		cache.WithClock[[]model.CatalogEntry](c.now),
		cache.WithExecutor[[]model.CatalogEntry](c.exec),
		cache.WithLogger[[]model.CatalogEntry](c.log),
		cache.WithName[[]model.CatalogEntry](name),
	)
	c.caches[key] = cc
	return cc
}

func (c *Catalog) loader(sortDir model.SortDirection, lang model.Language) cache.Loader[[]model.CatalogEntry] {
	return func(ctx context.Context) ([]model.CatalogEntry, error) {
		rows, err := c.repo.UnionOpportunityTitles(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("loading opportunity titles for %q: %w", lang, err)
		}

		// Duplicate ids across rows: first occurrence wins.
		seen := make(map[uuid.UUID]struct{}, len(rows))
		unique := make([]model.TitleRow, 0, len(rows))
		for _, row := range rows {
			if _, ok := seen[row.ID]; ok {
				continue
			}
			seen[row.ID] = struct{}{}
			unique = append(unique, row)
		}

		// Alphabetical by localized title; the collator matches what a
		// language-aware database collation would produce. Ties break by id
		// so the order is total.
		col := collate.New(language.Make(string(lang)))
		sort.SliceStable(unique, func(i, j int) bool {
			if cmp := col.CompareString(unique[i].Title, unique[j].Title); cmp != 0 {
				return cmp < 0
			}
			return unique[i].ID.String() < unique[j].ID.String()
		})
		if sortDir == model.SortDesc {
			for i, j := 0, len(unique)-1; i < j; i, j = i+1, j-1 {
				unique[i], unique[j] = unique[j], unique[i]
			}
		}

		entries := make([]model.CatalogEntry, 0, len(unique))
		for _, row := range unique {
			entries = append(entries, model.CatalogEntry{ID: row.ID, Kind: row.Kind})
		}
		metrics.UpdateCatalogEntries(len(entries))
		return entries, nil
	}
}
