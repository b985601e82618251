// Package service orchestrates the save pipeline: validate, fetch,
// extract, persist.
package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jonesrussell/north-cloud/readlist/internal/cache"
	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
	"github.com/jonesrussell/north-cloud/readlist/internal/logger"
	"github.com/jonesrussell/north-cloud/readlist/internal/metadata"
)

// PageFetcher fetches a page body for preview extraction.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// MetadataExtractor recovers preview metadata from HTML markup.
type MetadataExtractor interface {
	Extract(html string) metadata.Metadata
}

// ItemCreator inserts one item row.
type ItemCreator interface {
	Create(ctx context.Context, ownerID, rawURL, itemDomain string, meta metadata.Metadata) (*domain.Item, error)
}

// SaveService realizes "save a URL": validate it, recover preview metadata
// best-effort, and persist the item. Fetch and extraction failures are
// absorbed; once the URL is syntactically valid, only a persistence
// failure can fail the save.
type SaveService struct {
	fetcher   PageFetcher
	extractor MetadataExtractor
	store     ItemCreator
	cache     cache.MetadataCache
	log       logger.Logger
}

// NewSaveService creates a save service with the given collaborators.
func NewSaveService(
	fetcher PageFetcher,
	extractor MetadataExtractor,
	store ItemCreator,
	metaCache cache.MetadataCache,
	log logger.Logger,
) *SaveService {
	return &SaveService{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		cache:     metaCache,
		log:       log,
	}
}

// Save validates rawURL, derives its domain, fetches and extracts preview
// metadata, and creates the item. Returns domain.ErrInvalidURL before any
// network call when the URL is not an absolute http(s) URL.
func (s *SaveService) Save(ctx context.Context, ownerID, rawURL string) (*domain.Item, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !isAbsoluteHTTP(parsed) {
		return nil, domain.ErrInvalidURL
	}

	meta := s.resolveMetadata(ctx, rawURL)

	item, err := s.store.Create(ctx, ownerID, rawURL, parsed.Hostname(), meta)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	return item, nil
}

// resolveMetadata returns the preview metadata for rawURL, consulting the
// cache first. A failed fetch yields empty metadata rather than an error.
func (s *SaveService) resolveMetadata(ctx context.Context, rawURL string) metadata.Metadata {
	if meta, ok := s.cache.Get(ctx, rawURL); ok {
		return meta
	}

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.log.Debug("Preview fetch failed, saving without metadata",
			logger.String("url", rawURL),
			logger.Error(err),
		)
		return metadata.Metadata{}
	}

	meta := s.extractor.Extract(body)
	s.cache.Set(ctx, rawURL, meta)
	return meta
}

// isAbsoluteHTTP reports whether u is an absolute http or https URL with a host.
func isAbsoluteHTTP(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
