// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// Archive format Linkwarden uses for screenshot previews.
const archiveFormatPreview = 1

var (
	// ErrInvalidOrigin is returned by Favicon for URLs without scheme and host.
	ErrInvalidOrigin = errors.New("invalid favicon origin")
	// ErrInvalidLinkID is returned by Thumbnail for a blank link ID.
	ErrInvalidLinkID = errors.New("invalid link id")
)

// fetchFunc performs one upstream fetch with an already resolved credential.
type fetchFunc func(ctx context.Context, cred model.Credential) (any, error)

// LinkService reads collections and links through the response cache.
// Concurrent misses for the same key share one upstream call.
type LinkService struct {
	gateway  driven.LinkwardenGateway
	cache    driven.ResponseCache
	resolver CredentialResolver
	ttl      time.Duration
	logger   *slog.Logger
	group    singleflight.Group
}

// NewLinkService creates a LinkService. ttl <= 0 uses the cache default.
func NewLinkService(
	gateway driven.LinkwardenGateway,
	cache driven.ResponseCache,
	resolver CredentialResolver,
	ttl time.Duration,
	logger *slog.Logger,
) *LinkService {
	return &LinkService{
		gateway:  gateway,
		cache:    cache,
		resolver: resolver,
		ttl:      ttl,
		logger:   logger,
	}
}

// Mode reports the auth mode of the configured resolver.
func (s *LinkService) Mode() model.AuthMode { return s.resolver.Mode() }

// Collections returns every collection visible to the caller.
func (s *LinkService) Collections(ctx context.Context, sess *model.Session) ([]model.Record, error) {
	v, _, err := s.load(ctx, sess, "collections", nil, s.fetchCollections)
	if err != nil {
		return nil, err
	}
	return v.([]model.Record), nil
}

// Links returns the links of one collection. An empty ID yields an empty
// slice without contacting the upstream.
func (s *LinkService) Links(ctx context.Context, sess *model.Session, collectionID string) ([]model.Record, error) {
	records, _, err := s.links(ctx, sess, collectionID)
	return records, err
}

// Tree returns all collections plus the links of collectionID, if set.
func (s *LinkService) Tree(ctx context.Context, sess *model.Session, collectionID string) (model.Tree, error) {
	collectionID = strings.TrimSpace(collectionID)

	v, _, err := s.load(ctx, sess, "tree", []string{collectionID}, func(ctx context.Context, cred model.Credential) (any, error) {
		cols, err := s.loadWith(ctx, cred, "collections", nil, s.fetchCollections)
		if err != nil {
			return nil, err
		}

		tree := model.Tree{
			Collections:       cols.([]model.Record),
			LinksByCollection: map[string][]model.Record{},
		}
		if collectionID == "" {
			return tree, nil
		}

		links, err := s.loadWith(ctx, cred, "links", []string{collectionID}, s.fetchLinks(collectionID))
		if err != nil {
			return nil, err
		}
		tree.LinksByCollection[collectionID] = links.([]model.Record)
		return tree, nil
	})
	if err != nil {
		return model.Tree{}, err
	}
	return v.(model.Tree), nil
}

// Tiles returns the display tiles of a collection in mode order, pinned first.
func (s *LinkService) Tiles(ctx context.Context, sess *model.Session, collectionID string, mode model.SortMode) ([]model.Tile, error) {
	records, cred, err := s.links(ctx, sess, collectionID)
	if err != nil {
		return nil, err
	}

	links := make([]model.LinkRecord, 0, len(records))
	for _, r := range records {
		links = append(links, model.LinkFromRecord(r, cred.BaseURL))
	}
	return AssembleTiles(links, mode), nil
}

// Thumbnail returns the preview screenshot Linkwarden archived for linkID.
func (s *LinkService) Thumbnail(ctx context.Context, sess *model.Session, linkID string) (*model.Blob, error) {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return nil, ErrInvalidLinkID
	}

	v, _, err := s.load(ctx, sess, "thumbnail", []string{linkID}, func(ctx context.Context, cred model.Credential) (any, error) {
		return s.gateway.FetchArchive(ctx, cred, linkID, archiveFormatPreview, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Blob), nil
}

// Favicon returns the icon Linkwarden serves for the origin of rawURL.
func (s *LinkService) Favicon(ctx context.Context, sess *model.Session, rawURL string) (*model.Blob, error) {
	origin := model.Origin(strings.TrimSpace(rawURL))
	if origin == "" {
		return nil, ErrInvalidOrigin
	}

	v, _, err := s.load(ctx, sess, "favicon", []string{origin}, func(ctx context.Context, cred model.Credential) (any, error) {
		return s.gateway.FetchFavicon(ctx, cred, origin)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Blob), nil
}

func (s *LinkService) links(ctx context.Context, sess *model.Session, collectionID string) ([]model.Record, model.Credential, error) {
	collectionID = strings.TrimSpace(collectionID)
	if collectionID == "" {
		return []model.Record{}, model.Credential{}, nil
	}

	v, cred, err := s.load(ctx, sess, "links", []string{collectionID}, s.fetchLinks(collectionID))
	if err != nil {
		return nil, model.Credential{}, err
	}
	return v.([]model.Record), cred, nil
}

func (s *LinkService) fetchCollections(ctx context.Context, cred model.Credential) (any, error) {
	data, err := s.gateway.ListCollections(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return model.Normalize(data), nil
}

func (s *LinkService) fetchLinks(collectionID string) fetchFunc {
	return func(ctx context.Context, cred model.Credential) (any, error) {
		data, err := s.gateway.ListLinks(ctx, cred, collectionID)
		if err != nil {
			return nil, fmt.Errorf("listing links of collection %s: %w", collectionID, err)
		}
		return model.Normalize(data), nil
	}
}

// load resolves the caller's credential and reads resource through the
// cache. When the upstream answers 401 and the resolver can produce a fresh
// credential, the fetch is retried exactly once.
func (s *LinkService) load(ctx context.Context, sess *model.Session, resource string, params []string, fetch fetchFunc) (any, model.Credential, error) {
	cred, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return nil, model.Credential{}, err
	}

	v, err := s.loadWith(ctx, cred, resource, params, fetch)
	if err == nil || !errors.Is(err, driven.ErrAuthorization) {
		return v, cred, err
	}

	if !s.resolver.Invalidate(ctx, cred) {
		return nil, model.Credential{}, err
	}

	s.logger.Info("linkwarden rejected credential, retrying with a fresh one",
		"resource", resource,
		"base_url", cred.BaseURL,
	)

	cred, err = s.resolver.Resolve(ctx, sess)
	if err != nil {
		return nil, model.Credential{}, err
	}
	v, err = s.loadWith(ctx, cred, resource, params, fetch)
	if err != nil {
		return nil, model.Credential{}, err
	}
	return v, cred, nil
}

func (s *LinkService) loadWith(ctx context.Context, cred model.Credential, resource string, params []string, fetch fetchFunc) (any, error) {
	key := CacheKey(cred, resource, params...)
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err, shared := doShared(ctx, &s.group, key, func(ctx context.Context) (any, error) {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx, cred)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, v, s.ttl)
		return v, nil
	})
	if shared {
		s.logger.Debug("collapsed concurrent fetch", "resource", resource)
	}
	return v, err
}

// doShared runs fn once per key across concurrent callers. fn gets a context
// that keeps ctx's values but not its cancellation, so one caller going away
// does not fail the others; each caller still stops waiting when its own ctx
// ends. The gateway's client timeout bounds fn.
func doShared(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err, res.Shared
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}
