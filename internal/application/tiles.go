package application

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// AssembleTiles converts links into tiles ordered pinned first, then the
// rest. Both groups are stable-sorted by mode; ties keep upstream order.
func AssembleTiles(links []model.LinkRecord, mode model.SortMode) []model.Tile {
	mode = model.ParseSortMode(string(mode))

	folder := cases.Fold()
	keyed := make([]sortableTile, len(links))
	for i, l := range links {
		keyed[i] = sortableTile{tile: tileFromLink(l), folded: folder.String(l.Title)}
	}

	pinned := make([]sortableTile, 0, len(keyed))
	others := make([]sortableTile, 0, len(keyed))
	for _, t := range keyed {
		if t.tile.Pinned {
			pinned = append(pinned, t)
		} else {
			others = append(others, t)
		}
	}

	cmp := comparator(mode)
	slices.SortStableFunc(pinned, cmp)
	slices.SortStableFunc(others, cmp)

	tiles := make([]model.Tile, 0, len(keyed))
	for _, t := range pinned {
		tiles = append(tiles, t.tile)
	}
	for _, t := range others {
		tiles = append(tiles, t.tile)
	}
	return tiles
}

type sortableTile struct {
	tile   model.Tile
	folded string
}

func comparator(mode model.SortMode) func(a, b sortableTile) int {
	switch mode {
	case model.SortNameAsc:
		return func(a, b sortableTile) int { return strings.Compare(a.folded, b.folded) }
	case model.SortNameDesc:
		return func(a, b sortableTile) int { return strings.Compare(b.folded, a.folded) }
	case model.SortDateAsc:
		return func(a, b sortableTile) int { return strings.Compare(a.tile.Timestamp, b.tile.Timestamp) }
	default:
		return func(a, b sortableTile) int { return strings.Compare(b.tile.Timestamp, a.tile.Timestamp) }
	}
}

// tileFromLink points the icon and thumbnail at this server's proxy routes,
// which attach the caller's credential.
func tileFromLink(l model.LinkRecord) model.Tile {
	t := model.Tile{
		ID:        l.ID,
		Title:     l.Title,
		URL:       l.URL,
		Pinned:    l.Pinned,
		Timestamp: l.Timestamp,
	}
	if origin := model.Origin(l.URL); origin != "" {
		t.IconURL = "/api/favicon?url=" + url.QueryEscape(origin)
	}
	if l.ID != "" {
		t.ThumbnailURL = "/api/thumbnail/" + url.PathEscape(l.ID)
	}
	return t
}
