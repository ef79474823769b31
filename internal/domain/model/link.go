package model

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// LinkRecord is the normalized view of a Linkwarden link. It is derived
// read-only from upstream payloads and lives no longer than the cache TTL.
type LinkRecord struct {
	ID         string
	Title      string
	URL        string
	FaviconURL string
	Pinned     bool
	Timestamp  string // ISO-8601 as sent by upstream, compared lexicographically
}

// LinkFromRecord maps a raw upstream link object onto a LinkRecord.
// baseURL is the normalized Linkwarden base used for the favicon endpoint.
func LinkFromRecord(r Record, baseURL string) LinkRecord {
	link := LinkRecord{
		ID:        StringField(r, "id"),
		URL:       StringField(r, "url"),
		Pinned:    isPinned(r),
		Timestamp: firstString(r, "createdAt", "created_at", "created", "updatedAt", "updated_at"),
	}

	link.Title = firstString(r, "title", "name")
	if link.Title == "" {
		link.Title = link.URL
	}
	if link.Title == "" {
		link.Title = "(no title)"
	}

	if origin := Origin(link.URL); origin != "" && baseURL != "" {
		link.FaviconURL = baseURL + "/api/v1/getFavicon?url=" + url.QueryEscape(origin)
	}

	return link
}

// Origin returns scheme://host[:port] of rawURL, or "" when it has no host.
func Origin(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// isPinned accepts both a boolean "pinned" flag and Linkwarden's "pinnedBy"
// list, which is non-empty when the current user pinned the link.
func isPinned(r Record) bool {
	if b, ok := r["pinned"].(bool); ok && b {
		return true
	}
	if list, ok := r["pinnedBy"].([]any); ok && len(list) > 0 {
		return true
	}
	return false
}

// Collection is the subset of a Linkwarden collection the page renders.
type Collection struct {
	ID          string
	Name        string
	Description string
	ParentID    string
	LinkCount   int
	HasCount    bool
}

// CollectionFromRecord maps a raw upstream collection object.
func CollectionFromRecord(r Record) Collection {
	c := Collection{
		ID:          StringField(r, "id"),
		Name:        StringField(r, "name"),
		Description: StringField(r, "description"),
		ParentID:    StringField(r, "parentId"),
	}
	if c.Name == "" {
		c.Name = "Untitled"
	}
	if counts, ok := r["_count"].(map[string]any); ok {
		if n, ok := intValue(counts["links"]); ok {
			c.LinkCount = n
			c.HasCount = true
		}
	}
	return c
}

// Tree is the aggregate of all collections plus the links of selected ones.
type Tree struct {
	Collections       []Record            `json:"collections"`
	LinksByCollection map[string][]Record `json:"linksByCollection"`
}

// Blob is a binary upstream response such as a thumbnail or a favicon.
type Blob struct {
	ContentType string
	Data        []byte
}

// StringField returns r[key] rendered as a string. Numbers keep their exact
// textual form so numeric IDs round-trip.
func StringField(r Record, key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func firstString(r Record, keys ...string) string {
	for _, k := range keys {
		if s := StringField(r, k); s != "" {
			return s
		}
	}
	return ""
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
