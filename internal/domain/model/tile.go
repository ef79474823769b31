package model

// Tile is a display-ready link for the speed-dial grid.
type Tile struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	IconURL      string `json:"icon_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Pinned       bool   `json:"pinned"`
	Timestamp    string `json:"timestamp"`
}

// SplitPinned separates pinned tiles from the rest, keeping order. Both
// results are non-nil.
func SplitPinned(tiles []Tile) (pinned, others []Tile) {
	pinned = make([]Tile, 0, len(tiles))
	others = make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		if t.Pinned {
			pinned = append(pinned, t)
		} else {
			others = append(others, t)
		}
	}
	return pinned, others
}
