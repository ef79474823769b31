package model

import "strings"

// Settings holds the display configuration of the speed-dial page.
type Settings struct {
	CollectionID    string         `json:"collection_id"`
	CollectionName  string         `json:"collection_name"`
	GridColumns     int            `json:"grid_columns"`
	GridSpacing     int            `json:"grid_spacing"`
	SortMode        SortMode       `json:"sort_mode"`
	Theme           Theme          `json:"theme"`
	BackgroundMode  BackgroundMode `json:"background_mode"`
	WallpaperURL    string         `json:"wallpaper_url"`
	BackgroundColor string         `json:"background_color"`
	TextColor       string         `json:"text_color"`
	OpenInNewTab    bool           `json:"open_in_new_tab"`
	ShowSidebar     bool           `json:"show_sidebar"`
}

// Bounds are the inclusive clamps applied to numeric grid settings.
type Bounds struct {
	MinColumns, MaxColumns int
	MinSpacing, MaxSpacing int
}

var (
	// EnvBounds apply to settings loaded from the environment.
	EnvBounds = Bounds{MinColumns: 4, MaxColumns: 12, MinSpacing: 4, MaxSpacing: 36}
	// SessionBounds apply to settings edited per browser session.
	SessionBounds = Bounds{MinColumns: 3, MaxColumns: 12, MinSpacing: 0, MaxSpacing: 32}
)

const (
	DefaultGridColumns     = 6
	DefaultGridSpacing     = 14
	DefaultBackgroundColor = "#0b0b0d"
	DefaultCollectionName  = "Linkwarden SpeedDial"
)

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		CollectionName:  DefaultCollectionName,
		GridColumns:     DefaultGridColumns,
		GridSpacing:     DefaultGridSpacing,
		SortMode:        SortDateDesc,
		Theme:           ThemeAuto,
		BackgroundMode:  BackgroundWallpaper,
		BackgroundColor: DefaultBackgroundColor,
	}
}

// Normalize validates enumerations and clamps the grid to b.
func (s Settings) Normalize(b Bounds) Settings {
	s.CollectionID = strings.TrimSpace(s.CollectionID)
	s.CollectionName = strings.TrimSpace(s.CollectionName)
	if s.CollectionName == "" {
		s.CollectionName = DefaultCollectionName
	}
	s.GridColumns = Clamp(s.GridColumns, b.MinColumns, b.MaxColumns)
	s.GridSpacing = Clamp(s.GridSpacing, b.MinSpacing, b.MaxSpacing)
	s.SortMode = ParseSortMode(string(s.SortMode))
	s.Theme = ParseTheme(string(s.Theme))
	s.BackgroundMode = ParseBackgroundMode(string(s.BackgroundMode))
	s.WallpaperURL = strings.TrimSpace(s.WallpaperURL)
	s.BackgroundColor = strings.TrimSpace(s.BackgroundColor)
	if s.BackgroundColor == "" {
		s.BackgroundColor = DefaultBackgroundColor
	}
	s.TextColor = strings.TrimSpace(s.TextColor)
	return s
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
