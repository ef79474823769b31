// Package viewmodel defines presentation-ready structs for the page templates.
// View models decouple template rendering from domain model types.
package viewmodel

import "html/template"

// Page holds what the shared layout needs on every page.
type Page struct {
	Title     string
	Theme     string // auto, dark or light
	CSRFToken string

	// Background
	Wallpaper       string
	BackgroundColor string
	TextColor       string

	ShowLogout bool
}

// TileViewModel holds presentation-ready data for one speed-dial tile.
type TileViewModel struct {
	Title        string
	URL          string
	IconURL      string
	ThumbnailURL string
	Initial      string // fallback glyph when neither image loads
}

// CollectionViewModel holds presentation-ready data for a sidebar entry.
type CollectionViewModel struct {
	ID       string
	Name     string
	Count    int
	HasCount bool
	Active   bool
	Href     string
}

// IndexViewModel holds presentation-ready data for the grid page.
type IndexViewModel struct {
	Page

	Heading         string
	DescriptionHTML template.HTML
	Notice          string // inline upstream failure message

	Pinned []TileViewModel
	Tiles  []TileViewModel

	Columns      int
	Spacing      int
	OpenInNewTab bool

	ShowSidebar bool
	Collections []CollectionViewModel
}

// Empty reports whether the grid has nothing to show.
func (v IndexViewModel) Empty() bool {
	return len(v.Pinned) == 0 && len(v.Tiles) == 0
}

// UnlockViewModel holds presentation-ready data for the password gate.
type UnlockViewModel struct {
	Page
	Error string
}

// LoginViewModel holds presentation-ready data for the session login form.
type LoginViewModel struct {
	Page
	BaseURL  string
	Username string
	Error    string
}

// OptionViewModel is one entry of a select input.
type OptionViewModel struct {
	Value    string
	Label    string
	Selected bool
}

// SettingsViewModel holds presentation-ready data for the settings form.
type SettingsViewModel struct {
	Page

	ReadOnly bool // fixed mode: values come from the environment
	Saved    bool

	BaseURL  string
	Username string

	Collections     []OptionViewModel
	CollectionID    string
	CollectionName  string
	GridColumns     int
	GridSpacing     int
	MinColumns      int
	MaxColumns      int
	MinSpacing      int
	MaxSpacing      int
	SortModes       []OptionViewModel
	Themes          []OptionViewModel
	BackgroundModes []OptionViewModel
	WallpaperURL    string
	BackgroundColor string
	TextColor       string
	OpenInNewTab    bool
	ShowSidebar     bool
}

// SetupViewModel holds presentation-ready data for the fixed-mode setup page.
type SetupViewModel struct {
	Page
	Missing []string // environment variables still to be set
	Problem string   // last upstream authentication failure, if any
}
