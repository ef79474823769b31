package model

import "strings"

// SortMode selects the tile ordering inside the pinned and unpinned groups.
type SortMode string

const (
	SortDateDesc SortMode = "date_desc"
	SortDateAsc  SortMode = "date_asc"
	SortNameAsc  SortMode = "name_asc"
	SortNameDesc SortMode = "name_desc"
)

// ParseSortMode maps any unrecognized value to SortDateDesc.
func ParseSortMode(v string) SortMode {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(v))); m {
	case SortDateDesc, SortDateAsc, SortNameAsc, SortNameDesc:
		return m
	default:
		return SortDateDesc
	}
}

// Theme is the page color scheme.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps any unrecognized value to ThemeAuto.
func ParseTheme(v string) Theme {
	switch t := Theme(strings.ToLower(strings.TrimSpace(v))); t {
	case ThemeAuto, ThemeDark, ThemeLight:
		return t
	default:
		return ThemeAuto
	}
}

// BackgroundMode chooses between a wallpaper image and a flat color.
type BackgroundMode string

const (
	BackgroundWallpaper BackgroundMode = "wallpaper"
	BackgroundColor     BackgroundMode = "color"
)

// ParseBackgroundMode maps any unrecognized value to BackgroundWallpaper.
// "image" is accepted as an alias used by older browser-side settings.
func ParseBackgroundMode(v string) BackgroundMode {
	switch b := strings.ToLower(strings.TrimSpace(v)); b {
	case "color":
		return BackgroundColor
	default:
		return BackgroundWallpaper
	}
}

// AuthMode is fixed at deployment time; the two modes never mix.
type AuthMode string

const (
	AuthModeFixed   AuthMode = "fixed"   // one credential from configuration
	AuthModeSession AuthMode = "session" // per-browser login
)
