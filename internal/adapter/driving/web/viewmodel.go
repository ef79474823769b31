package web

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	vm "github.com/ericfisherdev/speeddial/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// toPage builds the layout data shared by every page.
func toPage(title string, s model.Settings, csrf string, showLogout bool) vm.Page {
	p := vm.Page{
		Title:           title,
		Theme:           string(s.Theme),
		CSRFToken:       csrf,
		BackgroundColor: s.BackgroundColor,
		TextColor:       s.TextColor,
		ShowLogout:      showLogout,
	}
	if s.BackgroundMode == model.BackgroundWallpaper && isHTTPURL(s.WallpaperURL) {
		p.Wallpaper = s.WallpaperURL
	}
	return p
}

// toTileViewModels converts tiles for the grid template.
func toTileViewModels(tiles []model.Tile) []vm.TileViewModel {
	out := make([]vm.TileViewModel, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, vm.TileViewModel{
			Title:        t.Title,
			URL:          t.URL,
			IconURL:      t.IconURL,
			ThumbnailURL: t.ThumbnailURL,
			Initial:      initial(t.Title),
		})
	}
	return out
}

// toCollectionViewModels converts raw collections for the sidebar, marking
// activeID.
func toCollectionViewModels(records []model.Record, activeID string) []vm.CollectionViewModel {
	out := make([]vm.CollectionViewModel, 0, len(records))
	for _, r := range records {
		c := model.CollectionFromRecord(r)
		if c.ID == "" {
			continue
		}
		out = append(out, vm.CollectionViewModel{
			ID:       c.ID,
			Name:     c.Name,
			Count:    c.LinkCount,
			HasCount: c.HasCount,
			Active:   c.ID == activeID,
			Href:     "/?collection=" + url.QueryEscape(c.ID),
		})
	}
	return out
}

// findCollection returns the collection with id from records.
func findCollection(records []model.Record, id string) (model.Collection, bool) {
	if id == "" {
		return model.Collection{}, false
	}
	for _, r := range records {
		if model.StringField(r, "id") == id {
			return model.CollectionFromRecord(r), true
		}
	}
	return model.Collection{}, false
}

// toSettingsViewModel fills the settings form from s.
func toSettingsViewModel(page vm.Page, s model.Settings, collections []model.Record, b model.Bounds) vm.SettingsViewModel {
	v := vm.SettingsViewModel{
		Page:            page,
		CollectionID:    s.CollectionID,
		CollectionName:  s.CollectionName,
		GridColumns:     s.GridColumns,
		GridSpacing:     s.GridSpacing,
		MinColumns:      b.MinColumns,
		MaxColumns:      b.MaxColumns,
		MinSpacing:      b.MinSpacing,
		MaxSpacing:      b.MaxSpacing,
		WallpaperURL:    s.WallpaperURL,
		BackgroundColor: s.BackgroundColor,
		TextColor:       s.TextColor,
		OpenInNewTab:    s.OpenInNewTab,
		ShowSidebar:     s.ShowSidebar,
		SortModes: options(string(s.SortMode),
			string(model.SortDateDesc), "Newest first",
			string(model.SortDateAsc), "Oldest first",
			string(model.SortNameAsc), "Name A-Z",
			string(model.SortNameDesc), "Name Z-A",
		),
		Themes: options(string(s.Theme),
			string(model.ThemeAuto), "Follow system",
			string(model.ThemeDark), "Dark",
			string(model.ThemeLight), "Light",
		),
		BackgroundModes: options(string(s.BackgroundMode),
			string(model.BackgroundWallpaper), "Wallpaper",
			string(model.BackgroundColor), "Solid color",
		),
	}

	v.Collections = make([]vm.OptionViewModel, 0, len(collections)+1)
	v.Collections = append(v.Collections, vm.OptionViewModel{Label: "(none)", Selected: s.CollectionID == ""})
	for _, c := range toCollectionViewModels(collections, s.CollectionID) {
		v.Collections = append(v.Collections, vm.OptionViewModel{Value: c.ID, Label: c.Name, Selected: c.Active})
	}
	return v
}

// options builds select entries from value/label pairs.
func options(selected string, pairs ...string) []vm.OptionViewModel {
	out := make([]vm.OptionViewModel, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, vm.OptionViewModel{Value: pairs[i], Label: pairs[i+1], Selected: pairs[i] == selected})
	}
	return out
}

func initial(title string) string {
	for _, r := range strings.TrimSpace(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToUpper(r))
		}
	}
	if r, _ := utf8.DecodeRuneInString(title); r != utf8.RuneError {
		return string(r)
	}
	return "?"
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
