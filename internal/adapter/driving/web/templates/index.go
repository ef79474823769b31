package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/speeddial/internal/adapter/driving/web/viewmodel"
)

// Index renders the speed-dial page: optional collection sidebar, heading
// with description, pinned tiles and the remaining grid.
func Index(data vm.IndexViewModel) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<div class="page`)
		m.attr(data.ShowSidebar, " with-sidebar")
		m.raw(`">`, "\n")
		if data.ShowSidebar {
			m.child(ctx, Sidebar(data.Collections))
		}

		m.raw(`  <section class="dial">`, "\n    <header>\n      <h1>")
		m.text(data.Heading)
		m.raw("</h1>\n")
		if data.DescriptionHTML != "" {
			// Already sanitized by the markdown renderer.
			m.raw(`      <div class="description">`, string(data.DescriptionHTML), "</div>\n")
		}
		m.raw("    </header>\n")

		if data.Notice != "" {
			m.raw(`    <p class="notice" role="alert">`)
			m.text(data.Notice)
			m.raw("</p>\n")
		}

		if len(data.Pinned) > 0 {
			m.child(ctx, grid("grid pinned", data, data.Pinned))
		}
		m.child(ctx, grid("grid", data, data.Tiles))

		if data.Empty() && data.Notice == "" {
			m.raw(`    <p class="empty">No links in this collection yet.</p>`, "\n")
		}
		m.raw("  </section>\n</div>\n")
	})
}

func grid(class string, data vm.IndexViewModel, tiles []vm.TileViewModel) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`    <div class="`, class, `" style="--columns: `)
		m.number(data.Columns)
		m.raw("; --spacing: ")
		m.number(data.Spacing)
		m.raw(`px">`, "\n")
		for _, t := range tiles {
			m.child(ctx, Tile(t, data.OpenInNewTab))
		}
		m.raw("    </div>\n")
	})
}

// Sidebar lists the collections, marking the active one.
func Sidebar(collections []vm.CollectionViewModel) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`  <aside class="sidebar">`, "\n    <h2>Collections</h2>\n    <ul>\n")
		for _, c := range collections {
			m.raw("      <li")
			m.attr(c.Active, ` class="active"`)
			m.raw(`><a href="`)
			m.url(c.Href)
			m.raw(`">`)
			m.text(c.Name)
			m.raw("</a>")
			if c.HasCount {
				m.raw(`<span class="count">`)
				m.number(c.Count)
				m.raw("</span>")
			}
			m.raw("</li>\n")
		}
		m.raw("    </ul>\n  </aside>\n")
	})
}

// Tile renders one link: archived preview with an initial as fallback, and
// favicon plus title underneath.
func Tile(t vm.TileViewModel, newTab bool) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`      <a class="tile" href="`)
		m.url(t.URL)
		m.raw(`"`)
		m.attr(newTab, ` target="_blank" rel="noopener noreferrer"`)
		m.raw(` title="`)
		m.text(t.Title)
		m.raw(`">`, "\n", `        <div class="thumb">`)
		if t.ThumbnailURL != "" {
			m.raw(`<img src="`)
			m.url(t.ThumbnailURL)
			m.raw(`" alt="" loading="lazy" data-fallback="thumb">`)
		}
		m.raw(`<span class="initial">`)
		m.text(t.Initial)
		m.raw("</span></div>\n", `        <div class="label">`)
		if t.IconURL != "" {
			m.raw(`<img class="icon" src="`)
			m.url(t.IconURL)
			m.raw(`" alt="" loading="lazy" data-fallback="icon">`)
		}
		m.raw("<span>")
		m.text(t.Title)
		m.raw("</span></div>\n      </a>\n")
	})
}
