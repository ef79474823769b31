package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/speeddial/internal/adapter/driving/web/viewmodel"
)

// Settings renders the display settings form. Read-only data disables every
// input and hides the session restore box.
func Settings(data vm.SettingsViewModel) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<section class="card">`, "\n  <h1>Settings</h1>\n")
		if data.Saved {
			m.raw(`  <p class="notice ok">Settings saved.</p>`, "\n")
		}
		if data.ReadOnly {
			m.raw(`  <p class="hint">These settings come from the server environment and cannot be changed here.</p>`, "\n")
		}
		if data.BaseURL != "" {
			m.raw(`  <p class="hint">Connected to `)
			m.text(data.BaseURL)
			if data.Username != "" {
				m.raw(" as ")
				m.text(data.Username)
			}
			m.raw(".</p>\n")
		}

		m.raw(`  <form method="post" action="/settings">`, "\n")
		csrfField(m, data.CSRFToken)
		m.raw("    <fieldset")
		m.attr(data.ReadOnly, " disabled")
		m.raw(">\n")

		selectField(m, "collection_id", "Collection", data.Collections)
		textField(m, "collection_name", "Heading", "text", data.CollectionName)
		numberField(m, "grid_columns", "Columns", "", data.MinColumns, data.MaxColumns, data.GridColumns)
		numberField(m, "grid_spacing", "Spacing", " px", data.MinSpacing, data.MaxSpacing, data.GridSpacing)
		selectField(m, "sort_mode", "Sort", data.SortModes)
		selectField(m, "theme", "Theme", data.Themes)
		selectField(m, "background_mode", "Background", data.BackgroundModes)
		textField(m, "wallpaper_url", "Wallpaper URL", "url", data.WallpaperURL)
		textField(m, "background_color", "Background color", "text", data.BackgroundColor)
		textField(m, "text_color", "Text color", "text", data.TextColor)
		checkField(m, "open_in_new_tab", "Open links in a new tab", data.OpenInNewTab)
		checkField(m, "show_sidebar", "Show collections sidebar", data.ShowSidebar)

		if !data.ReadOnly {
			m.raw(`      <button type="submit">Save</button>`, "\n")
		}
		m.raw("    </fieldset>\n  </form>\n")

		if !data.ReadOnly {
			m.raw(`  <div class="restore" data-restore-session hidden>`, "\n",
				`    <p class="hint">A Linkwarden token is remembered in this browser.</p>`, "\n",
				`    <button type="button" data-restore-button>Restore session</button>`, "\n",
				`    <button type="button" class="link" data-forget-button>Forget</button>`, "\n",
				"  </div>\n")
		}
		m.raw("</section>\n")
	})
}

func label(m *markup, id, text string) {
	m.raw(`      <label for="`, id, `">`)
	m.text(text)
	m.raw("</label>\n")
}

func textField(m *markup, id, text, kind, value string) {
	label(m, id, text)
	m.raw(`      <input id="`, id, `" name="`, id, `" type="`, kind, `" value="`)
	m.text(value)
	m.raw(`">`, "\n")
}

func numberField(m *markup, id, text, unit string, minimum, maximum, value int) {
	m.raw(`      <label for="`, id, `">`)
	m.text(text)
	m.raw(" (")
	m.number(minimum)
	m.raw("-")
	m.number(maximum)
	m.text(unit)
	m.raw(")</label>\n")
	m.raw(`      <input id="`, id, `" name="`, id, `" type="number" min="`)
	m.number(minimum)
	m.raw(`" max="`)
	m.number(maximum)
	m.raw(`" value="`)
	m.number(value)
	m.raw(`">`, "\n")
}

func selectField(m *markup, id, text string, options []vm.OptionViewModel) {
	label(m, id, text)
	m.raw(`      <select id="`, id, `" name="`, id, `">`, "\n")
	for _, o := range options {
		m.raw(`        <option value="`)
		m.text(o.Value)
		m.raw(`"`)
		m.attr(o.Selected, " selected")
		m.raw(">")
		m.text(o.Label)
		m.raw("</option>\n")
	}
	m.raw("      </select>\n")
}

func checkField(m *markup, name, text string, checked bool) {
	m.raw(`      <label class="check"><input type="checkbox" name="`, name, `" value="1"`)
	m.attr(checked, " checked")
	m.raw("> ")
	m.text(text)
	m.raw("</label>\n")
}
