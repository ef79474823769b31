package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/speeddial/internal/adapter/driving/web/viewmodel"
)

// Layout wraps body in the shared HTML document: theme, background,
// top bar and page scripts.
func Layout(page vm.Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>`, "\n", `<html lang="en" data-theme="`)
		m.text(page.Theme)
		m.raw(`">`, "\n<head>\n",
			`  <meta charset="utf-8">`, "\n",
			`  <meta name="viewport" content="width=device-width, initial-scale=1">`, "\n",
			`  <meta name="csrf-token" content="`)
		m.text(page.CSRFToken)
		m.raw(`">`, "\n  <title>")
		m.text(page.Title)
		m.raw("</title>\n", `  <link rel="stylesheet" href="/static/css/speeddial.css">`, "\n</head>\n")

		m.raw(`<body style="`)
		m.text(bodyStyle(page))
		m.raw(`"`)
		m.attr(page.Wallpaper != "", ` class="has-wallpaper"`)
		m.raw(">\n")

		m.raw(`  <nav class="topbar">`, "\n", `    <a class="brand" href="/">`)
		m.text(page.Title)
		m.raw("</a>\n", `    <div class="actions">`, "\n", `      <a href="/settings">Settings</a>`, "\n")
		if page.ShowLogout {
			m.raw(`      <form method="post" action="/logout">`, "\n")
			csrfField(m, page.CSRFToken)
			m.raw(`        <button type="submit" class="link">Log out</button>`, "\n", "      </form>\n")
		}
		m.raw("    </div>\n  </nav>\n  <main>\n")

		m.child(ctx, body)

		m.raw("  </main>\n", `  <script src="/static/js/speeddial.js" defer></script>`, "\n</body>\n</html>\n")
	})
}

func csrfField(m *markup, token string) {
	m.raw(`<input type="hidden" name="csrf_token" value="`)
	m.text(token)
	m.raw(`">`, "\n")
}

// bodyStyle builds the inline background declarations. Values that are not
// plain color tokens are dropped; page.Wallpaper is already an http(s) URL.
func bodyStyle(page vm.Page) string {
	var b strings.Builder
	if c := cssValue(page.BackgroundColor); c != "" {
		fmt.Fprintf(&b, "background-color: %s;", c)
	}
	if c := cssValue(page.TextColor); c != "" {
		fmt.Fprintf(&b, " color: %s;", c)
	}
	if page.Wallpaper != "" {
		fmt.Fprintf(&b, " background-image: url('%s');", cssURL(page.Wallpaper))
	}
	return strings.TrimSpace(b.String())
}

// cssValue returns v when it only holds characters of color notations such
// as #rrggbb, rgb(0, 0, 0) or a keyword, otherwise "".
func cssValue(v string) string {
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#(),.% -", r):
		default:
			return ""
		}
	}
	return v
}

// cssURL percent-encodes the bytes that could end a quoted url() token.
func cssURL(u string) string {
	var b strings.Builder
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`'"()\`, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
