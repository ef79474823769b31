// Package templates holds the templ components of the web GUI: the shared
// layout, one component per page and the speed-dial tile.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// markup writes HTML to w and keeps the first write error.
type markup struct {
	w   io.Writer
	err error
}

// component adapts a markup-writing func to templ.Component.
func component(fn func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m := &markup{w: w}
		fn(ctx, m)
		return m.err
	})
}

// raw writes trusted markup verbatim.
func (m *markup) raw(parts ...string) {
	for _, s := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, s)
	}
}

// text writes s escaped for element content or a quoted attribute value.
func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

// url writes u as an attribute value, replacing unsafe schemes.
func (m *markup) url(u string) {
	m.text(string(templ.URL(u)))
}

func (m *markup) number(n int) {
	m.raw(strconv.Itoa(n))
}

// attr writes a boolean attribute or extra markup when cond holds.
func (m *markup) attr(cond bool, s string) {
	if cond {
		m.raw(s)
	}
}

// child renders a nested component into the same writer.
func (m *markup) child(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}
