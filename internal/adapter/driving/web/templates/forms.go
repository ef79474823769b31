package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/speeddial/internal/adapter/driving/web/viewmodel"
)

// Unlock renders the page password form.
func Unlock(data vm.UnlockViewModel) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<section class="card narrow">`, "\n  <h1>Locked</h1>\n", `  <form method="post" action="/unlock">`, "\n")
		csrfField(m, data.CSRFToken)
		m.raw(`    <label for="password">Password</label>`, "\n",
			`    <input id="password" name="password" type="password" autocomplete="current-password" autofocus required>`, "\n")
		formError(m, data.Error)
		m.raw(`    <button type="submit">Unlock</button>`, "\n  </form>\n</section>\n")
	})
}

// Login renders the session login form. The page script offers to remember
// the URL and token in local storage.
func Login(data vm.LoginViewModel) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<section class="card narrow">`, "\n  <h1>Connect to Linkwarden</h1>\n",
			`  <form method="post" action="/login" data-remember-login>`, "\n")
		csrfField(m, data.CSRFToken)

		m.raw(`    <label for="base_url">Linkwarden URL</label>`, "\n",
			`    <input id="base_url" name="base_url" type="text" value="`)
		m.text(data.BaseURL)
		m.raw(`" placeholder="https://links.example.com" required>`, "\n\n",
			`    <label for="token">Access token</label>`, "\n",
			`    <input id="token" name="token" type="password" autocomplete="off">`, "\n\n",
			`    <p class="hint">Or sign in with your Linkwarden account:</p>`, "\n",
			`    <label for="username">Username</label>`, "\n",
			`    <input id="username" name="username" type="text" value="`)
		m.text(data.Username)
		m.raw(`" autocomplete="username">`, "\n",
			`    <label for="password">Password</label>`, "\n",
			`    <input id="password" name="password" type="password" autocomplete="current-password">`, "\n\n",
			`    <label class="check"><input type="checkbox" name="remember" value="1"> Remember URL and token in this browser</label>`, "\n")
		formError(m, data.Error)
		m.raw(`    <button type="submit">Log in</button>`, "\n  </form>\n</section>\n")
	})
}

// Setup lists the environment variables fixed mode still needs, or the
// upstream problem with the configured ones.
func Setup(data vm.SetupViewModel) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<section class="card">`, "\n  <h1>Setup required</h1>\n",
			"  <p>This start page mirrors a single Linkwarden account. Set the following environment variables and restart the server:</p>\n",
			"  <ul>\n")
		for _, name := range data.Missing {
			m.raw("    <li><code>")
			m.text(name)
			m.raw("</code></li>\n")
		}
		m.raw("  </ul>\n")
		formError(m, data.Problem)
		m.raw(`  <p class="hint"><code>LINKWARDEN_TOKEN</code> takes precedence. Without it, <code>LINKWARDEN_USERNAME</code> and <code>LINKWARDEN_PASSWORD</code> are used to log in.</p>`,
			"\n</section>\n")
	})
}

func formError(m *markup, msg string) {
	if msg == "" {
		return
	}
	m.raw(`    <p class="error" role="alert">`)
	m.text(msg)
	m.raw("</p>\n")
}
