// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/speeddial/internal/adapter/driving/session"
	"github.com/ericfisherdev/speeddial/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/speeddial/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/speeddial/internal/application"
	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// Options carries the deployment settings the pages need.
type Options struct {
	Defaults      model.Settings // fixed-mode settings and seed for new sessions
	Hostname      string
	SecureCookies bool
	BaseURLHint   string   // prefilled on the login form
	MissingConfig []string // fixed-mode variables still unset, listed on /setup
}

// Handler is the web GUI driving adapter.
type Handler struct {
	links    *application.LinkService
	auth     *application.SessionAuthService // nil in fixed mode
	sessions *session.Manager                // nil in fixed mode
	gate     *application.UnlockGate
	codec    *session.UnlockCodec
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. auth and sessions are nil in fixed mode.
func NewHandler(
	links *application.LinkService,
	auth *application.SessionAuthService,
	sessions *session.Manager,
	gate *application.UnlockGate,
	codec *session.UnlockCodec,
	opts Options,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		links:    links,
		auth:     auth,
		sessions: sessions,
		gate:     gate,
		codec:    codec,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Index renders the speed-dial grid of the configured collection, or of
// ?collection= for this request only.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	settings := h.settings(r)
	csrf := csrfToken(w, r, h.opts.SecureCookies)

	collectionID := settings.CollectionID
	override := strings.TrimSpace(r.URL.Query().Get("collection"))
	if override != "" {
		collectionID = override
	}

	data := vm.IndexViewModel{
		Heading:      settings.CollectionName,
		Pinned:       []vm.TileViewModel{},
		Tiles:        []vm.TileViewModel{},
		Columns:      settings.GridColumns,
		Spacing:      settings.GridSpacing,
		OpenInNewTab: settings.OpenInNewTab,
		ShowSidebar:  settings.ShowSidebar,
	}

	collections, err := h.links.Collections(ctx, sess)
	if err != nil {
		if h.redirectUnauthenticated(w, r, err) {
			return
		}
		h.logger.Warn("failed to load collections", "error", err)
		data.Notice = noticeFor(err)
	} else {
		if c, ok := findCollection(collections, collectionID); ok {
			data.DescriptionHTML = descriptionHTML(c.Description)
			if override != "" {
				data.Heading = c.Name
			}
		}
		data.Collections = toCollectionViewModels(collections, collectionID)
	}

	if data.Notice == "" {
		tiles, err := h.links.Tiles(ctx, sess, collectionID, settings.SortMode)
		if err != nil {
			if h.redirectUnauthenticated(w, r, err) {
				return
			}
			h.logger.Warn("failed to load tiles", "collection_id", collectionID, "error", err)
			data.Notice = noticeFor(err)
		} else {
			pinned, others := model.SplitPinned(tiles)
			data.Pinned = toTileViewModels(pinned)
			data.Tiles = toTileViewModels(others)
		}
	}

	data.Page = toPage(h.title(data.Heading), settings, csrf, h.canLogout(sess))
	h.render(w, r, http.StatusOK, templates.Layout(data.Page, templates.Index(data)))
}

// UnlockForm renders the password gate.
func (h *Handler) UnlockForm(w http.ResponseWriter, r *http.Request) {
	if !h.gate.Enabled() || h.gate.Evaluate(h.codec.Read(r), h.now()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderUnlock(w, r, http.StatusOK, "")
}

// Unlock checks the submitted password and records the unlock in a cookie.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	if !h.gate.Enabled() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	if !h.gate.CheckPassword(r.FormValue("password")) {
		h.logger.Info("unlock rejected", "remote_addr", r.RemoteAddr)
		h.renderUnlock(w, r, http.StatusUnauthorized, "Incorrect password.")
		return
	}

	now := h.now()
	if err := h.codec.Write(w, h.gate.Grant(now), now); err != nil {
		h.logger.Error("failed to write unlock cookie", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginForm renders the session login form.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if h.auth == nil || sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, vm.LoginViewModel{BaseURL: h.opts.BaseURLHint})
}

// Login attaches the submitted Linkwarden credential to the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if h.auth == nil || h.sessions == nil || sess == nil {
		http.NotFound(w, r)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	req := application.LoginRequest{
		BaseURL:  r.FormValue("base_url"),
		Token:    r.FormValue("token"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	wasAuthenticated := sess.Authenticated()

	if err := h.auth.Login(r.Context(), sess, req); err != nil {
		status, msg := loginFailure(err)
		h.logger.Info("login failed", "session_id", sess.ID, "error", err)
		if wasAuthenticated {
			h.saveSession(w, r, sess)
		}
		h.renderLogin(w, r, status, vm.LoginViewModel{BaseURL: req.BaseURL, Username: req.Username, Error: msg})
		return
	}

	if !h.saveSession(w, r, sess) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout drops the session credential and, with a page password, re-locks
// the browser.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	target := "/"
	if sess := session.FromContext(r.Context()); h.auth != nil && h.sessions != nil && sess != nil {
		h.auth.Logout(r.Context(), sess)
		if err := h.sessions.Destroy(w, r); err != nil {
			h.logger.Error("failed to destroy session", "error", err)
		}
		target = "/login"
	}
	if h.gate.Enabled() {
		h.codec.Clear(w)
		target = "/unlock"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SettingsForm renders the display settings. In fixed mode they are read-only.
func (h *Handler) SettingsForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	settings := h.settings(r)
	csrf := csrfToken(w, r, h.opts.SecureCookies)

	collections, err := h.links.Collections(ctx, sess)
	if err != nil {
		h.logger.Debug("settings without collection list", "error", err)
		collections = nil
	}

	bounds := model.SessionBounds
	if h.auth == nil {
		bounds = model.EnvBounds
	}

	data := toSettingsViewModel(toPage(h.title("Settings"), settings, csrf, h.canLogout(sess)), settings, collections, bounds)
	data.ReadOnly = h.auth == nil
	data.Saved = r.URL.Query().Get("saved") == "1"
	if sess.Authenticated() {
		data.BaseURL = sess.Credential.BaseURL
		data.Username = sess.Username
	}

	h.render(w, r, http.StatusOK, templates.Layout(data.Page, templates.Settings(data)))
}

// SaveSettings stores the submitted display settings on the session.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if h.auth == nil || h.sessions == nil || sess == nil {
		http.Error(w, "settings are configured by the server environment", http.StatusForbidden)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess.Settings = settingsFromForm(r.PostForm, sess.Settings).Normalize(model.SessionBounds)
	if !h.saveSession(w, r, sess) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// Setup explains which fixed-mode configuration is missing or rejected.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	if h.auth != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := vm.SetupViewModel{Missing: h.opts.MissingConfig}
	if len(data.Missing) == 0 {
		_, err := h.links.Collections(r.Context(), nil)
		switch {
		case err == nil:
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case needsCredentials(err):
			data.Problem = "Linkwarden rejected the configured credentials."
		default:
			data.Problem = noticeFor(err)
		}
	}

	csrf := csrfToken(w, r, h.opts.SecureCookies)
	data.Page = toPage(h.title("Setup"), h.opts.Defaults, csrf, false)
	h.render(w, r, http.StatusOK, templates.Layout(data.Page, templates.Setup(data)))
}

// settings returns the display settings of the caller.
func (h *Handler) settings(r *http.Request) model.Settings {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess.Settings
	}
	return h.opts.Defaults
}

func (h *Handler) title(heading string) string {
	if h.opts.Hostname == "" {
		return heading
	}
	return heading + " | " + h.opts.Hostname
}

func (h *Handler) canLogout(sess *model.Session) bool {
	return (h.auth != nil && sess.Authenticated()) || h.gate.Enabled()
}

// redirectUnauthenticated sends the browser to /login in session mode or
// /setup in fixed mode when err means no usable credential. A session whose
// stored credential was rejected is logged out first so /login shows the form.
func (h *Handler) redirectUnauthenticated(w http.ResponseWriter, r *http.Request, err error) bool {
	if !needsCredentials(err) {
		return false
	}
	target := "/setup"
	if h.auth != nil {
		target = "/login"
		if sess := session.FromContext(r.Context()); sess.Authenticated() && h.sessions != nil {
			h.logger.Info("stored credential rejected, logging session out", "session_id", sess.ID, "error", err)
			h.auth.Logout(r.Context(), sess)
			h.saveSession(w, r, sess)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
	return true
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, sess *model.Session) bool {
	if err := h.sessions.Save(w, r, sess); err != nil {
		h.logger.Error("failed to save session", "session_id", sess.ID, "error", err)
		return false
	}
	return true
}

func (h *Handler) renderUnlock(w http.ResponseWriter, r *http.Request, status int, msg string) {
	csrf := csrfToken(w, r, h.opts.SecureCookies)
	data := vm.UnlockViewModel{
		Page:  toPage(h.title("Unlock"), h.opts.Defaults, csrf, false),
		Error: msg,
	}
	h.render(w, r, status, templates.Layout(data.Page, templates.Unlock(data)))
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data vm.LoginViewModel) {
	csrf := csrfToken(w, r, h.opts.SecureCookies)
	data.Page = toPage(h.title("Log in"), h.settings(r), csrf, h.gate.Enabled())
	h.render(w, r, status, templates.Layout(data.Page, templates.Login(data)))
}

// render buffers c so a template failure still yields a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// settingsFromForm applies submitted fields over current. Unparsable numbers
// keep their current value.
func settingsFromForm(form url.Values, current model.Settings) model.Settings {
	s := current
	s.CollectionID = form.Get("collection_id")
	s.CollectionName = form.Get("collection_name")
	if n, err := strconv.Atoi(strings.TrimSpace(form.Get("grid_columns"))); err == nil {
		s.GridColumns = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(form.Get("grid_spacing"))); err == nil {
		s.GridSpacing = n
	}
	s.SortMode = model.SortMode(form.Get("sort_mode"))
	s.Theme = model.Theme(form.Get("theme"))
	s.BackgroundMode = model.BackgroundMode(form.Get("background_mode"))
	s.WallpaperURL = form.Get("wallpaper_url")
	s.BackgroundColor = form.Get("background_color")
	s.TextColor = form.Get("text_color")
	s.OpenInNewTab = form.Get("open_in_new_tab") != ""
	s.ShowSidebar = form.Get("show_sidebar") != ""
	return s
}

func needsCredentials(err error) bool {
	return errors.Is(err, driven.ErrConfiguration) ||
		errors.Is(err, driven.ErrAuthentication) ||
		errors.Is(err, driven.ErrAuthorization)
}

func noticeFor(err error) string {
	if errors.Is(err, driven.ErrTransport) {
		return "Linkwarden is unreachable right now. Try again in a moment."
	}
	return "Linkwarden returned an error. Try again in a moment."
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, driven.ErrConfiguration):
		return http.StatusBadRequest, "Enter a Linkwarden URL and either an access token or a username and password."
	case errors.Is(err, driven.ErrAuthentication), errors.Is(err, driven.ErrAuthorization):
		return http.StatusUnauthorized, "Linkwarden rejected these credentials."
	default:
		return http.StatusBadGateway, "Could not reach Linkwarden."
	}
}
