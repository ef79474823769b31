// Package httphandler serves the JSON API consumed by the speed-dial page.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/speeddial/internal/adapter/driving/session"
	"github.com/ericfisherdev/speeddial/internal/application"
	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// maxImageAge is the browser cache lifetime of proxied thumbnails and favicons.
const maxImageAge = time.Hour

// maxRestoreBody caps the JSON body of a session restore.
const maxRestoreBody = 16 << 10

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	links    *application.LinkService
	auth     *application.SessionAuthService // nil in fixed mode
	sessions *session.Manager                // nil in fixed mode
	defaults model.Settings
	logger   *slog.Logger
}

// NewHandler creates a Handler. auth and sessions are nil in fixed mode.
func NewHandler(
	links *application.LinkService,
	auth *application.SessionAuthService,
	sessions *session.Manager,
	defaults model.Settings,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		links:    links,
		auth:     auth,
		sessions: sessions,
		defaults: defaults,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the JSON API on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/collections", h.Collections)
	mux.HandleFunc("GET /api/links", h.Links)
	mux.HandleFunc("GET /api/tree", h.Tree)
	mux.HandleFunc("GET /api/tiles", h.Tiles)
	mux.HandleFunc("GET /api/thumbnail/{id}", h.Thumbnail)
	mux.HandleFunc("GET /api/favicon", h.Favicon)
	mux.HandleFunc("POST /api/session/restore", h.RestoreSession)
	mux.HandleFunc("GET /api/health", h.Health)
}

// settings returns the display settings of the caller.
func (h *Handler) settings(r *http.Request) model.Settings {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess.Settings
	}
	return h.defaults
}

// Collections returns every collection in Linkwarden's response wrapper.
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	cols, err := h.links.Collections(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, "list collections", err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Response: cols})
}

// Links returns the links of ?collection_id=. Without an ID the list is empty.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	collectionID := strings.TrimSpace(r.URL.Query().Get("collection_id"))

	links, err := h.links.Links(r.Context(), session.FromContext(r.Context()), collectionID)
	if err != nil {
		h.writeServiceError(w, "list links", err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Response: links})
}

// Tree returns all collections plus the links of the configured collection,
// or of ?collection_id= when given.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	collectionID := strings.TrimSpace(r.URL.Query().Get("collection_id"))
	if collectionID == "" {
		collectionID = h.settings(r).CollectionID
	}

	tree, err := h.links.Tree(r.Context(), session.FromContext(r.Context()), collectionID)
	if err != nil {
		h.writeServiceError(w, "build tree", err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Tiles returns the sorted grid of a collection split into pinned and other tiles.
func (h *Handler) Tiles(w http.ResponseWriter, r *http.Request) {
	settings := h.settings(r)
	q := r.URL.Query()

	collectionID := strings.TrimSpace(q.Get("collection_id"))
	if collectionID == "" {
		collectionID = settings.CollectionID
	}
	mode := settings.SortMode
	if v := q.Get("sort"); v != "" {
		mode = model.ParseSortMode(v)
	}

	tiles, err := h.links.Tiles(r.Context(), session.FromContext(r.Context()), collectionID, mode)
	if err != nil {
		h.writeServiceError(w, "assemble tiles", err)
		return
	}

	pinned, others := model.SplitPinned(tiles)
	writeJSON(w, http.StatusOK, TilesResponse{Pinned: pinned, Tiles: others})
}

// Thumbnail proxies the archived preview image of a link.
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	blob, err := h.links.Thumbnail(r.Context(), session.FromContext(r.Context()), r.PathValue("id"))
	h.writeImage(w, "thumbnail", blob, err)
}

// Favicon proxies Linkwarden's favicon of the origin of ?url=.
func (h *Handler) Favicon(w http.ResponseWriter, r *http.Request) {
	blob, err := h.links.Favicon(r.Context(), session.FromContext(r.Context()), r.URL.Query().Get("url"))
	h.writeImage(w, "favicon", blob, err)
}

// RestoreSession re-attaches a client-held base URL and token to the
// caller's session after validating them upstream.
func (h *Handler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if h.auth == nil || h.sessions == nil || sess == nil {
		writeError(w, http.StatusNotFound, "session login is disabled")
		return
	}

	var req RestoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRestoreBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.BaseURL) == "" || strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "base_url and token are required")
		return
	}

	wasAuthenticated := sess.Authenticated()
	if err := h.auth.Restore(r.Context(), sess, req.BaseURL, req.Token); err != nil {
		h.logger.Info("session restore failed", "session_id", sess.ID, "error", err)
		if wasAuthenticated {
			if err := h.sessions.Save(w, r, sess); err != nil {
				h.logger.Error("failed to save session", "error", err)
			}
		}
		switch {
		case errors.Is(err, driven.ErrConfiguration):
			writeError(w, http.StatusBadRequest, "invalid base_url")
		case IsNotAuthenticated(err):
			writeError(w, http.StatusUnauthorized, "not authenticated")
		default:
			h.writeServiceError(w, "restore session", err)
		}
		return
	}

	if err := h.sessions.Save(w, r, sess); err != nil {
		h.logger.Error("failed to save session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Mode:   string(h.links.Mode()),
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError answers 401 for credential problems and 502 for upstream failures.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusUnauthorized:
		h.logger.Info(op+" not authenticated", "error", err)
		writeError(w, status, "not authenticated")
	case http.StatusBadGateway:
		h.logger.Warn(op+" failed upstream", "error", err)
		writeJSON(w, status, upstreamErrorResponse{Error: err.Error(), Response: []any{}})
	default:
		h.logger.Error(op+" failed", "error", err)
		writeError(w, status, "internal server error")
	}
}

func (h *Handler) writeImage(w http.ResponseWriter, what string, blob *model.Blob, err error) {
	if err != nil {
		if IsNotAuthenticated(err) {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		h.logger.Debug(what+" unavailable", "error", err)
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "private, max-age="+strconv.Itoa(int(maxImageAge.Seconds())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
