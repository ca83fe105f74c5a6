package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/evgkirov/bboard/internal/auth"
	"github.com/evgkirov/bboard/internal/config"
	"github.com/evgkirov/bboard/internal/images"
	"github.com/evgkirov/bboard/internal/store"
	"github.com/evgkirov/bboard/models"
)

// Handlers holds the dependencies every request handler needs. Nothing
// here is ambient: the session store, signer and image storage are all
// passed in at construction.
type Handlers struct {
	cfg      *config.Config
	store    *store.Store
	sessions sessions.Store
	signer   *auth.Signer
	storage  images.Storage
	tmpl     *template.Template
}

func New(cfg *config.Config, st *store.Store, sess sessions.Store, signer *auth.Signer, storage images.Storage, tmpl *template.Template) *Handlers {
	return &Handlers{
		cfg:      cfg,
		store:    st,
		sessions: sess,
		signer:   signer,
		storage:  storage,
		tmpl:     tmpl,
	}
}

// currentUser loads the signed-in user, or nil for guests.
func (h *Handlers) currentUser(r *http.Request) *models.User {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return nil
	}
	user, err := h.store.Users.Get(id)
	if err != nil {
		return nil
	}
	return user
}

// render executes the named page template with shared context merged in.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = h.currentUser(r)
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	data["Flashes"] = []any{}
	if session, err := h.sessions.Get(r, auth.SessionName); err == nil {
		if flashes := session.Flashes(); len(flashes) > 0 {
			data["Flashes"] = flashes
			if err := session.Save(r, w); err != nil {
				log.Println("failed to save session:", err)
			}
		}
	}
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Println("template error:", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// flash queues a one-shot message shown on the next rendered page.
func (h *Handlers) flash(w http.ResponseWriter, r *http.Request, msg string) {
	session, err := h.sessions.Get(r, auth.SessionName)
	if err != nil {
		session, _ = h.sessions.New(r, auth.SessionName)
	}
	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		log.Println("failed to save session:", err)
	}
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "not_found", nil)
}

// fail maps a store error onto the right response; validation errors are
// the caller's to re-render.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	log.Println("internal error:", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// urlID parses a numeric chi route parameter; 0 means malformed.
func urlID(r *http.Request, name string) uint {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// fieldErrors extracts per-field messages, or nil for other errors.
func fieldErrors(err error) map[string]string {
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
