package handlers

import (
	"net/http"
	"strconv"

	"github.com/evgkirov/bboard/internal/store"
)

// Index shows the ten newest active listings with the rubric menu.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	listings, err := h.store.Listings.Latest(10)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rubrics, err := h.store.Rubrics.AllSubRubrics()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "index", map[string]any{
		"Listings": listings,
		"Rubrics":  rubrics,
	})
}

// RubricListings shows one sub-rubric's active listings with optional
// keyword search and page-based pagination.
func (h *Handlers) RubricListings(w http.ResponseWriter, r *http.Request) {
	rubricID := urlID(r, "rubricID")
	if rubricID == 0 {
		h.notFound(w, r)
		return
	}
	rubric, err := h.store.Rubrics.SubRubric(rubricID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	keyword := r.URL.Query().Get("keyword")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	result, err := h.store.Listings.ListActive(store.Filter{
		RubricID: rubricID,
		Keyword:  keyword,
	}, page, h.cfg.PageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "rubric_listings", map[string]any{
		"Rubric":  rubric,
		"Page":    result,
		"Keyword": keyword,
	})
}
