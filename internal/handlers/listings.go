package handlers

import (
	"net/http"
	"strconv"

	"github.com/evgkirov/bboard/internal/auth"
	"github.com/evgkirov/bboard/internal/images"
	"github.com/evgkirov/bboard/models"
)

const maxUploadBytes = 32 << 20

// ListingDetail shows one listing with its images, visible comments and
// the rating forms. POSTs to the same URL carry a discriminator field:
// comment_submit adds a comment, rating_submit records a score. Both
// redirect back here on success so a refresh never resubmits.
func (h *Handlers) ListingDetail(w http.ResponseWriter, r *http.Request) {
	listingID := urlID(r, "listingID")
	if listingID == 0 {
		h.notFound(w, r)
		return
	}
	listing, err := h.store.Listings.Get(listingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user := h.currentUser(r)

	var formErrors map[string]string
	if r.Method == http.MethodPost {
		if done := h.listingDetailPost(w, r, listing, user, &formErrors); done {
			return
		}
	}

	comments, err := h.store.Comments.ListActive(listingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	avg, err := h.store.Listings.AverageRating(listingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	count, err := h.store.Listings.RatingCount(listingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := map[string]any{
		"Listing":       listing,
		"Comments":      comments,
		"AverageRating": avg,
		"RatingCount":   count,
		"Errors":        formErrors,
		"User":          user,
	}
	if user != nil {
		if rating, err := h.store.Ratings.Get(listingID, user.ID); err == nil {
			data["OwnRating"] = rating
		}
	}
	h.render(w, r, "listing_detail", data)
}

// listingDetailPost handles the two POST sub-actions. It reports true when
// it already wrote a response (redirect or error page); on validation
// failure it fills errs and lets the caller re-render.
func (h *Handlers) listingDetailPost(w http.ResponseWriter, r *http.Request, listing *models.Listing, user *models.User, errs *map[string]string) bool {
	switch {
	case r.PostFormValue("comment_submit") != "":
		authorName := r.PostFormValue("author")
		if user != nil {
			// authenticated commenters always post under their username
			authorName = user.Username
		}
		_, err := h.store.Comments.Post(listing.ID, authorName, r.PostFormValue("content"))
		if err != nil {
			if fe := fieldErrors(err); fe != nil {
				*errs = fe
				h.flash(w, r, "Comment not added")
				return false
			}
			h.fail(w, r, err)
			return true
		}
		h.flash(w, r, "Comment added")

	case r.PostFormValue("rating_submit") != "":
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return true
		}
		score, _ := strconv.Atoi(r.PostFormValue("score"))
		created, err := h.store.Ratings.Upsert(listing.ID, user.ID, score)
		if err != nil {
			if fe := fieldErrors(err); fe != nil {
				*errs = fe
				h.flash(w, r, "Could not save your score")
				return false
			}
			h.fail(w, r, err)
			return true
		}
		if created {
			h.flash(w, r, "Your score has been saved")
		} else {
			h.flash(w, r, "Your score has been updated")
		}

	default:
		*errs = map[string]string{"form": "unknown action"}
		return false
	}
	http.Redirect(w, r, r.URL.RequestURI(), http.StatusFound)
	return true
}

// ownListing loads a listing owned by the signed-in user; anything else,
// including someone else's listing, reads as 404.
func (h *Handlers) ownListing(w http.ResponseWriter, r *http.Request) *models.Listing {
	userID, _ := auth.UserID(r.Context())
	listing, err := h.store.Listings.Get(urlID(r, "listingID"))
	if err != nil || listing.AuthorID != userID {
		h.notFound(w, r)
		return nil
	}
	return listing
}

// ProfileListingDetail shows one of the user's own listings, active or not.
func (h *Handlers) ProfileListingDetail(w http.ResponseWriter, r *http.Request) {
	listing := h.ownListing(w, r)
	if listing == nil {
		return
	}
	comments, err := h.store.Comments.ListActive(listing.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "profile_listing_detail", map[string]any{
		"Listing":  listing,
		"Comments": comments,
	})
}

func (h *Handlers) renderListingForm(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	rubrics, err := h.store.Rubrics.AllSubRubrics()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["Rubrics"] = rubrics
	h.render(w, r, name, data)
}

// ListingAddForm shows the new-listing form.
func (h *Handlers) ListingAddForm(w http.ResponseWriter, r *http.Request) {
	h.renderListingForm(w, r, "listing_add", nil)
}

// ListingAdd creates a listing with an optional primary image and any
// number of additional images.
func (h *Handlers) ListingAdd(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	listing, errs := h.listingFromForm(r)
	if errs != nil {
		h.renderListingForm(w, r, "listing_add", map[string]any{"Errors": errs, "Listing": listing})
		return
	}
	listing.AuthorID = userID

	if key, ok := h.uploadFormImage(r, "image"); ok {
		listing.ImageKey = key
	}

	id, err := h.store.Listings.Create(listing)
	if err != nil {
		if fe := fieldErrors(err); fe != nil {
			h.renderListingForm(w, r, "listing_add", map[string]any{"Errors": fe, "Listing": listing})
			return
		}
		h.fail(w, r, err)
		return
	}
	h.attachAdditionalImages(r, id)
	h.flash(w, r, "Listing added")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// ListingEditForm shows the edit form for an owned listing.
func (h *Handlers) ListingEditForm(w http.ResponseWriter, r *http.Request) {
	listing := h.ownListing(w, r)
	if listing == nil {
		return
	}
	h.renderListingForm(w, r, "listing_edit", map[string]any{"Listing": listing})
}

// ListingEdit updates an owned listing, replacing the primary image when a
// new one is uploaded and attaching any new additional images.
func (h *Handlers) ListingEdit(w http.ResponseWriter, r *http.Request) {
	listing := h.ownListing(w, r)
	if listing == nil {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, errs := h.listingFromForm(r)
	if errs != nil {
		updated.ID = listing.ID
		h.renderListingForm(w, r, "listing_edit", map[string]any{"Errors": errs, "Listing": updated})
		return
	}
	updated.ImageKey = listing.ImageKey
	if key, ok := h.uploadFormImage(r, "image"); ok {
		images.Remove(r.Context(), h.storage, listing.ImageKey)
		updated.ImageKey = key
	}

	if err := h.store.Listings.Update(listing.ID, updated); err != nil {
		if fe := fieldErrors(err); fe != nil {
			updated.ID = listing.ID
			h.renderListingForm(w, r, "listing_edit", map[string]any{"Errors": fe, "Listing": updated})
			return
		}
		h.fail(w, r, err)
		return
	}
	h.attachAdditionalImages(r, listing.ID)

	for _, raw := range r.PostForm["remove_image"] {
		imageID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		key, err := h.store.Listings.RemoveImage(listing.ID, uint(imageID))
		if err != nil {
			continue
		}
		images.Remove(r.Context(), h.storage, key)
	}
	h.flash(w, r, "Listing updated")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// ListingDeleteForm shows the delete confirmation page.
func (h *Handlers) ListingDeleteForm(w http.ResponseWriter, r *http.Request) {
	listing := h.ownListing(w, r)
	if listing == nil {
		return
	}
	h.render(w, r, "listing_delete", map[string]any{"Listing": listing})
}

// ListingDelete removes an owned listing with its dependents and drops the
// stored images.
func (h *Handlers) ListingDelete(w http.ResponseWriter, r *http.Request) {
	listing := h.ownListing(w, r)
	if listing == nil {
		return
	}
	keys, err := h.store.Listings.Delete(listing.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for _, key := range keys {
		images.Remove(r.Context(), h.storage, key)
	}
	h.flash(w, r, "Listing deleted")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// listingFromForm reads the listing fields; price errors surface through
// store validation except unparseable input, reported here.
func (h *Handlers) listingFromForm(r *http.Request) (*models.Listing, map[string]string) {
	listing := &models.Listing{
		Title:    r.PostFormValue("title"),
		Content:  r.PostFormValue("content"),
		Contacts: r.PostFormValue("contacts"),
		IsActive: r.PostFormValue("is_active") != "",
	}
	rubricID, err := strconv.ParseUint(r.PostFormValue("rubric"), 10, 32)
	if err != nil {
		return listing, map[string]string{"rubric": "choose a rubric"}
	}
	listing.RubricID = uint(rubricID)
	if raw := r.PostFormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return listing, map[string]string{"price": "must be a number"}
		}
		listing.Price = price
	}
	return listing, nil
}

// uploadFormImage stores one optional uploaded file, reporting whether a
// file was present.
func (h *Handlers) uploadFormImage(r *http.Request, field string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", false
	}
	defer file.Close()
	key, err := images.Upload(r.Context(), h.storage, file, header)
	if err != nil {
		return "", false
	}
	return key, true
}

func (h *Handlers) attachAdditionalImages(r *http.Request, listingID uint) {
	if r.MultipartForm == nil {
		return
	}
	for _, header := range r.MultipartForm.File["additional_images"] {
		file, err := header.Open()
		if err != nil {
			continue
		}
		key, err := images.Upload(r.Context(), h.storage, file, header)
		file.Close()
		if err != nil {
			continue
		}
		if err := h.store.Listings.AddImage(listingID, key); err != nil {
			images.Remove(r.Context(), h.storage, key)
		}
	}
}
