package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/markbates/goth/gothic"

	"github.com/evgkirov/bboard/internal/auth"
	"github.com/evgkirov/bboard/internal/images"
	"github.com/evgkirov/bboard/internal/store"
)

// RegisterForm shows the signup form.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", nil)
}

// Register creates an inactive account and issues the activation token.
// Mail delivery is out of scope: the activation link is logged and echoed
// on the done page.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	reRender := func(errs map[string]string) {
		h.render(w, r, "register", map[string]any{
			"Errors":   errs,
			"Username": username,
			"Email":    email,
		})
	}

	if password == "" {
		reRender(map[string]string{"password": "must not be empty"})
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.store.Users.Register(username, email, hash)
	if err != nil {
		if errs := fieldErrors(err); errs != nil {
			reRender(errs)
			return
		}
		if errors.Is(err, store.ErrUsernameTaken) {
			reRender(map[string]string{"username": "already taken"})
			return
		}
		h.fail(w, r, err)
		return
	}

	token, err := h.signer.Sign(user.Username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	link := "/activate/" + token
	log.Printf("activation link for %s: %s", user.Username, link)
	h.render(w, r, "register_done", map[string]any{"ActivationLink": link})
}

// Activate consumes an activation link. Tampered or expired tokens get the
// failure page; reusing a consumed link is informational, not an error.
func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	token := urlParam(r, "token")
	username, err := h.signer.Verify(token)
	if err != nil {
		h.render(w, r, "activation_failed", nil)
		return
	}
	already, err := h.store.Users.Activate(username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if already {
		h.render(w, r, "activation_done_later", nil)
		return
	}
	h.render(w, r, "activation_done", nil)
}

// LoginForm shows the login form.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", nil)
}

// Login authenticates and establishes the session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.store.Users.Authenticate(username, func(hash string) bool {
		return auth.CheckPassword(hash, password)
	})
	if err != nil {
		if errors.Is(err, store.ErrAuthFailed) {
			h.render(w, r, "login", map[string]any{
				"Error":    "Invalid username or password",
				"Username": username,
			})
			return
		}
		h.fail(w, r, err)
		return
	}
	if err := h.signIn(w, r, user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusFound)
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request, userID uint) error {
	session, err := h.sessions.Get(r, auth.SessionName)
	if err != nil {
		session, _ = h.sessions.New(r, auth.SessionName)
	}
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r, auth.SessionName)
	if err != nil {
		return
	}
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Println("failed to save session:", err)
	}
}

// Logout drops the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.signOut(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Profile lists the signed-in user's own listings, active or not.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	listings, err := h.store.Listings.ByAuthor(userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "profile", map[string]any{"Listings": listings})
}

// ProfileEditForm shows the profile edit form.
func (h *Handlers) ProfileEditForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "profile_edit", nil)
}

// ProfileEdit updates email and notification preference.
func (h *Handlers) ProfileEdit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	email := r.PostFormValue("email")
	sendMessages := r.PostFormValue("send_messages") != ""

	if err := h.store.Users.UpdateProfile(userID, email, sendMessages); err != nil {
		if errs := fieldErrors(err); errs != nil {
			h.render(w, r, "profile_edit", map[string]any{"Errors": errs})
			return
		}
		h.fail(w, r, err)
		return
	}
	h.flash(w, r, "Profile updated")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// PasswordForm shows the change-password form.
func (h *Handlers) PasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "password_edit", nil)
}

// PasswordChange verifies the old password and stores a new hash.
func (h *Handlers) PasswordChange(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	user, err := h.store.Users.Get(userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	oldPassword := r.PostFormValue("old_password")
	newPassword := r.PostFormValue("new_password")

	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		h.render(w, r, "password_edit", map[string]any{
			"Errors": map[string]string{"old_password": "wrong password"},
		})
		return
	}
	if newPassword == "" {
		h.render(w, r, "password_edit", map[string]any{
			"Errors": map[string]string{"new_password": "must not be empty"},
		})
		return
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.Users.SetPasswordHash(userID, hash); err != nil {
		h.fail(w, r, err)
		return
	}
	h.flash(w, r, "Password changed")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// ProfileDeleteForm shows the account deletion confirmation page.
func (h *Handlers) ProfileDeleteForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "profile_delete", nil)
}

// ProfileDelete removes the account with all of its listings, drops the
// stored images and ends the session.
func (h *Handlers) ProfileDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	keys, err := h.store.Users.Delete(userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for _, key := range keys {
		images.Remove(r.Context(), h.storage, key)
	}
	h.signOut(w, r)
	h.flash(w, r, "Account deleted")
	http.Redirect(w, r, "/", http.StatusFound)
}

// OAuthBegin starts the optional social sign-in flow; an already
// authenticated goth session signs the user straight in.
func (h *Handlers) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	if gothUser, err := gothic.CompleteUserAuth(w, r); err == nil {
		h.oauthSignIn(w, r, gothUser.Email, gothUser.NickName)
		return
	}
	gothic.BeginAuthHandler(w, r)
}

// OAuthCallback finishes the provider handshake, creating a pre-activated
// account on first sign-in (the provider already verified the email).
func (h *Handlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Println("oauth callback failed:", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.oauthSignIn(w, r, gothUser.Email, gothUser.NickName)
}

func (h *Handlers) oauthSignIn(w http.ResponseWriter, r *http.Request, email, nickname string) {
	username := nickname
	if username == "" {
		username = email
	}
	user, err := h.store.Users.GetByUsername(username)
	if errors.Is(err, store.ErrNotFound) {
		user, err = h.store.Users.Register(username, email, "")
		if err == nil {
			_, err = h.store.Users.Activate(username)
		}
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.signIn(w, r, user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusFound)
}
