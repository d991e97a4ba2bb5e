// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"aistyleguide/internal/middleware"
	"aistyleguide/internal/models"
	"aistyleguide/internal/session"
	"aistyleguide/internal/store"
)

// Password limits. bcrypt ignores bytes past 72.
const (
	minPasswordLen = 8
	maxPasswordLen = 72
	maxTitleLen    = 200
	maxGuideLen    = 500_000
)

// Account groups customer sign-up, sign-in and saved style guides.
type Account struct {
	sessions Sessions
	users    UserStore
	guides   StyleGuideStore
}

// NewAccount creates the account handler group.
func NewAccount(sessions Sessions, users UserStore, guides StyleGuideStore) *Account {
	return &Account{sessions: sessions, users: users, guides: guides}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (c credentials) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required.Error("email is required"), is.EmailFormat.Error("email address is not valid")),
		validation.Field(&c.Password,
			validation.Required.Error("password is required"),
			validation.Length(minPasswordLen, maxPasswordLen).Error("password must be between 8 and 72 characters"),
		),
		validation.Field(&c.DisplayName, validation.RuneLength(0, 100).Error("display name must be 100 characters or fewer")),
	)
}

// accountPayload is the public view of a signed-in user.
func accountPayload(u *models.User) map[string]any {
	return map[string]any{
		"id":               u.ID,
		"email":            u.Email,
		"displayName":      u.DisplayName,
		"role":             u.Role,
		"subscriptionTier": u.Tier(),
	}
}

// Signup creates a customer account and signs it in.
func (a *Account) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, firstValidationError(err))
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = strings.SplitN(req.Email, "@", 2)[0]
	}

	user, err := a.users.Create(req.Email, req.Password, req.DisplayName, models.RoleCustomer)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}
	if err != nil {
		slog.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if !a.startSession(w, r, user, true) {
		return
	}
	slog.Info("customer signed up", "user_id", user.ID)
	writeSuccess(w, map[string]any{"user": accountPayload(user)})
}

// Login signs a customer in. Admin accounts must use the admin login so
// the TOTP step cannot be skipped.
func (a *Account) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Admin accounts sign in through the admin login.")
		return
	}

	if !a.startSession(w, r, user, true) {
		return
	}
	writeSuccess(w, map[string]any{"user": accountPayload(user)})
}

// startSession creates the session cookie for user.
func (a *Account) startSession(w http.ResponseWriter, r *http.Request, user *models.User, twoFADone bool) bool {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   twoFADone,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return false
	}
	return true
}

// Logout destroys the session.
func (a *Account) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeSuccess(w, nil)
}

// SubscriptionTier reports the signed-in user's tier.
func (a *Account) SubscriptionTier(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	writeSuccess(w, map[string]any{"tier": user.Tier(), "user": accountPayload(user)})
}

// currentUser loads the user behind the session.
func (a *Account) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
		return nil, false
	}
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		slog.Error("user lookup failed", "error", err, "user_id", sess.UserID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
		return nil, false
	}
	return user, true
}

type saveGuideRequest struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Plan         string              `json:"plan"`
	BrandDetails models.BrandDetails `json:"brandDetails"`
	Content      string              `json:"content"`
}

// SaveStyleGuide stores a guide for the signed-in user. Sending an id
// overwrites that guide; the last write wins.
func (a *Account) SaveStyleGuide(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req saveGuideRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	switch {
	case strings.TrimSpace(req.Content) == "":
		writeError(w, http.StatusBadRequest, "Style guide content is required.")
		return
	case len(req.Content) > maxGuideLen:
		writeError(w, http.StatusRequestEntityTooLarge, "Style guide is too large.")
		return
	case len([]rune(req.Title)) > maxTitleLen:
		writeError(w, http.StatusBadRequest, "Title is too long (max 200 characters).")
		return
	}
	if req.Title == "" {
		req.Title = strings.TrimSpace(req.BrandDetails.Name + " Style Guide")
	}
	plan, err := models.ParsePlan(req.Plan)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown plan.")
		return
	}

	guide := &models.StyleGuide{
		UserID:       sess.UserID,
		Title:        req.Title,
		Plan:         plan,
		BrandDetails: req.BrandDetails,
		Content:      req.Content,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid style guide id.")
			return
		}
		guide.ID = id
	}

	saved, err := a.guides.Save(guide)
	if err != nil {
		slog.Error("save style guide failed", "error", err, "user_id", sess.UserID)
		writeError(w, http.StatusInternalServerError, "Could not save the style guide.")
		return
	}
	if saved == nil {
		writeError(w, http.StatusNotFound, "Style guide not found.")
		return
	}
	writeSuccess(w, map[string]any{"id": saved.ID, "updatedAt": saved.UpdatedAt})
}

// LoadStyleGuide returns one saved guide, or the most recent one when no
// id is given.
func (a *Account) LoadStyleGuide(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var (
		guide *models.StyleGuide
		err   error
	)
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid style guide id.")
			return
		}
		guide, err = a.guides.FindForUser(id, sess.UserID)
	} else {
		guide, err = a.guides.LatestForUser(sess.UserID)
	}
	if err != nil {
		slog.Error("load style guide failed", "error", err, "user_id", sess.UserID)
		writeError(w, http.StatusInternalServerError, "Could not load the style guide.")
		return
	}
	if guide == nil {
		writeError(w, http.StatusNotFound, "Style guide not found.")
		return
	}
	writeSuccess(w, map[string]any{"styleGuide": guide})
}

// firstValidationError returns the message of the first failing field in
// a stable order.
func firstValidationError(err error) string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, field := range []string{"email", "password", "displayName"} {
			if fe, ok := errs[field]; ok && fe != nil {
				return capitalize(fe.Error()) + "."
			}
		}
	}
	return validationMessage(err)
}
