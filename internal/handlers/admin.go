// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"aistyleguide/internal/middleware"
	"aistyleguide/internal/session"
)

// totpIssuer labels the account in authenticator apps.
const totpIssuer = "AI Style Guide"

// Admin groups the admin session, 2FA, blog and provider handlers.
type Admin struct {
	sessions Sessions
	users    UserStore
	account  *Account
	blog     BlogGenerator
	posts    BlogPostStore
	cache    PageCache
	registry ProviderRegistry
	history  GenerationLogger
	recorder generationRecorder
}

// NewAdmin creates the admin handler group. cache and genLog may be nil.
func NewAdmin(sessions Sessions, users UserStore, blog BlogGenerator, posts BlogPostStore, cache PageCache, registry ProviderRegistry, genLog GenerationLogger) *Admin {
	return &Admin{
		sessions: sessions,
		users:    users,
		account:  NewAccount(sessions, users, nil),
		blog:     blog,
		posts:    posts,
		cache:    cache,
		registry: registry,
		history:  genLog,
		recorder: generationRecorder{log: genLog, registry: registry},
	}
}

// Session reports the admin session state and the CSRF token the client
// must echo on state-changing calls.
func (a *Admin) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	payload := map[string]any{
		"authenticated": sess.IsAdmin() && sess.TwoFADone,
		"csrfToken":     middleware.CSRFTokenFromCtx(r.Context()),
	}
	if sess.IsAdmin() {
		payload["user"] = map[string]any{"email": sess.Email, "displayName": sess.DisplayName}
		payload["twoFactorDone"] = sess.TwoFADone
	}
	writeSuccess(w, payload)
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login checks the admin's password and, when 2FA is enrolled and a code
// is supplied, the TOTP code. Without a code the session stays pending
// until /2fa/verify succeeds.
func (a *Admin) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("admin login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) || !user.IsAdmin() {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	code := strings.TrimSpace(req.Code)
	done := false
	if !user.Needs2FASetup() && code != "" {
		if user.TOTPSecret == nil || !totp.Validate(code, *user.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, "Invalid authentication code.")
			return
		}
		done = true
	}

	if !a.account.startSession(w, r, user, done) {
		return
	}
	slog.Info("admin login", "user_id", user.ID, "two_fa_done", done)
	writeSuccess(w, map[string]any{
		"authenticated":     done,
		"needs2FASetup":     user.Needs2FASetup(),
		"twoFactorRequired": !done,
	})
}

// Logout destroys the admin session.
func (a *Admin) Logout(w http.ResponseWriter, r *http.Request) {
	a.account.Logout(w, r)
}

// pendingAdmin returns the session of an admin who passed the password
// check, whether or not 2FA is done.
func pendingAdmin(w http.ResponseWriter, r *http.Request) (*session.Data, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAdmin() {
		writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
		return nil, false
	}
	return sess, true
}

// TwoFASetup generates a fresh TOTP secret and returns its QR code as a
// PNG. The secret is also sent in the X-TOTP-Secret header for manual
// entry.
func (a *Admin) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess, ok := pendingAdmin(w, r)
	if !ok {
		return
	}
	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !user.Needs2FASetup() {
		writeError(w, http.StatusConflict, "Two-factor authentication is already set up.")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-TOTP-Secret", key.Secret())
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

type verifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates a TOTP code, enables 2FA on first use and marks
// the session as fully authenticated.
func (a *Admin) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess, ok := pendingAdmin(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "Set up two-factor authentication first.")
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid code. Please try again.")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeSuccess(w, map[string]any{"authenticated": true})
}
