package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"bilancio/internal/auth"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const minPasswordLength = 8

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// handleRegister creates an account. The response never includes the
// password hash.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	// The address is stored as given: lookups are case-sensitive.
	req.Email = sanitizeInput(req.Email)
	if !validEmail(req.Email) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeDetail(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.storage.CreateUser(r.Context(), req.Email, hash)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// handleLogin implements the password-grant login convention: the
// credentials arrive form-encoded as username/password and the response is
// a bearer token envelope.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed form body")
		return
	}

	email := sanitizeInput(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeUnauthorized(w, "incorrect email or password")
		return
	}

	user, err := s.storage.UserByEmail(r.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		// Unknown account and wrong password are indistinguishable.
		writeUnauthorized(w, "incorrect email or password")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		writeUnauthorized(w, "incorrect email or password")
		return
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User logged in",
		log.FieldComponent, log.ComponentAuth,
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, user.ID)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        newUserResponse(user),
	})
}
