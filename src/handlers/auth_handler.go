package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	db "rfpdesk-server/src/db/sql"
	"rfpdesk-server/src/middleware"
	"rfpdesk-server/src/models"
	"rfpdesk-server/src/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates an account for an invited email. The invitation decides
// which person the account acts as and whether it carries manager rights.
func Register(store AuthStore, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}

		req.Email = util.NormalizeEmail(req.Email)
		req.Username = strings.ToLower(strings.TrimSpace(req.Username))

		if !util.ValidateEmail(req.Email) {
			zap.L().Warn("email validation failed during registration", zap.String("email", req.Email))
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}
		if !util.ValidateUsername(req.Username) {
			zap.L().Warn("username validation failed during registration", zap.String("username", req.Username))
			http.Error(w, "username must be between 3 and 30 characters", http.StatusBadRequest)
			return
		}
		if !util.ValidatePassword(req.Password) {
			zap.L().Warn("password validation failed during registration", zap.String("username", req.Username))
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		inv, err := store.GetInvitationByEmail(r.Context(), req.Email)
		if errors.Is(err, db.ErrNotFound) {
			zap.L().Warn("registration denied for uninvited email", zap.String("email", req.Email))
			http.Error(w, "registration is restricted to invited emails", http.StatusForbidden)
			return
		}
		if err != nil {
			writeError(w, r, err, "internal error")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err, "internal error", zap.String("username", req.Username))
			return
		}

		resp, err := store.CreateUser(r.Context(), req, hashedPassword, inv)
		if errors.Is(err, db.ErrConflict) {
			zap.L().Warn("registration failed, email or username already exists",
				zap.String("email", req.Email), zap.String("username", req.Username))
			http.Error(w, "email or username already exists", http.StatusConflict)
			return
		}
		if err != nil {
			writeError(w, r, err, "internal error", zap.String("username", req.Username))
			return
		}

		token, err := middleware.SignToken(secret, resp.ID, resp.Username, resp.PersonID, resp.Manager)
		if err != nil {
			writeError(w, r, err, "error generating token")
			return
		}

		zap.L().Info("successful registration", zap.String("username", resp.Username), zap.Int64("user_id", resp.ID))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"token": token,
			"user":  resp,
		})
	}
}

func Login(store AuthStore, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			UsernameOrEmail string `json:"username"`
			Password        string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}

		login := strings.ToLower(strings.TrimSpace(credentials.UsernameOrEmail))
		user, err := store.GetUserByUsername(r.Context(), login)
		if err != nil {
			user, err = store.GetUserByEmail(r.Context(), login)
		}
		if err != nil {
			zap.L().Warn("user not found during login", zap.String("login", login), zap.Error(err))
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			zap.L().Warn("invalid password attempt", zap.String("login", login), zap.String("remote", r.RemoteAddr))
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.SignToken(secret, user.ID, user.Username, user.PersonID, user.Manager)
		if err != nil {
			writeError(w, r, err, "error generating token")
			return
		}

		if err := store.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
			zap.L().Error("failed to update last_login", zap.String("username", user.Username), zap.Error(err))
		}

		zap.L().Info("successful login", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token": token,
			"user":  user,
		})
	}
}
