package handlers

import (
	"encoding/json"
	"net/http"

	"rfpdesk-server/src/middleware"
	"rfpdesk-server/src/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// GetCurrentUser returns the account behind the request token.
func GetCurrentUser(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, "failed to get user", zap.Int64("user_id", userID))
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func ChangePassword(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, "failed to get user", zap.Int64("user_id", userID))
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			zap.L().Warn("invalid current password attempt", zap.Int64("user_id", userID))
			http.Error(w, "current password is incorrect", http.StatusUnauthorized)
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			zap.L().Warn("password validation failed during change password", zap.Int64("user_id", userID))
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err, "internal error", zap.Int64("user_id", userID))
			return
		}

		if err := store.UpdateUserPassword(r.Context(), userID, hashedPassword); err != nil {
			writeError(w, r, err, "internal error", zap.Int64("user_id", userID))
			return
		}

		zap.L().Info("user password changed", zap.Int64("user_id", userID))
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "password changed successfully",
		})
	}
}
