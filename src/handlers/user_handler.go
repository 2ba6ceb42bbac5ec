package handlers

import (
	"net/http"
	"strings"

	db "ledgerly-server/src/db/sql"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/models"
	"ledgerly-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func loadProfile(r *http.Request, pool *pgxpool.Pool, userID int64) (*models.UserProfile, error) {
	user, err := db.GetUserByID(r.Context(), pool, userID)
	if err != nil {
		return nil, err
	}
	txns, err := db.GetTransactionsForUser(r.Context(), pool, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, Transactions: txns}, nil
}

func GetMe(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := loadProfile(r, pool, currentUser(r))
		if err != nil {
			writeError(w, r, "Failed to load profile", err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// GetAllUsers lists users visible to the caller, which is only themselves.
func GetAllUsers(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := loadProfile(r, pool, currentUser(r))
		if err != nil {
			writeError(w, r, "Failed to load profile", err)
			return
		}
		writeJSON(w, http.StatusOK, []models.UserProfile{*profile})
	}
}

func GetUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if id != currentUser(r) {
			notFound(w)
			return
		}
		profile, err := loadProfile(r, pool, id)
		if err != nil {
			writeError(w, r, "Failed to load profile", err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// UpdateUser edits name and image. Email and the running totals are not
// writable here.
func UpdateUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		userID := currentUser(r)
		if id != userID {
			notFound(w)
			return
		}

		var req struct {
			Name  *string        `json:"name"`
			Image nullableString `json:"image"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			writeError(w, r, "Failed to get user", err)
			return
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if len(name) > 150 {
				writeJSON(w, http.StatusBadRequest, util.FieldErrors{"name": {"Ensure this field has no more than 150 characters."}})
				return
			}
			user.Name = name
		}
		if req.Image.Set {
			user.Image = req.Image.Value
		}

		updated, err := db.UpdateUserProfile(r.Context(), pool, userID, user.Email, user.Name, user.Image)
		if err != nil {
			writeError(w, r, "Failed to update user profile", err)
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "User profile updated")
		writeJSON(w, http.StatusOK, updated)
	}
}

func ChangePassword(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r)

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if msgs := util.PasswordErrors(req.NewPassword); len(msgs) > 0 {
			writeJSON(w, http.StatusBadRequest, util.FieldErrors{"new_password": msgs})
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			writeError(w, r, "Failed to get user for password change", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			writeJSON(w, http.StatusBadRequest, util.FieldErrors{"current_password": {"Current password is incorrect."}})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			internalError(w, r, "Failed to hash new password", err)
			return
		}
		if err := db.UpdateUserPassword(r.Context(), pool, userID, hashedPassword); err != nil {
			writeError(w, r, "Failed to update user password", err)
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "User password changed")
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully."})
	}
}

func DeleteUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if id != currentUser(r) {
			notFound(w)
			return
		}
		if err := db.DeleteUser(r.Context(), pool, id); err != nil {
			writeError(w, r, "Failed to delete user", err)
			return
		}
		logger.FromContext(r.Context()).InfoContext(r.Context(), "User deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateFirebaseToken registers the caller's device for push, or moves an
// already known token to the caller.
func UpdateFirebaseToken(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token      string `json:"firebase_notification_token"`
			DeviceName string `json:"device_name"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Token = strings.TrimSpace(req.Token)
		if req.Token == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "firebase_notification_token is required."})
			return
		}

		_, created, err := db.UpsertDevice(r.Context(), pool, currentUser(r), req.Token, strings.TrimSpace(req.DeviceName))
		if err != nil {
			writeError(w, r, "Failed to register device", err)
			return
		}

		message := "Device token updated successfully."
		if created {
			message = "Device registered successfully."
		}
		logger.FromContext(r.Context()).InfoContext(r.Context(), "Device token saved", "created", created)
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}
