package handlers

import (
	"net/http"

	db "ledgerly-server/src/db/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

func GetAllNotifications(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := db.GetNotificationsForUser(r.Context(), pool, currentUser(r))
		if err != nil {
			internalError(w, r, "Failed to list notifications", err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func GetNotification(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		note, err := db.GetNotificationByID(r.Context(), pool, currentUser(r), id)
		if err != nil {
			writeError(w, r, "Failed to get notification", err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}
