package handlers

import (
	"errors"
	"net/http"
	"strings"

	db "ledgerly-server/src/db/sql"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/models"
	"ledgerly-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func Register(pool *pgxpool.Pool, issuer *util.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		req.Email = util.NormalizeEmail(req.Email)
		req.Name = strings.TrimSpace(req.Name)

		fe := util.FieldErrors{}
		if req.Email == "" {
			fe.Add("email", "This field is required.")
		} else if !util.ValidateEmail(req.Email) {
			fe.Add("email", "Enter a valid email address.")
		}
		if req.Password == "" {
			fe.Add("password", "This field is required.")
		} else {
			for _, msg := range util.PasswordErrors(req.Password) {
				fe.Add("password", msg)
			}
		}
		if len(req.Name) > 150 {
			fe.Add("name", "Ensure this field has no more than 150 characters.")
		}
		if !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}
		if req.Name == "" {
			req.Name = util.DefaultName(req.Email)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			internalError(w, r, "Failed to hash password", err)
			return
		}

		user, err := db.CreateUser(r.Context(), pool, req.Email, req.Name, req.Image, hashedPassword)
		if err != nil {
			if errors.Is(err, db.ErrConflict) {
				writeJSON(w, http.StatusBadRequest, util.FieldErrors{"email": {"user with this email already exists."}})
				return
			}
			internalError(w, r, "Failed to create user", err)
			return
		}

		pair, err := issuer.Pair(user)
		if err != nil {
			internalError(w, r, "Failed to generate tokens", err)
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "User registered", logger.FieldUserID, user.ID)
		writeJSON(w, http.StatusCreated, models.RegisterResponse{User: *user, Refresh: pair.Refresh, Access: pair.Access})
	}
}

func Login(pool *pgxpool.Pool, issuer *util.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &credentials) {
			return
		}

		fe := util.FieldErrors{}
		if credentials.Email == "" {
			fe.Add("email", "This field is required.")
		}
		if credentials.Password == "" {
			fe.Add("password", "This field is required.")
		}
		if !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		log := logger.FromContext(r.Context())
		const invalid = "No active account found with the given credentials"

		user, err := db.GetUserByEmail(r.Context(), pool, util.NormalizeEmail(credentials.Email))
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				log.InfoContext(r.Context(), "Login for unknown email", "remote_addr", r.RemoteAddr)
				writeDetail(w, http.StatusUnauthorized, invalid)
				return
			}
			internalError(w, r, "Failed to look up user", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			log.InfoContext(r.Context(), "Invalid password attempt", logger.FieldUserID, user.ID, "remote_addr", r.RemoteAddr)
			writeDetail(w, http.StatusUnauthorized, invalid)
			return
		}
		if !user.IsActive {
			log.InfoContext(r.Context(), "Inactive user attempted login", logger.FieldUserID, user.ID)
			writeDetail(w, http.StatusUnauthorized, invalid)
			return
		}

		pair, err := issuer.Pair(user)
		if err != nil {
			internalError(w, r, "Failed to generate tokens", err)
			return
		}

		log.InfoContext(r.Context(), "Successful login", logger.FieldUserID, user.ID)
		writeJSON(w, http.StatusOK, pair)
	}
}

// RefreshToken exchanges a refresh token for a new access token. The user is
// re-read so deactivated accounts stop receiving tokens.
func RefreshToken(pool *pgxpool.Pool, issuer *util.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Refresh string `json:"refresh"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, util.FieldErrors{"refresh": {"This field is required."}})
			return
		}

		claims, err := issuer.Parse(req.Refresh, util.TokenRefresh)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, claims.UserID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
				return
			}
			internalError(w, r, "Failed to look up user", err)
			return
		}
		if !user.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}

		access, err := issuer.Issue(user.ID, user.IsStaff, util.TokenAccess)
		if err != nil {
			internalError(w, r, "Failed to generate access token", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": access})
	}
}
