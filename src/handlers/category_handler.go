package handlers

import (
	"net/http"
	"strings"

	cache "ledgerly-server/src/db"
	db "ledgerly-server/src/db/sql"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

func (req *categoryRequest) validate(partial bool) util.FieldErrors {
	fe := util.FieldErrors{}
	if req.Name == nil {
		if !partial {
			fe.Add("name", "This field is required.")
		}
		return fe
	}
	name := strings.TrimSpace(*req.Name)
	req.Name = &name
	switch {
	case name == "":
		fe.Add("name", "This field may not be blank.")
	case len(name) > 120:
		fe.Add("name", "Ensure this field has no more than 120 characters.")
	}
	return fe
}

func GetAllCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := db.GetAllCategories(r.Context(), pool)
		if err != nil {
			internalError(w, r, "Failed to list categories", err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func GetCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		category, err := db.GetCategoryByID(r.Context(), pool, id)
		if err != nil {
			writeError(w, r, "Failed to get category", err)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if fe := req.validate(false); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		category, err := db.CreateCategory(r.Context(), pool, *req.Name)
		if err != nil {
			writeError(w, r, "Failed to create category", err)
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "Category created", "category_id", category.ID, "slug", category.Slug)
		writeJSON(w, http.StatusCreated, category)
	}
}

// UpdateCategory handles PUT and, with partial set, PATCH. The slug is kept
// unless one is sent explicitly.
func UpdateCategory(pool *pgxpool.Pool, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req categoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if fe := req.validate(partial); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		current, err := db.GetCategoryByID(r.Context(), pool, id)
		if err != nil {
			writeError(w, r, "Failed to get category", err)
			return
		}
		name := current.Name
		if req.Name != nil {
			name = *req.Name
		}

		category, err := db.UpdateCategory(r.Context(), pool, id, name, req.Slug)
		if err != nil {
			writeError(w, r, "Failed to update category", err)
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "Category updated", "category_id", id, "slug", category.Slug)
		writeJSON(w, http.StatusOK, category)
	}
}

func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := db.DeleteCategory(r.Context(), pool, id); err != nil {
			writeError(w, r, "Failed to delete category", err)
			return
		}
		logger.FromContext(r.Context()).InfoContext(r.Context(), "Category deleted", "category_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "cache_name")
		if !cache.ClearCache(name) {
			writeDetail(w, http.StatusBadRequest, "unknown cache: "+name)
			return
		}
		logger.FromContext(r.Context()).InfoContext(r.Context(), "Cache cleared", "cache", name)
		writeJSON(w, http.StatusOK, map[string]string{"message": "cache cleared: " + name})
	}
}
