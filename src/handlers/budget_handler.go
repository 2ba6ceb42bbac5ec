package handlers

import (
	"net/http"
	"strings"
	"time"

	db "ledgerly-server/src/db/sql"
	"ledgerly-server/src/ledger"
	"ledgerly-server/src/models"
	"ledgerly-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type budgetRequest struct {
	Name      *string          `json:"name"`
	Image     nullableString   `json:"image"`
	Limit     *decimal.Decimal `json:"limit"`
	StartDate *string          `json:"start_date"`
	EndDate   *string          `json:"end_date"`

	start, end time.Time
}

func (req *budgetRequest) validate(partial bool) util.FieldErrors {
	fe := util.FieldErrors{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		switch {
		case name == "":
			fe.Add("name", "This field may not be blank.")
		case len(name) > 150:
			fe.Add("name", "Ensure this field has no more than 150 characters.")
		}
	} else if !partial {
		fe.Add("name", "This field is required.")
	}

	if req.Limit != nil {
		for _, msg := range util.LimitErrors(*req.Limit) {
			fe.Add("limit", msg)
		}
	}

	parse := func(field string, raw *string, dst *time.Time) {
		if raw == nil {
			if !partial {
				fe.Add(field, "This field is required.")
			}
			return
		}
		t, ok := util.ParseDate(*raw)
		if !ok {
			fe.Add(field, "Datetime has wrong format.")
			return
		}
		*dst = t
	}
	parse("start_date", req.StartDate, &req.start)
	parse("end_date", req.EndDate, &req.end)

	return fe
}

func (req *budgetRequest) apply(b *models.Budget) util.FieldErrors {
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Image.Set {
		b.Image = req.Image.Value
	}
	if req.Limit != nil {
		b.Limit = models.NewMoney(*req.Limit)
	}
	if req.StartDate != nil {
		b.StartDate = req.start
	}
	if req.EndDate != nil {
		b.EndDate = req.end
	}
	if b.EndDate.Before(b.StartDate) {
		return util.FieldErrors{"end_date": {"End date must not be before start date."}}
	}
	return nil
}

func GetAllBudgetsForUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		budgets, err := db.GetAllBudgetsForUser(r.Context(), pool, currentUser(r))
		if err != nil {
			internalError(w, r, "Failed to list budgets", err)
			return
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func GetBudgetByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		budget, err := db.GetBudgetWithUsage(r.Context(), pool, currentUser(r), id)
		if err != nil {
			writeError(w, r, "Failed to get budget", err)
			return
		}
		writeJSON(w, http.StatusOK, budget)
	}
}

func CreateBudget(svc *ledger.Service, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r)
		var req budgetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if fe := req.validate(false); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		budget := &models.Budget{UserID: userID}
		if fe := req.apply(budget); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		created, err := svc.CreateBudget(r.Context(), budget)
		if err != nil {
			writeError(w, r, "Failed to create budget", err)
			return
		}
		respondBudget(w, r, pool, http.StatusCreated, created)
	}
}

func UpdateBudget(svc *ledger.Service, pool *pgxpool.Pool, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req budgetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if fe := req.validate(partial); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		updated, err := svc.UpdateBudget(r.Context(), currentUser(r), id, func(b *models.Budget) error {
			if fe := req.apply(b); !fe.Empty() {
				return &validationError{fields: fe}
			}
			return nil
		})
		if err != nil {
			writeError(w, r, "Failed to update budget", err)
			return
		}
		respondBudget(w, r, pool, http.StatusOK, updated)
	}
}

func DeleteBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := db.DeleteBudget(r.Context(), pool, currentUser(r), id); err != nil {
			writeError(w, r, "Failed to delete budget", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// respondBudget re-reads the budget so spent and remaining are current.
func respondBudget(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool, status int, b *models.Budget) {
	withUsage, err := db.GetBudgetWithUsage(r.Context(), pool, b.UserID, b.ID)
	if err != nil {
		writeError(w, r, "Failed to read budget usage", err)
		return
	}
	writeJSON(w, status, withUsage)
}
