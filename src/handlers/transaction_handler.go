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

const maxTitleLength = 150

type transactionRequest struct {
	Type     *models.TransactionType `json:"type"`
	Category nullableID              `json:"category"`
	Budget   nullableID              `json:"budget"`
	Amount   *decimal.Decimal        `json:"amount"`
	Title    *string                 `json:"title"`
	Date     *string                 `json:"date"`

	date time.Time
}

func (req *transactionRequest) validate(partial bool) util.FieldErrors {
	fe := util.FieldErrors{}

	if req.Type == nil {
		if !partial {
			fe.Add("type", "This field is required.")
		}
	} else if !req.Type.Valid() {
		fe.Add("type", `"`+string(*req.Type)+`" is not a valid choice.`)
	}

	if req.Amount == nil {
		if !partial {
			fe.Add("amount", "This field is required.")
		}
	} else {
		for _, msg := range util.AmountErrors(*req.Amount) {
			fe.Add("amount", msg)
		}
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
		if len(title) > maxTitleLength {
			fe.Add("title", "Ensure this field has no more than 150 characters.")
		}
	}

	if req.Date != nil {
		t, ok := util.ParseDate(*req.Date)
		if !ok {
			fe.Add("date", "Datetime has wrong format.")
		}
		req.date = t
	}

	return fe
}

func (req *transactionRequest) input() ledger.TransactionInput {
	in := ledger.TransactionInput{
		Type:       *req.Type,
		CategoryID: req.Category.Value,
		BudgetID:   req.Budget.Value,
		Amount:     *req.Amount,
		Date:       req.date,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	return in
}

func (req *transactionRequest) apply(t *models.Transaction) {
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.Category.Set {
		t.CategoryID = req.Category.Value
	}
	if req.Budget.Set {
		t.BudgetID = req.Budget.Value
	}
	if req.Amount != nil {
		t.Amount = models.NewMoney(*req.Amount)
	}
	if req.Title != nil {
		t.Title = *req.Title
		if t.Title == "" {
			t.Title = models.DefaultTransactionTitle
		}
	}
	if req.Date != nil {
		t.Date = req.date
	}
}

func GetAllTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txns, err := db.GetTransactionsForUser(r.Context(), pool, currentUser(r))
		if err != nil {
			internalError(w, r, "Failed to list transactions", err)
			return
		}
		writeJSON(w, http.StatusOK, txns)
	}
}

func GetTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		txn, err := db.GetTransactionByID(r.Context(), pool, currentUser(r), id)
		if err != nil {
			writeError(w, r, "Failed to get transaction", err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

func CreateTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if fe := req.validate(false); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		txn, err := svc.CreateTransaction(r.Context(), currentUser(r), req.input())
		if err != nil {
			writeError(w, r, "Failed to create transaction", err)
			return
		}
		writeJSON(w, http.StatusCreated, txn)
	}
}

// UpdateTransaction handles PUT and, with partial set, PATCH.
func UpdateTransaction(svc *ledger.Service, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req transactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if fe := req.validate(partial); !fe.Empty() {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		txn, err := svc.UpdateTransaction(r.Context(), currentUser(r), id, func(t *models.Transaction) error {
			req.apply(t)
			return nil
		})
		if err != nil {
			writeError(w, r, "Failed to update transaction", err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

func DeleteTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteTransaction(r.Context(), currentUser(r), id); err != nil {
			writeError(w, r, "Failed to delete transaction", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
