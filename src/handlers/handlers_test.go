package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	db "ledgerly-server/src/db/sql"
	"ledgerly-server/src/ledger"
	"ledgerly-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantKey    string
	}{
		{fmt.Errorf("get: %w", db.ErrNotFound), http.StatusNotFound, "detail"},
		{fmt.Errorf("insert: %w", db.ErrConflict), http.StatusConflict, "detail"},
		{db.ErrEmptySlug, http.StatusBadRequest, "slug"},
		{ledger.ErrInvalidCategory, http.StatusBadRequest, "category"},
		{fmt.Errorf("%w: not found", ledger.ErrInvalidBudget), http.StatusBadRequest, "budget"},
		{&validationError{fields: map[string][]string{"end_date": {"x"}}}, http.StatusBadRequest, "end_date"},
		{errors.New("connection reset"), http.StatusInternalServerError, "detail"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), "op", tt.err)
		if rec.Code != tt.wantStatus {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
			continue
		}
		if _, ok := decodeBody(t, rec)[tt.wantKey]; !ok {
			t.Errorf("%v: body has no %q key", tt.err, tt.wantKey)
		}
	}
}

func TestNotFoundBody(t *testing.T) {
	rec := httptest.NewRecorder()
	notFound(rec)
	if body := decodeBody(t, rec); body["detail"] != "Not found." {
		t.Errorf("body = %v", body)
	}
}

func TestPathID(t *testing.T) {
	for raw, want := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		rec := httptest.NewRecorder()
		_, ok := pathID(rec, req)
		if ok != want {
			t.Errorf("pathID(%q) ok = %v, want %v", raw, ok, want)
		}
		if !ok && rec.Code != http.StatusNotFound {
			t.Errorf("pathID(%q) status = %d, want 404", raw, rec.Code)
		}
	}
}

func TestDecodeJSONRejectsMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": `))
	rec := httptest.NewRecorder()
	var dst transactionRequest
	if decodeJSON(rec, req, &dst) {
		t.Fatal("decodeJSON accepted truncated body")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestNullableIDDistinguishesNullFromAbsent(t *testing.T) {
	var req transactionRequest
	if err := json.Unmarshal([]byte(`{"category": null, "budget": 4}`), &req); err != nil {
		t.Fatal(err)
	}
	if !req.Category.Set || req.Category.Value != nil {
		t.Errorf("category = %+v, want explicit null", req.Category)
	}
	if !req.Budget.Set || req.Budget.Value == nil || *req.Budget.Value != 4 {
		t.Errorf("budget = %+v, want 4", req.Budget)
	}

	var absent transactionRequest
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatal(err)
	}
	if absent.Category.Set || absent.Budget.Set {
		t.Error("absent keys reported as set")
	}
}

func TestTransactionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		partial bool
		want    []string
	}{
		{"valid", `{"type":"expense","amount":"12.50"}`, false, nil},
		{"numeric amount", `{"type":"income","amount":12.5}`, false, nil},
		{"missing fields", `{}`, false, []string{"type", "amount"}},
		{"partial empty", `{}`, true, nil},
		{"bad type", `{"type":"transfer","amount":"1"}`, false, []string{"type"}},
		{"zero amount", `{"type":"expense","amount":"0"}`, false, []string{"amount"}},
		{"three places", `{"type":"expense","amount":"1.005"}`, true, []string{"amount"}},
		{"bad date", `{"type":"expense","amount":"1","date":"soon"}`, false, []string{"date"}},
		{"long title", `{"title":"` + strings.Repeat("x", 151) + `"}`, true, []string{"title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req transactionRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatal(err)
			}
			fe := req.validate(tt.partial)
			if len(fe) != len(tt.want) {
				t.Fatalf("errors = %v, want fields %v", fe, tt.want)
			}
			for _, field := range tt.want {
				if len(fe[field]) == 0 {
					t.Errorf("missing error for %s in %v", field, fe)
				}
			}
		})
	}
}

func TestTransactionRequestApply(t *testing.T) {
	cat := int64(3)
	existing := models.Transaction{
		ID:         1,
		Type:       models.TransactionExpense,
		CategoryID: &cat,
		Amount:     models.NewMoney(decimal.NewFromInt(10)),
		Title:      "Lunch",
	}

	var req transactionRequest
	body := `{"amount":"25.00","category":null,"title":"","date":"2025-05-01"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	if fe := req.validate(true); !fe.Empty() {
		t.Fatalf("validate() = %v", fe)
	}
	req.apply(&existing)

	if existing.Type != models.TransactionExpense {
		t.Errorf("Type changed to %q", existing.Type)
	}
	if existing.CategoryID != nil {
		t.Errorf("CategoryID = %v, want cleared", *existing.CategoryID)
	}
	if !existing.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Amount = %s", existing.Amount)
	}
	if existing.Title != models.DefaultTransactionTitle {
		t.Errorf("Title = %q", existing.Title)
	}
	if !existing.Date.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", existing.Date)
	}
}

func TestBudgetRequest(t *testing.T) {
	var req budgetRequest
	body := `{"name":" Food ","limit":"300","start_date":"2025-05-10","end_date":"2025-05-01"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	if fe := req.validate(false); !fe.Empty() {
		t.Fatalf("validate() = %v", fe)
	}
	var b models.Budget
	fe := req.apply(&b)
	if len(fe["end_date"]) == 0 {
		t.Errorf("apply() = %v, want end_date error", fe)
	}
	if b.Name != "Food" {
		t.Errorf("Name = %q", b.Name)
	}

	var missing budgetRequest
	if fe := missing.validate(false); len(fe) != 3 {
		t.Errorf("validate(empty) = %v, want name, start_date, end_date", fe)
	}
	negative := budgetRequest{Limit: ptr(decimal.NewFromInt(-1))}
	if fe := negative.validate(true); len(fe["limit"]) == 0 {
		t.Errorf("negative limit accepted: %v", fe)
	}
}

func TestCategoryRequestValidate(t *testing.T) {
	blank := "  "
	if fe := (&categoryRequest{Name: &blank}).validate(false); len(fe["name"]) == 0 {
		t.Error("blank name accepted")
	}
	if fe := (&categoryRequest{}).validate(false); len(fe["name"]) == 0 {
		t.Error("missing name accepted on create")
	}
	if fe := (&categoryRequest{}).validate(true); !fe.Empty() {
		t.Errorf("partial without name = %v", fe)
	}
}

func TestMoneySerializesAsFixedString(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, models.Transaction{Amount: models.NewMoney(decimal.RequireFromString("12.5"))})
	if !strings.Contains(rec.Body.String(), `"amount":"12.50"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func ptr[T any](v T) *T { return &v }

func TestPasswordOverBcryptLimitIsRejected(t *testing.T) {
	long := strings.Repeat("p", 80)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		field   string
	}{
		{
			name:    "register",
			handler: Register(nil, nil),
			body:    `{"email":"jane@example.com","password":"` + long + `"}`,
			field:   "password",
		},
		{
			name:    "change password",
			handler: ChangePassword(nil),
			body:    `{"current_password":"secret1","new_password":"` + long + `"}`,
			field:   "new_password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			tt.handler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := decodeBody(t, rec)
			msgs, ok := body[tt.field].([]any)
			if !ok || len(msgs) != 1 || msgs[0] != "Ensure this field has no more than 72 bytes." {
				t.Errorf("%s = %v", tt.field, body[tt.field])
			}
		})
	}
}
