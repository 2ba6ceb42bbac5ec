package ledger

import (
	"context"
	"testing"

	"ledgerly-server/src/models"

	"github.com/shopspring/decimal"
)

func TestMeasureUsage(t *testing.T) {
	tests := []struct {
		limit, spent string
		percent      string
		warning      bool
		overspending bool
	}{
		{"100", "50", "50", false, false},
		{"100", "80", "80", true, false},
		{"100", "85", "85", true, false},
		{"100", "99.99", "99.99", true, false},
		{"100", "100", "100", false, false},
		{"100", "120", "120", false, true},
		{"0", "50", "0", false, false},
		{"-10", "50", "0", false, false},
	}
	for _, tt := range tests {
		u := MeasureUsage(dec(tt.limit), dec(tt.spent))
		if !u.Percent.Equal(dec(tt.percent)) {
			t.Errorf("MeasureUsage(%s, %s).Percent = %s, want %s", tt.limit, tt.spent, u.Percent, tt.percent)
		}
		if u.Warning() != tt.warning {
			t.Errorf("MeasureUsage(%s, %s).Warning() = %v", tt.limit, tt.spent, u.Warning())
		}
		if u.Overspending() != tt.overspending {
			t.Errorf("MeasureUsage(%s, %s).Overspending() = %v", tt.limit, tt.spent, u.Overspending())
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"1234.5":  "1,234.50",
		"20":      "20.00",
		"0.05":    "0.05",
		"1000000": "1,000,000.00",
	}
	for in, want := range tests {
		if got := FormatMoney(dec(in)); got != want {
			t.Errorf("FormatMoney(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestBudgetAlertsMessages(t *testing.T) {
	alerts := BudgetAlerts("Food", dec("35"), MeasureUsage(dec("100"), dec("85")))
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(alerts))
	}
	if alerts[0].Message != "You spent 35.00 on 'Food' budget." {
		t.Errorf("spending message = %q", alerts[0].Message)
	}
	if alerts[1].Message != "Warning: You've used 85.0% of your 'Food' budget." {
		t.Errorf("warning message = %q", alerts[1].Message)
	}
}

func TestWarningPercentRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		limit, spent, want string
	}{
		{"400", "321", "80.2"},
		{"400", "323", "80.8"},
		{"400", "322.9", "80.7"},
		{"1000", "812.5", "81.2"},
		{"1000", "813.5", "81.4"},
	}
	for _, tt := range tests {
		alerts := BudgetAlerts("Food", dec("1"), MeasureUsage(dec(tt.limit), dec(tt.spent)))
		want := "Warning: You've used " + tt.want + "% of your 'Food' budget."
		if len(alerts) != 2 || alerts[1].Message != want {
			t.Errorf("limit %s spent %s: alerts = %+v, want %q", tt.limit, tt.spent, alerts, want)
		}
	}
}

func notificationTypes(notes []models.Notification) []models.NotificationType {
	out := make([]models.NotificationType, len(notes))
	for i, n := range notes {
		out[i] = n.Type
	}
	return out
}

func equalTypes(a []models.NotificationType, b ...models.NotificationType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSecondExpenseCrossesWarning(t *testing.T) {
	store := newMemStore(alice)
	svc, pushes := newTestService(store)
	ctx := context.Background()
	budget := store.addBudget(alice, "Food", 100)

	if _, err := svc.CreateTransaction(ctx, alice, expense("50", &budget)); err != nil {
		t.Fatal(err)
	}
	first := store.notifications()
	if !equalTypes(notificationTypes(first), models.NotificationSpending) {
		t.Fatalf("after first expense: %v", notificationTypes(first))
	}

	if _, err := svc.CreateTransaction(ctx, alice, expense("35", &budget)); err != nil {
		t.Fatal(err)
	}
	second := store.notifications()[len(first):]
	if !equalTypes(notificationTypes(second), models.NotificationSpending, models.NotificationWarning) {
		t.Fatalf("after second expense: %v", notificationTypes(second))
	}
	if second[1].Message != "Warning: You've used 85.0% of your 'Food' budget." {
		t.Errorf("warning message = %q", second[1].Message)
	}
	if got := len(pushes.sent()); got != 3 {
		t.Errorf("pushes = %d, want 3", got)
	}
}

func TestExpenseOverLimitReportsOverspent(t *testing.T) {
	store := newMemStore(alice)
	svc, _ := newTestService(store)
	budget := store.addBudget(alice, "Food", 100)

	if _, err := svc.CreateTransaction(context.Background(), alice, expense("120", &budget)); err != nil {
		t.Fatal(err)
	}
	notes := store.notifications()
	if !equalTypes(notificationTypes(notes), models.NotificationSpending, models.NotificationOverspending) {
		t.Fatalf("notifications: %v", notificationTypes(notes))
	}
	if notes[0].Message != "You spent 120.00 on 'Food' budget." {
		t.Errorf("spending message = %q", notes[0].Message)
	}
	if notes[1].Title != "Budget Overspent" || notes[1].Message != "Overspent on 'Food' by 20.00." {
		t.Errorf("overspending = %q / %q", notes[1].Title, notes[1].Message)
	}
}

func TestExactLimitOnlySpending(t *testing.T) {
	store := newMemStore(alice)
	svc, _ := newTestService(store)
	budget := store.addBudget(alice, "Food", 100)

	if _, err := svc.CreateTransaction(context.Background(), alice, expense("100", &budget)); err != nil {
		t.Fatal(err)
	}
	if got := notificationTypes(store.notifications()); !equalTypes(got, models.NotificationSpending) {
		t.Errorf("notifications: %v", got)
	}
}

func TestMonitorSkipsIncomeAndUnbudgeted(t *testing.T) {
	store := newMemStore(alice)
	svc, _ := newTestService(store)
	ctx := context.Background()
	budget := store.addBudget(alice, "Food", 100)

	in := income("500")
	in.BudgetID = &budget
	if _, err := svc.CreateTransaction(ctx, alice, in); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTransaction(ctx, alice, expense("500", nil)); err != nil {
		t.Fatal(err)
	}
	if n := len(store.notifications()); n != 0 {
		t.Errorf("notifications = %d, want 0", n)
	}
}

func TestRepeatedOverspendingIsNotDeduplicated(t *testing.T) {
	store := newMemStore(alice)
	svc, _ := newTestService(store)
	ctx := context.Background()
	budget := store.addBudget(alice, "Food", 10)

	tx, err := svc.CreateTransaction(ctx, alice, expense("20", &budget))
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.UpdateTransaction(ctx, alice, tx.ID, func(t *models.Transaction) error {
		t.Title = "Dinner"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	var over int
	for _, n := range store.notifications() {
		if n.Type == models.NotificationOverspending {
			over++
		}
	}
	if over != 2 {
		t.Errorf("overspending notifications = %d, want 2", over)
	}
}

func TestZeroLimitBudgetNeverWarns(t *testing.T) {
	u := MeasureUsage(decimal.Zero, dec("1000"))
	if got := BudgetAlerts("Free", dec("1000"), u); len(got) != 1 {
		t.Errorf("alerts = %d, want spending only", len(got))
	}
}
