package categorizer

import (
	"testing"

	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/internal/normalize"

	"github.com/shopspring/decimal"
)

func testTx(description, hint string, amount float64) *models.TransactionRecord {
	return &models.TransactionRecord{
		ID:                   "t1",
		Date:                 models.NewCalendarDate(2024, 3, 15),
		Amount:               models.NewMoneyAmount(decimal.NewFromFloat(amount), "USD"),
		Merchant:             normalize.Merchant(""),
		Description:          description,
		Source:               models.SourceBank,
		MerchantCategoryHint: hint,
	}
}

func newDefaultCategorizer(t *testing.T) *Categorizer {
	t.Helper()
	c, err := New(nil)
	if err != nil {
		t.Fatalf("default catalog failed validation: %v", err)
	}
	return c
}

func TestCategorize(t *testing.T) {
	c := newDefaultCategorizer(t)

	tests := []struct {
		name string
		tx   *models.TransactionRecord
		want models.CategoryLabel
	}{
		{
			name: "ride share with hint",
			tx:   testTx("UBER TRIP", "ride_share", 18.40),
			want: "Transportation",
		},
		{
			name: "no rule hits",
			tx:   testTx("ACME WIDGETS INC", "", 1000000),
			want: models.CategoryUncategorized,
		},
		{
			name: "coffee shop",
			tx:   testTx("STARBUCKS COFFEE #1234", "coffee_shop", 4.75),
			want: "Food & Dining",
		},
		{
			name: "streaming subscription",
			tx:   testTx("NETFLIX.COM", "streaming", 15.99),
			want: "Entertainment",
		},
		{
			name: "pharmacy",
			tx:   testTx("CVS PHARMACY 04524", "pharmacy", 23.10),
			want: "Healthcare",
		},
		{
			name: "case insensitive keywords",
			tx:   testTx("uber trip", "", 18.40),
			want: "Transportation",
		},
		{
			name: "nil transaction",
			tx:   nil,
			want: models.CategoryUncategorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Categorize(tt.tx); got != tt.want {
				t.Errorf("Categorize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategorizeUsesMerchantName(t *testing.T) {
	c := newDefaultCategorizer(t)

	tx := testTx("", "", 12.00)
	tx.Merchant = normalize.Merchant("Joe's Pizza Restaurant")

	if got := c.Categorize(tx); got != "Food & Dining" {
		t.Errorf("expected merchant text to drive categorization, got %q", got)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	c := newDefaultCategorizer(t)
	tx := testTx("SHELL GAS STATION 42", "gas_station", 55.20)

	first := c.Categorize(tx)
	for i := 0; i < 50; i++ {
		if got := c.Categorize(tx); got != first {
			t.Fatalf("categorization not deterministic: %q then %q", first, got)
		}
	}
}

func TestCategorizeTieBrokenByDeclarationOrder(t *testing.T) {
	catalog := &Catalog{
		Version: "1",
		Categories: []Category{
			{Name: "First", HighKeywords: []string{"acme"}},
			{Name: "Second", HighKeywords: []string{"acme"}},
		},
	}

	c, err := New(catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both categories score +3; the earlier declaration wins.
	if got := c.Categorize(testTx("ACME SUPPLIES", "", 10)); got != "First" {
		t.Errorf("expected declaration-order tie-break, got %q", got)
	}
}

func TestCategorizeWithScore(t *testing.T) {
	c := newDefaultCategorizer(t)

	// "uber" high keyword +3, "trip" low keyword +1, hint +4, range +1.
	label, score := c.CategorizeWithScore(testTx("UBER TRIP", "ride_share", 18.40))
	if label != "Transportation" {
		t.Fatalf("expected Transportation, got %q", label)
	}
	if score != 9 {
		t.Errorf("expected rule score 9, got %d", score)
	}
}

func TestCategorizeHintMatchCountsOnce(t *testing.T) {
	catalog := &Catalog{
		Version: "1",
		Categories: []Category{
			{Name: "Multi", MerchantTypes: []string{"ride_share", "taxi"}},
		},
	}

	c, err := New(catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, score := c.CategorizeWithScore(testTx("X", "ride_share taxi", 10))
	if score != 4 {
		t.Errorf("expected single merchant-type bonus 4, got %d", score)
	}
}

func TestCategorizeNegativeAmountUsesMagnitude(t *testing.T) {
	c := newDefaultCategorizer(t)

	// Bank debits come through negative; range checks use the magnitude.
	label, score := c.CategorizeWithScore(testTx("UBER TRIP", "", -18.40))
	if label != "Transportation" {
		t.Fatalf("expected Transportation, got %q", label)
	}
	// "uber" +3, "trip" +1, range +1.
	if score != 5 {
		t.Errorf("expected rule score 5, got %d", score)
	}
}
