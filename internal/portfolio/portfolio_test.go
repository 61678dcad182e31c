package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/sheet"
)

func newTestBook(store sheet.Store) *Book {
	b := NewBook(store, "")
	b.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return b
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAdd_TotalEqualsPriceTimesQuantityAfterReread(t *testing.T) {
	stores := map[string]func(t *testing.T) sheet.Store{
		"memory": func(t *testing.T) sheet.Store { return sheet.NewMemoryStore() },
		"sqlite": func(t *testing.T) sheet.Store {
			s, err := sheet.NewSQLiteStore(t.TempDir() + "/hub.db")
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			book := newTestBook(store)
			ctx := context.Background()

			if _, err := book.Add(ctx, "a@b.it", "nvda", dec("0.1"), dec("3")); err != nil {
				t.Fatalf("add: %v", err)
			}

			rows, err := store.Read(ctx, DefaultWorksheet)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}
			if rows[0][ColTotal] != "0.3" {
				t.Errorf("expected Totale 0.3, got %q", rows[0][ColTotal])
			}
			if rows[0][ColTicker] != "NVDA" {
				t.Errorf("expected upper-cased ticker, got %q", rows[0][ColTicker])
			}
			if rows[0][ColDate] != "2024-03-15" {
				t.Errorf("expected date 2024-03-15, got %q", rows[0][ColDate])
			}

			entries, err := book.List(ctx, "A@B.IT")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			e := entries[0]
			if !e.Total.Equal(e.Price.Mul(e.Quantity)) {
				t.Errorf("Totale %s != %s × %s", e.Total, e.Price, e.Quantity)
			}
		})
	}
}

func TestAdd_Validation(t *testing.T) {
	book := newTestBook(sheet.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name   string
		email  string
		symbol string
		price  string
		qty    string
		want   error
	}{
		{"zero price", "a@b.it", "AAPL", "0", "1", ErrInvalidPrice},
		{"negative price", "a@b.it", "AAPL", "-1", "1", ErrInvalidPrice},
		{"zero quantity", "a@b.it", "AAPL", "10", "0", ErrInvalidQuantity},
		{"no symbol", "a@b.it", " ", "10", "1", ErrMissingSymbol},
		{"no email", "", "AAPL", "10", "1", ErrMissingEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := book.Add(ctx, tt.email, tt.symbol, dec(tt.price), dec(tt.qty))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestList_FiltersByUserAndSkipsMalformedRows(t *testing.T) {
	store := sheet.NewMemoryStore()
	book := newTestBook(store)
	ctx := context.Background()

	seed := []sheet.Row{
		{ColEmail: "a@b.it", ColTicker: "AAPL", ColPrice: "100", ColQuantity: "2", ColTotal: "200", ColDate: "2024-01-01"},
		{ColEmail: "other@b.it", ColTicker: "AAPL", ColPrice: "1", ColQuantity: "1", ColTotal: "1", ColDate: "2024-01-01"},
		{ColEmail: "a@b.it", ColTicker: "AAPL", ColPrice: "abc", ColQuantity: "2"},
		{ColEmail: "a@b.it", ColTicker: "BTC-USD", ColPrice: "30000,5", ColQuantity: "0,1", ColDate: "2024-01-02"},
	}
	for _, r := range seed {
		if err := store.Append(ctx, DefaultWorksheet, Columns, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	entries, err := book.List(ctx, "a@b.it")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "AAPL" || entries[1].Symbol != "BTC-USD" {
		t.Errorf("unexpected order: %s, %s", entries[0].Symbol, entries[1].Symbol)
	}
	if !entries[1].Total.Equal(dec("3000.05")) {
		t.Errorf("expected computed total 3000.05, got %s", entries[1].Total)
	}
}

func TestSummary_AverageCost(t *testing.T) {
	book := newTestBook(sheet.NewMemoryStore())
	ctx := context.Background()

	buys := []struct{ symbol, price, qty string }{
		{"AAPL", "100", "2"},
		{"AAPL", "130", "1"},
		{"NVDA", "50", "4"},
	}
	for _, b := range buys {
		if _, err := book.Add(ctx, "a@b.it", b.symbol, dec(b.price), dec(b.qty)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	holdings, err := book.Summary(ctx, "a@b.it")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}

	aapl := holdings[0]
	if aapl.Symbol != "AAPL" || aapl.Entries != 2 {
		t.Fatalf("unexpected first holding: %+v", aapl)
	}
	if !aapl.Quantity.Equal(dec("3")) || !aapl.Spent.Equal(dec("330")) {
		t.Errorf("expected qty 3 spent 330, got %s / %s", aapl.Quantity, aapl.Spent)
	}
	if !aapl.AvgCost.Equal(dec("110")) {
		t.Errorf("expected PMC 110, got %s", aapl.AvgCost)
	}
	if !holdings[1].AvgCost.Equal(dec("50")) {
		t.Errorf("expected NVDA PMC 50, got %s", holdings[1].AvgCost)
	}
}
