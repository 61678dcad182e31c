// Package portfolio records buys in the portfolio worksheet and derives
// per-symbol holdings with their average cost (PMC).
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/sheet"
)

// DefaultWorksheet holds the portfolio table.
const DefaultWorksheet = "Portafoglio"

// DateLayout is the format of the Data column.
const DateLayout = "2006-01-02"

// Column headers of the portfolio worksheet.
const (
	ColEmail    = "Email"
	ColTicker   = "Ticker"
	ColPrice    = "Prezzo"
	ColQuantity = "Quantita"
	ColTotal    = "Totale"
	ColDate     = "Data"
)

var Columns = []string{ColEmail, ColTicker, ColPrice, ColQuantity, ColTotal, ColDate}

var (
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrMissingSymbol   = errors.New("symbol is required")
	ErrMissingEmail    = errors.New("email is required")
)

// Book reads and appends portfolio rows.
type Book struct {
	store     sheet.Store
	worksheet string
	now       func() time.Time
}

// NewBook creates a Book over the given worksheet.
func NewBook(store sheet.Store, worksheet string) *Book {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	return &Book{store: store, worksheet: worksheet, now: time.Now}
}

// Add appends a buy for email. Total is computed as price × qty.
func (b *Book) Add(ctx context.Context, email, symbol string, price, qty decimal.Decimal) (*model.PortfolioEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case email == "":
		return nil, ErrMissingEmail
	case symbol == "":
		return nil, ErrMissingSymbol
	case !price.IsPositive():
		return nil, ErrInvalidPrice
	case !qty.IsPositive():
		return nil, ErrInvalidQuantity
	}

	e := &model.PortfolioEntry{
		Email:    email,
		Symbol:   symbol,
		Price:    price,
		Quantity: qty,
		Total:    price.Mul(qty),
		Date:     b.now().Format(DateLayout),
	}
	if err := b.store.Append(ctx, b.worksheet, Columns, sheet.Row{
		ColEmail:    e.Email,
		ColTicker:   e.Symbol,
		ColPrice:    e.Price.String(),
		ColQuantity: e.Quantity.String(),
		ColTotal:    e.Total.String(),
		ColDate:     e.Date,
	}); err != nil {
		return nil, fmt.Errorf("save portfolio entry: %w", err)
	}
	return e, nil
}

// List returns the entries of email in insertion order. Rows that cannot
// be parsed are skipped.
func (b *Book) List(ctx context.Context, email string) ([]model.PortfolioEntry, error) {
	rows, err := b.store.Read(ctx, b.worksheet)
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var out []model.PortfolioEntry
	for i, r := range rows {
		if strings.ToLower(strings.TrimSpace(r[ColEmail])) != email {
			continue
		}
		e, err := parseRow(r)
		if err != nil {
			log.Printf("[WARN] portfolio: skipping row %d for %s: %v", i+2, email, err)
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// Summary aggregates the entries of email into holdings sorted by symbol.
func (b *Book) Summary(ctx context.Context, email string) ([]model.Holding, error) {
	entries, err := b.List(ctx, email)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries), nil
}

// Aggregate groups entries by symbol. AvgCost is Spent / Quantity.
func Aggregate(entries []model.PortfolioEntry) []model.Holding {
	bySymbol := make(map[string]*model.Holding)
	for _, e := range entries {
		h, ok := bySymbol[e.Symbol]
		if !ok {
			h = &model.Holding{Symbol: e.Symbol}
			bySymbol[e.Symbol] = h
		}
		h.Quantity = h.Quantity.Add(e.Quantity)
		h.Spent = h.Spent.Add(e.Total)
		h.Entries++
	}

	out := make([]model.Holding, 0, len(bySymbol))
	for _, h := range bySymbol {
		if h.Quantity.IsPositive() {
			h.AvgCost = h.Spent.DivRound(h.Quantity, 8)
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func parseRow(r sheet.Row) (*model.PortfolioEntry, error) {
	symbol := strings.ToUpper(strings.TrimSpace(r[ColTicker]))
	if symbol == "" {
		return nil, ErrMissingSymbol
	}
	price, err := parseAmount(r[ColPrice])
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	qty, err := parseAmount(r[ColQuantity])
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	total := price.Mul(qty)
	if s := strings.TrimSpace(r[ColTotal]); s != "" {
		if t, err := parseAmount(s); err == nil {
			total = t
		}
	}
	return &model.PortfolioEntry{
		Email:    strings.ToLower(strings.TrimSpace(r[ColEmail])),
		Symbol:   symbol,
		Price:    price,
		Quantity: qty,
		Total:    total,
		Date:     strings.TrimSpace(r[ColDate]),
	}, nil
}

// parseAmount accepts both "12.5" and the Italian "12,5".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
