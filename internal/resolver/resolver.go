// Package resolver turns free-text queries into provider ticker symbols.
package resolver

import "strings"

// DefaultSymbol is used when the query is empty.
const DefaultSymbol = "BTC-USD"

const cryptoSuffix = "-USD"

// maxShorthandLen is the longest query treated as a possible crypto shorthand.
const maxShorthandLen = 5

// Aliases maps common company and coin names to provider symbols.
// Keys are upper-case.
var Aliases = map[string]string{
	"BITCOIN":   "BTC-USD",
	"ETHEREUM":  "ETH-USD",
	"SOLANA":    "SOL-USD",
	"RIPPLE":    "XRP-USD",
	"CARDANO":   "ADA-USD",
	"DOGECOIN":  "DOGE-USD",
	"NVIDIA":    "NVDA",
	"APPLE":     "AAPL",
	"MICROSOFT": "MSFT",
	"TESLA":     "TSLA",
	"AMAZON":    "AMZN",
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"META":      "META",
	"NETFLIX":   "NFLX",
	"FERRARI":   "RACE",
	"ENI":       "ENI.MI",
	"ORO":       "GC=F",
	"GOLD":      "GC=F",
	"S&P500":    "^GSPC",
	"SP500":     "^GSPC",
	"NASDAQ":    "^IXIC",
}

// CryptoShorthands are the short coin tickers that need a -USD suffix.
var CryptoShorthands = map[string]bool{
	"BTC":  true,
	"ETH":  true,
	"SOL":  true,
	"XRP":  true,
	"ADA":  true,
	"DOGE": true,
	"BNB":  true,
	"AVAX": true,
	"DOT":  true,
	"LTC":  true,
}

// Resolver maps queries to symbols. The zero value uses the package tables.
type Resolver struct {
	Aliases    map[string]string
	Shorthands map[string]bool
	Default    string
}

// New returns a Resolver backed by the package tables plus extra aliases.
func New(extra map[string]string) *Resolver {
	aliases := make(map[string]string, len(Aliases)+len(extra))
	for k, v := range Aliases {
		aliases[k] = v
	}
	for k, v := range extra {
		aliases[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	return &Resolver{Aliases: aliases, Shorthands: CryptoShorthands, Default: DefaultSymbol}
}

// Resolve returns a best-effort symbol for query. It never fails: an unknown
// query comes back upper-cased and is left for the data provider to reject.
func (r *Resolver) Resolve(query string) string {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		if r.Default != "" {
			return r.Default
		}
		return DefaultSymbol
	}
	if sym, ok := r.aliases()[q]; ok {
		return sym
	}
	if len(q) <= maxShorthandLen && r.shorthands()[q] {
		return q + cryptoSuffix
	}
	return q
}

func (r *Resolver) aliases() map[string]string {
	if r.Aliases == nil {
		return Aliases
	}
	return r.Aliases
}

func (r *Resolver) shorthands() map[string]bool {
	if r.Shorthands == nil {
		return CryptoShorthands
	}
	return r.Shorthands
}

// Base strips the -USD suffix used for crypto pairs, e.g. BTC-USD -> BTC.
func Base(symbol string) string {
	return strings.TrimSuffix(strings.ToUpper(symbol), cryptoSuffix)
}

// IsCrypto reports whether symbol is a USD crypto pair.
func IsCrypto(symbol string) bool {
	s := strings.ToUpper(symbol)
	return strings.HasSuffix(s, cryptoSuffix) && len(s) > len(cryptoSuffix)
}
