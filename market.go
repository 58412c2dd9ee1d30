package snapback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vbert/snapback/date"
)

// fundAliases maps fund names as they appear on statements to the canonical
// ticker whose closing prices are recorded in the market.
var fundAliases = map[string]string{
	"VTI":    "VTI",
	"QQQM":   "QQQM",
	"SCHD":   "SCHD",
	"DES":    "DES",
	voyaFund: "VOO",
}

// voyaFund is a retirement-plan share class tracking the S&P 500 at a
// different unit scale. Its closing price is the VOO price divided by a fixed
// conversion ratio.
const voyaFund = "0899 Vanguard 500 Index Fund Adm"

var voyaConversionRatio = decimal.RequireFromString("15.577")

// Security holds the closing price history for one ticker.
type Security struct {
	ticker string
	prices date.History[float64]
}

// NewSecurity creates a security with an empty price history.
func NewSecurity(ticker string) *Security { return &Security{ticker: ticker} }

// Ticker returns the security's ticker.
func (s *Security) Ticker() string { return s.ticker }

// Prices returns an iterator over the security's (date, closing price) pairs.
func (s *Security) Prices() iter.Seq2[date.Date, float64] { return s.prices.Values() }

// Market holds the historical closing prices for a set of securities.
//
// It is static data for the whole run: lookups are deterministic table reads,
// and a miss is a normal outcome, not an error.
type Market struct {
	securities []*Security
	index      map[string]*Security
}

// NewMarket returns a new empty market.
func NewMarket() *Market {
	return &Market{index: make(map[string]*Security)}
}

// Has reports whether the market knows the ticker.
func (m *Market) Has(ticker string) bool {
	_, ok := m.index[ticker]
	return ok
}

// Get returns the security for the ticker, or nil.
func (m *Market) Get(ticker string) *Security { return m.index[ticker] }

// Add records a closing price for (ticker, day), creating the security if needed.
func (m *Market) Add(ticker string, day date.Date, price float64) {
	sec, ok := m.index[ticker]
	if !ok {
		sec = NewSecurity(ticker)
		m.securities = append(m.securities, sec)
		m.index[ticker] = sec
		slices.SortFunc(m.securities, func(a, b *Security) int {
			return strings.Compare(a.ticker, b.ticker)
		})
	}
	sec.prices.Append(day, price)
}

// Lookup resolves a fund name to its ticker and returns the closing price on
// the given day.
//
// An unknown fund or a day without a price (weekend, holiday, outside the
// covered range) returns false after logging a warning; the caller is
// expected to skip the valuation, not abort.
func (m *Market) Lookup(fund string, on date.Date) (Money, bool) {
	ticker, ok := fundAliases[fund]
	if !ok {
		log.Printf("warning: unknown fund %q", fund)
		return Money{}, false
	}

	sec, ok := m.index[ticker]
	if !ok {
		log.Printf("warning: no price data for %s on %s", ticker, on)
		return Money{}, false
	}
	raw, ok := sec.prices.Get(on)
	if !ok {
		log.Printf("warning: no price data for %s on %s", ticker, on)
		return Money{}, false
	}

	price := M(raw, USD)
	if fund == voyaFund {
		// Exact linear unit conversion for the retirement-plan share class.
		price = price.DivRatio(voyaConversionRatio)
	}
	return price, true
}

// DecodeMarket reads market data from 'r' in the import/export format.
//
// The format is a JSONL file, where each line is a JSON object representing a
// security: the property 'ticker' contains the ticker, and 'history' is a
// single JSON object mapping dates to closing prices.
func DecodeMarket(r io.Reader) (*Market, error) {
	type jsecurity struct {
		Ticker  string             `json:"ticker"`
		History map[string]float64 `json:"history"`
	}

	m := NewMarket()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var js jsecurity
		if err := json.Unmarshal(line, &js); err != nil {
			return nil, fmt.Errorf("cannot parse market data line %q: %w", string(line), err)
		}
		for day, price := range js.History {
			d, err := date.Parse(day)
			if err != nil {
				return nil, fmt.Errorf("cannot parse market data for %q: %w", js.Ticker, err)
			}
			m.Add(js.Ticker, d, price)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read market data: %w", err)
	}
	return m, nil
}

// EncodeMarket writes the market to 'w' in the import/export format, one
// security per line, tickers in alphabetical order.
func EncodeMarket(w io.Writer, m *Market) error {
	type jsecurity struct {
		Ticker  string             `json:"ticker"`
		History map[string]float64 `json:"history"`
	}

	for _, sec := range m.securities {
		js := jsecurity{Ticker: sec.ticker, History: make(map[string]float64)}
		for day, price := range sec.prices.Values() {
			js.History[day.String()] = price
		}
		data, err := json.Marshal(js)
		if err != nil {
			return fmt.Errorf("cannot marshal security %q: %w", sec.ticker, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write market data: %w", err)
		}
	}
	return nil
}
