// Package ledger is the boundary to the double-entry ledger engine. It
// loads beancount files into typed directives, shells out to the engine's
// query tool for report queries, and appends generated transactions back to
// the main file.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// Meta records where a directive came from.
type Meta struct {
	Filename string
	Line     int
}

// Directive is a dated entry parsed from a ledger file.
type Directive interface {
	directive()
	When() time.Time
}

// Open declares an account as open from a given date.
type Open struct {
	Meta    Meta
	Date    time.Time
	Account string
}

// Close declares an account as closed from a given date.
type Close struct {
	Meta    Meta
	Date    time.Time
	Account string
}

// Posting is one leg of a transaction. A nil Amount marks the implicit leg
// that the ledger engine auto-balances.
type Posting struct {
	Meta     Meta
	Account  string
	Amount   *decimal.Decimal
	Currency string
}

// Transaction is a dated transaction directive with at least two postings.
type Transaction struct {
	Meta      Meta
	Date      time.Time
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Links     []string
	Postings  []Posting
}

func (*Open) directive()        {}
func (*Close) directive()       {}
func (*Transaction) directive() {}

func (o *Open) When() time.Time        { return o.Date }
func (c *Close) When() time.Time       { return c.Date }
func (t *Transaction) When() time.Time { return t.Date }

// Hash returns a stable identity for the transaction, independent of which
// file or line it was parsed from.
func (t *Transaction) Hash() string {
	h := sha256.New()
	h.Write([]byte(t.Date.Format("2006-01-02")))
	h.Write([]byte{0})
	h.Write([]byte(t.Payee))
	h.Write([]byte{0})
	h.Write([]byte(t.Narration))
	for _, p := range t.Postings {
		h.Write([]byte{0})
		h.Write([]byte(p.Account))
		if p.Amount != nil {
			h.Write([]byte(p.Amount.String()))
			h.Write([]byte(p.Currency))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Options holds the subset of ledger options the cache needs.
type Options struct {
	// Includes lists every file contributing to the loaded ledger,
	// the main file first.
	Includes []string
	// OperatingCurrency is the first operating_currency option, if any.
	OperatingCurrency string
}

// Error is a non-fatal problem reported while loading a ledger file.
type Error struct {
	Message  string
	Filename string
	Line     int
}

// Ledger is the result of loading a main file and all of its includes.
// Errors are surfaced without blocking whatever did parse.
type Ledger struct {
	Entries []Directive
	Options Options
	Errors  []Error
}
