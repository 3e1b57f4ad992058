package bean

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Draft is the resolved intermediate form of a transaction before text
// rendering. Amount carries the negated outflow value.
type Draft struct {
	Date        time.Time
	Payee       string
	Description string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Tags        []string
	Currency    string
}

// Render produces the beancount transaction text: a dated statement line
// with quoted payee and description, the outflow leg with a signed amount,
// and the inflow leg left for the engine to balance.
func (d *Draft) Render() string {
	tags := ""
	if len(d.Tags) > 0 {
		tags = " " + strings.Join(d.Tags, " ")
	}
	return fmt.Sprintf("%s * %q %q%s\n  %s\t\t\t%s %s\n  %s",
		d.Date.Format("2006-01-02"), d.Payee, d.Description, tags,
		d.FromAccount, d.Amount.StringFixed(2), d.Currency, d.ToAccount)
}

// BuildDraft deterministically assembles a Draft from an argument list:
// amount, outflow fragment, inflow fragment (or payee), then payee,
// description and tags. Resolution failures name the offending fragment.
func (m *Manager) BuildDraft(args []string) (*Draft, error) {
	if len(args) < 3 {
		return nil, ErrIncompleteShorthand
	}

	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	fromAccount, ok := m.FindAccount(args[1])
	if !ok {
		return nil, &ResolutionError{Fragment: args[1]}
	}

	// When the third token resolves to no account it is reinterpreted as
	// a payee name and looked up in the history.
	payee := ""
	toAccount, ok := m.FindAccount(args[2])
	if !ok {
		payee = args[2]
		toAccount, ok = m.FindAccountByPayee(payee)
		if !ok {
			return nil, &ResolutionError{Fragment: args[2]}
		}
	}

	extra := args[3:]
	if payee == "" {
		if len(extra) == 0 {
			return nil, ErrIncompleteShorthand
		}
		payee = extra[0]
		extra = extra[1:]
	}

	draft := &Draft{
		Date:        m.now(),
		Payee:       payee,
		FromAccount: fromAccount,
		ToAccount:   toAccount,
		Amount:      amount.Neg(),
		Currency:    m.currency(),
	}
	for _, arg := range extra {
		switch {
		case strings.HasPrefix(arg, "#"), strings.HasPrefix(arg, "^"):
			draft.Tags = append(draft.Tags, arg)
		case draft.Description == "":
			draft.Description = arg
		}
	}
	return draft, nil
}

// BuildTransaction builds and renders in one step.
func (m *Manager) BuildTransaction(args []string) (string, error) {
	draft, err := m.BuildDraft(args)
	if err != nil {
		return "", err
	}
	return draft.Render(), nil
}
