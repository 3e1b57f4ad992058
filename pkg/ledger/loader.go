package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	directiveRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(\S+)\s*(.*)$`)
	includeRe   = regexp.MustCompile(`^include\s+"([^"]+)"`)
	optionRe    = regexp.MustCompile(`^option\s+"([^"]+)"\s+"([^"]*)"`)
)

// Load parses the given main file and every file it includes, returning the
// date-sorted directives together with load options and non-fatal errors.
// Only an unreadable main file is a fatal error; problems in included files
// and malformed directives are collected in Ledger.Errors.
func Load(path string) (*Ledger, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ledger path: %w", err)
	}

	led := &Ledger{}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	visited := map[string]bool{abs: true}
	led.parseFile(abs, string(data), visited)

	sort.SliceStable(led.Entries, func(i, j int) bool {
		return led.Entries[i].When().Before(led.Entries[j].When())
	})
	return led, nil
}

// Parse parses ledger text that is not backed by a file, e.g. a completion
// service response. Directive metadata carries line numbers into the given
// text; entries keep their textual order.
func Parse(content string) *Ledger {
	led := &Ledger{}
	led.parseFile("<input>", content, map[string]bool{})
	return led
}

func (l *Ledger) loadInclude(path string, visited map[string]bool) {
	if visited[path] {
		return
	}
	visited[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		l.Errors = append(l.Errors, Error{Message: err.Error(), Filename: path})
		return
	}
	l.parseFile(path, string(data), visited)
}

func (l *Ledger) parseFile(path, content string, visited map[string]bool) {
	l.Options.Includes = append(l.Options.Includes, path)

	lines := strings.Split(content, "\n")
	var cur *Transaction

	flush := func() {
		if cur == nil {
			return
		}
		if len(cur.Postings) == 0 {
			l.Errors = append(l.Errors, Error{
				Message:  "transaction has no postings",
				Filename: path,
				Line:     cur.Meta.Line,
			})
		} else {
			l.Entries = append(l.Entries, cur)
		}
		cur = nil
	}

	for i, line := range lines {
		lineno := i + 1

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if cur == nil {
				continue
			}
			if posting, ok := l.parsePosting(path, lineno, line); ok {
				cur.Postings = append(cur.Postings, posting)
			}
			continue
		}
		flush()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		if m := includeRe.FindStringSubmatch(trimmed); m != nil {
			target := m[1]
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), target)
			}
			l.loadInclude(target, visited)
			continue
		}
		if m := optionRe.FindStringSubmatch(trimmed); m != nil {
			if m[1] == "operating_currency" && l.Options.OperatingCurrency == "" {
				l.Options.OperatingCurrency = m[2]
			}
			continue
		}

		m := directiveRe.FindStringSubmatch(trimmed)
		if m == nil {
			// plugin, pushtag and friends
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", m[1], time.Local)
		if err != nil {
			l.Errors = append(l.Errors, Error{Message: err.Error(), Filename: path, Line: lineno})
			continue
		}
		meta := Meta{Filename: path, Line: lineno}

		switch m[2] {
		case "open":
			account := firstField(m[3])
			if account == "" {
				l.Errors = append(l.Errors, Error{Message: "open directive without account", Filename: path, Line: lineno})
				continue
			}
			l.Entries = append(l.Entries, &Open{Meta: meta, Date: date, Account: account})
		case "close":
			account := firstField(m[3])
			if account == "" {
				l.Errors = append(l.Errors, Error{Message: "close directive without account", Filename: path, Line: lineno})
				continue
			}
			l.Entries = append(l.Entries, &Close{Meta: meta, Date: date, Account: account})
		case "txn", "*", "!":
			txn := &Transaction{Meta: meta, Date: date, Flag: m[2]}
			if txn.Flag == "txn" {
				txn.Flag = "*"
			}
			parseTransactionHeader(txn, m[3])
			cur = txn
		default:
			// balance, price, pad, commodity, event, note, document...
		}
	}
	flush()
}

// parsePosting parses one indented line as a posting. Indented metadata
// lines (lowercase keys) and comments are not postings.
func (l *Ledger) parsePosting(path string, lineno int, line string) (Posting, bool) {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Posting{}, false
	}
	// Optional per-posting flag.
	if fields[0] == "!" || fields[0] == "*" {
		fields = fields[1:]
		if len(fields) == 0 {
			return Posting{}, false
		}
	}
	account := fields[0]
	if account[0] < 'A' || account[0] > 'Z' || !strings.Contains(account, ":") {
		return Posting{}, false
	}

	posting := Posting{
		Meta:    Meta{Filename: path, Line: lineno},
		Account: account,
	}
	if len(fields) >= 3 {
		raw := strings.ReplaceAll(fields[1], ",", "")
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			l.Errors = append(l.Errors, Error{
				Message:  fmt.Sprintf("invalid amount %q", fields[1]),
				Filename: path,
				Line:     lineno,
			})
			return posting, true
		}
		posting.Amount = &amount
		posting.Currency = fields[2]
	}
	return posting, true
}

// parseTransactionHeader fills payee, narration, tags and links from the
// text after the transaction flag. With a single quoted string, beancount
// treats it as the narration.
func parseTransactionHeader(txn *Transaction, rest string) {
	rest = strings.TrimSpace(rest)

	var strs []string
	for strings.HasPrefix(rest, `"`) && len(strs) < 2 {
		value, remainder, ok := scanQuoted(rest)
		if !ok {
			break
		}
		strs = append(strs, value)
		rest = strings.TrimSpace(remainder)
	}
	switch len(strs) {
	case 1:
		txn.Narration = strs[0]
	case 2:
		txn.Payee = strs[0]
		txn.Narration = strs[1]
	}

	for _, token := range strings.Fields(rest) {
		switch {
		case strings.HasPrefix(token, "#"):
			txn.Tags = append(txn.Tags, strings.TrimPrefix(token, "#"))
		case strings.HasPrefix(token, "^"):
			txn.Links = append(txn.Links, strings.TrimPrefix(token, "^"))
		}
	}
}

// scanQuoted reads a double-quoted string honoring backslash escapes.
func scanQuoted(s string) (value, rest string, ok bool) {
	if !strings.HasPrefix(s, `"`) {
		return "", s, false
	}
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(c)
		}
	}
	return "", s, false
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
