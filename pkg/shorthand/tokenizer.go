// Package shorthand tokenizes terse bookkeeping input lines into ordered
// argument tokens, honoring quoted spans.
package shorthand

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrQuoteNotClosed is returned when a quoted span is still open at the end
// of the line.
var ErrQuoteNotClosed = errors.New("quote not closed")

// quotePairs maps an opening quote rune to the rune that terminates it.
// The two smart-quote glyphs are deliberately mapped to each other: opening
// with one is terminated by its mirror image.
var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'“': '”', // “ closed by ”
	'”': '“', // ” closed by “
}

// Tokenize splits a raw line into ordered tokens. Tokens are separated by
// spaces except inside a quoted span. A quote opens only at the start of a
// space-delimited segment and closes only at the end of one; spaces inside
// the span are kept. An empty line yields an empty token list.
func Tokenize(line string) ([]string, error) {
	args := []string{}
	var buffer []string
	var endQuote rune

	for _, segment := range strings.Split(line, " ") {
		if segment == "" {
			// Runs of spaces inside an open quote survive as empty
			// segments and are restored on join.
			if buffer != nil {
				buffer = append(buffer, segment)
			}
			continue
		}

		first, firstSize := utf8.DecodeRuneInString(segment)
		last, lastSize := utf8.DecodeLastRuneInString(segment)

		switch {
		case buffer != nil:
			if last == endQuote {
				buffer = append(buffer, segment[:len(segment)-lastSize])
				args = append(args, strings.Join(buffer, " "))
				buffer = nil
			} else {
				buffer = append(buffer, segment)
			}
		case quotePairs[first] != 0:
			endQuote = quotePairs[first]
			rest := segment[firstSize:]
			switch {
			case last == endQuote && rest != "":
				// Single segment wrapped in quotes.
				args = append(args, rest[:len(rest)-lastSize])
			case last == endQuote:
				// A lone self-paired quote closes immediately.
				args = append(args, "")
			default:
				buffer = []string{rest}
			}
		default:
			args = append(args, segment)
		}
	}

	if buffer != nil {
		return nil, ErrQuoteNotClosed
	}
	return args, nil
}
