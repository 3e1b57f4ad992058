package shorthand

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"plain words", "a b c", []string{"a", "b", "c"}},
		{"empty line", "", []string{}},
		{"collapsed spaces", "a  b   c", []string{"a", "b", "c"}},
		{"single quotes", "a 'b c' d", []string{"a", "b c", "d"}},
		{"double quotes", `a "b c" d`, []string{"a", "b c", "d"}},
		{"quoted single segment", `a "b" c`, []string{"a", "b", "c"}},
		{"smart quotes forward", "a “b c” d", []string{"a", "b c", "d"}},
		{"smart quotes mirrored", "a ”b c“ d", []string{"a", "b c", "d"}},
		{"spaces kept inside quotes", `a "b  c" d`, []string{"a", "b  c", "d"}},
		{"quote spanning many segments", `"a b c d"`, []string{"a b c d"}},
		{"trailing tags", "12.8 bank drink coffee #tag1 #tag2", []string{"12.8", "bank", "drink", "coffee", "#tag1", "#tag2"}},
		{"mixed quotes", `12.8 bank drink ”转账“ '转账1 转账2'`, []string{"12.8", "bank", "drink", "转账", "转账1 转账2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Tokenize(tt.line)
			if err != nil {
				t.Fatalf("Tokenize(%q) returned error: %v", tt.line, err)
			}
			if !reflect.DeepEqual(args, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, expected %v", tt.line, args, tt.expected)
			}
		})
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	tests := []string{
		"a 'b",
		`a "b c`,
		"a “b c",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			_, err := Tokenize(line)
			if !errors.Is(err, ErrQuoteNotClosed) {
				t.Errorf("Tokenize(%q) error = %v, expected ErrQuoteNotClosed", line, err)
			}
		})
	}
}
