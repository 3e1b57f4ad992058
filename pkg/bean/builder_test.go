package bean

import (
	"errors"
	"testing"
)

func TestBuildTransaction(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	got, err := m.BuildTransaction([]string{"4.00", "BofA", "Food", "McDonalds", "Big Mac", "#fast"})
	if err != nil {
		t.Fatalf("BuildTransaction: %v", err)
	}
	want := "2024-06-01 * \"McDonalds\" \"Big Mac\" #fast\n" +
		"  Assets:BofA:Checking\t\t\t-4.00 USD\n" +
		"  Expenses:Food"
	if got != want {
		t.Errorf("BuildTransaction =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildDraftPayeeFallback(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	// "Kin Soy" is no account fragment, so the inflow leg comes from the
	// most recent transaction with that payee.
	draft, err := m.BuildDraft([]string{"15.20", "BofA", "Kin Soy"})
	if err != nil {
		t.Fatalf("BuildDraft: %v", err)
	}
	if draft.Payee != "Kin Soy" {
		t.Errorf("Payee = %q, want Kin Soy", draft.Payee)
	}
	if draft.ToAccount != "Expenses:Food" {
		t.Errorf("ToAccount = %q, want implicit leg Expenses:Food", draft.ToAccount)
	}
	if draft.FromAccount != "Assets:BofA:Checking" {
		t.Errorf("FromAccount = %q, want Assets:BofA:Checking", draft.FromAccount)
	}
}

func TestBuildDraftPayeeFallbackExpenseLeg(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	// The Metro transaction has explicit amounts on both legs, so the
	// fallback picks its first expense posting.
	draft, err := m.BuildDraft([]string{"2.50", "Cash", "Metro"})
	if err != nil {
		t.Fatalf("BuildDraft: %v", err)
	}
	if draft.ToAccount != "Expenses:Transport" {
		t.Errorf("ToAccount = %q, want Expenses:Transport", draft.ToAccount)
	}
}

func TestBuildDraftErrors(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	tests := []struct {
		name         string
		args         []string
		wantFragment string
		wantErr      error
	}{
		{
			name:    "too few tokens",
			args:    []string{"4.00", "BofA"},
			wantErr: ErrIncompleteShorthand,
		},
		{
			name:    "accounts without payee",
			args:    []string{"4.00", "BofA", "Food"},
			wantErr: ErrIncompleteShorthand,
		},
		{
			name:         "unknown outflow fragment",
			args:         []string{"9.90", "ICBC", "Food", "KFC"},
			wantFragment: "ICBC",
		},
		{
			name:         "unknown inflow and payee",
			args:         []string{"9.90", "BofA", "Nowhere", "desc"},
			wantFragment: "Nowhere",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.BuildDraft(tt.args)
			if err == nil {
				t.Fatal("BuildDraft succeeded, want error")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			var resErr *ResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("error = %v, want *ResolutionError", err)
			}
			if resErr.Fragment != tt.wantFragment {
				t.Errorf("Fragment = %q, want %q", resErr.Fragment, tt.wantFragment)
			}
		})
	}
}

func TestBuildDraftInvalidAmount(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	_, err := m.BuildDraft([]string{"lots", "BofA", "Food", "KFC"})
	if err == nil {
		t.Fatal("BuildDraft succeeded, want error")
	}
	if recoverable(err) {
		t.Errorf("invalid amount should not be recoverable: %v", err)
	}
}

func TestBuildDraftTagsAndDescription(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	draft, err := m.BuildDraft([]string{"4.00", "BofA", "Food", "KFC", "#lunch", "Crispy Duck Burger", "^trip"})
	if err != nil {
		t.Fatalf("BuildDraft: %v", err)
	}
	if draft.Description != "Crispy Duck Burger" {
		t.Errorf("Description = %q, want Crispy Duck Burger", draft.Description)
	}
	if len(draft.Tags) != 2 || draft.Tags[0] != "#lunch" || draft.Tags[1] != "^trip" {
		t.Errorf("Tags = %v, want [#lunch ^trip]", draft.Tags)
	}
}
