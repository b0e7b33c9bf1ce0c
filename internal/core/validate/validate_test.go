package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"resident-portal/internal/core/apperr"
)

type sample struct {
	Email  string          `json:"email" validate:"required,email"`
	Year   int             `json:"year" validate:"min=1,max=6"`
	Kind   string          `json:"kind" validate:"oneof=a b"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func TestStructReportsEveryFieldByJSONName(t *testing.T) {
	err := Struct(sample{Email: "nope", Year: 9, Kind: "c", Amount: decimal.Zero})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeValidation {
		t.Fatalf("got %v", err)
	}
	want := map[string]bool{"email": true, "year": true, "kind": true, "amount": true}
	for _, d := range ae.Details {
		if !want[d.Path] {
			t.Errorf("unexpected path %q", d.Path)
		}
		delete(want, d.Path)
		if d.Message == "" {
			t.Errorf("%s: empty message", d.Path)
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing details for %v", want)
	}

	ok := sample{Email: "a@b.com", Year: 2, Kind: "a", Amount: decimal.RequireFromString("0.01")}
	if err := Struct(ok); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}
}

func TestMoneyAllowsTwoDecimalPlaces(t *testing.T) {
	type payment struct {
		Amount decimal.Decimal `json:"amount" validate:"gt=0,money"`
	}
	cases := []struct {
		amount string
		ok     bool
	}{
		{"0.01", true},
		{"12.50", true},
		{"40", true},
		{"1.000", true},
		{"0.001", false},
		{"19.999", false},
		{"0", false},
	}
	for _, tc := range cases {
		err := Struct(payment{Amount: decimal.RequireFromString(tc.amount)})
		if (err == nil) != tc.ok {
			t.Errorf("%s: err = %v, want ok=%v", tc.amount, err, tc.ok)
		}
	}

	err := Struct(payment{Amount: decimal.RequireFromString("0.005")})
	var ae *apperr.Error
	if !errors.As(err, &ae) || len(ae.Details) != 1 || ae.Details[0].Message != "amount must have at most 2 decimal places" {
		t.Fatalf("got %+v", err)
	}

	if err := Var("amount", 3.14, "money"); err != nil {
		t.Fatal(err)
	}
	if err := Var("amount", 3.141, "money"); err == nil {
		t.Fatal("3.141 accepted")
	}
}

func TestVar(t *testing.T) {
	if err := Var("id", "", "required"); err == nil {
		t.Fatal("empty id accepted")
	}
	if err := Var("id", "x", "required"); err != nil {
		t.Fatal(err)
	}
}
