package tool

import (
	"testing"

	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

func sampleSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type": "string",
			},
			"symbol": map[string]interface{}{
				"type": "string",
			},
			"decimals": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
				"maximum": 18,
				"default": 0,
			},
			"amount": map[string]interface{}{
				"type":    "number",
				"minimum": 1,
			},
		},
		"required": []string{"name", "symbol"},
	}
}

func validationDetails(t *testing.T, err error) (string, string) {
	t.Helper()
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.CodeValidation {
		t.Fatalf("expected validation code, got %s", appErr.Code)
	}
	return appErr.Param, appErr.Reason
}

func TestValidateArgs_MissingRequiredNamesParameter(t *testing.T) {
	_, err := ValidateArgs(sampleSchema(), map[string]interface{}{"name": "GreenEnergy"})
	if err == nil {
		t.Fatal("expected error for missing symbol")
	}
	param, reason := validationDetails(t, err)
	if param != "symbol" || reason != "missing" {
		t.Fatalf("expected symbol/missing, got %s/%s", param, reason)
	}
}

func TestValidateArgs_TypeMismatch(t *testing.T) {
	_, err := ValidateArgs(sampleSchema(), map[string]interface{}{
		"name":   "GreenEnergy",
		"symbol": "GREN",
		"amount": "one hundred",
	})
	if err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
	param, reason := validationDetails(t, err)
	if param != "amount" || reason != "type" {
		t.Fatalf("expected amount/type, got %s/%s", param, reason)
	}
}

func TestValidateArgs_IntegerRejectsFraction(t *testing.T) {
	_, err := ValidateArgs(sampleSchema(), map[string]interface{}{
		"name":     "GreenEnergy",
		"symbol":   "GREN",
		"decimals": 2.5,
	})
	if err == nil {
		t.Fatal("expected error for fractional integer")
	}
	param, reason := validationDetails(t, err)
	if param != "decimals" || reason != "type" {
		t.Fatalf("expected decimals/type, got %s/%s", param, reason)
	}
}

func TestValidateArgs_RangeViolations(t *testing.T) {
	cases := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"decimals too large", map[string]interface{}{"name": "A", "symbol": "B", "decimals": float64(19)}, "decimals"},
		{"amount below minimum", map[string]interface{}{"name": "A", "symbol": "B", "amount": float64(0)}, "amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateArgs(sampleSchema(), tc.args)
			if err == nil {
				t.Fatal("expected range error")
			}
			param, reason := validationDetails(t, err)
			if param != tc.want || reason != "range" {
				t.Fatalf("expected %s/range, got %s/%s", tc.want, param, reason)
			}
		})
	}
}

func TestValidateArgs_AppliesDefaults(t *testing.T) {
	out, err := ValidateArgs(sampleSchema(), map[string]interface{}{
		"name":   "GreenEnergy",
		"symbol": "GREN",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["decimals"] != 0 {
		t.Fatalf("expected default decimals 0, got %v", out["decimals"])
	}
}

func TestValidateArgs_DoesNotMutateInput(t *testing.T) {
	args := map[string]interface{}{"name": "GreenEnergy", "symbol": "GREN"}
	if _, err := ValidateArgs(sampleSchema(), args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := args["decimals"]; ok {
		t.Fatal("input map must not be mutated")
	}
}

func TestValidateArgs_JSONNumbersAcceptedAsIntegers(t *testing.T) {
	// Arguments decoded from engine JSON arrive as float64.
	out, err := ValidateArgs(sampleSchema(), map[string]interface{}{
		"name":     "GreenEnergy",
		"symbol":   "GREN",
		"decimals": float64(8),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["decimals"] != float64(8) {
		t.Fatalf("expected decimals preserved, got %v", out["decimals"])
	}
}
