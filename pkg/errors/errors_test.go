package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	meta := MetadataFor(CodeInsufficientFunds)
	if meta.HTTPStatus != http.StatusPaymentRequired {
		t.Fatalf("unexpected status: %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatal("insufficient funds should not be retryable")
	}

	unknown := MetadataFor(Code("nope"))
	if unknown.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should fall back to internal, got %d", unknown.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row locked")
	err := Wrap(CodeConflict, cause, "wallet busy")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	if got := err.Error(); got != "CONFLICT: wallet busy" {
		t.Fatalf("unexpected error string: %q", got)
	}
}

func TestAsThroughWrappedChain(t *testing.T) {
	inner := New(CodeInsufficientStock, "batch exhausted")
	outer := fmt.Errorf("allocating: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad items").WithDetails(map[string]string{"items": "empty"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["items"] != "empty" {
		t.Fatalf("unexpected details: %#v", err.Details())
	}
}
