package enums

import "testing"

func TestParseExpiryStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseExpiryStatus("CRITICAL")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != ExpiryStatusCritical {
		t.Fatalf("unexpected status: %s", status)
	}

	if _, err := ParseExpiryStatus("STALE"); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
}

func TestExpiryStatusForDays(t *testing.T) {
	t.Parallel()

	cases := map[int]ExpiryStatus{
		-3: ExpiryStatusExpired,
		0:  ExpiryStatusExpired,
		1:  ExpiryStatusCritical,
		15: ExpiryStatusCritical,
		16: ExpiryStatusExpiringSoon,
		30: ExpiryStatusExpiringSoon,
	}
	for remaining, want := range cases {
		if got := ExpiryStatusForDays(remaining); got != want {
			t.Fatalf("days %d: got %s, want %s", remaining, got, want)
		}
	}
}
