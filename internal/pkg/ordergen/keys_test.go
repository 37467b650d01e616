package ordergen

import (
	"testing"
	"time"
)

func TestGeneratedKey(t *testing.T) {
	date := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		subscriptionID uint
		deliveryDate   time.Time
		want           string
	}{
		{subscriptionID: 1, deliveryDate: date, want: "sub:1|delivery:2025-07-14"},
		{subscriptionID: 42, deliveryDate: date, want: "sub:42|delivery:2025-07-14"},
		{subscriptionID: 42, deliveryDate: date.AddDate(0, 0, 1), want: "sub:42|delivery:2025-07-15"},
	}

	for _, tt := range tests {
		if got := GeneratedKey(tt.subscriptionID, tt.deliveryDate); got != tt.want {
			t.Fatalf("GeneratedKey(%d, %s) = %q, want %q", tt.subscriptionID, tt.deliveryDate.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestGeneratedKeyIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, 7, 14, 6, 30, 0, 0, time.UTC)
	evening := time.Date(2025, 7, 14, 22, 0, 0, 0, time.UTC)

	if GeneratedKey(7, morning) != GeneratedKey(7, evening) {
		t.Fatalf("expected the same key for any time on the same day")
	}
}

func TestOrderNo(t *testing.T) {
	key := GeneratedKey(42, time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC))

	got := OrderNo(key)
	if len(got) != 13 {
		t.Fatalf("OrderNo(%q) = %q, want 13 characters", key, got)
	}
	if got[0] != 'O' {
		t.Fatalf("OrderNo(%q) = %q, want leading 'O'", key, got)
	}
	if got != OrderNo(key) {
		t.Fatalf("expected OrderNo to be deterministic for the same key")
	}

	other := OrderNo(GeneratedKey(43, time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)))
	if got == other {
		t.Fatalf("expected different keys to yield different order numbers")
	}
}
