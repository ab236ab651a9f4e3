package pagination

import (
	"errors"
	"testing"
	"time"
)

func TestCaseCursorRoundTrip(t *testing.T) {
	timestamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	encoded := EncodeCaseCursor(timestamp, "01j8zq6w8e3y4v5t6r7s8d9fab")

	decoded, err := DecodeCaseCursor(encoded)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if !decoded.Timestamp.Equal(timestamp) {
		t.Fatalf("expected %v, got %v", timestamp, decoded.Timestamp)
	}
	if decoded.ULID != "01J8ZQ6W8E3Y4V5T6R7S8D9FAB" {
		t.Fatalf("expected upper-cased ULID, got %s", decoded.ULID)
	}
}

func TestDecodeCaseCursorRejectsGarbage(t *testing.T) {
	for _, cursor := range []string{"", "not-base64!!", "bm9jb2xvbg", "MTIzNDU"} {
		if _, err := DecodeCaseCursor(cursor); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("cursor %q: expected ErrInvalidCursor, got %v", cursor, err)
		}
	}
}

func TestStreamCursorRoundTrip(t *testing.T) {
	encoded := EncodeStreamCursor(42)
	seq, err := DecodeStreamCursor(encoded)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if seq != 42 {
		t.Fatalf("expected sequence 42, got %d", seq)
	}
}

func TestDecodeStreamCursorRejectsNegative(t *testing.T) {
	if _, err := DecodeStreamCursor(EncodeStreamCursor(-1)); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor for negative sequence, got %v", err)
	}
}
