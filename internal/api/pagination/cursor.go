package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// CaseCursor encodes a timestamp + ULID for stable case ordering.
type CaseCursor struct {
	Timestamp time.Time
	ULID      string
}

// EncodeCaseCursor encodes the cursor as base64(ts_unix_nano:ULID).
func EncodeCaseCursor(timestamp time.Time, ulid string) string {
	value := fmt.Sprintf("%d:%s", timestamp.UTC().UnixNano(), strings.ToUpper(strings.TrimSpace(ulid)))
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeCaseCursor decodes base64(ts_unix_nano:ULID) into a CaseCursor.
func DecodeCaseCursor(cursor string) (CaseCursor, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return CaseCursor{}, ErrInvalidCursor
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return CaseCursor{}, ErrInvalidCursor
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return CaseCursor{}, ErrInvalidCursor
	}
	unixNano, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return CaseCursor{}, ErrInvalidCursor
	}
	if strings.TrimSpace(parts[1]) == "" {
		return CaseCursor{}, ErrInvalidCursor
	}
	return CaseCursor{Timestamp: time.Unix(0, unixNano).UTC(), ULID: strings.ToUpper(strings.TrimSpace(parts[1]))}, nil
}

// EncodeStreamCursor encodes a per-case sequence number for stream pages.
func EncodeStreamCursor(sequence int64) string {
	value := fmt.Sprintf("seq_%d", sequence)
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeStreamCursor decodes base64(seq_<number>) into a sequence number.
func DecodeStreamCursor(cursor string) (int64, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return 0, ErrInvalidCursor
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, ErrInvalidCursor
	}
	value := string(decoded)
	if !strings.HasPrefix(value, "seq_") {
		return 0, ErrInvalidCursor
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(value, "seq_"), 10, 64)
	if err != nil || seq < 0 {
		return 0, ErrInvalidCursor
	}
	return seq, nil
}
