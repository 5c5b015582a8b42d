package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// The pins listing paginates with an opaque cursor rather than page/offset:
// offset pagination can skip or duplicate items when new pins are inserted
// between page fetches, which matters for infinite scroll. The cursor
// encodes the id of the last item of the previous page.

// EncodeCursor wraps a pin id into an opaque cursor string.
func EncodeCursor(pinID uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(pinID), 10)))
}

// DecodeCursor unwraps a cursor produced by EncodeCursor.
func DecodeCursor(cursor string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor: %w", err)
	}
	id, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor: %w", err)
	}
	return uint(id), nil
}
