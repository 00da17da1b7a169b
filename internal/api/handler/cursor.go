package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/api/storage"
)

func DecodeEventCursor(cursorStr string) (*storage.EventCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	decodedParts := strings.SplitN(string(decoded), "|", 2)
	if len(decodedParts) != 2 || decodedParts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var observedAt int64
	_, err = fmt.Sscanf(decodedParts[0], "%d", &observedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid observedAt in cursor: %w", err)
	}

	return &storage.EventCursor{
		ObservedAt: time.Unix(0, observedAt).UTC(),
		EventID:    decodedParts[1],
	}, nil
}

func EncodeEventCursor(cursor *storage.EventCursor) string {
	cs := fmt.Sprintf("%d|%s", cursor.ObservedAt.UnixNano(), cursor.EventID)
	return base64.StdEncoding.EncodeToString([]byte(cs))
}
