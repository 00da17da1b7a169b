package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciusscala/hackmitmentra/internal/api/storage"
)

func TestEventCursor_RoundTrip(t *testing.T) {
	in := &storage.EventCursor{
		ObservedAt: time.Date(2025, 9, 13, 12, 0, 0, 123456789, time.UTC),
		EventID:    "6f1c1c9e-4a55-4f6c-9d8e-2f7a1b3c4d5e",
	}

	out, err := DecodeEventCursor(EncodeEventCursor(in))
	require.NoError(t, err)
	assert.True(t, in.ObservedAt.Equal(out.ObservedAt))
	assert.Equal(t, in.EventID, out.EventID)
}

func TestDecodeEventCursor(t *testing.T) {
	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		cursor  string
		wantNil bool
		wantErr bool
	}{
		{name: "empty", cursor: "", wantNil: true},
		{name: "not base64", cursor: "%%%", wantErr: true},
		{name: "missing separator", cursor: encode("12345"), wantErr: true},
		{name: "missing id", cursor: encode("12345|"), wantErr: true},
		{name: "bad timestamp", cursor: encode("abc|e1"), wantErr: true},
		{name: "valid", cursor: encode("12345|e1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEventCursor(tt.cursor)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, "e1", got.EventID)
		})
	}
}
