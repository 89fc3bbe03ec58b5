package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rmfaudit/pkg/domain-errors"
)

func TestParseSessionID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE sessions;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errSession := ParseSessionID(tt.input)
			_, errRun := ParseRunID(tt.input)
			if tt.wantErr {
				require.Error(t, errSession)
				require.Error(t, errRun)
				assert.True(t, dErrors.HasCode(errSession, dErrors.CodeValidation))
			} else {
				require.NoError(t, errSession)
				require.NoError(t, errRun)
			}
		})
	}
}

func TestParseUserID(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		id, err := ParseUserID("  auditor-7 ")
		require.NoError(t, err)
		assert.Equal(t, UserID("auditor-7"), id)
	})

	t.Run("rejects blank", func(t *testing.T) {
		_, err := ParseUserID("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects oversized", func(t *testing.T) {
		_, err := ParseUserID(strings.Repeat("u", maxUserIDLength+1))
		require.Error(t, err)
	})

	t.Run("rejects control characters", func(t *testing.T) {
		_, err := ParseUserID("bob\x00admin")
		require.Error(t, err)
	})
}

func TestTypedIDs_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Session SessionID `json:"session_id"`
		Run     RunID     `json:"run_id"`
	}
	in := payload{Session: NewSessionID(), Run: NewRunID()}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), in.Session.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestIsNil(t *testing.T) {
	assert.True(t, SessionID{}.IsNil())
	assert.True(t, RunID{}.IsNil())
	assert.True(t, UserID("").IsNil())
	assert.False(t, NewSessionID().IsNil())
}
