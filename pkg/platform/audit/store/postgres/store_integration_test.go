//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/testutil/containers"
)

func TestStore_AppendAndList(t *testing.T) {
	pg := containers.NewPostgresContainer(t, Schema)
	store := New(pg.Pool)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []audit.Event{
		{Category: audit.CategoryCompliance, Timestamp: base, UserID: "alice", Action: string(audit.EventSessionStarted), SessionID: "s1", AuditCategory: "Safe"},
		{Category: audit.CategoryCompliance, Timestamp: base.Add(time.Minute), UserID: "alice", Action: string(audit.EventEvidenceScored), SessionID: "s1", QuestionID: "SA-01", Decision: "Full Conformity"},
		{Category: audit.CategoryCompliance, Timestamp: base, UserID: "bob", Action: string(audit.EventSessionStarted)},
	}
	for _, e := range events {
		require.NoError(t, store.Append(ctx, e))
	}

	got, err := store.ListByUser(ctx, id.UserID("alice"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, string(audit.EventSessionStarted), got[0].Action)
	assert.Equal(t, "SA-01", got[1].QuestionID)
	assert.Equal(t, "Full Conformity", got[1].Decision)
	assert.True(t, base.Add(time.Minute).Equal(got[1].Timestamp))
}
