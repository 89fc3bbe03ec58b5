//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
	"rmfaudit/pkg/testutil/containers"
)

func TestStore_ReplaceAndLoad(t *testing.T) {
	pg := containers.NewPostgresContainer(t, Schema)
	store := New(pg.Pool)
	ctx := context.Background()

	qs := []questionbank.Question{
		{ID: "SA-01", SubQuestion: "Is there a safety test plan?", BaselineEvidence: "Approved safety test plan.", ControlID: "MEASURE 2.6"},
		{ID: "SA-02", SubQuestion: "   ", BaselineEvidence: "skipped"},
		{ID: "SA-03", SubQuestion: "Are incidents tracked?", BaselineEvidence: "Incident register.", ControlID: "MANAGE 4.3"},
	}
	require.NoError(t, store.Replace(ctx, category.Safe, qs))

	got, err := store.LoadQuestions(ctx, category.Safe)
	require.NoError(t, err)
	assert.Equal(t, []questionbank.Question{qs[0], qs[2]}, got)

	t.Run("replace swaps the whole category", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, category.Safe, qs[:1]))
		got, err := store.LoadQuestions(ctx, category.Safe)
		require.NoError(t, err)
		assert.Equal(t, qs[:1], got)
	})

	t.Run("unknown category yields empty slice", func(t *testing.T) {
		got, err := store.LoadQuestions(ctx, category.Explainable)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
