//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/testsupport"
)

func TestRepositoryInsertAndList(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	repo := NewRepository(testsupport.StartPostgres(ctx, t))

	base := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	var inserted []domain.Recommendation
	for i := 0; i < 3; i++ {
		rec, err := repo.Insert(ctx, domain.Recommendation{
			ActivityID:     "act-1",
			UserID:         "user-1",
			ActivityType:   "RUNNING",
			Recommendation: "Overall: Good pace",
			Improvements:   []string{"No improvements provided"},
			Suggestions:    []string{"Tempo run: 20 minutes"},
			Safety:         []string{"Follow general safety guidelines"},
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		_, err = uuid.Parse(rec.ID)
		require.NoError(t, err)
		inserted = append(inserted, rec)
	}

	byActivity, err := repo.ListByActivity(ctx, "act-1")
	require.NoError(t, err)
	require.Len(t, byActivity, 3)
	require.Equal(t, inserted[2].ID, byActivity[0].ID)
	require.Equal(t, []string{"Tempo run: 20 minutes"}, byActivity[0].Suggestions)
	require.True(t, inserted[2].CreatedAt.Equal(byActivity[0].CreatedAt))

	page, cursor, err := repo.ListByUser(ctx, "user-1", nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)

	rest, cursor, err := repo.ListByUser(ctx, "user-1", cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Nil(t, cursor)
	require.Equal(t, inserted[0].ID, rest[0].ID)

	none, err := repo.ListByActivity(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestRepositoryRejectsEmptyLists(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	repo := NewRepository(testsupport.StartPostgres(ctx, t))
	_, err := repo.Insert(ctx, domain.Recommendation{ActivityID: "a", UserID: "u", Improvements: []string{}, Suggestions: []string{"x"}, Safety: []string{"y"}})
	require.Error(t, err)
}
