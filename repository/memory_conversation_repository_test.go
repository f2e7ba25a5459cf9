package repository

import (
	"context"
	"testing"

	"openlaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryConversationRepository_GetMissing(t *testing.T) {
	repo := NewMemoryConversationRepository()

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMemoryConversationRepository_RoundTrip(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	conv := &models.Conversation{ChatID: "c1"}
	conv.Append(models.RoleUser, "hello")
	conv.Flow = models.NewFlowContext(models.FlowCaseIntake)
	conv.Flow.Data["reference_number"] = "AYU166"

	require.NoError(t, repo.Save(ctx, conv))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ChatID)
	require.Len(t, got.History, 1)
	assert.Equal(t, "hello", got.History[0].Text)
	require.NotNil(t, got.Flow)
	assert.Equal(t, models.FlowCaseIntake, got.Flow.Name)
	assert.Equal(t, "AYU166", got.Flow.Data["reference_number"])
}

func TestMemoryConversationRepository_Isolation(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	conv := &models.Conversation{ChatID: "c1"}
	conv.Append(models.RoleUser, "hello")
	require.NoError(t, repo.Save(ctx, conv))

	// Mutating the caller's copy must not leak into the store.
	conv.Append(models.RoleUser, "tampered")

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got.History, 1)

	// Mutating a retrieved copy must not leak either.
	got.Append(models.RoleUser, "also tampered")

	again, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, again.History, 1)
}

func TestMemoryConversationRepository_Upsert(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Conversation{ChatID: "c1"}))

	conv := &models.Conversation{ChatID: "c1"}
	conv.Append(models.RoleUser, "second save")
	require.NoError(t, repo.Save(ctx, conv))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, "second save", got.History[0].Text)
}
