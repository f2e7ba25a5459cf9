package repository

import (
	"context"
	"encoding/json"
	"sync"

	"openlaw-backend/models"
)

// MemoryConversationRepository is an in-memory ConversationStore used
// when no database is configured and in tests. Conversations are
// stored as deep copies so callers cannot mutate stored state through
// retained pointers.
type MemoryConversationRepository struct {
	mu    sync.RWMutex
	chats map[string][]byte
}

// NewMemoryConversationRepository creates an empty in-memory store
func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{chats: make(map[string][]byte)}
}

// Get loads a conversation by chat ID
func (r *MemoryConversationRepository) Get(ctx context.Context, chatID string) (*models.Conversation, error) {
	r.mu.RLock()
	data, ok := r.chats[chatID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrConversationNotFound
	}

	conv := &models.Conversation{}
	if err := json.Unmarshal(data, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Save upserts a conversation
func (r *MemoryConversationRepository) Save(ctx context.Context, conv *models.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.chats[conv.ChatID] = data
	r.mu.Unlock()
	return nil
}
