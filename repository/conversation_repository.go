package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"openlaw-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConversationNotFound is returned when no conversation exists for
// the given chat identifier.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore persists conversation history and flow state
// between turns, keyed by chat identifier.
type ConversationStore interface {
	// Get loads a conversation. Returns ErrConversationNotFound when
	// the chat identifier is unknown.
	Get(ctx context.Context, chatID string) (*models.Conversation, error)

	// Save upserts a conversation.
	Save(ctx context.Context, conv *models.Conversation) error
}

// ConversationRepository stores conversations in Postgres as JSONB.
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Get loads a conversation by chat ID
func (r *ConversationRepository) Get(ctx context.Context, chatID string) (*models.Conversation, error) {
	query := `
		SELECT history, flow_context
		FROM chats
		WHERE id = $1`

	var historyJSON, flowJSON []byte
	err := r.db.QueryRow(ctx, query, chatID).Scan(&historyJSON, &flowJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv := &models.Conversation{ChatID: chatID}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &conv.History); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
	}
	if len(flowJSON) > 0 {
		var flow models.FlowContext
		if err := json.Unmarshal(flowJSON, &flow); err != nil {
			return nil, fmt.Errorf("failed to decode flow context: %w", err)
		}
		if flow.Name != "" {
			conv.Flow = &flow
		}
	}

	return conv, nil
}

// Save upserts a conversation
func (r *ConversationRepository) Save(ctx context.Context, conv *models.Conversation) error {
	historyJSON, err := json.Marshal(conv.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	var flowJSON []byte
	if conv.Flow != nil {
		flowJSON, err = json.Marshal(conv.Flow)
		if err != nil {
			return fmt.Errorf("failed to encode flow context: %w", err)
		}
	}

	query := `
		INSERT INTO chats (id, history, flow_context, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			history = EXCLUDED.history,
			flow_context = EXCLUDED.flow_context,
			updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, conv.ChatID, historyJSON, flowJSON); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}
