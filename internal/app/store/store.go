/*
Package store provides the PostgreSQL persistence layer for users, conversations, and messages.

All queries run against a pgxpool.Pool, which is the sole source of truth for
conversation uniqueness and message ordering. The store performs no in-process caching.
*/
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store executes all database queries through the shared connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListContacts returns every user except the given one, for the contact list view.
func (s *Store) ListContacts(ctx context.Context, excludeUserID int64) ([]Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM users WHERE id != $1 ORDER BY id`,
		excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]Contact, 0)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	return contacts, nil
}

// FindConversation looks up the conversation for a normalized participant pair.
// It returns ErrNotFound when no conversation exists for the pair.
func (s *Store) FindConversation(ctx context.Context, userLow, userHigh int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM conversations WHERE user_low = $1 AND user_high = $2`,
		userLow, userHigh,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find conversation: %w", err)
	}

	return id, nil
}

// CreateConversation inserts a conversation row for a normalized participant pair.
// A concurrent insert of the same pair fails with a unique violation, which the
// caller is expected to detect and recover from by re-reading.
func (s *Store) CreateConversation(ctx context.Context, userLow, userHigh int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (user_low, user_high) VALUES ($1, $2) RETURNING id`,
		userLow, userHigh,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetConversation loads a conversation record by id.
// It returns ErrNotFound when the conversation does not exist.
func (s *Store) GetConversation(ctx context.Context, id int64) (Conversation, error) {
	var conv Conversation
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_low, user_high, created_at FROM conversations WHERE id = $1`,
		id,
	).Scan(&conv.ID, &conv.UserLow, &conv.UserHigh, &conv.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return conv, nil
}

// InsertMessage persists a message and returns the hydrated row, including the
// store-assigned id, creation timestamp, and the sender's display name.
func (s *Store) InsertMessage(ctx context.Context, conversationID, senderID int64, text string) (Message, error) {
	var m Message
	err := s.pool.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO messages (conversation_id, sender_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, conversation_id, sender_id, text, created_at
		)
		SELECT i.id, i.conversation_id, i.sender_id, i.text, i.created_at, u.name
		FROM inserted i
		JOIN users u ON u.id = i.sender_id`,
		conversationID, senderID, text,
	).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt, &m.SenderName)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	return m, nil
}

// ListMessages returns a conversation's messages hydrated with sender names,
// ordered ascending by creation time (id breaks timestamp ties).
func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.conversation_id, m.sender_id, m.text, m.created_at, u.name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt, &m.SenderName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}
