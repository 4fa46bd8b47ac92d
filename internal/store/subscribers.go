// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"
)

// Subscriber is a chat that receives the scheduled digest.
type Subscriber struct {
	ChatID  int64     `json:"chat_id" yaml:"chat_id"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// AddSubscriber registers chatID. It reports false when the chat was
// already subscribed.
func (s *Store) AddSubscriber(ctx context.Context, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (chat_id, added_at) VALUES (?, ?)`,
		chatID, formatTime(s.now()))
	if err != nil {
		return false, fmt.Errorf("adding subscriber %d: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adding subscriber %d: %w", chatID, err)
	}
	return n > 0, nil
}

// RemoveSubscriber deletes chatID. It reports false when the chat was not
// subscribed.
func (s *Store) RemoveSubscriber(ctx context.Context, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE chat_id = ?`, chatID)
	if err != nil {
		return false, fmt.Errorf("removing subscriber %d: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing subscriber %d: %w", chatID, err)
	}
	return n > 0, nil
}

// Subscribers returns every subscriber in the order they were added.
func (s *Store) Subscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, added_at FROM subscribers ORDER BY added_at, chat_id`)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var (
			sub   Subscriber
			added string
		)
		if err := rows.Scan(&sub.ChatID, &added); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		sub.AddedAt = parseTime(added)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
