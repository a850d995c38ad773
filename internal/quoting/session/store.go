// Package session holds the transient per-session hand-off between the quote
// workflow and the presentation layer. Values are opaque strings stored under
// a fixed set of named slots; every write replaces the whole value.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Slot names one value within a session.
type Slot string

const (
	SlotPendingResult Slot = "pendingResult"
	SlotPendingError  Slot = "pendingError"
	SlotLastRequest   Slot = "lastRequest"
	SlotPollState     Slot = "pollState"
)

// Slots lists every slot a session can hold.
var Slots = []Slot{SlotPendingResult, SlotPendingError, SlotLastRequest, SlotPollState}

// ErrNotFound is returned by Get when the slot is empty or the session expired.
var ErrNotFound = errors.New("session: slot not found")

// Store is the session key/value port.
type Store interface {
	Set(ctx context.Context, sessionID string, slot Slot, value string) error
	Get(ctx context.Context, sessionID string, slot Slot) (string, error)
	Remove(ctx context.Context, sessionID string, slot Slot) error
	Clear(ctx context.Context, sessionID string) error
}

// SetJSON encodes v into slot.
func SetJSON(ctx context.Context, s Store, sessionID string, slot Slot, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	return s.Set(ctx, sessionID, slot, string(data))
}

// GetJSON decodes slot into dst. An empty slot yields ErrNotFound.
func GetJSON(ctx context.Context, s Store, sessionID string, slot Slot, dst any) error {
	raw, err := s.Get(ctx, sessionID, slot)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", slot, err)
	}
	return nil
}
