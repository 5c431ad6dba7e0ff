package campaign

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("campaign not found")

// Campaign configures one cold-call script: the persona prompt seeding the
// language model and the greeting spoken when the callee answers.
type Campaign struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	SystemPrompt    string    `json:"system_prompt"`
	InitialGreeting string    `json:"initial_greeting"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Update carries the mutable fields of a campaign; nil means keep.
type Update struct {
	Name            *string `json:"name"`
	SystemPrompt    *string `json:"system_prompt"`
	InitialGreeting *string `json:"initial_greeting"`
	IsActive        *bool   `json:"is_active"`
}

// Store persists and retrieves campaign records. The conversation controller
// only ever reads; writes come from the management API.
type Store interface {
	Create(ctx context.Context, c Campaign) (Campaign, error)
	Get(ctx context.Context, id string) (Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	Update(ctx context.Context, id string, u Update) (Campaign, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
