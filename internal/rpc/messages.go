package rpc

import (
	"encoding/json"
	"time"
)

// Record is a stored record. IdempotencyKey is the key it was created with,
// empty for records created without one.
type Record struct {
	ID             string          `json:"id"`
	EntityType     string          `json:"entityType"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CreateRequest creates a record. A repeated IdempotencyKey returns the record
// created by the first request instead of a new one.
type CreateRequest struct {
	EntityType     string          `json:"entityType"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Payload        json.RawMessage `json:"payload"`
}

type UpdateRequest struct {
	EntityType string          `json:"entityType"`
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
}

type DeleteRequest struct {
	EntityType string `json:"entityType"`
	ID         string `json:"id"`
}

type DeleteResponse struct{}

// ListRequest selects records of one type. From and To bound the sort key
// (inclusive, empty means open), UpdatedSince drops older records.
type ListRequest struct {
	EntityType   string     `json:"entityType"`
	From         string     `json:"from,omitempty"`
	To           string     `json:"to,omitempty"`
	UpdatedSince *time.Time `json:"updatedSince,omitempty"`
}

type ListResponse struct {
	Records []Record `json:"records"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

// PresignRequest asks for a photo URL. Key is ignored for uploads, where the
// server picks a fresh key.
type PresignRequest struct {
	Key string `json:"key,omitempty"`
}

type PresignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
