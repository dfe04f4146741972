package models

import (
	"time"

	"github.com/dmitrijs2005/foodlog/internal/models"
)

// Record is one stored entity of a user. Payload is the JSON form of the
// entity; SortKey is derived from it and indexed for range listing.
type Record struct {
	ID             string
	OwnerID        string
	EntityType     models.EntityType
	IdempotencyKey string
	Payload        []byte
	SortKey        string
	Barcode        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecordFilter selects records of one owner and type. From and To bound the
// sort key inclusively, empty means open. A nil UpdatedSince selects all.
type RecordFilter struct {
	From         string
	To           string
	UpdatedSince *time.Time
}
