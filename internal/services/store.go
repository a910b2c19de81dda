package services

import (
	"errors"

	"klarna_checkout_echo/internal/models"
)

// ErrRecordNotFound is returned by store lookups and updates when no record
// carries the requested business key.
var ErrRecordNotFound = errors.New("record not found")

// RecordStore holds the local mirror of provider sessions and orders. Records
// are only ever inserted and updated, never deleted. Updates take a snapshot,
// apply the update value, and write the result back under the store's lock,
// so concurrent pipelines cannot interleave inside a single mutation.
//
// Two backends exist: a single-file JSON snapshot store (FileStore, the
// default) and a postgres store (GormStore) with synchronous persistence.
type RecordStore interface {
	InsertSession(rec *models.SessionRecord) error
	InsertOrder(rec *models.OrderRecord) error

	// Listings return records in insertion order, for the dashboard.
	ListSessions() ([]models.SessionRecord, error)
	ListOrders() ([]models.OrderRecord, error)

	GetSession(sessionID string) (*models.SessionRecord, error)
	GetOrder(orderID string) (*models.OrderRecord, error)

	// Updates key on the business identifier and return ErrRecordNotFound
	// when it is absent.
	UpdateSession(sessionID string, update models.SessionUpdate) error
	UpdateOrder(orderID string, update models.OrderUpdate) error

	Close() error
}
