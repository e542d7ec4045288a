package main

import (
	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler is an interface for getting a uid.
type UIDHandler interface {
	Generate(prefix string) string
}

// IDsHandler implements the UIDHandler interface.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random unique identifier. It falls back to a
// time based uuid in the unlikely case the random source fails.
func (idh *IDsHandler) Generate(prefix string) string {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Must(uuid.NewV1())
	}
	return prefix + ":" + id.String()
}
