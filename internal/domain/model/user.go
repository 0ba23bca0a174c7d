package model

import "github.com/google/uuid"

// User is the directory record referenced by the messaging core.
// Online is a projection of the registry's live-connection state; it is
// written only on true presence edges and never consulted for access control.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Online       bool
	CreatedAt    int64
}
