// Package storage is the content-addressed blob store behind post images and
// avatars. Callers get a write ticket, PUT the binary directly, and later
// resolve the opaque object id to a fetchable URL.
package storage

import "context"

// UploadTicket is a one-shot grant to upload a single object. The object
// becomes retrievable under ObjectID only after a successful PUT to UploadURL.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectID  string `json:"storageId"`
}

type ObjectStore interface {
	CreateUploadTicket(ctx context.Context) (UploadTicket, error)

	// Resolve returns a retrievable URL for the object, or "" when it was
	// deleted or its upload never completed.
	Resolve(ctx context.Context, objectID string) (string, error)

	// Delete is idempotent: removing a missing or already-deleted object is
	// not an error. Callers treat any failure as best-effort cleanup.
	Delete(ctx context.Context, objectID string) error
}
