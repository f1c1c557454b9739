// Package images holds cover-art blob storage with its two
// interchangeable backends. References are structural: a fully-qualified
// URL points at remote blob storage, anything else is a local filesystem
// path.
package images

import "context"

// Store is the blob storage contract for cover images.
type Store interface {
	// Save stores the blob and returns its reference. When existingPath
	// is set the old blob is deleted first, best-effort: a failed delete
	// never aborts the save of the new blob.
	Save(ctx context.Context, data []byte, userID, existingPath string) (string, error)

	// Delete removes the blob at the given reference. Deleting an absent
	// blob is a no-op.
	Delete(ctx context.Context, path string) error
}
