// Package identity derives stable identifiers for catalog records.
package identity

import (
	"path"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by record kind to keep kinds from colliding.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID identifies a chapter page by its slash separated path relative
// to the content root, so re-indexing yields the same IDs.
func PageUUID(pagePath string) uuid.UUID {
	cleaned := strings.TrimSpace(pagePath)
	if cleaned == "" {
		return uuid.Nil
	}
	return UUID("bookcheck:page:" + path.Clean(strings.ReplaceAll(cleaned, "\\", "/")))
}
