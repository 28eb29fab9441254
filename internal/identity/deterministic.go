package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
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

// RevisionUUID identifies a revision row of a content item.
func RevisionUUID(contentID uuid.UUID, revisionID int64) uuid.UUID {
	return UUID("revisions:revision:" + contentID.String() + ":" + strconv.FormatInt(revisionID, 10))
}

// TranslationUUID identifies the translation of a revision for one language.
func TranslationUUID(contentID uuid.UUID, revisionID int64, langcode string) uuid.UUID {
	return UUID("revisions:translation:" + contentID.String() + ":" + strconv.FormatInt(revisionID, 10) + ":" + strings.ToLower(strings.TrimSpace(langcode)))
}

// CanonicalUUID identifies the canonical storage row for one language.
func CanonicalUUID(contentID uuid.UUID, langcode string) uuid.UUID {
	return UUID("revisions:canonical:" + contentID.String() + ":" + strings.ToLower(strings.TrimSpace(langcode)))
}
