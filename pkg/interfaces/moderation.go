package interfaces

// ModerationStateFormatter renders the human readable status for a translation.
type ModerationStateFormatter interface {
	Render(state string, published bool, outdated bool) string
}

// ContentTypeRegistry reports whether a content type carries translatable fields.
type ContentTypeRegistry interface {
	IsTranslatable(contentType string) bool
}
