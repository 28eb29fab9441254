package interfaces

import "context"

// Language describes a configured site language.
type Language struct {
	Code string
	Name string
}

// LanguageRegistry exposes the ordered set of configured languages.
type LanguageRegistry interface {
	// ConfiguredLanguages returns every configured language in display order.
	ConfiguredLanguages(ctx context.Context) ([]Language, error)
	// Resolve looks up a language by code. The boolean reports whether the
	// code is configured.
	Resolve(ctx context.Context, code string) (Language, bool)
}
