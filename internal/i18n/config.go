package i18n

// LocaleConfig names one configured language. An empty Name is filled from
// CLDR display names.
type LocaleConfig struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

type Config struct {
	DefaultLocale string         `json:"default_locale"`
	Locales       []LocaleConfig `json:"locales"`
}

func FromModuleConfig(defaultLocale string, locales []LocaleConfig) Config {
	return Config{
		DefaultLocale: defaultLocale,
		Locales:       locales,
	}
}
