package locales

import (
	"embed"
	"fmt"
	"maps"
	"slices"
	"sync"

	"kamwaalay/config"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationFiles embed.FS

// Catalog holds the flattened translation keys of every supported locale.
type Catalog struct {
	translations map[string]map[string]string
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// Default loads the embedded catalog once.
func Default() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = Load()
	})
	return defaultCatalog, defaultCatalogErr
}

func Load() (*Catalog, error) {
	catalog := &Catalog{translations: make(map[string]map[string]string)}

	for _, locale := range config.SupportedLocales {
		data, err := translationFiles.ReadFile(fmt.Sprintf("translations/%s.yaml", locale))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s translations: %w", locale, err)
		}

		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s translations: %w", locale, err)
		}

		flat := make(map[string]string)
		flatten("", tree, flat)
		catalog.translations[locale] = flat
	}

	return catalog, nil
}

func (c *Catalog) Locales() []string {
	return slices.Sorted(maps.Keys(c.translations))
}

func (c *Catalog) Messages(locale string) (map[string]string, bool) {
	messages, ok := c.translations[locale]
	if !ok {
		return nil, false
	}
	return maps.Clone(messages), true
}

// Translate returns the message for key, falling back to English and then to
// the key itself.
func (c *Catalog) Translate(locale, key string) string {
	if message, ok := c.translations[locale][key]; ok {
		return message
	}
	if message, ok := c.translations["en"][key]; ok {
		return message
	}
	return key
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]any:
			flatten(fullKey, v, out)
		case nil:
			out[fullKey] = ""
		default:
			out[fullKey] = fmt.Sprint(v)
		}
	}
}
