// Package i18n holds the user-facing message catalog. French is the
// default language, English the alternative.
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
)

// DefaultLanguage is used when none is configured
const DefaultLanguage = "fr"

// Catalog translates message keys for one language
type Catalog struct {
	uni   *ut.UniversalTranslator
	trans ut.Translator
	lang  string
}

// Languages returns the supported language codes
func Languages() []string {
	out := make([]string, 0, len(messages))
	for lang := range messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// New builds the catalog for lang ("" means DefaultLanguage)
func New(lang string) (*Catalog, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}

	french := fr.New()
	uni := ut.New(french, french, en.New())

	for code, catalog := range messages {
		trans, found := uni.GetTranslator(code)
		if !found {
			return nil, fmt.Errorf("no locale for %q", code)
		}
		for key, text := range catalog {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("failed to register %s message %q: %w", code, key, err)
			}
		}
	}

	trans, found := uni.GetTranslator(lang)
	if !found || messages[lang] == nil {
		return nil, fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(Languages(), ", "))
	}

	return &Catalog{uni: uni, trans: trans, lang: lang}, nil
}

// MustNew is New for package-level defaults and tests
func MustNew(lang string) *Catalog {
	c, err := New(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// Lang returns the catalog's language code
func (c *Catalog) Lang() string {
	return c.lang
}

// T translates key, substituting {0}, {1}... with params.
// An unknown key is returned as is.
func (c *Catalog) T(key string, params ...string) string {
	s, err := c.trans.T(key, params...)
	if err != nil || s == "" {
		return key
	}
	return s
}

// Number formats v with the language's grouping and decimal separators
func (c *Catalog) Number(v float64, decimals uint64) string {
	return c.trans.FmtNumber(v, decimals)
}

// Date formats t in the language's short date style
func (c *Catalog) Date(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return c.trans.FmtDateShort(t)
}

// Locale exposes plural rules and formatting of the active language
func (c *Catalog) Locale() locales.Translator {
	return c.trans
}
