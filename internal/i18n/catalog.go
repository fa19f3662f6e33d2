// Package i18n renders the message keys emitted by validation and import
// into user-facing text.
package i18n

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

//go:embed locales/*.json
var locales embed.FS

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Translator turns a message key and its parameters into text.
type Translator interface {
	T(key string, params map[string]any) string
}

// Catalog is a flattened translation file. Nested objects become dotted keys.
type Catalog struct {
	language   models.Language
	entries    map[string]string
	paths      []string
	duplicates []string
	empty      []string
}

// Load returns the embedded catalog for lang.
func Load(lang models.Language) (*Catalog, error) {
	if !lang.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	b, err := locales.ReadFile("locales/" + string(lang) + ".json")
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog %s: %w", lang, err)
	}
	return ParseCatalog(lang, b)
}

// MustLoad is Load for the embedded catalogs, which are known to parse.
func MustLoad(lang models.Language) *Catalog {
	c, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile parses a catalog from disk.
func LoadFile(lang models.Language, path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(lang, b)
}

// ParseCatalog reads a nested JSON translation file. Keys that occur twice,
// either literally or because a dotted key collides with a nested path, are
// kept in Duplicates; the last value wins.
func ParseCatalog(lang models.Language, data []byte) (*Catalog, error) {
	p := &catalogParser{
		dec:  json.NewDecoder(bytes.NewReader(data)),
		seen: map[string]bool{},
		c:    &Catalog{language: lang, entries: map[string]string{}},
	}

	tok, err := p.dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("parsing catalog: top level must be an object")
	}
	if err := p.object(""); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if _, err := p.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parsing catalog: trailing data")
	}

	sort.Strings(p.c.paths)
	return p.c, nil
}

type catalogParser struct {
	dec  *json.Decoder
	seen map[string]bool
	c    *Catalog
}

func (p *catalogParser) object(prefix string) error {
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		path := models.JoinPath(prefix, key)

		if p.seen[path] {
			p.c.duplicates = append(p.c.duplicates, path)
		} else {
			p.seen[path] = true
			p.c.paths = append(p.c.paths, path)
		}

		tok, err = p.dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("%s: arrays are not allowed", path)
			}
			if err := p.object(path); err != nil {
				return err
			}
		case string:
			p.c.entries[path] = v
			if strings.TrimSpace(v) == "" {
				p.c.empty = append(p.c.empty, path)
			}
		default:
			return fmt.Errorf("%s: value must be a string", path)
		}
	}
	_, err := p.dec.Token()
	return err
}

func (c *Catalog) Language() models.Language { return c.language }

// Has reports whether key resolves to a translated string.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys returns every path in the catalog, including group paths, sorted.
func (c *Catalog) Keys() []string { return c.paths }

func (c *Catalog) Duplicates() []string { return c.duplicates }

// Empty returns the keys whose text is blank.
func (c *Catalog) Empty() []string { return c.empty }

// T translates key. Unknown keys render as the key itself.
func (c *Catalog) T(key string, params map[string]any) string {
	if c == nil {
		return Interpolate(key, params)
	}
	text, ok := c.entries[key]
	if !ok {
		return key
	}
	return Interpolate(text, params)
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Interpolate replaces {{name}} with params["name"]. Placeholders without a
// parameter are left untouched.
func Interpolate(text string, params map[string]any) string {
	if len(params) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			return m
		}
		return fmt.Sprint(v)
	})
}

// ErrorMessage renders a validation error.
func ErrorMessage(t Translator, e models.ValidationError) string {
	return t.T(e.Message, params(e.Field, e.Value, e.Expected))
}

// WarningMessage renders a warning followed by its recommendation, if any.
func WarningMessage(t Translator, w models.ValidationWarning) string {
	msg := t.T(w.Message, params(w.Field, w.Value, w.Expected))
	if w.Recommendation == "" {
		return msg
	}
	return msg + " " + t.T(w.Recommendation, nil)
}

// ConflictMessage renders an import conflict and its resolution.
func ConflictMessage(t Translator, c models.ImportConflict) string {
	p := map[string]any{"stopId": c.StopID}
	return t.T(c.Description, p) + " " + t.T(c.SuggestedResolution, p)
}

func params(field string, value any, expected string) map[string]any {
	p := map[string]any{"field": field, "expected": expected}
	if value != nil {
		p["value"] = value
	}
	return p
}
