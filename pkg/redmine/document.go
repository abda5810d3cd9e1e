package redmine

import (
	"time"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/tidwall/gjson"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

// Document is a parsed JSON response body. A body that is not valid JSON
// parses to an empty document, so every accessor returns its default.
type Document struct {
	r gjson.Result
}

// ParseDocument parses a response body.
func ParseDocument(body []byte) Document {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return Document{}
	}
	return Document{r: gjson.ParseBytes(body)}
}

// Get returns the member named key.
func (d Document) Get(key string) Document {
	return Document{r: d.r.Get(gjson.Escape(key))}
}

// Exists reports whether the document holds a non-null value.
func (d Document) Exists() bool {
	return d.r.Exists() && d.r.Type != gjson.Null
}

// IsObject reports whether the document is a JSON object.
func (d Document) IsObject() bool {
	return d.r.IsObject()
}

// Raw returns the raw JSON text.
func (d Document) Raw() string {
	return d.r.Raw
}

// ID reads an identifier. Missing or null values yield an unset ID.
func (d Document) ID(key string) models.ID {
	v := d.r.Get(gjson.Escape(key))
	if !v.Exists() || v.Type == gjson.Null {
		return models.ID{}
	}
	return models.IDFromWire(int(v.Int()))
}

func (d Document) String(key string) string {
	return d.r.Get(gjson.Escape(key)).String()
}

func (d Document) Int(key string) int {
	return int(d.r.Get(gjson.Escape(key)).Int())
}

func (d Document) Float(key string) float64 {
	return d.r.Get(gjson.Escape(key)).Float()
}

func (d Document) Bool(key string) bool {
	return d.r.Get(gjson.Escape(key)).Bool()
}

// Date reads a calendar date. Unparseable values yield the zero time.
func (d Document) Date(key string) time.Time {
	return parseTime(dateLayout, d.String(key))
}

// DateTime reads an RFC 3339 timestamp. Unparseable values yield the zero time.
func (d Document) DateTime(key string) time.Time {
	return parseTime(dateTimeLayout, d.String(key))
}

// Ref reads a nested {"id", "name"} object.
func (d Document) Ref(key string) models.Ref {
	obj := d.Get(key)
	if !obj.IsObject() {
		return models.Ref{}
	}
	return models.Ref{ID: obj.ID("id"), Name: obj.String("name")}
}

// Refs reads an array of {"id", "name"} objects.
func (d Document) Refs(key string) []models.Ref {
	var refs []models.Ref
	d.Get(key).Each(func(item Document) {
		refs = append(refs, models.Ref{ID: item.ID("id"), Name: item.String("name")})
	})
	return refs
}

// Strings reads an array of strings. A scalar is returned as a one-element
// slice.
func (d Document) Strings(key string) []string {
	v := d.r.Get(gjson.Escape(key))
	switch {
	case v.IsArray():
		out := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			out = append(out, item.String())
		}
		return out
	case v.Exists() && v.Type != gjson.Null:
		return []string{v.String()}
	}
	return nil
}

// Each calls fn for every element of an array document.
func (d Document) Each(fn func(item Document)) {
	if !d.r.IsArray() {
		return
	}
	d.r.ForEach(func(_, value gjson.Result) bool {
		fn(Document{r: value})
		return true
	})
}

// EachCollectionItem calls fn for every element of every top-level array
// member, which is where Redmine places the records of a list response.
func (d Document) EachCollectionItem(fn func(item Document)) {
	if !d.r.IsObject() {
		return
	}
	d.r.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			Document{r: value}.Each(fn)
		}
		return true
	})
}

// Errors returns the messages of the "errors" array.
func (d Document) Errors() []string {
	return d.Strings("errors")
}

func parseTime(layout, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
