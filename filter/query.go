package filter

import (
	"net/url"
	"strings"
)

// FieldSet is the projection of fields requested from a list call. An empty
// set means all fields.
type FieldSet []string

func (f FieldSet) String() string {
	fields := make([]string, 0, len(f))
	for _, field := range f {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return strings.Join(fields, ",")
}

// Query groups the optional projection, content filter and tag filter of a
// list call. Suffixes are emitted in that order; the first present one is
// introduced with `?`, later ones with `&`.
type Query struct {
	Fields    FieldSet
	Filter    Expression
	TagFilter Expression
}

func (q Query) IsEmpty() bool {
	return q.Fields.String() == "" && q.Filter.IsEmpty() && q.TagFilter.IsEmpty()
}

// String renders the unescaped suffix, e.g. `?_fields=id&_filter=name=='a'`.
func (q Query) String() string {
	return q.render(func(value string) string { return value })
}

// Encode renders the suffix with query escaping applied to every value.
func (q Query) Encode() string {
	return q.render(url.QueryEscape)
}

// Path appends the encoded suffix to a collection path.
func (q Query) Path(collection string) string {
	return collection + q.Encode()
}

func (q Query) render(escape func(string) string) string {
	var builder strings.Builder
	appendParam := func(name string, value string) {
		if value == "" {
			return
		}
		if builder.Len() == 0 {
			builder.WriteByte('?')
		} else {
			builder.WriteByte('&')
		}
		builder.WriteString(name)
		builder.WriteByte('=')
		builder.WriteString(escape(value))
	}

	appendParam("_fields", q.Fields.String())
	appendParam("_filter", q.Filter.String())
	appendParam("_tfilter", q.TagFilter.String())
	return builder.String()
}
