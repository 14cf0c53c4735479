package filter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/crmarques/ddiconf/resource"
)

// Term is one equality comparison of a filter expression.
type Term struct {
	Field  string
	Value  any
	quoted bool
}

func Eq(field string, value any) Term {
	return Term{Field: strings.TrimSpace(field), Value: value}
}

// Quoted builds a term whose value is always rendered as a string literal,
// for fields that hold numeric-looking text.
func Quoted(field string, value any) Term {
	term := Eq(field, value)
	term.quoted = true
	return term
}

func (t Term) String() string {
	text := valueText(t.Value)
	if !t.quoted && isDigits(text) {
		return t.Field + "==" + text
	}
	return t.Field + "=='" + quoteEscaper.Replace(text) + "'"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Expression is an ordered conjunction of terms.
type Expression struct {
	terms []Term
}

func New(terms ...Term) Expression {
	return Expression{}.And(terms...)
}

// FromMap builds an expression from a field/value mapping in sorted key order.
func FromMap(values map[string]any) Expression {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	expression := Expression{}
	for _, key := range keys {
		expression = expression.And(Eq(key, values[key]))
	}
	return expression
}

// And returns a copy extended with terms. Terms without a field are dropped.
func (e Expression) And(terms ...Term) Expression {
	merged := make([]Term, 0, len(e.terms)+len(terms))
	merged = append(merged, e.terms...)
	for _, term := range terms {
		if term.Field == "" {
			continue
		}
		merged = append(merged, term)
	}
	return Expression{terms: merged}
}

func (e Expression) Terms() []Term {
	return append([]Term(nil), e.terms...)
}

func (e Expression) IsEmpty() bool {
	return len(e.terms) == 0
}

func (e Expression) String() string {
	if e.IsEmpty() {
		return ""
	}
	parts := make([]string, len(e.terms))
	for idx, term := range e.terms {
		parts[idx] = term.String()
	}
	return strings.Join(parts, " and ")
}

// valueText renders scalars in their natural form and composite values as
// compact JSON.
func valueText(value any) string {
	if value == nil {
		return ""
	}
	if text, ok := resource.ScalarString(value); ok {
		return text
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
