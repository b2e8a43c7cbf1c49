// Package normalize turns raw source records into validated catalog records.
package normalize

import (
	"strings"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// Sanitize trims string values, checks that every required column is
// present and non-empty, and drops nil-valued columns. Pointer values are
// dereferenced. The returned error lists every missing field, in the order
// they were required.
func Sanitize(cols []domain.Column, required ...string) ([]domain.Column, error) {
	out := make([]domain.Column, 0, len(cols))
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		v, ok := clean(c.Value)
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			present[c.Name] = false
		} else {
			present[c.Name] = true
		}
		out = append(out, domain.Column{Name: c.Name, Value: v})
	}

	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Kind: -1, Missing: missing}
	}
	return out, nil
}

// Require runs Sanitize for its validation result and tags any failure with
// the record kind and ID.
func Require(kind domain.Kind, id string, cols []domain.Column, required ...string) error {
	if _, err := Sanitize(cols, required...); err != nil {
		verr := err.(*domain.ValidationError)
		verr.Kind = kind
		verr.ID = strings.TrimSpace(id)
		return verr
	}
	return nil
}

// clean returns the dereferenced, trimmed value and false when the value is
// nil or a nil pointer.
func clean(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case string:
		return strings.TrimSpace(x), true
	case *string:
		if x == nil {
			return nil, false
		}
		return strings.TrimSpace(*x), true
	case *int:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *int64:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *float64:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *bool:
		if x == nil {
			return nil, false
		}
		return *x, true
	default:
		return v, true
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
