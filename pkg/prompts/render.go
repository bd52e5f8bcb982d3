package prompts

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrMalformedTemplate is returned for a format string with an unmatched
// brace or a placeholder that is not a plain name.
var ErrMalformedTemplate = errors.New("malformed template")

// MissingVariableError is returned by Render when a placeholder has no value.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing value for placeholder {%s}", e.Name)
}

// segment is either literal text or, when name is set, a placeholder.
type segment struct {
	text string
	name string
}

// parse splits a format string into literal and placeholder segments.
// "{{" and "}}" are literal braces; "{name}" is a placeholder where name is
// letters, digits and underscores.
func parse(format string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); {
		switch c := format[i]; c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}

			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				return segs, fmt.Errorf("%w: unmatched '{' at offset %d", ErrMalformedTemplate, i)
			}

			name := format[i+1 : i+1+end]
			if !isName(name) {
				return segs, fmt.Errorf("%w: invalid placeholder {%s}", ErrMalformedTemplate, name)
			}

			flush()
			segs = append(segs, segment{name: name})
			i += end + 2
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return segs, fmt.Errorf("%w: single '}' at offset %d", ErrMalformedTemplate, i)
		default:
			lit.WriteByte(c)
			i++
		}
	}

	flush()

	return segs, nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		s = s[size:]
	}
	return true
}

// Render substitutes vars into format. Values are inserted verbatim; extra
// variables are ignored. A placeholder without a value yields a
// *MissingVariableError.
func Render(format string, vars map[string]string) (string, error) {
	segs, err := parse(format)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, s := range segs {
		if s.name == "" {
			b.WriteString(s.text)
			continue
		}

		v, ok := vars[s.name]
		if !ok {
			return "", &MissingVariableError{Name: s.name}
		}
		b.WriteString(v)
	}

	return b.String(), nil
}

// Placeholders returns the placeholder names of format in order of first
// appearance, without duplicates. A malformed format yields the names found
// before the first error.
func Placeholders(format string) []string {
	segs, _ := parse(format)

	var names []string
	seen := make(map[string]struct{})
	for _, s := range segs {
		if s.name == "" {
			continue
		}
		if _, dup := seen[s.name]; dup {
			continue
		}
		seen[s.name] = struct{}{}
		names = append(names, s.name)
	}

	return names
}
