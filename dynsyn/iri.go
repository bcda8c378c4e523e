package dynsyn

import (
	"fmt"
	"net/url"
	"strings"
)

// resolveIRI resolves ref against base. An absolute ref, or an empty base,
// passes through unchanged.
func resolveIRI(base, ref string) string {
	if base == "" || ref == "" {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		// Not URL-parsable (e.g. odd IRI characters); fall back to naive
		// joining so the reference is still anchored to the base.
		if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "?") {
			return strings.SplitN(base, "#", 2)[0] + ref
		}
		return base + ref
	}
	return b.ResolveReference(r).String()
}

// validateIRI applies the lexical checks run in strict mode. Lenient mode
// only rejects characters that would corrupt re-serialization.
func validateIRI(iri string, strict bool) error {
	for _, r := range iri {
		if r <= 0x20 || r == '<' || r == '>' || r == '"' || r == '{' || r == '}' || r == '|' || r == '^' || r == '`' {
			return fmt.Errorf("invalid character %q in IRI <%s>", r, iri)
		}
	}
	if strict {
		u, err := url.Parse(iri)
		if err != nil {
			return fmt.Errorf("malformed IRI <%s>: %v", iri, err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("relative IRI <%s> with no base to resolve against", iri)
		}
	}
	return nil
}

// isValidLangTag checks BCP 47 shape: alpha primary subtag, alphanumeric
// subtags separated by single hyphens.
func isValidLangTag(tag string) bool {
	if tag == "" {
		return false
	}
	parts := strings.Split(tag, "-")
	for i, part := range parts {
		if part == "" || len(part) > 8 {
			return false
		}
		for _, r := range part {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9':
				if i == 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isValidCodePoint(r rune) bool {
	return r >= 0 && r <= 0x10FFFF && !(r >= 0xD800 && r <= 0xDFFF)
}

// decodeEscapes rewrites \t \n \r \b \f \" \' \\ and \uXXXX \UXXXXXXXX
// escape sequences. It is shared by the Turtle-family and N-Triples lexers.
func decodeEscapes(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			b.WriteRune(runes[i])
			continue
		}
		if i+1 >= len(runes) {
			return "", fmt.Errorf("trailing backslash in %q", s)
		}
		i++
		switch runes[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if runes[i] == 'U' {
				width = 8
			}
			if i+width >= len(runes) {
				return "", fmt.Errorf("truncated \\%c escape in %q", runes[i], s)
			}
			var cp rune
			for j := 0; j < width; j++ {
				r := runes[i+1+j]
				if !isHexDigit(r) {
					return "", fmt.Errorf("non-hex digit %q in \\%c escape", r, runes[i])
				}
				cp = cp<<4 | hexValue(r)
			}
			if !isValidCodePoint(cp) {
				return "", fmt.Errorf("escape U+%04X is not a valid code point", cp)
			}
			b.WriteRune(cp)
			i += width
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", runes[i], s)
		}
	}
	return b.String(), nil
}

func hexValue(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	default:
		return r - 'A' + 10
	}
}

// escapeLiteral renders a literal's lexical form for the line-oriented and
// Turtle-family syntaxes, quotes excluded.
func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
