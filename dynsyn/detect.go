package dynsyn

import (
	"bytes"
	"io"
	"strings"
)

// detectSampleBytes bounds the sample taken from the reader.
const detectSampleBytes = 1024

// DetectSyntax guesses the syntax of a document from a bounded sample of r.
// It returns a reader replaying the consumed sample followed by the rest of
// r, so the result can be fed straight to a parser. The guess is heuristic;
// ok is false when nothing matches. Explicit resolution through Resolve is
// always preferable when a media type or file name is known.
func DetectSyntax(r io.Reader) (syntax Syntax, replay io.Reader, ok bool) {
	sample := make([]byte, detectSampleBytes)
	n, _ := io.ReadFull(r, sample)
	sample = sample[:n]
	replay = io.MultiReader(bytes.NewReader(sample), r)
	syntax, ok = detect(string(sample))
	return syntax, replay, ok
}

func detect(sample string) (Syntax, bool) {
	trimmed := strings.TrimLeft(sample, " \t\r\n")
	switch {
	case trimmed == "":
		return "", false
	case trimmed[0] == '{' || trimmed[0] == '[':
		return SyntaxJSONLD, true
	case strings.HasPrefix(trimmed, "<?xml"),
		strings.Contains(trimmed, "<rdf:RDF"):
		return SyntaxRDFXML, true
	}

	hasDirective := strings.Contains(trimmed, "@prefix") ||
		strings.Contains(trimmed, "@base") ||
		hasSPARQLDirective(trimmed)
	hasBlock := hasGraphBlock(trimmed)
	if hasDirective || hasBlock {
		if hasBlock {
			return SyntaxTriG, true
		}
		return SyntaxTurtle, true
	}

	// Line-shaped content: try the N-Triples/N-Quads line parser on the
	// first complete statement line.
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		st, _, err := parseNTLine(line, false)
		if err != nil {
			break
		}
		if st.Graph != nil {
			return SyntaxNQuads, true
		}
		return SyntaxNTriples, true
	}

	// Turtle constructs that appear without directives.
	if strings.Contains(trimmed, ";") || strings.Contains(trimmed, " a ") {
		return SyntaxTurtle, true
	}
	return "", false
}

func hasSPARQLDirective(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if hasDirectiveWord(lower, "prefix") || hasDirectiveWord(lower, "base") {
			return true
		}
	}
	return false
}

// hasGraphBlock looks for a '{' outside string literals and IRIs.
func hasGraphBlock(s string) bool {
	var quote rune
	inIRI := false
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case inIRI:
			if r == '>' {
				inIRI = false
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '<':
			inIRI = true
		case r == '{':
			return true
		}
	}
	return false
}
