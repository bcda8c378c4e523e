package dynsyn

import "strings"

// Syntax identifies one of the concrete RDF syntaxes this package can parse
// and serialize. The set is closed; values outside the six constants are
// rejected by every factory.
type Syntax string

const (
	SyntaxTurtle   Syntax = "turtle"
	SyntaxTriG     Syntax = "trig"
	SyntaxNTriples Syntax = "ntriples"
	SyntaxNQuads   Syntax = "nquads"
	SyntaxRDFXML   Syntax = "rdfxml"
	SyntaxJSONLD   Syntax = "jsonld"
)

// SyntaxInfo is the registry record for one syntax tag.
type SyntaxInfo struct {
	// Name is a human-readable name, e.g. "Turtle".
	Name string
	// MediaType is the canonical media type, unique across the registry.
	MediaType string
	// AliasMediaTypes are exact alternative media types for this syntax.
	AliasMediaTypes []string
	// GenericMediaTypes are broader media types conventionally used for this
	// syntax (e.g. application/json for JSON-LD). Resolution through one of
	// these yields a non-total Correspondent.
	GenericMediaTypes []string
	// Extensions are file extensions without the dot, first is preferred.
	Extensions []string
	// GenericExtensions are broader extensions (e.g. "json"), non-total.
	GenericExtensions []string
	// SupportsQuads reports whether the syntax can express named graphs.
	SupportsQuads bool
}

var syntaxRegistry = map[Syntax]SyntaxInfo{
	SyntaxTurtle: {
		Name:            "Turtle",
		MediaType:       "text/turtle",
		AliasMediaTypes: []string{"application/x-turtle"},
		Extensions:      []string{"ttl", "turtle"},
	},
	SyntaxTriG: {
		Name:            "TriG",
		MediaType:       "application/trig",
		AliasMediaTypes: []string{"application/x-trig"},
		Extensions:      []string{"trig"},
		SupportsQuads:   true,
	},
	SyntaxNTriples: {
		Name:              "N-Triples",
		MediaType:         "application/n-triples",
		GenericMediaTypes: []string{"text/plain"},
		Extensions:        []string{"nt", "ntriples"},
	},
	SyntaxNQuads: {
		Name:            "N-Quads",
		MediaType:       "application/n-quads",
		AliasMediaTypes: []string{"text/x-nquads"},
		Extensions:      []string{"nq", "nquads"},
		SupportsQuads:   true,
	},
	SyntaxRDFXML: {
		Name:              "RDF/XML",
		MediaType:         "application/rdf+xml",
		GenericMediaTypes: []string{"application/xml"},
		Extensions:        []string{"rdf", "rdfxml"},
		GenericExtensions: []string{"xml"},
	},
	SyntaxJSONLD: {
		Name:              "JSON-LD",
		MediaType:         "application/ld+json",
		GenericMediaTypes: []string{"application/json"},
		Extensions:        []string{"jsonld"},
		GenericExtensions: []string{"json"},
		SupportsQuads:     true,
	},
}

// syntaxOrder fixes the iteration order exposed by Syntaxes.
var syntaxOrder = []Syntax{
	SyntaxTurtle, SyntaxTriG, SyntaxNTriples,
	SyntaxNQuads, SyntaxRDFXML, SyntaxJSONLD,
}

// Syntaxes returns every registered syntax tag in a stable order.
func Syntaxes() []Syntax {
	out := make([]Syntax, len(syntaxOrder))
	copy(out, syntaxOrder)
	return out
}

// Info returns the registry record for s.
func Info(s Syntax) (SyntaxInfo, bool) {
	info, ok := syntaxRegistry[s]
	return info, ok
}

// Name returns the human-readable name of s, or the raw tag if unknown.
func (s Syntax) Name() string {
	if info, ok := syntaxRegistry[s]; ok {
		return info.Name
	}
	return string(s)
}

// SupportsQuads reports whether s can express named graphs.
func (s Syntax) SupportsQuads() bool {
	return syntaxRegistry[s].SupportsQuads
}

func (s Syntax) isKnown() bool {
	_, ok := syntaxRegistry[s]
	return ok
}

// ParseSyntax maps a short name to a syntax tag. It accepts the tag values
// themselves plus common spellings ("n-triples", "rdf/xml", "json-ld").
// Matching is case-insensitive.
func ParseSyntax(value string) (Syntax, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "turtle", "ttl":
		return SyntaxTurtle, true
	case "trig":
		return SyntaxTriG, true
	case "ntriples", "n-triples", "nt":
		return SyntaxNTriples, true
	case "nquads", "n-quads", "nq":
		return SyntaxNQuads, true
	case "rdfxml", "rdf/xml", "rdf-xml":
		return SyntaxRDFXML, true
	case "jsonld", "json-ld":
		return SyntaxJSONLD, true
	}
	return "", false
}
