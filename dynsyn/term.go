package dynsyn

import "fmt"

// TermKind discriminates the three kinds of RDF term.
type TermKind int

const (
	TermIRI TermKind = iota
	TermBlankNode
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "IRI"
	case TermBlankNode:
		return "BlankNode"
	case TermLiteral:
		return "Literal"
	}
	return fmt.Sprintf("TermKind(%d)", int(k))
}

// Term is the package's own term model. IRI, BlankNode and Literal are the
// only implementations; parsers and serializers generic over other models go
// through TermFactory and TermView instead.
type Term interface {
	Kind() TermKind
	// String renders the term in N-Triples form, for diagnostics.
	String() string
}

// IRI is an absolute or relative IRI reference.
type IRI struct {
	Value string
}

func (IRI) Kind() TermKind   { return TermIRI }
func (t IRI) String() string { return "<" + t.Value + ">" }

// BlankNode is a blank node with a label local to one document or one parse.
type BlankNode struct {
	ID string
}

func (BlankNode) Kind() TermKind   { return TermBlankNode }
func (t BlankNode) String() string { return "_:" + t.ID }

// Literal is an RDF literal. A non-empty Lang implies the datatype
// rdf:langString; an empty Datatype means xsd:string.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

func (Literal) Kind() TermKind { return TermLiteral }

func (t Literal) String() string {
	s := fmt.Sprintf("%q", t.Lexical)
	if t.Lang != "" {
		return s + "@" + t.Lang
	}
	if t.Datatype.Value != "" && t.Datatype.Value != xsdString {
		return s + "^^" + t.Datatype.String()
	}
	return s
}

const (
	xsdString     = "http://www.w3.org/2001/XMLSchema#string"
	xsdInteger    = "http://www.w3.org/2001/XMLSchema#integer"
	xsdDecimal    = "http://www.w3.org/2001/XMLSchema#decimal"
	xsdDouble     = "http://www.w3.org/2001/XMLSchema#double"
	xsdBoolean    = "http://www.w3.org/2001/XMLSchema#boolean"
	xsdDateTime   = "http://www.w3.org/2001/XMLSchema#dateTime"
	rdfLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
	rdfType       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfFirst      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	rdfRest       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	rdfNil        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
	rdfNS         = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)
