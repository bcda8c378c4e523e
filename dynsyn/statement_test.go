package dynsyn

import (
	"strings"
	"testing"
)

// tagTerm is a minimal caller-side term representation: a kind plus the term
// fields flattened into strings. It stands in for whatever model an RDF store
// brings along.
type tagTerm struct {
	kind     TermKind
	value    string
	datatype string
	lang     string
}

type tagTerms struct{}

func (tagTerms) IRI(value string) tagTerm    { return tagTerm{kind: TermIRI, value: value} }
func (tagTerms) BlankNode(id string) tagTerm { return tagTerm{kind: TermBlankNode, value: id} }

func (tagTerms) Literal(lexical, datatype, lang string) tagTerm {
	return tagTerm{kind: TermLiteral, value: lexical, datatype: datatype, lang: lang}
}

func (tagTerms) Kind(t tagTerm) TermKind      { return t.kind }
func (tagTerms) IRIValue(t tagTerm) string    { return t.value }
func (tagTerms) BlankNodeID(t tagTerm) string { return t.value }

func (tagTerms) LiteralParts(t tagTerm) (string, string, string) {
	return t.value, t.datatype, t.lang
}

func TestCustomTermRepresentation(t *testing.T) {
	doc := `@prefix ex: <http://example.org/> .
ex:s ex:name "Alice" ;
  ex:note "hei"@no ;
  ex:age 30 ;
  ex:knows ex:bob .
`
	p, err := NewParser[tagTerm](SyntaxTurtle, tagTerms{}, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts := p.Parse(strings.NewReader(doc))
	defer stmts.Close()

	s, err := NewStringifier[tagTerm](SyntaxNQuads, tagTerms{}, nil)
	if err != nil {
		t.Fatalf("NewStringifier: %v", err)
	}
	if err := s.SerializeDataset(stmts); err != nil {
		t.Fatalf("SerializeDataset: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []Statement[Term]{
		triple(IRI{"http://example.org/s"}, IRI{"http://example.org/name"}, Literal{Lexical: "Alice"}),
		triple(IRI{"http://example.org/s"}, IRI{"http://example.org/note"},
			Literal{Lexical: "hei", Lang: "no"}),
		triple(IRI{"http://example.org/s"}, IRI{"http://example.org/age"},
			Literal{Lexical: "30", Datatype: IRI{xsdInteger}}),
		triple(IRI{"http://example.org/s"}, IRI{"http://example.org/knows"}, IRI{"http://example.org/bob"}),
	}
	sameStatements(t, parseAll(t, SyntaxNQuads, nil, s.String()), want)
}

func TestCustomTermGraphPointer(t *testing.T) {
	doc := `<http://example.org/s> <http://example.org/p> "v" <http://example.org/g> .` + "\n"
	p, err := NewParser[tagTerm](SyntaxNQuads, tagTerms{}, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts := p.Parse(strings.NewReader(doc))
	defer stmts.Close()
	st, err := stmts.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if st.Graph == nil || st.Graph.value != "http://example.org/g" {
		t.Fatalf("graph = %+v", st.Graph)
	}
	if st.Object.kind != TermLiteral || st.Object.value != "v" {
		t.Fatalf("object = %+v", st.Object)
	}
}
