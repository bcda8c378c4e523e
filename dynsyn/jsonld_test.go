package dynsyn

import (
	"fmt"
	"strings"
	"testing"
)

func TestJSONLDParseExpanded(t *testing.T) {
	doc := `[{
  "@id": "http://example.org/alice",
  "http://example.org/name": [{"@value": "Alice"}],
  "http://example.org/knows": [{"@id": "http://example.org/bob"}]
}]`
	stmts := parseAll(t, SyntaxJSONLD, nil, doc)
	want := []Statement[Term]{
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/name"}, Literal{Lexical: "Alice"}),
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/knows"}, IRI{"http://example.org/bob"}),
	}
	sameStatements(t, stmts, want)
}

func TestJSONLDParseInlineContext(t *testing.T) {
	doc := `{
  "@context": {"name": "http://example.org/name"},
  "@id": "http://example.org/alice",
  "name": {"@value": "hola", "@language": "es"}
}`
	stmts := parseAll(t, SyntaxJSONLD, nil, doc)
	want := []Statement[Term]{
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/name"},
			Literal{Lexical: "hola", Lang: "es"}),
	}
	sameStatements(t, stmts, want)
}

func TestJSONLDTypedLiteral(t *testing.T) {
	doc := `[{
  "@id": "http://example.org/s",
  "http://example.org/age": [{"@value": "30", "@type": "http://www.w3.org/2001/XMLSchema#integer"}]
}]`
	stmts := parseAll(t, SyntaxJSONLD, nil, doc)
	want := []Statement[Term]{
		triple(IRI{"http://example.org/s"}, IRI{"http://example.org/age"},
			Literal{Lexical: "30", Datatype: IRI{xsdInteger}}),
	}
	sameStatements(t, stmts, want)
}

func TestJSONLDBaseIRI(t *testing.T) {
	doc := `[{"@id": "alice", "http://example.org/p": [{"@id": "bob"}]}]`
	cfg := &ParserConfig{BaseIRI: "http://base.example/dir/"}
	stmts := parseAll(t, SyntaxJSONLD, cfg, doc)
	want := []Statement[Term]{
		triple(IRI{"http://base.example/dir/alice"}, IRI{"http://example.org/p"},
			IRI{"http://base.example/dir/bob"}),
	}
	sameStatements(t, stmts, want)
}

func TestJSONLDNamedGraph(t *testing.T) {
	doc := `[{
  "@id": "http://example.org/g",
  "@graph": [{"@id": "http://example.org/s", "http://example.org/p": [{"@value": "v"}]}]
}]`
	stmts := parseAll(t, SyntaxJSONLD, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if g := graphIRI(t, stmts[0]); g != "http://example.org/g" {
		t.Fatalf("graph = %q", g)
	}
}

func TestJSONLDDefaultGraphIRI(t *testing.T) {
	doc := `[{"@id": "http://example.org/s", "http://example.org/p": [{"@value": "v"}]}]`
	cfg := &ParserConfig{DefaultGraphIRI: "http://example.org/default"}
	stmts := parseAll(t, SyntaxJSONLD, cfg, doc)
	if g := graphIRI(t, stmts[0]); g != "http://example.org/default" {
		t.Fatalf("graph = %q", g)
	}
}

func TestJSONLDInvalidJSON(t *testing.T) {
	p := mustParser(t, SyntaxJSONLD, nil)
	stmts := p.Parse(strings.NewReader(`{"@id": `))
	defer stmts.Close()
	_, first := stmts.Next()
	if Code(first) != CodeParseError {
		t.Fatalf("expected parse error, got %v", first)
	}
	_, second := stmts.Next()
	if second != first {
		t.Fatalf("error not latched: %v vs %v", first, second)
	}
}

// stubLoader serves remote contexts from memory.
type stubLoader struct {
	docs map[string]interface{}
}

func (l stubLoader) LoadDocument(iri string) (RemoteDocument, error) {
	doc, ok := l.docs[iri]
	if !ok {
		return RemoteDocument{}, fmt.Errorf("no document for %s", iri)
	}
	return RemoteDocument{DocumentURL: iri, Document: doc}, nil
}

func TestJSONLDRemoteContext(t *testing.T) {
	loader := stubLoader{docs: map[string]interface{}{
		"http://example.org/ctx": map[string]interface{}{
			"@context": map[string]interface{}{
				"name": "http://example.org/name",
			},
		},
	}}
	doc := `{
  "@context": "http://example.org/ctx",
  "@id": "http://example.org/alice",
  "name": "Alice"
}`
	cfg := &ParserConfig{DocumentLoader: loader}
	stmts := parseAll(t, SyntaxJSONLD, cfg, doc)
	want := []Statement[Term]{
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/name"}, Literal{Lexical: "Alice"}),
	}
	sameStatements(t, stmts, want)
}

func TestJSONLDEncoderEmpty(t *testing.T) {
	s, err := NewStringifier[Term](SyntaxJSONLD, Terms{}, nil)
	if err != nil {
		t.Fatalf("NewStringifier: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := strings.TrimSpace(s.String()); got != "[]" {
		t.Fatalf("empty document = %q, want []", got)
	}
}

func TestJSONLDEncoderRoundTrip(t *testing.T) {
	in := []Statement[Term]{
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/name"}, Literal{Lexical: "Alice"}),
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/age"},
			Literal{Lexical: "30", Datatype: IRI{xsdInteger}}),
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/knows"}, IRI{"http://example.org/bob"}),
	}
	s, err := NewStringifier[Term](SyntaxJSONLD, Terms{}, &SerializerConfig{Pretty: true})
	if err != nil {
		t.Fatalf("NewStringifier: %v", err)
	}
	for _, st := range in {
		if err := s.Write(st); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	back := parseAll(t, SyntaxJSONLD, nil, s.String())
	sameStatements(t, back, in)
}

func TestJSONLDEncoderDataset(t *testing.T) {
	g := Term(IRI{"http://example.org/g"})
	in := []Statement[Term]{
		{Subject: IRI{"http://example.org/s"}, Predicate: IRI{"http://example.org/p"},
			Object: Literal{Lexical: "v"}, Graph: &g},
		triple(IRI{"http://example.org/s"}, IRI{"http://example.org/p"}, Literal{Lexical: "w"}),
	}
	s, err := NewStringifier[Term](SyntaxJSONLD, Terms{}, nil)
	if err != nil {
		t.Fatalf("NewStringifier: %v", err)
	}
	for _, st := range in {
		if err := s.Write(st); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	back := parseAll(t, SyntaxJSONLD, nil, s.String())
	sameStatements(t, back, in)
}
