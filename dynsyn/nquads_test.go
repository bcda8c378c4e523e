package dynsyn

import (
	"strings"
	"testing"
)

func TestNQuadsBasic(t *testing.T) {
	doc := "<http://example.org/s> <http://example.org/p> \"v\"@en <http://example.org/g> .\n" +
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	stmts := parseAll(t, SyntaxNQuads, nil, doc)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if g := graphIRI(t, stmts[0]); g != "http://example.org/g" {
		t.Errorf("graph = %q", g)
	}
	if lit := stmts[0].Object.(Literal); lit.Lexical != "v" || lit.Lang != "en" {
		t.Errorf("object = %v", stmts[0].Object)
	}
	if stmts[1].Graph != nil {
		t.Errorf("triple line received graph %v", *stmts[1].Graph)
	}
}

func TestNQuadsTypedLiteralRoundTrip(t *testing.T) {
	doc := "<http://s> <http://p> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n" +
		"<http://s> <http://p> \"true\"^^<http://www.w3.org/2001/XMLSchema#boolean> .\n"
	stmts := parseAll(t, SyntaxNQuads, nil, doc)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if lit := stmts[0].Object.(Literal); lit.Lexical != "42" || lit.Datatype.Value != xsdInteger {
		t.Errorf("integer literal = %v", stmts[0].Object)
	}
	if lit := stmts[1].Object.(Literal); lit.Lexical != "true" || lit.Datatype.Value != xsdBoolean {
		t.Errorf("boolean literal = %v", stmts[1].Object)
	}
}

func TestNQuadsLexicalFormsPreserved(t *testing.T) {
	doc := "<http://s> <http://p> \"0001\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n" +
		"<http://s> <http://p> \"2024-01-02T03:04:05.678Z\"^^<http://www.w3.org/2001/XMLSchema#dateTime> .\n" +
		"<http://s> <http://p> \"1.5E0\"^^<http://www.w3.org/2001/XMLSchema#double> .\n"
	stmts := parseAll(t, SyntaxNQuads, nil, doc)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	want := []string{"0001", "2024-01-02T03:04:05.678Z", "1.5E0"}
	for i, st := range stmts {
		lit := st.Object.(Literal)
		if lit.Lexical != want[i] {
			t.Errorf("statement %d: lexical form %q, want %q", i, lit.Lexical, want[i])
		}
	}
}

func TestNQuadsStrict(t *testing.T) {
	doc := "<relative/iri> <http://p> \"v\" .\n"
	stmts := parseAll(t, SyntaxNQuads, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("lenient mode: expected 1 statement, got %d", len(stmts))
	}
	p := mustParser(t, SyntaxNQuads, &ParserConfig{Strict: true})
	seq := p.Parse(strings.NewReader(doc))
	defer seq.Close()
	if _, err := seq.Next(); Code(err) != CodeParseError {
		t.Fatalf("strict mode accepted a relative IRI: %v", err)
	}
}

func TestNQuadsTerminatesOnError(t *testing.T) {
	doc := "<http://a> <http://b> <http://c> .\n" +
		"broken\n" +
		"<http://d> <http://e> <http://f> .\n"
	p := mustParser(t, SyntaxNQuads, nil)
	stmts := p.Parse(strings.NewReader(doc))
	defer stmts.Close()
	if _, err := stmts.Next(); err != nil {
		t.Fatalf("first statement: %v", err)
	}
	_, first := stmts.Next()
	if Code(first) != CodeParseError {
		t.Fatalf("expected parse error, got %v", first)
	}
	_, second := stmts.Next()
	if second != first {
		t.Fatalf("terminating backend returned a different error on retry: %v vs %v", first, second)
	}
}

func TestNQuadsEncoder(t *testing.T) {
	s, err := NewStringifier[Term](SyntaxNQuads, Terms{}, nil)
	if err != nil {
		t.Fatalf("NewStringifier: %v", err)
	}
	g := Term(IRI{"http://g"})
	in := []Statement[Term]{
		{Subject: IRI{"http://a"}, Predicate: IRI{"http://b"}, Object: IRI{"http://c"}, Graph: &g},
		triple(IRI{"http://a"}, IRI{"http://b"}, Literal{Lexical: "v", Lang: "en"}),
	}
	for _, st := range in {
		if err := s.Write(st); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	back := parseAll(t, SyntaxNQuads, nil, s.String())
	sameStatements(t, back, in)
}
