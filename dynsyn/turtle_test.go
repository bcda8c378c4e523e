package dynsyn

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestTurtleDirectiveAndPrefixedName(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p \"v\" .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if iri, ok := stmts[0].Predicate.(IRI); !ok || iri.Value != "http://example.org/p" {
		t.Fatalf("unexpected predicate: %v", stmts[0].Predicate)
	}
	if lit, ok := stmts[0].Object.(Literal); !ok || lit.Lexical != "v" {
		t.Fatalf("unexpected object: %v", stmts[0].Object)
	}
}

func TestTurtleSPARQLDirectives(t *testing.T) {
	doc := "PREFIX ex: <http://example.org/>\nBASE <http://base.example/>\nex:s ex:p <rel> .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if iri, ok := stmts[0].Object.(IRI); !ok || iri.Value != "http://base.example/rel" {
		t.Fatalf("relative IRI not resolved against BASE: %v", stmts[0].Object)
	}
}

func TestTurtleBaseIRIConfig(t *testing.T) {
	cfg := &ParserConfig{BaseIRI: "http://localhost/ex"}
	stmts := parseAll(t, SyntaxTurtle, cfg, "<a> <b> <c> .\n")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if iri, ok := stmts[0].Subject.(IRI); !ok || iri.Value != "http://localhost/a" {
		t.Fatalf("subject = %v, want <http://localhost/a>", stmts[0].Subject)
	}
}

func TestTurtleDocumentBaseOverridesConfig(t *testing.T) {
	cfg := &ParserConfig{BaseIRI: "http://config.example/"}
	doc := "@base <http://doc.example/> .\n<x> <p> <y> .\n"
	stmts := parseAll(t, SyntaxTurtle, cfg, doc)
	if iri := stmts[0].Subject.(IRI); iri.Value != "http://doc.example/x" {
		t.Fatalf("subject = %s, want <http://doc.example/x>", iri.Value)
	}
}

func TestTurtlePredicateObjectLists(t *testing.T) {
	doc := `@prefix ex: <http://example.org/> .
ex:alice a ex:Person ;
    ex:name "Alice" ;
    ex:knows ex:bob, ex:carol .
`
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	want := []Statement[Term]{
		triple(IRI{"http://example.org/alice"}, IRI{rdfType}, IRI{"http://example.org/Person"}),
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/name"}, Literal{Lexical: "Alice"}),
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/knows"}, IRI{"http://example.org/bob"}),
		triple(IRI{"http://example.org/alice"}, IRI{"http://example.org/knows"}, IRI{"http://example.org/carol"}),
	}
	sameStatements(t, stmts, want)
}

func TestTurtleLiteralForms(t *testing.T) {
	doc := `@prefix ex: <http://example.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
ex:s ex:lang "bonjour"@fr .
ex:s ex:typed "42"^^xsd:byte .
ex:s ex:int 30 .
ex:s ex:dec 3.14 .
ex:s ex:dbl 1.0E2 .
ex:s ex:flag true .
ex:s ex:esc "line\nbreak \"quoted\"" .
`
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	byPred := map[string]Literal{}
	for _, st := range stmts {
		byPred[st.Predicate.(IRI).Value] = st.Object.(Literal)
	}
	ex := "http://example.org/"
	if l := byPred[ex+"lang"]; l.Lexical != "bonjour" || l.Lang != "fr" {
		t.Errorf("lang literal = %v", l)
	}
	if l := byPred[ex+"typed"]; l.Datatype.Value != "http://www.w3.org/2001/XMLSchema#byte" {
		t.Errorf("typed literal = %v", l)
	}
	if l := byPred[ex+"int"]; l.Lexical != "30" || l.Datatype.Value != xsdInteger {
		t.Errorf("integer literal = %v", l)
	}
	if l := byPred[ex+"dec"]; l.Lexical != "3.14" || l.Datatype.Value != xsdDecimal {
		t.Errorf("decimal literal = %v", l)
	}
	if l := byPred[ex+"dbl"]; l.Lexical != "1.0E2" || l.Datatype.Value != xsdDouble {
		t.Errorf("double literal = %v", l)
	}
	if l := byPred[ex+"flag"]; l.Lexical != "true" || l.Datatype.Value != xsdBoolean {
		t.Errorf("boolean literal = %v", l)
	}
	if l := byPred[ex+"esc"]; l.Lexical != "line\nbreak \"quoted\"" {
		t.Errorf("escaped literal = %q", l.Lexical)
	}
}

func TestTurtleLongString(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p \"\"\"first line\nsecond \"quoted\" line\"\"\" .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	lit := stmts[0].Object.(Literal)
	if lit.Lexical != "first line\nsecond \"quoted\" line" {
		t.Fatalf("long string lexical = %q", lit.Lexical)
	}
}

func TestTurtleBlankNodePropertyList(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p [ ex:q ex:r ] .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	var node Term
	for _, st := range stmts {
		if st.Predicate.(IRI).Value == "http://example.org/p" {
			node = st.Object
		}
	}
	if node == nil || node.Kind() != TermBlankNode {
		t.Fatalf("property list object = %v, want blank node", node)
	}
	for _, st := range stmts {
		if st.Predicate.(IRI).Value == "http://example.org/q" && st.Subject != node {
			t.Fatalf("inner triple subject %v does not match list node %v", st.Subject, node)
		}
	}
}

func TestTurtleCollection(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p (ex:a ex:b) .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	// 1 main triple + first/rest pairs for two items.
	if len(stmts) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(stmts))
	}
	counts := map[string]int{}
	for _, st := range stmts {
		counts[st.Predicate.(IRI).Value]++
	}
	if counts[rdfFirst] != 2 || counts[rdfRest] != 2 {
		t.Fatalf("unexpected list shape: %v", counts)
	}
}

func TestTurtleEmptyCollection(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p () .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if iri, ok := stmts[0].Object.(IRI); !ok || iri.Value != rdfNil {
		t.Fatalf("empty collection object = %v, want rdf:nil", stmts[0].Object)
	}
}

func TestTurtleCommentsInsideStrings(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p \"not # a comment\" . # real comment\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if lit := stmts[0].Object.(Literal); lit.Lexical != "not # a comment" {
		t.Fatalf("lexical = %q", lit.Lexical)
	}
}

func TestTurtleEscapedLocalNameCharacters(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:a\\.b ex:p ex:foo\\#bar .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if iri := stmts[0].Subject.(IRI); iri.Value != "http://example.org/a.b" {
		t.Errorf("subject = %s", iri.Value)
	}
	if iri := stmts[0].Object.(IRI); iri.Value != "http://example.org/foo#bar" {
		t.Errorf("object = %s", iri.Value)
	}
}

func TestTurtleUndefinedPrefix(t *testing.T) {
	p := mustParser(t, SyntaxTurtle, nil)
	stmts := p.Parse(strings.NewReader("ex:s ex:p ex:o .\n"))
	defer stmts.Close()
	_, err := stmts.Next()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Syntax != SyntaxTurtle {
		t.Errorf("error tagged %s, want %s", parseErr.Syntax, SyntaxTurtle)
	}
}

func TestTurtleTerminatesOnError(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\nex:s ex:p \"unclosed .\nex:s2 ex:p2 ex:o2 .\n"
	p := mustParser(t, SyntaxTurtle, nil)
	stmts := p.Parse(strings.NewReader(doc))
	defer stmts.Close()
	_, first := stmts.Next()
	if first == nil || first == io.EOF {
		t.Fatalf("expected a parse error, got %v", first)
	}
	_, second := stmts.Next()
	if second != first {
		t.Fatalf("terminating backend returned a different error on retry: %v vs %v", first, second)
	}
}

func TestTurtleGraphBlockRejected(t *testing.T) {
	p := mustParser(t, SyntaxTurtle, nil)
	stmts := p.Parse(strings.NewReader("<http://g> {\n<http://a> <http://b> <http://c> .\n}\n"))
	defer stmts.Close()
	if _, err := stmts.Next(); Code(err) != CodeParseError {
		t.Fatalf("Turtle accepted a graph block: %v", err)
	}
}

func TestTurtleBlankNodeLabelsScoped(t *testing.T) {
	doc := "@prefix ex: <http://example.org/> .\n_:a ex:p [ ex:q ex:r ] .\n"
	stmts := parseAll(t, SyntaxTurtle, nil, doc)
	labels := map[string]bool{}
	for _, st := range stmts {
		for _, term := range []Term{st.Subject, st.Object} {
			if b, ok := term.(BlankNode); ok {
				labels[b.ID] = true
			}
		}
	}
	if !labels["a"] {
		t.Fatal("document label _:a was renamed")
	}
	if len(labels) != 2 {
		t.Fatalf("expected exactly one generated label besides _:a, got %v", labels)
	}
}

func TestTurtleStrictRejectsBadIRI(t *testing.T) {
	cfg := &ParserConfig{Strict: true}
	p := mustParser(t, SyntaxTurtle, cfg)
	stmts := p.Parse(strings.NewReader("<relative> <alsorelative> <stillrelative> .\n"))
	defer stmts.Close()
	if _, err := stmts.Next(); Code(err) != CodeParseError {
		t.Fatalf("strict mode accepted an unresolved relative IRI: %v", err)
	}
}
