package dynsyn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// turtleEncoder writes Turtle or TriG. Statements are written as they
// arrive; in TriG mode consecutive statements sharing a graph name are
// grouped into one block.
type turtleEncoder struct {
	w      *bufio.Writer
	syntax Syntax
	trig   bool
	pretty bool

	base     string
	prefixes map[string]string
	order    []string

	headerDone  bool
	openGraph   *Term
	graphOpen   bool
	wroteAny    bool
	lastSubject string
	closed      bool
}

func newTurtleEncoder(w io.Writer, cfg SerializerConfig, trig bool) *turtleEncoder {
	syntax := SyntaxTurtle
	if trig {
		syntax = SyntaxTriG
	}
	prefixes := make(map[string]string, len(cfg.Prefixes))
	order := make([]string, 0, len(cfg.Prefixes))
	for name, ns := range cfg.Prefixes {
		prefixes[name] = ns
		order = append(order, name)
	}
	sort.Strings(order)
	return &turtleEncoder{
		w:        bufio.NewWriter(w),
		syntax:   syntax,
		trig:     trig,
		pretty:   cfg.Pretty,
		base:     cfg.BaseIRI,
		prefixes: prefixes,
		order:    order,
	}
}

func (e *turtleEncoder) serr(err error) error {
	return &SerializeError{Syntax: e.syntax, Err: err}
}

func (e *turtleEncoder) writeHeader() error {
	e.headerDone = true
	if e.base != "" {
		if _, err := fmt.Fprintf(e.w, "@base <%s> .\n", e.base); err != nil {
			return e.serr(err)
		}
	}
	for _, name := range e.order {
		if _, err := fmt.Fprintf(e.w, "@prefix %s: <%s> .\n", name, e.prefixes[name]); err != nil {
			return e.serr(err)
		}
	}
	if e.base != "" || len(e.order) > 0 {
		if _, err := e.w.WriteString("\n"); err != nil {
			return e.serr(err)
		}
	}
	return nil
}

func (e *turtleEncoder) Write(st statement) error {
	if e.closed {
		return ErrSerializerClosed
	}
	if !e.headerDone {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}
	if st.Graph != nil && !e.trig {
		return e.serr(errors.New("named graph in Turtle output"))
	}
	if e.trig {
		if err := e.switchGraph(st.Graph); err != nil {
			return err
		}
	}
	indent := ""
	if e.trig && e.graphOpen {
		indent = "  "
	}
	s, err := e.renderTerm(st.Subject)
	if err != nil {
		return err
	}
	p, err := e.renderPredicate(st.Predicate)
	if err != nil {
		return err
	}
	o, err := e.renderTerm(st.Object)
	if err != nil {
		return err
	}
	if e.pretty && e.wroteAny && s != e.lastSubject {
		if _, err := e.w.WriteString("\n"); err != nil {
			return e.serr(err)
		}
	}
	e.wroteAny = true
	e.lastSubject = s
	if _, err := fmt.Fprintf(e.w, "%s%s %s %s .\n", indent, s, p, o); err != nil {
		return e.serr(err)
	}
	return nil
}

// switchGraph closes and opens TriG graph blocks as the graph name changes.
// Default-graph statements are written outside any block.
func (e *turtleEncoder) switchGraph(g *Term) error {
	if sameGraph(e.openGraph, g) && (e.graphOpen == (g != nil)) {
		return nil
	}
	if e.graphOpen {
		if _, err := e.w.WriteString("}\n"); err != nil {
			return e.serr(err)
		}
		e.graphOpen = false
		e.openGraph = nil
	}
	if g == nil {
		return nil
	}
	name, err := e.renderTerm(*g)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "%s {\n", name); err != nil {
		return e.serr(err)
	}
	e.openGraph = g
	e.graphOpen = true
	return nil
}

func sameGraph(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (e *turtleEncoder) renderPredicate(t Term) (string, error) {
	if iri, ok := t.(IRI); ok && iri.Value == rdfType {
		return "a", nil
	}
	return e.renderTerm(t)
}

func (e *turtleEncoder) renderTerm(t Term) (string, error) {
	switch t := t.(type) {
	case IRI:
		return e.renderIRI(t.Value), nil
	case BlankNode:
		return "_:" + t.ID, nil
	case Literal:
		return e.renderLiteral(t)
	}
	return "", e.serr(fmt.Errorf("cannot render term %v", t))
}

func (e *turtleEncoder) renderIRI(iri string) string {
	if qname, ok := e.abbreviate(iri); ok {
		return qname
	}
	if e.base != "" && strings.HasPrefix(iri, e.base) && len(iri) > len(e.base) {
		rel := iri[len(e.base):]
		if isQNameLocal(rel) {
			return "<" + rel + ">"
		}
	}
	return "<" + iri + ">"
}

func (e *turtleEncoder) abbreviate(iri string) (string, bool) {
	for _, name := range e.order {
		ns := e.prefixes[name]
		if strings.HasPrefix(iri, ns) && len(iri) > len(ns) {
			local := iri[len(ns):]
			if isQNameLocal(local) {
				return name + ":" + local, true
			}
		}
	}
	return "", false
}

func (e *turtleEncoder) renderLiteral(l Literal) (string, error) {
	quoted := `"` + escapeLiteral(l.Lexical) + `"`
	if l.Lang != "" {
		return quoted + "@" + l.Lang, nil
	}
	switch l.Datatype.Value {
	case "", xsdString:
		return quoted, nil
	case xsdInteger, xsdDecimal, xsdBoolean:
		// Shorthand form, when the lexical form is safe to emit bare.
		if isShorthandLexical(l.Lexical, l.Datatype.Value) {
			return l.Lexical, nil
		}
	}
	return quoted + "^^" + e.renderIRI(l.Datatype.Value), nil
}

func isShorthandLexical(lexical, datatype string) bool {
	if lexical == "" {
		return false
	}
	if datatype == xsdBoolean {
		return lexical == "true" || lexical == "false"
	}
	dot := false
	for i, r := range lexical {
		switch {
		case r >= '0' && r <= '9':
		case (r == '+' || r == '-') && i == 0:
		case r == '.' && datatype == xsdDecimal && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}

// isQNameLocal reports whether s can stand as the local part of a prefixed
// name without escaping.
func isQNameLocal(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r > 0x7F:
		case r >= '0' && r <= '9':
		case r == '_':
		case r == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (e *turtleEncoder) Flush() error {
	if e.closed {
		return ErrSerializerClosed
	}
	if err := e.w.Flush(); err != nil {
		return e.serr(err)
	}
	return nil
}

func (e *turtleEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.graphOpen {
		if _, err := e.w.WriteString("}\n"); err != nil {
			return e.serr(err)
		}
		e.graphOpen = false
	}
	if err := e.w.Flush(); err != nil {
		return e.serr(err)
	}
	return nil
}
