package dynsyn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// rdfxmlEncoder writes one rdf:Description element per statement. Predicate
// IRIs are split into a namespace and an XML local name; configured prefixes
// are declared on the root element, otherwise the namespace is declared
// inline on the property element.
type rdfxmlEncoder struct {
	w      *bufio.Writer
	pretty bool

	prefixes map[string]string // namespace -> prefix label
	order    []string

	headerDone bool
	genPrefix  int
	closed     bool
}

func newRDFXMLEncoder(w io.Writer, cfg SerializerConfig) *rdfxmlEncoder {
	prefixes := make(map[string]string, len(cfg.Prefixes))
	names := make([]string, 0, len(cfg.Prefixes))
	for name := range cfg.Prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	order := make([]string, 0, len(names))
	for _, name := range names {
		ns := cfg.Prefixes[name]
		if _, dup := prefixes[ns]; dup {
			continue
		}
		prefixes[ns] = name
		order = append(order, ns)
	}
	return &rdfxmlEncoder{
		w:        bufio.NewWriter(w),
		pretty:   cfg.Pretty,
		prefixes: prefixes,
		order:    order,
	}
}

func (e *rdfxmlEncoder) serr(err error) error {
	return &SerializeError{Syntax: SyntaxRDFXML, Err: err}
}

func (e *rdfxmlEncoder) nl() string {
	if e.pretty {
		return "\n"
	}
	return ""
}

func (e *rdfxmlEncoder) indent(level int) string {
	if e.pretty {
		return strings.Repeat("  ", level)
	}
	return ""
}

func (e *rdfxmlEncoder) writeHeader() error {
	e.headerDone = true
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + e.nl())
	b.WriteString(`<rdf:RDF xmlns:rdf="` + rdfNS + `"`)
	for _, ns := range e.order {
		b.WriteString(` xmlns:` + e.prefixes[ns] + `="` + escapeXMLAttr(ns) + `"`)
	}
	b.WriteString(">" + e.nl())
	if _, err := e.w.WriteString(b.String()); err != nil {
		return e.serr(err)
	}
	return nil
}

func (e *rdfxmlEncoder) Write(st statement) error {
	if e.closed {
		return ErrSerializerClosed
	}
	if st.Graph != nil {
		return e.serr(errors.New("named graph in RDF/XML output"))
	}
	if !e.headerDone {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}
	pred, ok := st.Predicate.(IRI)
	if !ok {
		return e.serr(fmt.Errorf("predicate must be an IRI, got %s", st.Predicate))
	}
	ns, local, ok := splitPredicate(pred.Value)
	if !ok {
		return e.serr(fmt.Errorf("predicate <%s> cannot be split into a namespace and an XML name", pred.Value))
	}

	var b strings.Builder
	b.WriteString(e.indent(1) + "<rdf:Description")
	switch s := st.Subject.(type) {
	case IRI:
		b.WriteString(` rdf:about="` + escapeXMLAttr(s.Value) + `"`)
	case BlankNode:
		b.WriteString(` rdf:nodeID="` + escapeXMLAttr(s.ID) + `"`)
	default:
		return e.serr(fmt.Errorf("subject must be an IRI or blank node, got %s", st.Subject))
	}
	b.WriteString(">" + e.nl())

	prefix, declared := e.prefixes[ns]
	xmlns := ""
	if !declared {
		e.genPrefix++
		prefix = fmt.Sprintf("n%d", e.genPrefix)
		xmlns = ` xmlns:` + prefix + `="` + escapeXMLAttr(ns) + `"`
	}
	qname := prefix + ":" + local

	b.WriteString(e.indent(2) + "<" + qname + xmlns)
	switch o := st.Object.(type) {
	case IRI:
		b.WriteString(` rdf:resource="` + escapeXMLAttr(o.Value) + `"/>`)
	case BlankNode:
		b.WriteString(` rdf:nodeID="` + escapeXMLAttr(o.ID) + `"/>`)
	case Literal:
		if o.Lang != "" {
			b.WriteString(` xml:lang="` + escapeXMLAttr(o.Lang) + `"`)
		} else if o.Datatype.Value != "" && o.Datatype.Value != xsdString {
			b.WriteString(` rdf:datatype="` + escapeXMLAttr(o.Datatype.Value) + `"`)
		}
		b.WriteString(">" + escapeXMLText(o.Lexical) + "</" + qname + ">")
	default:
		return e.serr(fmt.Errorf("cannot render object %s", st.Object))
	}
	b.WriteString(e.nl())
	b.WriteString(e.indent(1) + "</rdf:Description>" + e.nl())

	if _, err := e.w.WriteString(b.String()); err != nil {
		return e.serr(err)
	}
	return nil
}

func (e *rdfxmlEncoder) Flush() error {
	if e.closed {
		return ErrSerializerClosed
	}
	if err := e.w.Flush(); err != nil {
		return e.serr(err)
	}
	return nil
}

func (e *rdfxmlEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if !e.headerDone {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}
	if _, err := e.w.WriteString("</rdf:RDF>" + e.nl()); err != nil {
		return e.serr(err)
	}
	if err := e.w.Flush(); err != nil {
		return e.serr(err)
	}
	return nil
}

// splitPredicate splits an IRI at the last '#' or '/' such that the local
// part is a valid XML name.
func splitPredicate(iri string) (ns, local string, ok bool) {
	for _, sep := range []byte{'#', '/'} {
		if i := strings.LastIndexByte(iri, sep); i >= 0 && i+1 < len(iri) {
			candidate := iri[i+1:]
			if isXMLName(candidate) {
				return iri[:i+1], candidate, true
			}
		}
	}
	return "", "", false
}

func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r > 0x7F:
		case (r >= '0' && r <= '9') || r == '-' || r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func escapeXMLText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeXMLAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
