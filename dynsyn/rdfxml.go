package dynsyn

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const xmlNS = "http://www.w3.org/XML/1998/namespace"

// rdfxmlDecoder walks the XML token stream and emits triples per the
// RDF/XML striped syntax: node elements alternate with property elements.
// Supported: rdf:about, rdf:ID, rdf:nodeID, rdf:resource, rdf:datatype,
// rdf:parseType="Resource", xml:lang, xml:base on the root, nested node
// elements and property attributes. rdf:parseType="Literal" and
// "Collection" are rejected. The policy is terminate: XML is not
// recoverable mid-stream.
type rdfxmlDecoder struct {
	dec    *xml.Decoder
	base   string
	strict bool
	gen    *bnodeGen
	queue  []statement
	err    error
	inRoot bool
	eof    bool
}

func newRDFXMLDecoder(r io.Reader, cfg ParserConfig) *rdfxmlDecoder {
	return &rdfxmlDecoder{
		dec:    xml.NewDecoder(r),
		base:   cfg.BaseIRI,
		strict: cfg.Strict,
		gen:    newBnodeGen(),
	}
}

func (d *rdfxmlDecoder) Next() (statement, error) {
	if d.err != nil {
		return statement{}, d.err
	}
	for len(d.queue) == 0 {
		if d.eof {
			return statement{}, io.EOF
		}
		if err := d.advance(); err != nil {
			if err != io.EOF {
				// A node element that errors part-way through is dropped
				// whole; its already-queued triples are not reported.
				d.err = err
				d.queue = nil
				return statement{}, d.err
			}
			d.eof = true
			if len(d.queue) == 0 {
				return statement{}, io.EOF
			}
		}
	}
	st := d.queue[0]
	d.queue = d.queue[1:]
	return st, nil
}

func (d *rdfxmlDecoder) Close() error {
	d.eof = true
	d.queue = nil
	return nil
}

func (d *rdfxmlDecoder) parseErr(err error) error {
	line := 0
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		line = syn.Line
	}
	return &ParseError{Syntax: SyntaxRDFXML, Line: line, Err: err}
}

// advance consumes tokens until one top-level node element has been parsed.
func (d *rdfxmlDecoder) advance() error {
	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return d.parseErr(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !d.inRoot && t.Name.Space == rdfNS && t.Name.Local == "RDF" {
				d.inRoot = true
				if base, ok := findAttr(t, xmlNS, "base"); ok {
					d.base = resolveIRI(d.base, base)
				}
				continue
			}
			// Either a node element inside rdf:RDF, or a document whose
			// root is itself a node element.
			if _, err := d.nodeElement(t, ""); err != nil {
				return err
			}
			return nil
		case xml.EndElement:
			if d.inRoot && t.Name.Space == rdfNS && t.Name.Local == "RDF" {
				d.inRoot = false
			}
		}
	}
}

func findAttr(el xml.StartElement, space, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (d *rdfxmlDecoder) iri(value string) (IRI, error) {
	iri := resolveIRI(d.base, value)
	if err := validateIRI(iri, d.strict); err != nil {
		return IRI{}, d.parseErr(err)
	}
	return IRI{Value: iri}, nil
}

// nodeElement parses one node element and returns its subject. lang is the
// xml:lang in scope from the enclosing element.
func (d *rdfxmlDecoder) nodeElement(el xml.StartElement, lang string) (Term, error) {
	if l, ok := findAttr(el, xmlNS, "lang"); ok {
		lang = l
	}
	var subject Term
	switch {
	case hasAttrValue(el, rdfNS, "about"):
		about, _ := findAttr(el, rdfNS, "about")
		iri, err := d.iri(about)
		if err != nil {
			return nil, err
		}
		subject = iri
	case hasAttrValue(el, rdfNS, "ID"):
		id, _ := findAttr(el, rdfNS, "ID")
		iri, err := d.iri("#" + id)
		if err != nil {
			return nil, err
		}
		subject = iri
	case hasAttrValue(el, rdfNS, "nodeID"):
		id, _ := findAttr(el, rdfNS, "nodeID")
		subject = d.gen.document(id)
	default:
		subject = d.gen.fresh()
	}

	if el.Name.Space != rdfNS || el.Name.Local != "Description" {
		d.queue = append(d.queue, triple(subject, IRI{Value: rdfType}, IRI{Value: el.Name.Space + el.Name.Local}))
	}

	// Remaining attributes are property shorthands.
	for _, a := range el.Attr {
		if a.Name.Space == rdfNS || a.Name.Space == xmlNS || a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		if a.Name.Space == "" {
			continue
		}
		obj := Literal{Lexical: a.Value, Lang: lang}
		d.queue = append(d.queue, triple(subject, IRI{Value: a.Name.Space + a.Name.Local}, obj))
	}

	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, d.parseErr(fmt.Errorf("unterminated node element: %w", err))
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := d.propertyElement(subject, t, lang); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return subject, nil
		}
	}
}

func hasAttrValue(el xml.StartElement, space, local string) bool {
	_, ok := findAttr(el, space, local)
	return ok
}

// propertyElement parses one property element of subject.
func (d *rdfxmlDecoder) propertyElement(subject Term, el xml.StartElement, lang string) error {
	predicate := IRI{Value: el.Name.Space + el.Name.Local}
	if l, ok := findAttr(el, xmlNS, "lang"); ok {
		lang = l
	}

	if pt, ok := findAttr(el, rdfNS, "parseType"); ok {
		switch pt {
		case "Resource":
			node := d.gen.fresh()
			d.queue = append(d.queue, triple(subject, predicate, node))
			return d.propertyElements(node, el.Name, lang)
		default:
			return d.parseErr(fmt.Errorf("rdf:parseType=%q is not supported", pt))
		}
	}
	if res, ok := findAttr(el, rdfNS, "resource"); ok {
		obj, err := d.iri(res)
		if err != nil {
			return err
		}
		d.queue = append(d.queue, triple(subject, predicate, obj))
		return d.skipToEnd(el.Name)
	}
	if id, ok := findAttr(el, rdfNS, "nodeID"); ok {
		d.queue = append(d.queue, triple(subject, predicate, d.gen.document(id)))
		return d.skipToEnd(el.Name)
	}

	datatype, hasDatatype := findAttr(el, rdfNS, "datatype")

	var text strings.Builder
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return d.parseErr(fmt.Errorf("unterminated property element: %w", err))
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			// Nested node element: its subject is the object.
			obj, err := d.nodeElement(t, lang)
			if err != nil {
				return err
			}
			d.queue = append(d.queue, triple(subject, predicate, obj))
			return d.skipToEnd(el.Name)
		case xml.EndElement:
			var obj Literal
			if hasDatatype {
				dt, err := d.iri(datatype)
				if err != nil {
					return err
				}
				obj = Literal{Lexical: text.String(), Datatype: dt}
			} else {
				obj = Literal{Lexical: text.String(), Lang: lang}
			}
			d.queue = append(d.queue, triple(subject, predicate, obj))
			return nil
		}
	}
}

// propertyElements parses property elements up to the end of until, for
// rdf:parseType="Resource" blocks.
func (d *rdfxmlDecoder) propertyElements(subject Term, until xml.Name, lang string) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return d.parseErr(fmt.Errorf("unterminated parseType=Resource block: %w", err))
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := d.propertyElement(subject, t, lang); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name == until {
				return nil
			}
		}
	}
}

// skipToEnd consumes tokens until the end of name; only whitespace is
// allowed inside.
func (d *rdfxmlDecoder) skipToEnd(name xml.Name) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return d.parseErr(fmt.Errorf("unterminated element: %w", err))
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name == name {
				return nil
			}
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return d.parseErr(fmt.Errorf("unexpected text %q in empty property element", string(t)))
			}
		case xml.StartElement:
			return d.parseErr(fmt.Errorf("unexpected element <%s> in property element", t.Name.Local))
		}
	}
}
