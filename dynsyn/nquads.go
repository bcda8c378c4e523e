package dynsyn

import (
	"errors"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// nquadsDecoder adapts the cayley N-Quads reader to the statement contract.
// The reader offers no recovery point after a bad line, so the policy is
// terminate: the first *ParseError is latched and returned from then on.
type nquadsDecoder struct {
	r      *nquads.Reader
	strict bool
	err    error
}

// The reader runs in raw mode so typed literals keep their exact lexical
// form instead of being normalized through native values.
func newNQuadsDecoder(r io.Reader, strict bool) *nquadsDecoder {
	return &nquadsDecoder{r: nquads.NewReader(r, true), strict: strict}
}

func (d *nquadsDecoder) Next() (statement, error) {
	if d.err != nil {
		return statement{}, d.err
	}
	q, err := d.r.ReadQuad()
	if err == io.EOF {
		d.err = io.EOF
		return statement{}, io.EOF
	}
	if err != nil {
		d.err = &ParseError{Syntax: SyntaxNQuads, Err: err}
		return statement{}, d.err
	}
	st, cerr := statementFromQuad(q, d.strict)
	if cerr != nil {
		d.err = &ParseError{Syntax: SyntaxNQuads, Err: cerr}
		return statement{}, d.err
	}
	return st, nil
}

func (d *nquadsDecoder) Close() error {
	if d.err == nil {
		d.err = io.EOF
	}
	return nil
}

func statementFromQuad(q quad.Quad, strict bool) (statement, error) {
	s, err := termFromQuadValue(q.Subject, strict)
	if err != nil {
		return statement{}, err
	}
	p, err := termFromQuadValue(q.Predicate, strict)
	if err != nil {
		return statement{}, err
	}
	o, err := termFromQuadValue(q.Object, strict)
	if err != nil {
		return statement{}, err
	}
	st := triple(s, p, o)
	if q.Label != nil {
		g, err := termFromQuadValue(q.Label, strict)
		if err != nil {
			return statement{}, err
		}
		if g.Kind() == TermLiteral {
			return statement{}, errors.New("graph label must be an IRI or blank node")
		}
		st.Graph = &g
	}
	return st, nil
}

func termFromQuadValue(v quad.Value, strict bool) (Term, error) {
	switch v := v.(type) {
	case quad.IRI:
		if err := validateIRI(string(v), strict); err != nil {
			return nil, err
		}
		return IRI{Value: string(v)}, nil
	case quad.BNode:
		return BlankNode{ID: string(v)}, nil
	case quad.String:
		return Literal{Lexical: string(v)}, nil
	case quad.LangString:
		if strict && !isValidLangTag(v.Lang) {
			return nil, fmt.Errorf("invalid language tag %q", v.Lang)
		}
		return Literal{Lexical: string(v.Value), Lang: v.Lang}, nil
	case quad.TypedString:
		if err := validateIRI(string(v.Type), strict); err != nil {
			return nil, err
		}
		return Literal{Lexical: string(v.Value), Datatype: IRI{Value: string(v.Type)}}, nil
	case nil:
		return nil, errors.New("missing term")
	default:
		return nil, fmt.Errorf("unsupported term %T", v)
	}
}

func quadValueFromTerm(t Term) (quad.Value, error) {
	switch t := t.(type) {
	case IRI:
		return quad.IRI(t.Value), nil
	case BlankNode:
		return quad.BNode(t.ID), nil
	case Literal:
		if t.Lang != "" {
			return quad.LangString{Value: quad.String(t.Lexical), Lang: t.Lang}, nil
		}
		if t.Datatype.Value != "" && t.Datatype.Value != xsdString {
			return quad.TypedString{Value: quad.String(t.Lexical), Type: quad.IRI(t.Datatype.Value)}, nil
		}
		return quad.String(t.Lexical), nil
	}
	return nil, fmt.Errorf("unsupported term %v", t)
}

// nquadsEncoder adapts the cayley N-Quads writer.
type nquadsEncoder struct {
	w      *nquads.Writer
	closed bool
}

func newNQuadsEncoder(w io.Writer) *nquadsEncoder {
	return &nquadsEncoder{w: nquads.NewWriter(w)}
}

func (e *nquadsEncoder) Write(st statement) error {
	if e.closed {
		return ErrSerializerClosed
	}
	s, err := quadValueFromTerm(st.Subject)
	if err != nil {
		return &SerializeError{Syntax: SyntaxNQuads, Err: err}
	}
	p, err := quadValueFromTerm(st.Predicate)
	if err != nil {
		return &SerializeError{Syntax: SyntaxNQuads, Err: err}
	}
	o, err := quadValueFromTerm(st.Object)
	if err != nil {
		return &SerializeError{Syntax: SyntaxNQuads, Err: err}
	}
	q := quad.Quad{Subject: s, Predicate: p, Object: o}
	if st.Graph != nil {
		g, err := quadValueFromTerm(*st.Graph)
		if err != nil {
			return &SerializeError{Syntax: SyntaxNQuads, Err: err}
		}
		q.Label = g
	}
	if err := e.w.WriteQuad(q); err != nil {
		return &SerializeError{Syntax: SyntaxNQuads, Err: err}
	}
	return nil
}

func (e *nquadsEncoder) Flush() error {
	if e.closed {
		return ErrSerializerClosed
	}
	return nil
}

func (e *nquadsEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.w.Close(); err != nil {
		return &SerializeError{Syntax: SyntaxNQuads, Err: err}
	}
	return nil
}
