package dynsyn

import "fmt"

// Statement is one parsed or to-be-serialized RDF statement over the
// caller's term representation T. A nil Graph means the default graph, so a
// triple and a default-graph quad are the same value.
type Statement[T any] struct {
	Subject   T
	Predicate T
	Object    T
	Graph     *T
}

// TermFactory builds terms in the caller's representation T. Parsers call it
// for every term they produce.
type TermFactory[T any] interface {
	IRI(value string) T
	BlankNode(id string) T
	// Literal builds a literal. datatype and lang may both be empty
	// (xsd:string); they are never both non-empty.
	Literal(lexical, datatype, lang string) T
}

// TermView reads terms in the caller's representation T. Serializers call it
// for every term they consume. Only the accessor matching Kind's result is
// consulted for a given term.
type TermView[T any] interface {
	Kind(term T) TermKind
	IRIValue(term T) string
	BlankNodeID(term T) string
	LiteralParts(term T) (lexical, datatype, lang string)
}

// StatementSource is a pull sequence of statements ending in io.EOF. The
// Statements type returned by Parser.Parse satisfies it, so parser output
// can feed Serializer.SerializeGraph and SerializeDataset directly.
type StatementSource[T any] interface {
	Next() (Statement[T], error)
}

// Terms adapts the package's own Term model to the generic interfaces. It is
// both a TermFactory[Term] and a TermView[Term].
type Terms struct{}

func (Terms) IRI(value string) Term    { return IRI{Value: value} }
func (Terms) BlankNode(id string) Term { return BlankNode{ID: id} }

func (Terms) Literal(lexical, datatype, lang string) Term {
	l := Literal{Lexical: lexical, Lang: lang}
	if datatype != "" && lang == "" {
		l.Datatype = IRI{Value: datatype}
	}
	return l
}

func (Terms) Kind(t Term) TermKind { return t.Kind() }

func (Terms) IRIValue(t Term) string {
	if iri, ok := t.(IRI); ok {
		return iri.Value
	}
	return ""
}

func (Terms) BlankNodeID(t Term) string {
	if b, ok := t.(BlankNode); ok {
		return b.ID
	}
	return ""
}

func (Terms) LiteralParts(t Term) (string, string, string) {
	if l, ok := t.(Literal); ok {
		return l.Lexical, l.Datatype.Value, l.Lang
	}
	return "", "", ""
}

// statement is the internal representation every backend produces and
// consumes; adapters convert to and from the caller's T exactly once at the
// API boundary.
type statement = Statement[Term]

func triple(s, p, o Term) statement {
	return statement{Subject: s, Predicate: p, Object: o}
}

func adaptTerm[T any](factory TermFactory[T], t Term) T {
	switch t := t.(type) {
	case IRI:
		return factory.IRI(t.Value)
	case BlankNode:
		return factory.BlankNode(t.ID)
	case Literal:
		return factory.Literal(t.Lexical, t.Datatype.Value, t.Lang)
	}
	var zero T
	return zero
}

func adaptStatement[T any](factory TermFactory[T], st statement) Statement[T] {
	out := Statement[T]{
		Subject:   adaptTerm(factory, st.Subject),
		Predicate: adaptTerm(factory, st.Predicate),
		Object:    adaptTerm(factory, st.Object),
	}
	if st.Graph != nil {
		g := adaptTerm(factory, *st.Graph)
		out.Graph = &g
	}
	return out
}

func viewTerm[T any](view TermView[T], t T) (Term, error) {
	switch view.Kind(t) {
	case TermIRI:
		return IRI{Value: view.IRIValue(t)}, nil
	case TermBlankNode:
		return BlankNode{ID: view.BlankNodeID(t)}, nil
	case TermLiteral:
		lexical, datatype, lang := view.LiteralParts(t)
		return Terms{}.Literal(lexical, datatype, lang), nil
	}
	return nil, fmt.Errorf("unknown term kind %v", view.Kind(t))
}

func viewStatement[T any](view TermView[T], st Statement[T]) (statement, error) {
	s, err := viewTerm(view, st.Subject)
	if err != nil {
		return statement{}, err
	}
	p, err := viewTerm(view, st.Predicate)
	if err != nil {
		return statement{}, err
	}
	o, err := viewTerm(view, st.Object)
	if err != nil {
		return statement{}, err
	}
	out := statement{Subject: s, Predicate: p, Object: o}
	if st.Graph != nil {
		g, err := viewTerm(view, *st.Graph)
		if err != nil {
			return statement{}, err
		}
		out.Graph = &g
	}
	return out, nil
}
