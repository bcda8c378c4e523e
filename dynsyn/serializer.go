package dynsyn

import (
	"bytes"
	"errors"
	"io"
)

// SerializerConfig configures serializer construction. The zero value is
// valid for every syntax. As with parsers, options a backend cannot honor
// are rejected at construction.
type SerializerConfig struct {
	// Pretty enables indented output where the syntax has a notion of it.
	Pretty bool

	// Prefixes maps prefix labels to namespace IRIs for syntaxes with
	// namespace abbreviation (Turtle, TriG, RDF/XML).
	Prefixes map[string]string

	// BaseIRI emits a base directive and shortens IRIs under it. Turtle and
	// TriG only.
	BaseIRI string
}

// statementEncoder is the uniform backend contract on the write side.
type statementEncoder interface {
	Write(st statement) error
	Flush() error
	Close() error
}

// Serializer writes statements in one syntax to one destination. Unlike
// Parser it is bound to its writer; build a new one per document.
type Serializer[T any] struct {
	syntax Syntax
	view   TermView[T]
	enc    statementEncoder
	buf    *bytes.Buffer
	closed bool
}

// NewSerializer returns a serializer writing to w. view reads the caller's
// term representation. config may be nil.
func NewSerializer[T any](syntax Syntax, view TermView[T], w io.Writer, config *SerializerConfig) (*Serializer[T], error) {
	if !syntax.isKnown() {
		return nil, ErrUnsupportedSyntax
	}
	var cfg SerializerConfig
	if config != nil {
		cfg = *config
	}
	if err := validateSerializerConfig(syntax, cfg); err != nil {
		return nil, err
	}
	enc, err := newStatementEncoder(syntax, w, cfg)
	if err != nil {
		return nil, &BackendError{Syntax: syntax, Err: err}
	}
	return &Serializer[T]{syntax: syntax, view: view, enc: enc}, nil
}

// NewStringifier returns a serializer accumulating into memory; call String
// after Close to obtain the document.
func NewStringifier[T any](syntax Syntax, view TermView[T], config *SerializerConfig) (*Serializer[T], error) {
	buf := &bytes.Buffer{}
	s, err := NewSerializer(syntax, view, buf, config)
	if err != nil {
		return nil, err
	}
	s.buf = buf
	return s, nil
}

func validateSerializerConfig(syntax Syntax, cfg SerializerConfig) error {
	if len(cfg.Prefixes) > 0 {
		switch syntax {
		case SyntaxNTriples, SyntaxNQuads, SyntaxJSONLD:
			return &UnsupportedConfigError{
				Syntax: syntax,
				Option: "Prefixes",
				Reason: "the syntax has no namespace abbreviation",
			}
		}
	}
	if cfg.Pretty {
		switch syntax {
		case SyntaxNTriples, SyntaxNQuads:
			return &UnsupportedConfigError{
				Syntax: syntax,
				Option: "Pretty",
				Reason: "the syntax is line-oriented",
			}
		}
	}
	if cfg.BaseIRI != "" {
		switch syntax {
		case SyntaxTurtle, SyntaxTriG:
		default:
			return &UnsupportedConfigError{
				Syntax: syntax,
				Option: "BaseIRI",
				Reason: "only Turtle and TriG emit base directives",
			}
		}
	}
	return nil
}

func newStatementEncoder(syntax Syntax, w io.Writer, cfg SerializerConfig) (statementEncoder, error) {
	switch syntax {
	case SyntaxTurtle:
		return newTurtleEncoder(w, cfg, false), nil
	case SyntaxTriG:
		return newTurtleEncoder(w, cfg, true), nil
	case SyntaxNTriples:
		return newNTriplesEncoder(w), nil
	case SyntaxNQuads:
		return newNQuadsEncoder(w), nil
	case SyntaxRDFXML:
		return newRDFXMLEncoder(w, cfg), nil
	case SyntaxJSONLD:
		return newJSONLDEncoder(w, cfg), nil
	}
	return nil, ErrUnsupportedSyntax
}

// Syntax returns the tag this serializer was built for.
func (s *Serializer[T]) Syntax() Syntax { return s.syntax }

// Write serializes one statement. A statement with a non-nil Graph written
// through a triples-only syntax fails with a *SerializeError at this call;
// output already written stays valid.
func (s *Serializer[T]) Write(st Statement[T]) error {
	if s.closed {
		return ErrSerializerClosed
	}
	if st.Graph != nil && !s.syntax.SupportsQuads() {
		return &SerializeError{
			Syntax: s.syntax,
			Err:    errors.New("named graph cannot be expressed in a triples-only syntax"),
		}
	}
	internal, err := viewStatement(s.view, st)
	if err != nil {
		return &SerializeError{Syntax: s.syntax, Err: err}
	}
	return s.enc.Write(internal)
}

// SerializeGraph writes every statement of src until io.EOF. src must be a
// graph: any statement carrying a graph name fails regardless of syntax.
func (s *Serializer[T]) SerializeGraph(src StatementSource[T]) error {
	for {
		st, err := src.Next()
		if err == io.EOF {
			return s.Flush()
		}
		if err != nil {
			return err
		}
		if st.Graph != nil {
			return &SerializeError{
				Syntax: s.syntax,
				Err:    errors.New("graph serialization received a named-graph statement"),
			}
		}
		if err := s.Write(st); err != nil {
			return err
		}
	}
}

// SerializeDataset writes every statement of src until io.EOF, graph names
// included. On a triples-only syntax any named-graph statement fails.
func (s *Serializer[T]) SerializeDataset(src StatementSource[T]) error {
	for {
		st, err := src.Next()
		if err == io.EOF {
			return s.Flush()
		}
		if err != nil {
			return err
		}
		if err := s.Write(st); err != nil {
			return err
		}
	}
}

// Flush forces buffered output to the writer. The JSON-LD backend cannot
// emit before Close and treats Flush as a no-op.
func (s *Serializer[T]) Flush() error {
	if s.closed {
		return ErrSerializerClosed
	}
	return s.enc.Flush()
}

// Close completes the document. Close is idempotent.
func (s *Serializer[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.enc.Close()
}

// String returns the accumulated document of a stringifier, valid after
// Close. For writer-backed serializers it returns "".
func (s *Serializer[T]) String() string {
	if s.buf == nil {
		return ""
	}
	return s.buf.String()
}
