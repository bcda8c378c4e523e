package dynsyn

import "io"

// ParserConfig configures parser construction. The zero value is valid for
// every syntax. Options a backend cannot honor are rejected at construction
// with an UnsupportedConfigError, never silently ignored.
type ParserConfig struct {
	// BaseIRI resolves relative IRI references in syntaxes that allow them
	// (Turtle, TriG, RDF/XML, JSON-LD). A base directive inside the document
	// takes precedence from the point it appears.
	BaseIRI string

	// Strict enables extra lexical validation (IRIs, language tags) where
	// the backend supports it. Lenient mode still rejects malformed
	// documents; it only skips the finer checks.
	Strict bool

	// DefaultGraphIRI, for quad-capable syntaxes, reports statements parsed
	// into the default graph under this graph name instead of nil.
	DefaultGraphIRI string

	// DocumentLoader fetches remote JSON-LD contexts. JSON-LD only; when nil
	// remote contexts are not resolved.
	DocumentLoader DocumentLoader
}

// statementDecoder is the uniform backend contract. Next returns io.EOF
// after the last statement; malformed content yields a *ParseError. Whether
// a decoder can continue past a *ParseError is a per-backend policy,
// documented on its constructor.
type statementDecoder interface {
	Next() (statement, error)
	Close() error
}

// Parser builds statement sequences for one syntax. It is immutable and may
// be reused for any number of documents.
type Parser[T any] struct {
	syntax  Syntax
	factory TermFactory[T]
	config  ParserConfig
}

// NewParser returns a parser for the given syntax tag. factory converts
// parsed terms into the caller's representation. config may be nil.
func NewParser[T any](syntax Syntax, factory TermFactory[T], config *ParserConfig) (*Parser[T], error) {
	if !syntax.isKnown() {
		return nil, ErrUnsupportedSyntax
	}
	var cfg ParserConfig
	if config != nil {
		cfg = *config
	}
	if err := validateParserConfig(syntax, cfg); err != nil {
		return nil, err
	}
	return &Parser[T]{syntax: syntax, factory: factory, config: cfg}, nil
}

func validateParserConfig(syntax Syntax, cfg ParserConfig) error {
	if cfg.BaseIRI != "" {
		switch syntax {
		case SyntaxNTriples, SyntaxNQuads:
			return &UnsupportedConfigError{
				Syntax: syntax,
				Option: "BaseIRI",
				Reason: "the syntax admits absolute IRIs only",
			}
		}
	}
	if cfg.Strict && syntax == SyntaxJSONLD {
		return &UnsupportedConfigError{
			Syntax: syntax,
			Option: "Strict",
			Reason: "the JSON-LD backend has no lexical strictness switch",
		}
	}
	if cfg.DefaultGraphIRI != "" && !syntax.SupportsQuads() {
		return &UnsupportedConfigError{
			Syntax: syntax,
			Option: "DefaultGraphIRI",
			Reason: "the syntax cannot express named graphs",
		}
	}
	if cfg.DocumentLoader != nil && syntax != SyntaxJSONLD {
		return &UnsupportedConfigError{
			Syntax: syntax,
			Option: "DocumentLoader",
			Reason: "only JSON-LD resolves remote contexts",
		}
	}
	return nil
}

// Syntax returns the tag this parser was built for.
func (p *Parser[T]) Syntax() Syntax { return p.syntax }

// Parse returns the statement sequence of one document. The sequence is
// lazy: nothing is read from r until the first Next. It is not restartable;
// parse a second document by calling Parse again.
func (p *Parser[T]) Parse(r io.Reader) *Statements[T] {
	seq := &Statements[T]{factory: p.factory}
	if p.config.DefaultGraphIRI != "" {
		g := Term(IRI{Value: p.config.DefaultGraphIRI})
		seq.defaultGraph = &g
	}
	dec, err := newStatementDecoder(p.syntax, r, p.config)
	if err != nil {
		seq.fatal = &BackendError{Syntax: p.syntax, Err: err}
		return seq
	}
	seq.dec = dec
	return seq
}

func newStatementDecoder(syntax Syntax, r io.Reader, cfg ParserConfig) (statementDecoder, error) {
	switch syntax {
	case SyntaxTurtle:
		return newTurtleDecoder(r, cfg, false), nil
	case SyntaxTriG:
		return newTurtleDecoder(r, cfg, true), nil
	case SyntaxNTriples:
		return newNTriplesDecoder(r, cfg.Strict), nil
	case SyntaxNQuads:
		return newNQuadsDecoder(r, cfg.Strict), nil
	case SyntaxRDFXML:
		return newRDFXMLDecoder(r, cfg), nil
	case SyntaxJSONLD:
		return newJSONLDDecoder(r, cfg), nil
	}
	return nil, ErrUnsupportedSyntax
}

// Statements is the pull sequence produced by Parser.Parse. Next returns
// io.EOF after the last statement. A Statements value is single-threaded.
type Statements[T any] struct {
	dec          statementDecoder
	factory      TermFactory[T]
	defaultGraph *Term
	fatal        error
	closed       bool
}

// Next returns the next statement. Whether parsing can continue after a
// non-EOF error depends on the syntax backend's recovery policy; terminating
// backends keep returning the same error.
func (s *Statements[T]) Next() (Statement[T], error) {
	var zero Statement[T]
	if s.fatal != nil {
		return zero, s.fatal
	}
	if s.closed {
		return zero, io.EOF
	}
	st, err := s.dec.Next()
	if err != nil {
		return zero, err
	}
	if st.Graph == nil && s.defaultGraph != nil {
		g := *s.defaultGraph
		st.Graph = &g
	}
	return adaptStatement(s.factory, st), nil
}

// Close releases the sequence. Further Next calls return io.EOF.
func (s *Statements[T]) Close() error {
	if s.closed || s.dec == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.dec.Close()
}
