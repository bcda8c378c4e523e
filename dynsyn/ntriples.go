package dynsyn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ntriplesDecoder streams N-Triples line by line. Its recovery policy is
// skip-and-report: a malformed line yields one *ParseError and the decoder
// continues with the next line, so callers can collect errors while keeping
// every well-formed statement.
type ntriplesDecoder struct {
	r      *bufio.Reader
	strict bool
	line   int
	eof    bool
	fatal  error
}

func newNTriplesDecoder(r io.Reader, strict bool) *ntriplesDecoder {
	return &ntriplesDecoder{r: bufio.NewReader(r), strict: strict}
}

func (d *ntriplesDecoder) Next() (statement, error) {
	if d.fatal != nil {
		return statement{}, d.fatal
	}
	for {
		if d.eof {
			return statement{}, io.EOF
		}
		line, err := d.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			d.fatal = &BackendError{Syntax: SyntaxNTriples, Err: err}
			return statement{}, d.fatal
		}
		if errors.Is(err, io.EOF) {
			d.eof = true
		}
		d.line++
		if len(line) > maxLineBytes {
			// Oversized lines cannot be skipped reliably.
			d.fatal = &ParseError{
				Syntax: SyntaxNTriples,
				Line:   d.line,
				Err:    fmt.Errorf("line exceeds %d bytes", maxLineBytes),
			}
			return statement{}, d.fatal
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		st, graph, perr := parseNTLine(trimmed, d.strict)
		if perr != nil {
			return statement{}, &ParseError{
				Syntax:    SyntaxNTriples,
				Line:      d.line,
				Statement: trimmed,
				Err:       perr,
			}
		}
		if graph != nil {
			return statement{}, &ParseError{
				Syntax:    SyntaxNTriples,
				Line:      d.line,
				Statement: trimmed,
				Err:       errors.New("graph label is not allowed in N-Triples"),
			}
		}
		return st, nil
	}
}

func (d *ntriplesDecoder) Close() error {
	d.eof = true
	return nil
}

// parseNTLine parses one N-Triples or N-Quads line (comment and surrounding
// whitespace already stripped). The fourth term, when present, is returned
// separately so N-Triples can reject it.
func parseNTLine(line string, strict bool) (statement, *Term, error) {
	c := &ntCursor{runes: []rune(line), strict: strict}
	subject, err := c.term()
	if err != nil {
		return statement{}, nil, err
	}
	if subject.Kind() == TermLiteral {
		return statement{}, nil, errors.New("literal cannot be a subject")
	}
	predicate, err := c.term()
	if err != nil {
		return statement{}, nil, err
	}
	if predicate.Kind() != TermIRI {
		return statement{}, nil, errors.New("predicate must be an IRI")
	}
	object, err := c.term()
	if err != nil {
		return statement{}, nil, err
	}
	st := triple(subject, predicate, object)
	c.ws()
	if c.peek() != '.' {
		// Maybe a graph label.
		graph, err := c.term()
		if err != nil {
			return statement{}, nil, err
		}
		if graph.Kind() == TermLiteral {
			return statement{}, nil, errors.New("graph label must be an IRI or blank node")
		}
		st.Graph = &graph
		c.ws()
	}
	if c.peek() != '.' {
		return statement{}, nil, errors.New("statement must end with '.'")
	}
	c.pos++
	c.ws()
	if !c.eof() {
		return statement{}, nil, fmt.Errorf("unexpected content after '.': %q", string(c.runes[c.pos:]))
	}
	return st, st.Graph, nil
}

type ntCursor struct {
	runes  []rune
	pos    int
	strict bool
}

func (c *ntCursor) eof() bool { return c.pos >= len(c.runes) }

func (c *ntCursor) peek() rune {
	if c.eof() {
		return 0
	}
	return c.runes[c.pos]
}

func (c *ntCursor) ws() {
	for !c.eof() && (c.runes[c.pos] == ' ' || c.runes[c.pos] == '\t') {
		c.pos++
	}
}

func (c *ntCursor) term() (Term, error) {
	c.ws()
	switch c.peek() {
	case '<':
		return c.iriRef()
	case '_':
		return c.blankNode()
	case '"':
		return c.literal()
	case 0:
		return nil, errors.New("unexpected end of line")
	default:
		return nil, fmt.Errorf("unexpected character %q", c.peek())
	}
}

func (c *ntCursor) iriRef() (Term, error) {
	c.pos++
	start := c.pos
	for !c.eof() && c.runes[c.pos] != '>' {
		c.pos++
	}
	if c.eof() {
		return nil, errors.New("unterminated IRI")
	}
	raw := string(c.runes[start:c.pos])
	c.pos++
	iri, err := decodeIRIEscapes(raw)
	if err != nil {
		return nil, err
	}
	if err := validateIRI(iri, c.strict); err != nil {
		return nil, err
	}
	return IRI{Value: iri}, nil
}

func (c *ntCursor) blankNode() (Term, error) {
	if c.pos+1 >= len(c.runes) || c.runes[c.pos+1] != ':' {
		return nil, errors.New("expected ':' after '_'")
	}
	c.pos += 2
	start := c.pos
	for !c.eof() && isBnodeLabelRune(c.runes[c.pos]) {
		c.pos++
	}
	label := strings.TrimRight(string(c.runes[start:c.pos]), ".")
	c.pos -= (c.pos - start) - len([]rune(label))
	if label == "" {
		return nil, errors.New("empty blank node label")
	}
	return BlankNode{ID: label}, nil
}

func (c *ntCursor) literal() (Term, error) {
	c.pos++
	start := c.pos
	for {
		if c.eof() {
			return nil, errors.New("unterminated literal")
		}
		r := c.runes[c.pos]
		if r == '\\' {
			c.pos += 2
			continue
		}
		if r == '"' {
			break
		}
		c.pos++
	}
	raw := string(c.runes[start:c.pos])
	c.pos++
	lexical, err := decodeEscapes(raw)
	if err != nil {
		return nil, err
	}
	switch c.peek() {
	case '@':
		c.pos++
		tagStart := c.pos
		for !c.eof() && isLangRune(c.runes[c.pos]) {
			c.pos++
		}
		tag := string(c.runes[tagStart:c.pos])
		if !isValidLangTag(tag) {
			return nil, fmt.Errorf("invalid language tag %q", tag)
		}
		return Literal{Lexical: lexical, Lang: tag}, nil
	case '^':
		if c.pos+1 >= len(c.runes) || c.runes[c.pos+1] != '^' {
			return nil, errors.New("expected '^^' before datatype")
		}
		c.pos += 2
		if c.peek() != '<' {
			return nil, errors.New("datatype must be an IRI reference")
		}
		dt, err := c.iriRef()
		if err != nil {
			return nil, err
		}
		return Literal{Lexical: lexical, Datatype: dt.(IRI)}, nil
	}
	return Literal{Lexical: lexical}, nil
}

// ntriplesEncoder writes one statement per line. It is shared with the
// JSON-LD backend, which pivots through the same line format.
type ntriplesEncoder struct {
	w      *bufio.Writer
	closed bool
}

func newNTriplesEncoder(w io.Writer) *ntriplesEncoder {
	return &ntriplesEncoder{w: bufio.NewWriter(w)}
}

func (e *ntriplesEncoder) Write(st statement) error {
	if e.closed {
		return ErrSerializerClosed
	}
	if st.Graph != nil {
		return &SerializeError{
			Syntax: SyntaxNTriples,
			Err:    errors.New("named graph in N-Triples output"),
		}
	}
	if _, err := e.w.WriteString(renderNTStatement(st)); err != nil {
		return &SerializeError{Syntax: SyntaxNTriples, Err: err}
	}
	return nil
}

func (e *ntriplesEncoder) Flush() error {
	if e.closed {
		return ErrSerializerClosed
	}
	if err := e.w.Flush(); err != nil {
		return &SerializeError{Syntax: SyntaxNTriples, Err: err}
	}
	return nil
}

func (e *ntriplesEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.w.Flush(); err != nil {
		return &SerializeError{Syntax: SyntaxNTriples, Err: err}
	}
	return nil
}

// renderNTStatement renders a statement as one N-Triples or N-Quads line,
// newline included.
func renderNTStatement(st statement) string {
	var b strings.Builder
	b.WriteString(renderNTTerm(st.Subject))
	b.WriteByte(' ')
	b.WriteString(renderNTTerm(st.Predicate))
	b.WriteByte(' ')
	b.WriteString(renderNTTerm(st.Object))
	if st.Graph != nil {
		b.WriteByte(' ')
		b.WriteString(renderNTTerm(*st.Graph))
	}
	b.WriteString(" .\n")
	return b.String()
}

func renderNTTerm(t Term) string {
	switch t := t.(type) {
	case IRI:
		return "<" + t.Value + ">"
	case BlankNode:
		return "_:" + t.ID
	case Literal:
		s := `"` + escapeLiteral(t.Lexical) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype.Value != "" && t.Datatype.Value != xsdString {
			return s + "^^<" + t.Datatype.Value + ">"
		}
		return s
	}
	return ""
}
