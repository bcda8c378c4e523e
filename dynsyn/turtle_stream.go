package dynsyn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// maxLineBytes bounds a single input line.
	maxLineBytes = 1 << 20
	// maxStatementBytes bounds the accumulation of one statement.
	maxStatementBytes = 4 << 20
)

// scanState tracks the lexical context of the statement accumulator across
// lines, so terminator dots, comments and graph braces are only recognized
// outside strings, IRIs and bracketed groups.
type scanState struct {
	quote     rune // 0 when outside a string
	longQuote bool
	escaped   bool
	inIRI     bool
	depth     int // nesting of [ and (
}

// turtleDecoder streams Turtle or TriG. It accumulates input until a
// statement terminator, parses the accumulated text with turtleCursor, and
// queues the resulting triples. The decoder terminates on the first error:
// once Next returns a non-EOF error it keeps returning it.
type turtleDecoder struct {
	r      *bufio.Reader
	syntax Syntax
	trig   bool
	strict bool

	base     string
	prefixes map[string]string
	gen      *bnodeGen

	scan    scanState
	pending []rune
	queue   []statement

	inGraph      bool
	currentGraph *Term

	line int
	err  error
	eof  bool
}

func newTurtleDecoder(r io.Reader, cfg ParserConfig, trig bool) *turtleDecoder {
	syntax := SyntaxTurtle
	if trig {
		syntax = SyntaxTriG
	}
	return &turtleDecoder{
		r:        bufio.NewReader(r),
		syntax:   syntax,
		trig:     trig,
		strict:   cfg.Strict,
		base:     cfg.BaseIRI,
		prefixes: map[string]string{},
		gen:      newBnodeGen(),
	}
}

func (d *turtleDecoder) Next() (statement, error) {
	if d.err != nil {
		return statement{}, d.err
	}
	for len(d.queue) == 0 {
		if d.eof {
			return statement{}, io.EOF
		}
		if err := d.advance(); err != nil {
			d.err = err
			return statement{}, err
		}
	}
	st := d.queue[0]
	d.queue = d.queue[1:]
	return st, nil
}

func (d *turtleDecoder) Close() error {
	d.eof = true
	d.queue = nil
	return nil
}

func (d *turtleDecoder) parseErrf(stmt string, format string, args ...any) error {
	return &ParseError{
		Syntax:    d.syntax,
		Line:      d.line,
		Statement: stmt,
		Err:       fmt.Errorf(format, args...),
	}
}

func (d *turtleDecoder) wrapParseErr(stmt string, err error) error {
	return &ParseError{Syntax: d.syntax, Line: d.line, Statement: stmt, Err: err}
}

// advance reads one line and feeds it through the scanner.
func (d *turtleDecoder) advance() error {
	line, err := d.readLine()
	if err != nil && err != io.EOF {
		return err
	}
	atEOF := err == io.EOF && line == ""
	if atEOF {
		return d.finish()
	}
	d.line++
	if err := d.scanLine(line); err != nil {
		return err
	}
	return nil
}

func (d *turtleDecoder) readLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if len(line) > maxLineBytes {
		return "", d.parseErrf("", "line %d exceeds %d bytes", d.line+1, maxLineBytes)
	}
	line = strings.TrimRight(line, "\r\n")
	if err != nil && !errors.Is(err, io.EOF) {
		return "", &BackendError{Syntax: d.syntax, Err: err}
	}
	if errors.Is(err, io.EOF) {
		return line, io.EOF
	}
	return line, nil
}

func (d *turtleDecoder) finish() error {
	if d.scan.quote != 0 {
		return d.parseErrf(string(d.pending), "unterminated string literal at end of input")
	}
	if strings.TrimSpace(string(d.pending)) != "" {
		return d.parseErrf(string(d.pending), "unterminated statement at end of input")
	}
	if d.inGraph {
		return d.parseErrf("", "unterminated graph block at end of input")
	}
	d.eof = true
	return nil
}

func (d *turtleDecoder) pendingBlank() bool {
	return strings.TrimSpace(string(d.pending)) == ""
}

// scanLine advances the lexical state over one line of input, recognizing
// directives between statements, comment boundaries, statement terminators
// and, for TriG, graph block braces.
func (d *turtleDecoder) scanLine(line string) error {
	if d.scan.quote == 0 && d.pendingBlank() {
		handled, err := d.handleDirective(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		st := &d.scan

		if st.quote != 0 {
			d.pending = append(d.pending, r)
			switch {
			case st.escaped:
				st.escaped = false
			case r == '\\':
				st.escaped = true
			case r == st.quote && !st.longQuote:
				st.quote = 0
			case r == st.quote && st.longQuote:
				if i+2 < len(runes) &&
					runes[i+1] == st.quote && runes[i+2] == st.quote {
					d.pending = append(d.pending, runes[i+1], runes[i+2])
					i += 2
					st.quote = 0
					st.longQuote = false
				}
			}
			continue
		}
		if st.inIRI {
			d.pending = append(d.pending, r)
			if r == '>' {
				st.inIRI = false
			}
			continue
		}

		switch r {
		case '\\':
			// PN_LOCAL escape outside a string or IRI; the next rune is
			// literal and must not start a comment or terminate anything.
			d.pending = append(d.pending, r)
			if i+1 < len(runes) {
				d.pending = append(d.pending, runes[i+1])
				i++
			}
		case '#':
			// Comment to end of line.
			i = len(runes)
		case '<':
			st.inIRI = true
			d.pending = append(d.pending, r)
		case '"', '\'':
			st.quote = r
			d.pending = append(d.pending, r)
			if i+2 < len(runes) && runes[i+1] == r && runes[i+2] == r {
				st.longQuote = true
				d.pending = append(d.pending, runes[i+1], runes[i+2])
				i += 2
			}
		case '[', '(':
			st.depth++
			d.pending = append(d.pending, r)
		case ']', ')':
			st.depth--
			if st.depth < 0 {
				return d.parseErrf(string(d.pending), "unbalanced %q", r)
			}
			d.pending = append(d.pending, r)
		case '{':
			if st.depth > 0 {
				return d.parseErrf(string(d.pending), "unexpected '{'")
			}
			if !d.trig {
				return d.parseErrf(string(d.pending), "graph blocks are not allowed in Turtle")
			}
			if d.inGraph {
				return d.parseErrf(string(d.pending), "nested graph block")
			}
			if err := d.openGraph(strings.TrimSpace(string(d.pending))); err != nil {
				return err
			}
			d.pending = d.pending[:0]
		case '}':
			if !d.trig || !d.inGraph || st.depth > 0 {
				return d.parseErrf(string(d.pending), "unexpected '}'")
			}
			// The dot after the last statement in a block is optional.
			if !d.pendingBlank() {
				if err := d.emitPending(); err != nil {
					return err
				}
			}
			d.pending = d.pending[:0]
			d.inGraph = false
			d.currentGraph = nil
		case '.':
			if st.depth == 0 && terminatorDotAt(runes, i) {
				if err := d.emitPending(); err != nil {
					return err
				}
				d.pending = d.pending[:0]
			} else {
				d.pending = append(d.pending, r)
			}
		default:
			d.pending = append(d.pending, r)
		}
	}

	if d.scan.inIRI {
		return d.parseErrf(string(d.pending), "unterminated IRI at end of line")
	}
	if d.scan.quote != 0 && !d.scan.longQuote {
		return d.parseErrf(string(d.pending), "unterminated string literal at end of line")
	}
	if !d.pendingBlank() || d.scan.quote != 0 {
		d.pending = append(d.pending, '\n')
	}
	if len(d.pending) > maxStatementBytes {
		return d.parseErrf("", "statement exceeds %d bytes", maxStatementBytes)
	}
	return nil
}

// terminatorDotAt reports whether the dot at index i ends a statement rather
// than being part of a token. A terminator is followed by whitespace, a
// comment, a closing brace, or end of line.
func terminatorDotAt(runes []rune, i int) bool {
	if i+1 >= len(runes) {
		return true
	}
	switch runes[i+1] {
	case ' ', '\t', '#', '}':
		return true
	}
	return false
}

func (d *turtleDecoder) emitPending() error {
	text := string(d.pending)
	if strings.TrimSpace(text) == "" {
		return d.parseErrf("", "empty statement")
	}
	stmts, err := parseTurtleStatement(text, d.prefixes, d.base, d.strict, d.gen)
	if err != nil {
		return d.wrapParseErr(strings.TrimSpace(text), err)
	}
	if d.currentGraph != nil {
		for i := range stmts {
			g := *d.currentGraph
			stmts[i].Graph = &g
		}
	}
	d.queue = append(d.queue, stmts...)
	return nil
}

// openGraph starts a TriG graph block. label is the text before '{': empty
// for a default-graph block, otherwise an IRI, prefixed name or blank node,
// optionally preceded by the GRAPH keyword.
func (d *turtleDecoder) openGraph(label string) error {
	if rest, ok := cutKeyword(label, "GRAPH"); ok {
		label = strings.TrimSpace(rest)
		if label == "" {
			return d.parseErrf(label, "GRAPH keyword requires a graph name")
		}
	}
	d.inGraph = true
	if label == "" {
		d.currentGraph = nil
		return nil
	}
	c := &turtleCursor{
		runes:    []rune(label),
		prefixes: d.prefixes,
		base:     d.base,
		strict:   d.strict,
		gen:      d.gen,
	}
	term, err := c.parseSubject()
	if err != nil {
		return d.wrapParseErr(label, err)
	}
	c.ws()
	if !c.eof() {
		return d.parseErrf(label, "unexpected content before '{'")
	}
	if term.Kind() == TermLiteral {
		return d.parseErrf(label, "graph name must be an IRI or blank node")
	}
	d.currentGraph = &term
	return nil
}

func cutKeyword(s, kw string) (string, bool) {
	if len(s) < len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return s, false
	}
	rest := s[len(kw):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return s, false
	}
	return rest, true
}

// handleDirective recognizes @prefix/@base and SPARQL-style PREFIX/BASE
// lines between statements.
func (d *turtleDecoder) handleDirective(trimmed string) (bool, error) {
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "@prefix"):
		return true, d.parsePrefixDirective(strings.TrimSpace(trimmed[len("@prefix"):]), true)
	case strings.HasPrefix(lower, "@base"):
		return true, d.parseBaseDirective(strings.TrimSpace(trimmed[len("@base"):]), true)
	case hasDirectiveWord(lower, "prefix"):
		return true, d.parsePrefixDirective(strings.TrimSpace(trimmed[len("prefix"):]), false)
	case hasDirectiveWord(lower, "base"):
		return true, d.parseBaseDirective(strings.TrimSpace(trimmed[len("base"):]), false)
	}
	return false, nil
}

// hasDirectiveWord distinguishes the SPARQL directive keyword from a
// prefixed name that happens to start with the same letters.
func hasDirectiveWord(lower, word string) bool {
	if !strings.HasPrefix(lower, word) {
		return false
	}
	rest := lower[len(word):]
	return rest != "" && (rest[0] == ' ' || rest[0] == '\t')
}

func (d *turtleDecoder) parsePrefixDirective(rest string, dotted bool) error {
	if dotted {
		var ok bool
		rest, ok = strings.CutSuffix(strings.TrimSpace(rest), ".")
		if !ok {
			return d.parseErrf(rest, "@prefix directive must end with '.'")
		}
		rest = strings.TrimSpace(rest)
	}
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return d.parseErrf(rest, "prefix directive missing ':'")
	}
	name := strings.TrimSpace(rest[:colon])
	iriPart := strings.TrimSpace(rest[colon+1:])
	if !strings.HasPrefix(iriPart, "<") || !strings.HasSuffix(iriPart, ">") {
		return d.parseErrf(rest, "prefix directive requires an IRI in angle brackets")
	}
	iri, err := decodeIRIEscapes(iriPart[1 : len(iriPart)-1])
	if err != nil {
		return d.wrapParseErr(rest, err)
	}
	d.prefixes[name] = resolveIRI(d.base, iri)
	return nil
}

func (d *turtleDecoder) parseBaseDirective(rest string, dotted bool) error {
	if dotted {
		var ok bool
		rest, ok = strings.CutSuffix(strings.TrimSpace(rest), ".")
		if !ok {
			return d.parseErrf(rest, "@base directive must end with '.'")
		}
		rest = strings.TrimSpace(rest)
	}
	if !strings.HasPrefix(rest, "<") || !strings.HasSuffix(rest, ">") {
		return d.parseErrf(rest, "base directive requires an IRI in angle brackets")
	}
	iri, err := decodeIRIEscapes(rest[1 : len(rest)-1])
	if err != nil {
		return d.wrapParseErr(rest, err)
	}
	d.base = resolveIRI(d.base, iri)
	return nil
}
