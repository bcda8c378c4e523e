package dynsyn

import (
	"fmt"
	"strings"
)

// turtleCursor parses one complete Turtle statement (directives and the
// terminating dot already handled by the streaming decoder) into the triples
// it denotes. Blank node property lists and collections expand into extra
// triples appended to out.
type turtleCursor struct {
	runes    []rune
	pos      int
	prefixes map[string]string
	base     string
	strict   bool
	gen      *bnodeGen
	out      []statement
}

// bnodeGen issues blank node labels unique within one parse. Labels read
// from the document are recorded so generated labels never collide with
// them.
type bnodeGen struct {
	n    int
	seen map[string]bool
}

func newBnodeGen() *bnodeGen {
	return &bnodeGen{seen: map[string]bool{}}
}

func (g *bnodeGen) fresh() BlankNode {
	for {
		g.n++
		id := fmt.Sprintf("gb%d", g.n)
		if !g.seen[id] {
			g.seen[id] = true
			return BlankNode{ID: id}
		}
	}
}

func (g *bnodeGen) document(id string) BlankNode {
	g.seen[id] = true
	return BlankNode{ID: id}
}

// parseTurtleStatement parses the text of one statement and returns the
// triples it expands to, in emission order.
func parseTurtleStatement(text string, prefixes map[string]string, base string, strict bool, gen *bnodeGen) ([]statement, error) {
	c := &turtleCursor{
		runes:    []rune(text),
		prefixes: prefixes,
		base:     base,
		strict:   strict,
		gen:      gen,
	}
	if err := c.parseStatement(); err != nil {
		return nil, err
	}
	return c.out, nil
}

func (c *turtleCursor) eof() bool { return c.pos >= len(c.runes) }

func (c *turtleCursor) peek() rune {
	if c.eof() {
		return 0
	}
	return c.runes[c.pos]
}

func (c *turtleCursor) ws() {
	for !c.eof() {
		switch c.runes[c.pos] {
		case ' ', '\t', '\n', '\r':
			c.pos++
		default:
			return
		}
	}
}

func (c *turtleCursor) errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func (c *turtleCursor) emit(s, p, o Term) {
	c.out = append(c.out, triple(s, p, o))
}

func (c *turtleCursor) parseStatement() error {
	c.ws()
	if c.eof() {
		return nil
	}
	subject, err := c.parseSubject()
	if err != nil {
		return err
	}
	c.ws()
	// A bare property list like [ :p :o ] may stand alone as a statement.
	if c.eof() && len(c.out) > 0 && subject.Kind() == TermBlankNode {
		return nil
	}
	if err := c.parsePredicateObjectList(subject, false); err != nil {
		return err
	}
	c.ws()
	if !c.eof() {
		return c.errf("unexpected trailing content %q", string(c.runes[c.pos:]))
	}
	return nil
}

func (c *turtleCursor) parseSubject() (Term, error) {
	switch c.peek() {
	case '<':
		return c.parseIRIRef()
	case '_':
		return c.parseBlankNodeLabel()
	case '[':
		return c.parsePropertyList()
	case '(':
		return c.parseCollection()
	case '"', '\'':
		return nil, c.errf("literal cannot be a subject")
	default:
		return c.parsePrefixedName()
	}
}

func (c *turtleCursor) parsePredicate() (Term, error) {
	if c.peek() == 'a' && c.delimitedAt(c.pos+1) {
		c.pos++
		return IRI{Value: rdfType}, nil
	}
	var t Term
	var err error
	switch c.peek() {
	case '<':
		t, err = c.parseIRIRef()
	case '_':
		return nil, c.errf("blank node cannot be a predicate")
	case '"', '\'':
		return nil, c.errf("literal cannot be a predicate")
	default:
		t, err = c.parsePrefixedName()
	}
	if err != nil {
		return nil, err
	}
	if t.Kind() != TermIRI {
		return nil, c.errf("predicate must be an IRI, got %s", t)
	}
	return t, nil
}

func (c *turtleCursor) parseObject() (Term, error) {
	switch r := c.peek(); {
	case r == '<':
		return c.parseIRIRef()
	case r == '_':
		return c.parseBlankNodeLabel()
	case r == '[':
		return c.parsePropertyList()
	case r == '(':
		return c.parseCollection()
	case r == '"' || r == '\'':
		return c.parseQuotedLiteral()
	case r == '+' || r == '-' || (r >= '0' && r <= '9'):
		return c.parseNumber()
	default:
		return c.parsePrefixedNameOrBoolean()
	}
}

// parsePredicateObjectList parses "p o, o2 ; p2 o3" after the subject.
// Inside a blank node property list it stops at the closing bracket.
func (c *turtleCursor) parsePredicateObjectList(subject Term, inBrackets bool) error {
	for {
		c.ws()
		if inBrackets && c.peek() == ']' {
			return nil
		}
		if c.eof() {
			if inBrackets {
				return c.errf("unterminated blank node property list")
			}
			return c.errf("expected predicate")
		}
		predicate, err := c.parsePredicate()
		if err != nil {
			return err
		}
		for {
			c.ws()
			object, err := c.parseObject()
			if err != nil {
				return err
			}
			c.emit(subject, predicate, object)
			c.ws()
			if c.peek() != ',' {
				break
			}
			c.pos++
		}
		if c.peek() != ';' {
			return nil
		}
		for c.peek() == ';' {
			c.pos++
			c.ws()
		}
		// Trailing semicolon before end or closing bracket is allowed.
		if c.eof() || (inBrackets && c.peek() == ']') {
			return nil
		}
	}
}

func (c *turtleCursor) parseIRIRef() (Term, error) {
	c.pos++ // '<'
	start := c.pos
	for {
		if c.eof() {
			return nil, c.errf("unterminated IRI")
		}
		r := c.runes[c.pos]
		if r == '>' {
			break
		}
		if r == '\n' || r == '\r' {
			return nil, c.errf("newline inside IRI")
		}
		if r == '\\' {
			c.pos++ // escape, skip the next rune
		}
		c.pos++
	}
	raw := string(c.runes[start:c.pos])
	c.pos++ // '>'
	decoded, err := decodeIRIEscapes(raw)
	if err != nil {
		return nil, err
	}
	iri := resolveIRI(c.base, decoded)
	if err := validateIRI(iri, c.strict); err != nil {
		return nil, err
	}
	return IRI{Value: iri}, nil
}

// decodeIRIEscapes rewrites \uXXXX and \UXXXXXXXX only; string escapes are
// not valid inside IRI references.
func decodeIRIEscapes(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			b.WriteRune(runes[i])
			continue
		}
		if i+1 >= len(runes) || (runes[i+1] != 'u' && runes[i+1] != 'U') {
			return "", fmt.Errorf("invalid escape in IRI %q", s)
		}
		width := 4
		if runes[i+1] == 'U' {
			width = 8
		}
		if i+1+width >= len(runes) {
			return "", fmt.Errorf("truncated escape in IRI %q", s)
		}
		var cp rune
		for j := 0; j < width; j++ {
			r := runes[i+2+j]
			if !isHexDigit(r) {
				return "", fmt.Errorf("non-hex digit in IRI escape in %q", s)
			}
			cp = cp<<4 | hexValue(r)
		}
		if !isValidCodePoint(cp) {
			return "", fmt.Errorf("IRI escape U+%04X is not a valid code point", cp)
		}
		b.WriteRune(cp)
		i += 1 + width
	}
	return b.String(), nil
}

func (c *turtleCursor) parseBlankNodeLabel() (Term, error) {
	if c.pos+1 >= len(c.runes) || c.runes[c.pos+1] != ':' {
		return nil, c.errf("expected blank node label after '_'")
	}
	c.pos += 2
	start := c.pos
	for !c.eof() && isBnodeLabelRune(c.runes[c.pos]) {
		c.pos++
	}
	raw := string(c.runes[start:c.pos])
	label := strings.TrimRight(raw, ".")
	c.pos -= len(raw) - len(label)
	if label == "" {
		return nil, c.errf("empty blank node label")
	}
	return c.gen.document(label), nil
}

func isBnodeLabelRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	case r > 0x7F:
		return true
	}
	return false
}

func (c *turtleCursor) parsePropertyList() (Term, error) {
	c.pos++ // '['
	c.ws()
	if c.peek() == ']' {
		c.pos++
		return c.gen.fresh(), nil
	}
	node := c.gen.fresh()
	if err := c.parsePredicateObjectList(node, true); err != nil {
		return nil, err
	}
	if c.peek() != ']' {
		return nil, c.errf("expected ']' closing blank node property list")
	}
	c.pos++
	return node, nil
}

func (c *turtleCursor) parseCollection() (Term, error) {
	c.pos++ // '('
	c.ws()
	if c.peek() == ')' {
		c.pos++
		return IRI{Value: rdfNil}, nil
	}
	var head, tail Term
	for {
		item, err := c.parseObject()
		if err != nil {
			return nil, err
		}
		node := c.gen.fresh()
		if head == nil {
			head = node
		} else {
			c.emit(tail, IRI{Value: rdfRest}, node)
		}
		c.emit(node, IRI{Value: rdfFirst}, item)
		tail = node
		c.ws()
		if c.peek() == ')' {
			c.pos++
			c.emit(tail, IRI{Value: rdfRest}, IRI{Value: rdfNil})
			return head, nil
		}
		if c.eof() {
			return nil, c.errf("unterminated collection")
		}
	}
}

func (c *turtleCursor) parseQuotedLiteral() (Term, error) {
	quote := c.runes[c.pos]
	long := c.pos+2 < len(c.runes) && c.runes[c.pos+1] == quote && c.runes[c.pos+2] == quote
	var raw string
	var err error
	if long {
		raw, err = c.readLongString(quote)
	} else {
		raw, err = c.readShortString(quote)
	}
	if err != nil {
		return nil, err
	}
	lexical, err := decodeEscapes(raw)
	if err != nil {
		return nil, err
	}
	switch c.peek() {
	case '@':
		c.pos++
		start := c.pos
		for !c.eof() && (isLangRune(c.runes[c.pos])) {
			c.pos++
		}
		tag := string(c.runes[start:c.pos])
		if !isValidLangTag(tag) {
			return nil, c.errf("invalid language tag %q", tag)
		}
		return Literal{Lexical: lexical, Lang: tag}, nil
	case '^':
		if c.pos+1 >= len(c.runes) || c.runes[c.pos+1] != '^' {
			return nil, c.errf("expected '^^' before datatype")
		}
		c.pos += 2
		var dt Term
		if c.peek() == '<' {
			dt, err = c.parseIRIRef()
		} else {
			dt, err = c.parsePrefixedName()
		}
		if err != nil {
			return nil, err
		}
		iri, ok := dt.(IRI)
		if !ok {
			return nil, c.errf("datatype must be an IRI")
		}
		return Literal{Lexical: lexical, Datatype: iri}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func isLangRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
}

func (c *turtleCursor) readShortString(quote rune) (string, error) {
	c.pos++ // opening quote
	start := c.pos
	for {
		if c.eof() {
			return "", c.errf("unterminated string literal")
		}
		r := c.runes[c.pos]
		if r == '\\' {
			c.pos += 2
			continue
		}
		if r == quote {
			raw := string(c.runes[start:c.pos])
			c.pos++
			return raw, nil
		}
		if r == '\n' || r == '\r' {
			return "", c.errf("newline in single-line string literal")
		}
		c.pos++
	}
}

func (c *turtleCursor) readLongString(quote rune) (string, error) {
	c.pos += 3 // opening triple quote
	start := c.pos
	for {
		if c.eof() {
			return "", c.errf("unterminated long string literal")
		}
		r := c.runes[c.pos]
		if r == '\\' {
			c.pos += 2
			continue
		}
		if r == quote && c.pos+2 < len(c.runes) &&
			c.runes[c.pos+1] == quote && c.runes[c.pos+2] == quote {
			raw := string(c.runes[start:c.pos])
			c.pos += 3
			return raw, nil
		}
		c.pos++
	}
}

func (c *turtleCursor) parseNumber() (Term, error) {
	start := c.pos
	if c.peek() == '+' || c.peek() == '-' {
		c.pos++
	}
	hasDot, hasExp := false, false
	for !c.eof() {
		r := c.runes[c.pos]
		switch {
		case r >= '0' && r <= '9':
			c.pos++
		case r == '.':
			// A dot not followed by a digit terminates the number.
			if c.pos+1 < len(c.runes) && c.runes[c.pos+1] >= '0' && c.runes[c.pos+1] <= '9' {
				hasDot = true
				c.pos++
			} else {
				goto done
			}
		case r == 'e' || r == 'E':
			hasExp = true
			c.pos++
			if !c.eof() && (c.runes[c.pos] == '+' || c.runes[c.pos] == '-') {
				c.pos++
			}
		default:
			goto done
		}
	}
done:
	lexical := string(c.runes[start:c.pos])
	if lexical == "" || lexical == "+" || lexical == "-" {
		return nil, c.errf("malformed numeric literal")
	}
	datatype := xsdInteger
	if hasExp {
		datatype = xsdDouble
	} else if hasDot {
		datatype = xsdDecimal
	}
	return Literal{Lexical: lexical, Datatype: IRI{Value: datatype}}, nil
}

func (c *turtleCursor) parsePrefixedNameOrBoolean() (Term, error) {
	if c.matchKeyword("true") {
		return Literal{Lexical: "true", Datatype: IRI{Value: xsdBoolean}}, nil
	}
	if c.matchKeyword("false") {
		return Literal{Lexical: "false", Datatype: IRI{Value: xsdBoolean}}, nil
	}
	return c.parsePrefixedName()
}

func (c *turtleCursor) matchKeyword(kw string) bool {
	end := c.pos + len(kw)
	if end > len(c.runes) || string(c.runes[c.pos:end]) != kw {
		return false
	}
	if !c.delimitedAt(end) {
		return false
	}
	c.pos = end
	return true
}

// delimitedAt reports whether position i ends a token.
func (c *turtleCursor) delimitedAt(i int) bool {
	if i >= len(c.runes) {
		return true
	}
	switch c.runes[i] {
	case ' ', '\t', '\n', '\r', ',', ';', ')', ']', '}', '<', '"', '\'', '[', '(':
		return true
	}
	return false
}

func (c *turtleCursor) parsePrefixedName() (Term, error) {
	start := c.pos
	var b strings.Builder
	colon := -1
	for !c.eof() {
		r := c.runes[c.pos]
		if r == '\\' && c.pos+1 < len(c.runes) {
			// PN_LOCAL escape: the next rune stands for itself.
			b.WriteRune(c.runes[c.pos+1])
			c.pos += 2
			continue
		}
		if isPNameDelimiter(r) {
			break
		}
		if r == ':' && colon < 0 {
			colon = b.Len()
		}
		b.WriteRune(r)
		c.pos++
	}
	token := b.String()
	if token == "" {
		return nil, c.errf("expected term, found %q", string(c.runes[start:]))
	}
	if colon < 0 {
		return nil, c.errf("unknown keyword or missing ':' in %q", token)
	}
	// PN_LOCAL may contain dots but not end with one.
	for strings.HasSuffix(token, ".") {
		token = token[:len(token)-1]
		c.pos--
	}
	prefix, local := token[:colon], token[colon+1:]
	ns, ok := c.prefixes[prefix]
	if !ok {
		return nil, c.errf("undefined prefix %q", prefix+":")
	}
	iri := ns + local
	if err := validateIRI(iri, c.strict); err != nil {
		return nil, err
	}
	return IRI{Value: iri}, nil
}

func isPNameDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', ',', ';', ')', ']', '}', '{', '<', '>', '"', '\'', '[', '(', '^':
		return true
	}
	return false
}
