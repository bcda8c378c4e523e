package dynsyn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// jsonldDecoder parses a whole JSON-LD document on the first Next. The
// processor pivots through N-Quads text: ToRDF gives an RDF dataset,
// NQuadRDFSerializer flattens it, and the line parser shared with the
// N-Triples backend produces statements.
type jsonldDecoder struct {
	r      io.Reader
	cfg    ParserConfig
	loaded bool
	stmts  []statement
	pos    int
	err    error
}

func newJSONLDDecoder(r io.Reader, cfg ParserConfig) *jsonldDecoder {
	return &jsonldDecoder{r: r, cfg: cfg}
}

func (d *jsonldDecoder) Next() (statement, error) {
	if d.err != nil {
		return statement{}, d.err
	}
	if !d.loaded {
		d.loaded = true
		if err := d.load(); err != nil {
			d.err = err
			return statement{}, err
		}
	}
	if d.pos >= len(d.stmts) {
		return statement{}, io.EOF
	}
	st := d.stmts[d.pos]
	d.pos++
	return st, nil
}

func (d *jsonldDecoder) Close() error {
	d.stmts = nil
	d.pos = 0
	if d.err == nil {
		d.err = io.EOF
	}
	return nil
}

func (d *jsonldDecoder) parseErr(err error) error {
	return &ParseError{Syntax: SyntaxJSONLD, Err: err}
}

func (d *jsonldDecoder) load() error {
	var doc interface{}
	dec := json.NewDecoder(d.r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return d.parseErr(fmt.Errorf("invalid JSON: %w", err))
	}
	nq, err := jsonldToNQuads(doc, d.cfg.BaseIRI, d.cfg.DocumentLoader)
	if err != nil {
		return d.parseErr(err)
	}
	stmts, err := parseNQuadsText(nq)
	if err != nil {
		return d.parseErr(err)
	}
	d.stmts = stmts
	return nil
}

func jsonldToNQuads(doc interface{}, base string, loader DocumentLoader) (string, error) {
	proc := ld.NewJsonLdProcessor()
	opts := newGoldOptions(base, loader)
	result, err := proc.ToRDF(doc, opts)
	if err != nil {
		return "", err
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return "", fmt.Errorf("unexpected ToRDF result %T", result)
	}
	serializer := &ld.NQuadRDFSerializer{}
	serialized, err := serializer.Serialize(dataset)
	if err != nil {
		return "", err
	}
	nq, ok := serialized.(string)
	if !ok {
		return "", fmt.Errorf("unexpected N-Quads result %T", serialized)
	}
	return nq, nil
}

func newGoldOptions(base string, loader DocumentLoader) *ld.JsonLdOptions {
	opts := ld.NewJsonLdOptions(base)
	if loader != nil {
		opts.DocumentLoader = goldLoader{inner: loader}
	}
	return opts
}

// parseNQuadsText parses serializer-produced N-Quads lines with the line
// cursor from the N-Triples backend.
func parseNQuadsText(text string) ([]statement, error) {
	var out []statement
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		st, _, err := parseNTLine(trimmed, false)
		if err != nil {
			return nil, fmt.Errorf("bad N-Quads line %q: %w", trimmed, err)
		}
		out = append(out, st)
	}
	return out, nil
}

// goldLoader adapts the package DocumentLoader to json-gold's interface.
type goldLoader struct {
	inner DocumentLoader
}

func (l goldLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	remote, err := l.inner.LoadDocument(iri)
	if err != nil {
		return nil, err
	}
	return &ld.RemoteDocument{
		DocumentURL: remote.DocumentURL,
		Document:    remote.Document,
		ContextURL:  remote.ContextURL,
	}, nil
}

// jsonldEncoder buffers the dataset and writes the document at Close: a
// JSON-LD document is a single JSON value and cannot be emitted
// incrementally. Flush is therefore a no-op.
type jsonldEncoder struct {
	w      io.Writer
	pretty bool
	buf    bytes.Buffer
	empty  bool
	closed bool
}

func newJSONLDEncoder(w io.Writer, cfg SerializerConfig) *jsonldEncoder {
	return &jsonldEncoder{w: w, pretty: cfg.Pretty, empty: true}
}

func (e *jsonldEncoder) serr(err error) error {
	return &SerializeError{Syntax: SyntaxJSONLD, Err: err}
}

func (e *jsonldEncoder) Write(st statement) error {
	if e.closed {
		return ErrSerializerClosed
	}
	e.empty = false
	e.buf.WriteString(renderNTStatement(st))
	return nil
}

func (e *jsonldEncoder) Flush() error {
	if e.closed {
		return ErrSerializerClosed
	}
	return nil
}

func (e *jsonldEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	var doc interface{}
	if e.empty {
		doc = []interface{}{}
	} else {
		proc := ld.NewJsonLdProcessor()
		opts := ld.NewJsonLdOptions("")
		opts.Format = "application/n-quads"
		output, err := proc.FromRDF(e.buf.String(), opts)
		if err != nil {
			return e.serr(err)
		}
		doc = output
	}
	enc := json.NewEncoder(e.w)
	if e.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return e.serr(err)
	}
	return nil
}
