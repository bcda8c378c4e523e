// Package dynsyn parses and serializes RDF documents whose concrete syntax is
// chosen at runtime.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// The package has three cooperating parts:
//   - A closed registry of syntax tags (Turtle, TriG, N-Triples, N-Quads,
//     RDF/XML, JSON-LD) with media-type and file-extension resolution:
//     Resolve(), ResolveMediaType(), ResolveExtension().
//   - A parser factory: NewParser() builds a streaming parser for a tag, and
//     Parse() returns a pull-style statement sequence ending in io.EOF.
//   - A serializer factory: NewSerializer() and NewStringifier() build
//     push-style serializers consuming the same statement shape.
//
// Parsers and serializers are generic over the caller's term representation:
// a TermFactory[T] tells a parser how to build terms, a TermView[T] tells a
// serializer how to read them. Terms{} adapts the package's own value-type
// model (IRI, BlankNode, Literal) to both interfaces.
//
// Example (media type to statements):
//
//	c, err := dynsyn.Resolve("text/turtle")
//	if err != nil {
//	    // handle error
//	}
//	p, err := dynsyn.NewParser(c.Syntax, dynsyn.Terms{}, nil)
//	if err != nil {
//	    // handle error
//	}
//	stmts := p.Parse(strings.NewReader(doc))
//	defer stmts.Close()
//	for {
//	    st, err := stmts.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    _ = st
//	}
//
// All sequences are single-threaded: a Statements or Serializer value must
// not be shared across goroutines without external synchronization. Distinct
// values are independent.
package dynsyn
