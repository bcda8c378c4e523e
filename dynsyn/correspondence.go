package dynsyn

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Correspondent is the result of resolving a media type or file extension to
// a syntax tag.
type Correspondent struct {
	Syntax Syntax
	// MediaType is the canonical media type of the resolved syntax, not the
	// identifier that was looked up.
	MediaType string
	// Extension is the preferred file extension of the resolved syntax.
	Extension string
	// Total is false when resolution went through a generic identifier such
	// as text/plain or "json", i.e. the identifier does not pin the syntax
	// down with certainty.
	Total bool
}

type resolution struct {
	syntax Syntax
	total  bool
}

var (
	mediaTypeIndex = map[string]resolution{}
	extensionIndex = map[string]resolution{}
)

func init() {
	register := func(index map[string]resolution, key string, r resolution) {
		key = strings.ToLower(key)
		if prev, dup := index[key]; dup {
			panic(fmt.Sprintf("dynsyn: identifier %q registered for both %s and %s", key, prev.syntax, r.syntax))
		}
		index[key] = r
	}
	seen := map[string]Syntax{}
	for _, s := range syntaxOrder {
		info := syntaxRegistry[s]
		if prev, dup := seen[info.MediaType]; dup {
			panic(fmt.Sprintf("dynsyn: canonical media type %q shared by %s and %s", info.MediaType, prev, s))
		}
		seen[info.MediaType] = s

		register(mediaTypeIndex, info.MediaType, resolution{s, true})
		for _, mt := range info.AliasMediaTypes {
			register(mediaTypeIndex, mt, resolution{s, true})
		}
		for _, mt := range info.GenericMediaTypes {
			register(mediaTypeIndex, mt, resolution{s, false})
		}
		for _, ext := range info.Extensions {
			register(extensionIndex, ext, resolution{s, true})
		}
		for _, ext := range info.GenericExtensions {
			register(extensionIndex, ext, resolution{s, false})
		}
	}
}

func correspondentFor(r resolution) Correspondent {
	info := syntaxRegistry[r.syntax]
	return Correspondent{
		Syntax:    r.syntax,
		MediaType: info.MediaType,
		Extension: info.Extensions[0],
		Total:     r.total,
	}
}

// ResolveMediaType resolves a media type to a syntax tag. Matching is
// case-insensitive and parameters (e.g. "; charset=utf-8") are ignored.
func ResolveMediaType(mediaType string) (Correspondent, error) {
	essence := mediaType
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		essence = parsed
	}
	essence = strings.ToLower(strings.TrimSpace(essence))
	if r, ok := mediaTypeIndex[essence]; ok {
		return correspondentFor(r), nil
	}
	return Correspondent{}, &UnknownSyntaxError{Identifier: mediaType}
}

// ResolveExtension resolves a file extension, with or without the leading
// dot, to a syntax tag. Matching is case-insensitive.
func ResolveExtension(extension string) (Correspondent, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	if r, ok := extensionIndex[ext]; ok {
		return correspondentFor(r), nil
	}
	return Correspondent{}, &UnknownSyntaxError{Identifier: extension}
}

// Resolve resolves either kind of identifier. Identifiers containing a slash
// are treated as media types, anything else as an extension; a media-type
// match always takes priority over an extension spelling.
func Resolve(identifier string) (Correspondent, error) {
	if strings.Contains(identifier, "/") {
		return ResolveMediaType(identifier)
	}
	return ResolveExtension(identifier)
}

// ExtensionFromPath returns the extension of a file path without the dot, or
// "" when the path has none.
func ExtensionFromPath(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// CanonicalMediaType returns the canonical media type of s, or "" if s is
// not a registered syntax.
func CanonicalMediaType(s Syntax) string {
	return syntaxRegistry[s].MediaType
}

// PreferredExtension returns the preferred file extension of s without the
// dot, or "" if s is not a registered syntax.
func PreferredExtension(s Syntax) string {
	if info, ok := syntaxRegistry[s]; ok {
		return info.Extensions[0]
	}
	return ""
}
