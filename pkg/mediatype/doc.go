// Package mediatype maps content types to parsers and to a semantic view over
// decoded payloads.
//
// # Overview
//
// A MediaType couples a list of signature patterns (e.g. "application/json",
// "application/*+json") with a Parser that encodes and decodes payloads and a
// Semantics value that knows how to find hypermedia links, recognise
// collections, iterate items and tell stubs apart from complete
// representations.
//
// A Registry holds the catalog used by one session:
//
//	registry := mediatype.DefaultRegistry()
//	_ = registry.Register(mediatype.XML())
//
//	mt := registry.Find("application/vnd.grid5000+json; charset=utf-8")
//	doc := mt.NewDocument(body)
//	for _, l := range doc.Links() {
//	  fmt.Println(l.ID(), l.Href)
//	}
//
// # Matching
//
// Find strips ";" parameters, matches case-insensitively with "*" wildcards and,
// when several media types match, returns the one whose matching signature is
// the longest. A "*/*" signature matches anything, which makes Wildcard the
// last-resort fallback.
package mediatype
