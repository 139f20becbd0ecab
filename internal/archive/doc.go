// Package archive is the comic archive engine consumed by the bridge. It
// computes content hashes of whole files, opens CBZ (zip) containers,
// enumerates their pages in reading order and decodes a page, optionally
// scaled to fit a bounding box.
//
// All long-running methods take a context and stop between steps once it is
// cancelled, returning the context error.
package archive
