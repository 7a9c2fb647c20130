package cache

import "strings"

// Keyer builds cache keys. Keys embed a content hash wherever the value is
// derived from content, so a changed input is a new key and nothing needs
// invalidation.
type Keyer interface {
	// HTTPKey keys a raw service response.
	HTTPKey(namespace, key string) string
	// GraphKey keys a dependency graph by the hash of its source records.
	GraphKey(contentHash string) string
	// LayoutKey keys a layout by graph hash and layout options.
	LayoutKey(graphHash, optionsKey string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// GraphKey returns "graph:<hash>".
func (DefaultKeyer) GraphKey(contentHash string) string {
	return "graph:" + contentHash
}

// LayoutKey returns "layout:<hash(graph, options)>".
func (DefaultKeyer) LayoutKey(graphHash, optionsKey string) string {
	return hashKey("layout", graphHash, optionsKey)
}

// JoinKey joins key parts with ":".
func JoinKey(parts ...string) string { return strings.Join(parts, ":") }
