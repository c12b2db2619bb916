// SPDX-License-Identifier: MPL-2.0

package pom

const (
	// DefaultAttributeKey groups attributes in the map projection of a node.
	DefaultAttributeKey = "@attr"
	// DefaultTextKey holds element text in the map projection of a node that
	// also has attributes or children.
	DefaultTextKey = "#text"
	// DefaultIndent is the per-level indentation of serialized output.
	DefaultIndent = "  "

	// Declaration is written before every serialized descriptor.
	Declaration = `<?xml version="1.0" encoding="UTF-8"?>`
)

// FormatOptions configures parsing, serialization and the map projection.
// It is passed explicitly to every codec function.
type FormatOptions struct {
	// AttributeKey is the key attributes are grouped under in Document.Map.
	AttributeKey string
	// TextKey is the key element text is stored under in Document.Map.
	TextKey string
	// PreserveCDATA re-emits text read from CDATA sections as CDATA.
	PreserveCDATA bool
	// Indent is repeated once per nesting level.
	Indent string
}

// DefaultFormatOptions returns the configuration used for merged descriptors.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		AttributeKey:  DefaultAttributeKey,
		TextKey:       DefaultTextKey,
		PreserveCDATA: true,
		Indent:        DefaultIndent,
	}
}

// withDefaults fills empty keys so a zero FormatOptions still serializes.
func (o FormatOptions) withDefaults() FormatOptions {
	if o.AttributeKey == "" {
		o.AttributeKey = DefaultAttributeKey
	}
	if o.TextKey == "" {
		o.TextKey = DefaultTextKey
	}
	return o
}
