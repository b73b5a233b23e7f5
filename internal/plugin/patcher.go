package plugin

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"provel/internal/source"
)

// Builder accumulates generated source text together with explicit
// (generated-range -> original-span) mappings. Emission order is preserved,
// so identical emission sequences yield identical units.
type Builder struct {
	buf      strings.Builder
	mappings []CodeMapping
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) offset() uint32 {
	off, err := safecast.Conv[uint32](b.buf.Len())
	if err != nil {
		panic(fmt.Errorf("generated text overflow: %w", err))
	}
	return off
}

// Add appends unmapped text.
func (b *Builder) Add(text string) {
	b.buf.WriteString(text)
}

// Addf appends unmapped formatted text.
func (b *Builder) Addf(format string, args ...any) {
	fmt.Fprintf(&b.buf, format, args...)
}

// AddMapped appends text and records a mapping back to the original span.
func (b *Builder) AddMapped(text string, original source.Span) {
	start := b.offset()
	b.buf.WriteString(text)
	b.mappings = append(b.mappings, CodeMapping{
		Generated: TextRange{Start: start, End: b.offset()},
		Original:  original,
	})
}

// AddMappedf appends formatted text and records a mapping.
func (b *Builder) AddMappedf(original source.Span, format string, args ...any) {
	b.AddMapped(fmt.Sprintf(format, args...), original)
}

// Build returns the accumulated text and the emission-ordered mappings.
func (b *Builder) Build() (string, []CodeMapping) {
	return b.buf.String(), b.mappings
}
