package ast

import "provel/internal/source"

// Attr is a user attribute of the form `@name(args...)`.
type Attr struct {
	Name source.StringID
	// Args holds the raw argument text, interned, in written order.
	Args []source.StringID
	Span source.Span
}
