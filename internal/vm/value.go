package vm

import (
	"fmt"
	"strings"
)

// Kind tags the four Value variants from spec §3.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindQuote
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindQuote:
		return "quote"
	case KindHandle:
		return "handle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Handle is the marker interface implemented by *uv.Handle. It exists so
// internal/vm never imports internal/uv: the interpreter only needs to
// carry a Handle reference around on the stack, never to interpret it.
type Handle interface {
	// HandleID returns a stable, log-friendly identifier for the
	// underlying event-loop handle.
	HandleID() string
}

// Value is the tagged union at the heart of the data stack. Exactly one
// of the four fields is meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Int    int64
	Str    string
	Quote  QuoteID
	Handle Handle
}

// IntValue, StringValue, QuoteValue, and HandleValue are the four
// constructors, one per Kind.
func IntValue(i int64) Value        { return Value{Kind: KindInt, Int: i} }
func StringValue(s string) Value    { return Value{Kind: KindString, Str: s} }
func QuoteValue(id QuoteID) Value   { return Value{Kind: KindQuote, Quote: id} }
func HandleValue(h Handle) Value    { return Value{Kind: KindHandle, Handle: h} }

// Clone returns an independent copy of v. For strings this forces a fresh
// backing array via strings.Clone, realizing spec §9's "move-by-default
// with explicit clone on duplication" even though Go's own string
// immutability would make an aliasing copy just as safe — the point is to
// keep the ownership discipline visible in code that a reader can audit,
// the same way phroun-pawscript keeps explicit refcounting in a
// garbage-collected language.
func (v Value) Clone() Value {
	if v.Kind == KindString {
		return StringValue(strings.Clone(v.Str))
	}
	return v
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindQuote:
		return fmt.Sprintf("quote#%d", v.Quote)
	case KindHandle:
		return fmt.Sprintf("handle<%s>", v.Handle.HandleID())
	default:
		return "?"
	}
}
