package vm

// EntryKind distinguishes a primitive (Go function) dictionary entry from
// a colon definition (interned Quotation).
type EntryKind int

const (
	EntryPrimitive EntryKind = iota
	EntryColon
)

// PrimFn is a primitive word's implementation. It receives the running
// Interp so it can manipulate the data stack, look up other words,
// register handles, or re-enter the interpreter (event-loop bindings do
// exactly that from internal/uv).
type PrimFn func(it *Interp) error

// Entry is one dictionary record: a name plus either a primitive function
// or a colon definition's Quotation.
type Entry struct {
	Name  string
	Kind  EntryKind
	Prim  PrimFn
	Quote QuoteID
}

// Dictionary is the newest-first ordered list of named entries described
// in spec §3/§4.4. It is realized as an append-only slice searched from
// the tail rather than a map, because `words` must enumerate every entry
// — including ones shadowed by a same-named later definition — in
// newest-first order, which a map cannot reproduce (see DESIGN.md).
type Dictionary struct {
	entries []*Entry
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// AddPrimitive appends a new primitive entry. The dictionary only grows;
// entries are never reordered or removed (spec §3 invariant).
func (d *Dictionary) AddPrimitive(name string, fn PrimFn) {
	d.entries = append(d.entries, &Entry{Name: name, Kind: EntryPrimitive, Prim: fn})
}

// AddColon appends a new colon-definition entry bound to an already
// interned Quotation.
func (d *Dictionary) AddColon(name string, quote QuoteID) {
	d.entries = append(d.entries, &Entry{Name: name, Kind: EntryColon, Quote: quote})
}

// Lookup returns the newest entry matching name, or nil if absent.
func (d *Dictionary) Lookup(name string) *Entry {
	for i := len(d.entries) - 1; i >= 0; i-- {
		if d.entries[i].Name == name {
			return d.entries[i]
		}
	}
	return nil
}

// Words returns every entry's name in newest-first order, including
// duplicates from shadowed definitions — it walks entries, not unique
// names (spec §4.4, confirmed against original_source/src/solarforth.c's
// list-order dict_words walk; see SPEC_FULL.md §11).
func (d *Dictionary) Words() []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[len(d.entries)-1-i] = e.Name
	}
	return names
}
