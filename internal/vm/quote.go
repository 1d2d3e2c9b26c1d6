package vm

import "sync"

// QuoteID is a stable identity for an interned Quotation. Spec §9 requires
// this in place of the original's address-in-string token encoding: a
// quotation-reference literal carries a QuoteID, never a memory address.
type QuoteID int

// Quotation is an immutable, ordered vector of tokens addressable by a
// stable QuoteID. It is never mutated after Intern returns.
type Quotation struct {
	Tokens []Token
}

// QuoteTable is an append-only interning table for Quotations, grounded
// on phroun-pawscript's storeObject: a mutex-guarded slice with a
// monotonically increasing identity. Non-goals explicitly exclude garbage
// collection of quotations, so entries are never removed — a Quotation
// reachable from any dictionary entry, handle callback slot, or transient
// stack Value stays valid for the lifetime of the process.
type QuoteTable struct {
	mu    sync.Mutex
	table []*Quotation
}

// NewQuoteTable returns an empty interning table.
func NewQuoteTable() *QuoteTable {
	return &QuoteTable{}
}

// Intern copies tokens into a new Quotation and returns its QuoteID.
// Tokens are copied so that later mutation of a caller-owned slice (e.g.
// the token vector being interpreted) can never alias interned storage.
func (t *QuoteTable) Intern(tokens []Token) QuoteID {
	cp := make([]Token, len(tokens))
	copy(cp, tokens)

	t.mu.Lock()
	defer t.mu.Unlock()
	id := QuoteID(len(t.table))
	t.table = append(t.table, &Quotation{Tokens: cp})
	return id
}

// Get resolves a QuoteID to its backing Quotation. It panics on an
// out-of-range id, which can only happen from an internal bug (an id must
// always come from a prior Intern call), never from user input.
func (t *QuoteTable) Get(id QuoteID) *Quotation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.table[id]
}
