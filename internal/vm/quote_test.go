package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteTableInternAndGet(t *testing.T) {
	qt := NewQuoteTable()
	id1 := qt.Intern([]Token{wordToken("dup")})
	id2 := qt.Intern([]Token{wordToken("drop")})

	require.NotEqual(t, id1, id2)
	require.Equal(t, "dup", qt.Get(id1).Tokens[0].Text)
	require.Equal(t, "drop", qt.Get(id2).Tokens[0].Text)
}

func TestQuoteTableInternCopiesInput(t *testing.T) {
	qt := NewQuoteTable()
	src := []Token{wordToken("dup")}
	id := qt.Intern(src)
	src[0] = wordToken("mutated")
	require.Equal(t, "dup", qt.Get(id).Tokens[0].Text)
}

func TestQuoteTableSameIdentityAcrossDup(t *testing.T) {
	// Mirrors spec §8 scenario 3: two Quote values produced from the same
	// dup share the same underlying Quotation identity.
	qt := NewQuoteTable()
	id := qt.Intern([]Token{wordToken("x")})
	v1 := QuoteValue(id)
	v2 := v1.Clone() // Quote values are not deep-copied by Clone
	require.Equal(t, v1.Quote, v2.Quote)
}
