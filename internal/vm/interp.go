package vm

import (
	"bufio"
	"strconv"
)

// Interp is the whole interpreter nucleus: data stack, dictionary,
// quotation table, output sink, and the compile/execute state machine
// from spec §4.3. It is an explicitly constructed value — never a
// package-level global — per spec §9's "process-wide state" note, so
// cmd/solarforth (or a future embedder) can run more than one VM per
// process.
type Interp struct {
	Stack  *Stack
	Dict   *Dictionary
	Quotes *QuoteTable
	Out    *bufio.Writer

	running bool

	compiling bool
	defName   string
	building  []Token
}

// New constructs an Interp with an empty stack, a dictionary carrying
// only the six core primitives (spec §4.5), a fresh quotation table, and
// out as its output sink. Event-loop bindings are registered separately
// by internal/uv so that this package never imports it.
func New(out *bufio.Writer) *Interp {
	it := &Interp{
		Stack:   NewStack(),
		Dict:    NewDictionary(),
		Quotes:  NewQuoteTable(),
		Out:     out,
		running: true,
	}
	registerCorePrimitives(it.Dict)
	return it
}

// Running reports true until `bye` has been executed. It does not reflect
// the event loop's state — spec §9 explicitly preserves the original's
// quirk that `bye` clears this flag without stopping an active `uv:run`.
func (it *Interp) Running() bool {
	return it.running
}

// Bye implements the `bye` primitive: it only clears the running flag.
func (it *Interp) Bye() {
	it.running = false
}

// Compiling reports whether a colon definition is currently open,
// spanning possibly multiple calls to Run — cmd/solarforth's interactive
// prompt uses this to print a continuation prompt.
func (it *Interp) Compiling() bool {
	return it.compiling
}

// Run interprets tokens against the persistent compile/execute state
// machine (spec §4.3). Compile state (an open colon definition) survives
// across calls, which is what lets the interactive prompt feed one line
// at a time while `:` ... `;` spans several lines.
func (it *Interp) Run(tokens []Token) error {
	i := 0
	for i < len(tokens) {
		var err error
		if it.compiling {
			i, err = it.stepCompile(tokens, i)
		} else {
			i, err = it.stepImmediate(tokens, i)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CallQuote re-enters the interpreter on an already-interned Quotation's
// tokens. Event-loop bindings use this to invoke a stored callback after
// pushing the event's synthetic arguments (spec §4.6).
func (it *Interp) CallQuote(id QuoteID) error {
	return it.Run(it.Quotes.Get(id).Tokens)
}

func (it *Interp) stepImmediate(tokens []Token, i int) (int, error) {
	tok := tokens[i]

	switch {
	case isWord(tok, ":"):
		if i+1 >= len(tokens) {
			return i, fatalf("`:` with no following name")
		}
		it.defName = tokens[i+1].Text
		it.building = nil
		it.compiling = true
		return i + 2, nil

	case isWord(tok, "["):
		inner, next, err := scanBracket(tokens, i+1)
		if err != nil {
			return i, err
		}
		id := it.Quotes.Intern(inner)
		it.Stack.Push(QuoteValue(id))
		return next, nil

	case isWord(tok, "]"):
		return i, fatalf("unexpected `]`")

	case isWord(tok, ";"):
		return i, fatalf("unexpected `;`")
	}

	switch tok.Kind {
	case TokString:
		it.Stack.Push(StringValue(tok.Text))
		return i + 1, nil
	case TokQuoteRef:
		it.Stack.Push(QuoteValue(tok.Quote))
		return i + 1, nil
	}

	if n, ok := parseNumber(tok.Text); ok {
		it.Stack.Push(IntValue(n))
		return i + 1, nil
	}

	entry := it.Dict.Lookup(tok.Text)
	if entry == nil {
		return i, fatalf("unknown word %q", tok.Text)
	}
	if err := it.invoke(entry); err != nil {
		return i, err
	}
	return i + 1, nil
}

func (it *Interp) stepCompile(tokens []Token, i int) (int, error) {
	tok := tokens[i]

	switch {
	case isWord(tok, ";"):
		id := it.Quotes.Intern(it.building)
		it.Dict.AddColon(it.defName, id)
		it.compiling = false
		it.defName = ""
		it.building = nil
		return i + 1, nil

	case isWord(tok, "["):
		inner, next, err := scanBracket(tokens, i+1)
		if err != nil {
			return i, err
		}
		id := it.Quotes.Intern(inner)
		it.building = append(it.building, Token{Kind: TokQuoteRef, Quote: id})
		return next, nil

	case isWord(tok, "]"):
		return i, fatalf("unexpected `]`")

	case isWord(tok, ":"):
		return i, fatalf("nested colon definition not permitted")
	}

	it.building = append(it.building, tok)
	return i + 1, nil
}

func (it *Interp) invoke(e *Entry) error {
	if e.Kind == EntryPrimitive {
		return e.Prim(it)
	}
	return it.Run(it.Quotes.Get(e.Quote).Tokens)
}

// scanBracket scans forward from i (the index just past an opening `[`)
// to its matching `]`, respecting nesting, and returns a copy of the
// tokens strictly between them plus the index just past the `]`. An
// unmatched `[` is fatal (spec §4.3).
func scanBracket(tokens []Token, i int) ([]Token, int, error) {
	depth := 0
	start := i
	for i < len(tokens) {
		switch {
		case isWord(tokens[i], "["):
			depth++
		case isWord(tokens[i], "]"):
			if depth == 0 {
				inner := make([]Token, i-start)
				copy(inner, tokens[start:i])
				return inner, i + 1, nil
			}
			depth--
		}
		i++
	}
	return nil, i, fatalf("unmatched `[`")
}

// parseNumber implements spec §4.3's auto-base signed 64-bit parse:
// leading 0x/0X is hex, a lone leading 0 (with more digits) is octal,
// otherwise decimal — the same rule C's strtoll(tok, &end, 0) applies in
// original_source/src/solarforth.c. An optional leading sign is accepted
// on top of that. Returns ok=false (never an error) for anything that
// isn't a valid number, so the caller falls back to dictionary lookup.
func parseNumber(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	neg := false
	t := s
	switch t[0] {
	case '-':
		neg = true
		t = t[1:]
	case '+':
		t = t[1:]
	}
	if t == "" {
		return 0, false
	}

	base := 10
	switch {
	case len(t) >= 2 && t[0] == '0' && (t[1] == 'x' || t[1] == 'X'):
		base = 16
		t = t[2:]
	case len(t) >= 2 && t[0] == '0':
		base = 8
		t = t[1:]
	}
	if t == "" {
		return 0, false
	}

	n, err := strconv.ParseUint(t, base, 64)
	if err != nil {
		return 0, false
	}
	v := int64(n)
	if neg {
		v = -v
	}
	return v, true
}
