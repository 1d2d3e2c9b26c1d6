package vm

// registerCorePrimitives installs the six words spec §4.5 requires,
// nothing more — the Non-goals explicitly exclude any arithmetic, logic,
// or control-flow word set beyond this.
func registerCorePrimitives(d *Dictionary) {
	d.AddPrimitive("dup", primDup)
	d.AddPrimitive("drop", primDrop)
	d.AddPrimitive("print", primPrint)
	d.AddPrimitive("cr", primCr)
	d.AddPrimitive("words", primWords)
	d.AddPrimitive("bye", primBye)
}

func primDup(it *Interp) error {
	v, err := it.Stack.Peek()
	if err != nil {
		return err
	}
	it.Stack.Push(v.Clone())
	return nil
}

func primDrop(it *Interp) error {
	_, err := it.Stack.Pop()
	return err
}

func primPrint(it *Interp) error {
	s, err := it.Stack.PopString()
	if err != nil {
		return err
	}
	_, _ = it.Out.WriteString(s)
	return it.Out.Flush()
}

func primCr(it *Interp) error {
	_ = it.Out.WriteByte('\n')
	return it.Out.Flush()
}

// primWords writes each name followed by a space, including a trailing
// space after the last one, matching
// original_source/src/solarforth.c's prim_words byte for byte.
func primWords(it *Interp) error {
	for _, w := range it.Dict.Words() {
		_, _ = it.Out.WriteString(w)
		_ = it.Out.WriteByte(' ')
	}
	_ = it.Out.WriteByte('\n')
	return it.Out.Flush()
}

func primBye(it *Interp) error {
	it.Bye()
	return nil
}
