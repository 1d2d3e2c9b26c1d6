package logx

import "testing"

func TestShouldLogAlwaysShowsWarnAndError(t *testing.T) {
	l := New(false)
	if !l.shouldLog(LevelWarn, CatUV) {
		t.Fatal("warn must always log regardless of enabled flag")
	}
	if !l.shouldLog(LevelError, CatNone) {
		t.Fatal("error must always log")
	}
}

func TestShouldLogGatesOnEnabledFlag(t *testing.T) {
	l := New(false)
	if l.shouldLog(LevelDebug, CatNone) {
		t.Fatal("debug must be suppressed when logger is disabled")
	}
	l.enabled = true
	if !l.shouldLog(LevelDebug, CatNone) {
		t.Fatal("debug must pass once enabled with no category restriction")
	}
}

func TestEnableCategoryRestrictsToNamedCategories(t *testing.T) {
	l := New(true)
	l.EnableCategory(CatUV)
	if l.shouldLog(LevelDebug, CatVM) {
		t.Fatal("categories outside the enabled set must be suppressed once any category is enabled")
	}
	if !l.shouldLog(LevelDebug, CatUV) {
		t.Fatal("the enabled category must pass")
	}
}
