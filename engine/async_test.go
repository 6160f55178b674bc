package engine

import "testing"

func TestContinueAsyncCompletesWithinBudget(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": ["^Hello, world!", "\n", "end"]}`)
	if err := eng.ContinueAsync(1000); err != nil {
		t.Fatalf("ContinueAsync: %v", err)
	}
	if !eng.AsyncContinueComplete() {
		t.Fatal("expected the line to finish within a generous budget")
	}
	if eng.CurrentText() != "Hello, world!\n" {
		t.Fatalf("CurrentText = %q", eng.CurrentText())
	}
}

func TestContinueAsyncResumesAfterExhaustedBudget(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": ["^Hello, world!", "\n", "end"]}`)

	// An already-expired budget returns before the first step.
	if err := eng.ContinueAsync(-1); err != nil {
		t.Fatalf("ContinueAsync: %v", err)
	}
	if eng.AsyncContinueComplete() {
		t.Fatal("expected the continue to still be in progress")
	}
	if _, err := eng.Step(); err == nil {
		t.Fatal("stepping during an incomplete async continue must fail")
	}
	if err := eng.ChooseChoice(0); err == nil {
		t.Fatal("choosing during an incomplete async continue must fail")
	}

	// A later call resumes and finishes the line.
	if err := eng.ContinueAsync(1000); err != nil {
		t.Fatalf("resumed ContinueAsync: %v", err)
	}
	if !eng.AsyncContinueComplete() {
		t.Fatal("expected the resumed continue to finish")
	}
	if eng.CurrentText() != "Hello, world!\n" {
		t.Fatalf("CurrentText = %q", eng.CurrentText())
	}
}
