package engine

import (
	"testing"

	"loom/content"
)

// With no newline-lookahead snapshot held, BackgroundSaveComplete merges
// the patch into the live state immediately.
func TestBackgroundSaveMergesImmediatelyWithoutSnapshot(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": ["^Hello", "\n", "end"]}`)

	token, err := eng.CopyStateForBackgroundSave()
	if err != nil {
		t.Fatalf("CopyStateForBackgroundSave: %v", err)
	}
	eng.Vars.Set("gold", content.NewInt(5))

	if err := eng.BackgroundSaveComplete(token); err != nil {
		t.Fatalf("BackgroundSaveComplete: %v", err)
	}
	if eng.pendingSave != nil {
		t.Fatal("expected the save to finish synchronously")
	}
	if eng.Vars.Patch != nil {
		t.Fatal("expected the patch to be cleared after merging")
	}
	if got, ok := eng.Vars.Get("gold"); !ok || got.String() != "5" {
		t.Fatalf("expected gold=5 after merge, got %v ok=%v", got, ok)
	}
}

// BackgroundSaveComplete called while a newline-lookahead snapshot is
// held must defer its merge, and the deferred merge must still apply
// once the lookahead discards (glue removed the provisional newline).
func TestBackgroundSaveDefersMergeUntilLookaheadDiscards(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": [
		"^Hello", "\n", "<>", "^ world", "\n", "end"
	]}`)

	token, err := eng.CopyStateForBackgroundSave()
	if err != nil {
		t.Fatalf("CopyStateForBackgroundSave: %v", err)
	}
	eng.Vars.Set("gold", content.NewInt(5))

	for i := 0; i < 10 && eng.snapshot == nil; i++ {
		if _, err := eng.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if eng.snapshot == nil {
		t.Fatal("expected the newline lookahead snapshot to be held")
	}

	if err := eng.BackgroundSaveComplete(token); err != nil {
		t.Fatalf("BackgroundSaveComplete: %v", err)
	}
	if eng.pendingSave == nil || !eng.pendingSave.deferredMerge {
		t.Fatal("expected the merge to be deferred while the snapshot is held")
	}

	for i := 0; i < 20 && eng.snapshot != nil; i++ {
		if _, err := eng.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if eng.snapshot != nil {
		t.Fatal("expected the lookahead to resolve within the loop bound")
	}
	if eng.pendingSave != nil {
		t.Fatal("expected the deferred merge to finish once the snapshot resolved")
	}
	if got, ok := eng.Vars.Get("gold"); !ok || got.String() != "5" {
		t.Fatalf("expected gold=5 to survive the discarded lookahead, got %v ok=%v", got, ok)
	}
}

// Same deferred-merge setup, but with no glue following: the lookahead
// restores instead of discarding. The write made before the snapshot
// engaged must still survive, since it lives in the snapshot's own
// frozen copy of the patch.
func TestBackgroundSaveMergeSurvivesLookaheadRestore(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": [
		"^Hello", "\n", "^world", "\n", "end"
	]}`)

	token, err := eng.CopyStateForBackgroundSave()
	if err != nil {
		t.Fatalf("CopyStateForBackgroundSave: %v", err)
	}
	eng.Vars.Set("gold", content.NewInt(7))

	for i := 0; i < 10 && eng.snapshot == nil; i++ {
		if _, err := eng.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if eng.snapshot == nil {
		t.Fatal("expected the newline lookahead snapshot to be held")
	}

	if err := eng.BackgroundSaveComplete(token); err != nil {
		t.Fatalf("BackgroundSaveComplete: %v", err)
	}

	for i := 0; i < 20 && eng.snapshot != nil; i++ {
		if _, err := eng.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if eng.snapshot != nil {
		t.Fatal("expected the lookahead to resolve within the loop bound")
	}
	if eng.pendingSave != nil {
		t.Fatal("expected the deferred merge to finish once the snapshot resolved")
	}
	if got, ok := eng.Vars.Get("gold"); !ok || got.String() != "7" {
		t.Fatalf("expected gold=7 to survive the restored lookahead, got %v ok=%v", got, ok)
	}
}
