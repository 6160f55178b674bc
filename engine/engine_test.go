package engine

import (
	"testing"

	"loom/content"
	"loom/flow"
	"loom/loader"
	"loom/path"
)

func mustLoad(t *testing.T, doc string) *Engine {
	t.Helper()
	tree, err := loader.Load([]byte(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return New(tree, nil)
}

func TestContinueMaximallyAssemblesSimpleLine(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": ["^Hello, world!", "\n", "end"]}`)
	text, err := eng.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	if text != "Hello, world!\n" {
		t.Fatalf("unexpected text %q", text)
	}
	if eng.CanContinue() {
		t.Fatal("expected no more content after end")
	}
}

func TestResetStateRestoresDefaultGlobalsAndPointer(t *testing.T) {
	tree, err := loader.Load([]byte(`{"inkVersion": 21, "root": ["^Hello", "\n", "end"]}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	eng := New(tree, map[string]content.Value{"gold": content.NewInt(10)})
	if _, err := eng.ContinueMaximally(); err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}

	eng.Vars.Set("gold", content.NewInt(999))
	eng.Counts.IncrementVisits("main")

	startPointer := path.Pointer{Container: eng.Tree.Root, Index: -1}
	eng.ResetState()

	got, ok := eng.Vars.Get("gold")
	if !ok || got.String() != "10" {
		t.Fatalf("expected gold reset to 10, got %v ok=%v", got, ok)
	}
	if eng.Counts.Visits("main") != 0 {
		t.Fatalf("expected visit counts reset to 0, got %d", eng.Counts.Visits("main"))
	}
	if !eng.Flows.Current().Pointer.Equal(startPointer) {
		t.Fatalf("expected pointer reset to root, got %v want %v", eng.Flows.Current().Pointer, startPointer)
	}
}

func TestSwitchFlowIsolatesOutputAndShareGlobals(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": ["^Hello", "\n", "^Again", "\n", "end"]}`)
	if _, err := eng.ContinueOneLine(); err != nil {
		t.Fatalf("ContinueOneLine: %v", err)
	}
	eng.Vars.Set("shared", content.NewInt(7))

	if err := eng.SwitchFlow("side"); err != nil {
		t.Fatalf("SwitchFlow: %v", err)
	}
	if eng.CurrentFlowName() != "side" {
		t.Fatalf("current flow = %q", eng.CurrentFlowName())
	}
	if got, ok := eng.Vars.Get("shared"); !ok || got.String() != "7" {
		t.Fatal("globals must be shared across flows")
	}
	// The side flow starts from the story root, independent of the
	// default flow's position.
	text, err := eng.ContinueOneLine()
	if err != nil {
		t.Fatalf("side flow continue: %v", err)
	}
	if text != "Hello\n" {
		t.Fatalf("side flow text = %q", text)
	}

	if err := eng.SwitchFlow(flow.DefaultFlowName); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	text, err = eng.ContinueOneLine()
	if err != nil {
		t.Fatalf("default flow continue: %v", err)
	}
	if text != "Again\n" {
		t.Fatalf("default flow must resume where it left off, got %q", text)
	}

	if err := eng.RemoveFlow(flow.DefaultFlowName); err == nil {
		t.Fatal("removing the default flow must fail")
	}
	if err := eng.RemoveFlow("side"); err != nil {
		t.Fatalf("removing the idle side flow: %v", err)
	}
}

func TestSwitchFlowFailsWhileSaving(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": ["^Hello", "\n", "end"]}`)
	token, err := eng.CopyStateForBackgroundSave()
	if err != nil {
		t.Fatalf("CopyStateForBackgroundSave: %v", err)
	}
	if err := eng.SwitchFlow("side"); err == nil {
		t.Fatal("switching flows during a background save must fail")
	}
	if err := eng.BackgroundSaveComplete(token); err != nil {
		t.Fatalf("BackgroundSaveComplete: %v", err)
	}
	if err := eng.SwitchFlow("side"); err != nil {
		t.Fatalf("switching after the save completed: %v", err)
	}
}

func TestOutOfRangeChoiceFails(t *testing.T) {
	eng := mustLoad(t, `{"inkVersion": 21, "root": [
		{"*": "0", "cond": false},
		"end"
	]}`)
	if _, err := eng.ContinueMaximally(); err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	if err := eng.ChooseChoice(len(eng.CurrentChoices())); err == nil {
		t.Fatal("expected out-of-range choice to fail")
	}
}
