package patch

import (
	"sort"
	"testing"

	"loom/content"
)

func TestSetGlobalTracksChangedVariables(t *testing.T) {
	p := New()
	p.SetGlobal("gold", content.NewInt(5))
	p.SetGlobal("name", content.NewString("Aria"))

	if v, ok := p.Global("gold"); !ok || v.String() != "5" {
		t.Fatalf("expected gold=5, got %v ok=%v", v, ok)
	}
	if _, ok := p.ChangedVariables["gold"]; !ok {
		t.Fatal("expected gold marked changed")
	}
}

func TestMergeGlobalsIntoReturnsChangedNames(t *testing.T) {
	p := New()
	p.SetGlobal("gold", content.NewInt(5))
	p.SetGlobal("turns", content.NewInt(1))

	base := map[string]content.Value{}
	changed := p.MergeGlobalsInto(base)
	sort.Strings(changed)

	if len(changed) != 2 || changed[0] != "gold" || changed[1] != "turns" {
		t.Fatalf("unexpected changed set %v", changed)
	}
	if base["gold"].String() != "5" {
		t.Fatalf("expected base merged, got %v", base["gold"])
	}
}

func TestCopyIsIndependentOfOriginal(t *testing.T) {
	p := New()
	p.SetGlobal("gold", content.NewInt(5))
	clone := p.Copy()
	clone.SetGlobal("gold", content.NewInt(99))

	if v, _ := p.Global("gold"); v.String() != "5" {
		t.Fatalf("original patch mutated: %v", v)
	}
}

func TestNilPatchMergeIsNoOp(t *testing.T) {
	var p *Patch
	base := map[string]content.Value{"x": content.NewInt(1)}
	if changed := p.MergeGlobalsInto(base); changed != nil {
		t.Fatalf("expected nil changed set from nil patch, got %v", changed)
	}
	if base["x"].String() != "1" {
		t.Fatal("nil patch merge should not touch base")
	}
}
