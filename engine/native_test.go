package engine

import (
	"testing"

	"loom/content"
	"loom/listval"
)

func TestApplyNativeNumericPromotion(t *testing.T) {
	cases := []struct {
		name string
		op   content.NativeFunctionKind
		a, b content.Value
		want string
	}{
		{"int add", content.OpAdd, content.NewInt(2), content.NewInt(3), "5"},
		{"mixed add promotes", content.OpAdd, content.NewInt(2), content.NewFloat(0.5), "2.5"},
		{"int division truncates", content.OpDivide, content.NewInt(7), content.NewInt(2), "3"},
		{"float division", content.OpDivide, content.NewFloat(7), content.NewInt(2), "3.5"},
		{"mod", content.OpMod, content.NewInt(7), content.NewInt(3), "1"},
		{"min", content.OpMin, content.NewInt(4), content.NewInt(9), "4"},
		{"max", content.OpMax, content.NewInt(4), content.NewInt(9), "9"},
		{"comparison yields int", content.OpGreater, content.NewInt(4), content.NewInt(2), "1"},
		{"equality across kinds", content.OpEqual, content.NewInt(2), content.NewFloat(2), "1"},
	}
	for _, c := range cases {
		got, err := applyNative(c.op, []content.Value{c.a, c.b})
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("%s: got %v, want %s", c.name, got, c.want)
		}
	}
}

func TestApplyNativeStrings(t *testing.T) {
	got, err := applyNative(content.OpAdd, []content.Value{content.NewString("fore"), content.NewString("cast")})
	if err != nil || got.String() != "forecast" {
		t.Fatalf("string + string = %v (%v), want forecast", got, err)
	}
	if _, err := applyNative(content.OpSubtract, []content.Value{content.NewString("a"), content.NewString("b")}); err == nil {
		t.Fatal("string subtraction must be a type mismatch")
	}
	has, _ := applyNative(content.OpHas, []content.Value{content.NewString("forecast"), content.NewString("cast")})
	if has.String() != "1" {
		t.Fatalf("string has = %v, want 1", has)
	}
}

func TestApplyNativeErrors(t *testing.T) {
	if _, err := applyNative(content.OpDivide, []content.Value{content.NewInt(1), content.NewInt(0)}); err == nil {
		t.Fatal("division by zero must error")
	}
	if _, err := applyNative(content.OpAdd, []content.Value{content.NewString("a"), content.NewInt(1)}); err == nil {
		t.Fatal("string + int must be a type mismatch")
	}
}

func TestApplyNativeListOps(t *testing.T) {
	a := listval.New("mood").
		Add(listval.Item{Origin: "mood", Name: "calm", Value: 1}).
		Add(listval.Item{Origin: "mood", Name: "wary", Value: 2})
	b := listval.New("mood").
		Add(listval.Item{Origin: "mood", Name: "wary", Value: 2})

	union, err := applyNative(content.OpAdd, []content.Value{content.NewList(a), content.NewList(b)})
	if err != nil {
		t.Fatalf("union: %v", err)
	}
	if union.(content.ListValue).V.Len() != 2 {
		t.Fatalf("union size = %d, want 2", union.(content.ListValue).V.Len())
	}

	inter, err := applyNative(content.OpIntersect, []content.Value{content.NewList(a), content.NewList(b)})
	if err != nil {
		t.Fatalf("intersect: %v", err)
	}
	if inter.(content.ListValue).V.Len() != 1 {
		t.Fatalf("intersection size = %d, want 1", inter.(content.ListValue).V.Len())
	}

	has, err := applyNative(content.OpHas, []content.Value{content.NewList(a), content.NewList(b)})
	if err != nil || has.String() != "1" {
		t.Fatalf("has = %v (%v), want 1", has, err)
	}

	diff, err := applyNative(content.OpSubtract, []content.Value{content.NewList(a), content.NewList(b)})
	if err != nil {
		t.Fatalf("difference: %v", err)
	}
	if diff.(content.ListValue).V.Len() != 1 {
		t.Fatalf("difference size = %d, want 1", diff.(content.ListValue).V.Len())
	}
}
