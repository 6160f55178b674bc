package listval

import "testing"

func red() Item    { return Item{Origin: "Colours", Name: "red", Value: 1} }
func green() Item  { return Item{Origin: "Colours", Name: "green", Value: 2} }
func blue() Item   { return Item{Origin: "Colours", Name: "blue", Value: 3} }

func TestUnionAndIntersection(t *testing.T) {
	a := New().Add(red()).Add(green())
	b := New().Add(green()).Add(blue())

	u := Union(a, b)
	if u.Len() != 3 {
		t.Fatalf("expected union of 3, got %d", u.Len())
	}

	i := Intersection(a, b)
	if i.Len() != 1 || !i.Contains(green()) {
		t.Fatalf("expected intersection {green}, got %v", i.Items())
	}
}

func TestWithoutRemovesItems(t *testing.T) {
	a := New().Add(red()).Add(green()).Add(blue())
	b := New().Add(green())
	out := Without(a, b)
	if out.Len() != 2 || out.Contains(green()) {
		t.Fatalf("expected green removed, got %v", out.Items())
	}
}

func TestHasAndHasNot(t *testing.T) {
	a := New().Add(red()).Add(green())
	b := New().Add(red())
	if !Has(a, b) {
		t.Fatal("expected a to have all of b")
	}
	if HasNot(a, b) {
		t.Fatal("expected HasNot false when a has b")
	}
	c := New().Add(blue())
	if Has(a, c) {
		t.Fatal("expected a not to have blue")
	}
}

func TestMinMaxOrderByRank(t *testing.T) {
	a := New().Add(blue()).Add(red()).Add(green())
	min, ok := a.Min()
	if !ok || min.Name != "red" {
		t.Fatalf("expected min red, got %v ok=%v", min, ok)
	}
	max, ok := a.Max()
	if !ok || max.Name != "blue" {
		t.Fatalf("expected max blue, got %v ok=%v", max, ok)
	}
}

func TestEqualIgnoresOriginBookkeeping(t *testing.T) {
	a := New("Colours").Add(red())
	b := New().Add(red())
	if !Equal(a, b) {
		t.Fatal("expected equal membership sets to compare equal")
	}
}

type fakeDefs struct {
	items map[string][]Item
}

func (f fakeDefs) ItemByValue(origin string, value int) (string, bool) {
	for _, it := range f.items[origin] {
		if it.Value == value {
			return it.Name, true
		}
	}
	return "", false
}

func (f fakeDefs) ValueByName(origin, name string) (int, bool) {
	for _, it := range f.items[origin] {
		if it.Name == name {
			return it.Value, true
		}
	}
	return 0, false
}

func (f fakeDefs) AllItems(origin string) []Item { return f.items[origin] }

func (f fakeDefs) OriginNames() []string {
	out := make([]string, 0, len(f.items))
	for k := range f.items {
		out = append(out, k)
	}
	return out
}

func TestFromIntAndRange(t *testing.T) {
	defs := fakeDefs{items: map[string][]Item{
		"Colours": {red(), green(), blue()},
	}}

	l, ok := FromInt(defs, "Colours", 2)
	if !ok || l.Len() != 1 || !l.Contains(green()) {
		t.Fatalf("expected single-item list {green}, got %v ok=%v", l.Items(), ok)
	}

	r := Range(defs, "Colours", 1, 2)
	if r.Len() != 2 || !r.Contains(red()) || !r.Contains(green()) {
		t.Fatalf("expected range {red, green}, got %v", r.Items())
	}
}
