// Package listval implements ink's list value: a set of named items drawn
// from one or more named "origin" list definitions, each item carrying an
// integer rank used for ordering and comparison. Arithmetic (union,
// intersection, difference, has/hasNot) is set algebra over that rank.
package listval

import "sort"

// Item is one element of a list value: the origin list it was defined in,
// its name, and its integer rank within that origin.
type Item struct {
	Origin string
	Name   string
	Value  int
}

func (i Item) key() Item { return Item{Origin: i.Origin, Name: i.Name, Value: i.Value} }

// List is a set of Items plus the set of origin names that contributed to
// it (origins matter for listFromInt/listRange resolution and for the
// ink idiom of an "all items of this origin" list).
type List struct {
	items   map[Item]struct{}
	origins map[string]struct{}
}

// New returns an empty list, optionally naming its origin(s) up front —
// ink lists remember which origin(s) they were declared against even
// when empty, so e.g. LIST(Colours) - LIST(Colours) still knows it is a
// Colours list.
func New(origins ...string) List {
	l := List{items: map[Item]struct{}{}, origins: map[string]struct{}{}}
	for _, o := range origins {
		l.origins[o] = struct{}{}
	}
	return l
}

func (l List) clone() List {
	out := New()
	for k := range l.items {
		out.items[k] = struct{}{}
	}
	for o := range l.origins {
		out.origins[o] = struct{}{}
	}
	return out
}

// Add returns a new list with item added (and its origin recorded).
func (l List) Add(it Item) List {
	out := l.clone()
	out.items[it.key()] = struct{}{}
	out.origins[it.Origin] = struct{}{}
	return out
}

// Items returns the list's elements ordered by ascending Value, the order
// ink uses for string conversion and min/max.
func (l List) Items() []Item {
	out := make([]Item, 0, len(l.items))
	for it := range l.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (l List) Len() int { return len(l.items) }

func (l List) Contains(it Item) bool {
	_, ok := l.items[it.key()]
	return ok
}

// Union implements ink's `+` over lists.
func Union(a, b List) List {
	out := a.clone()
	for it := range b.items {
		out.items[it] = struct{}{}
	}
	for o := range b.origins {
		out.origins[o] = struct{}{}
	}
	return out
}

// Intersection implements ink's `^` over lists.
func Intersection(a, b List) List {
	out := New()
	for it := range a.items {
		if _, ok := b.items[it]; ok {
			out.items[it] = struct{}{}
		}
	}
	for o := range a.origins {
		if _, ok := b.origins[o]; ok {
			out.origins[o] = struct{}{}
		}
	}
	return out
}

// Without implements ink's `-` over lists: every item of b removed from a.
func Without(a, b List) List {
	out := New()
	for it := range a.items {
		if _, ok := b.items[it]; !ok {
			out.items[it] = struct{}{}
		}
	}
	for o := range a.origins {
		out.origins[o] = struct{}{}
	}
	return out
}

// Has reports whether every item of b is present in a (ink's `has`).
func Has(a, b List) bool {
	for it := range b.items {
		if _, ok := a.items[it]; !ok {
			return false
		}
	}
	return true
}

// HasNot is the negation ink exposes directly rather than as !has.
func HasNot(a, b List) bool { return !Has(a, b) }

// Equal reports set equality (origins aside — two equal-membership lists
// with different recorded origins still compare equal, matching ink).
func Equal(a, b List) bool {
	if len(a.items) != len(b.items) {
		return false
	}
	for it := range a.items {
		if _, ok := b.items[it]; !ok {
			return false
		}
	}
	return true
}

// Max returns the highest-ranked item, or ok=false for an empty list.
func (l List) Max() (Item, bool) {
	items := l.Items()
	if len(items) == 0 {
		return Item{}, false
	}
	return items[len(items)-1], true
}

// Min returns the lowest-ranked item, or ok=false for an empty list.
func (l List) Min() (Item, bool) {
	items := l.Items()
	if len(items) == 0 {
		return Item{}, false
	}
	return items[0], true
}

// Origins returns the origin list names this value was declared against,
// sorted for determinism.
func (l List) Origins() []string {
	out := make([]string, 0, len(l.origins))
	for o := range l.origins {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// Definitions is the list-definition storage collaborator: given an
// origin list name and an item name or rank, it resolves the other half.
// Its contents live with the document loader; the core only
// needs this query surface to implement listFromInt/listRange/listRandom
// and the "all items of an origin" idiom.
type Definitions interface {
	// ItemByValue returns the item name for a rank within an origin list.
	ItemByValue(origin string, value int) (name string, ok bool)
	// ValueByName returns the rank for a named item within an origin list.
	ValueByName(origin, name string) (value int, ok bool)
	// AllItems returns every (name, value) pair defined for an origin,
	// used to build listRange and "all of this origin" lists.
	AllItems(origin string) []Item
	// OriginNames returns every origin list name known to the collaborator,
	// used when listFromInt must pick an origin list without one named
	// explicitly (ink falls back to searching every known list).
	OriginNames() []string
}

// FromInt builds a single-item list by looking up a rank within an origin
// (or, if origin is empty, searching every known origin for the first
// list that defines that rank — ink's listFromInt behavior for bare
// integer-to-list conversion).
func FromInt(defs Definitions, origin string, value int) (List, bool) {
	if origin != "" {
		name, ok := defs.ItemByValue(origin, value)
		if !ok {
			return List{}, false
		}
		return New(origin).Add(Item{Origin: origin, Name: name, Value: value}), true
	}
	for _, o := range defs.OriginNames() {
		if name, ok := defs.ItemByValue(o, value); ok {
			return New(o).Add(Item{Origin: o, Name: name, Value: value}), true
		}
	}
	return List{}, false
}

// Range builds the list of every item in an origin whose rank falls
// within [min, max] inclusive.
func Range(defs Definitions, origin string, min, max int) List {
	out := New(origin)
	for _, it := range defs.AllItems(origin) {
		if it.Value >= min && it.Value <= max {
			out = out.Add(it)
		}
	}
	return out
}
