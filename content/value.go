// Package content implements the Content Tree component: the runtime
// object zoo produced by loading a compiled story (values, control
// commands, diverts, variable references, native calls, choice points,
// tags and glue) plus the Container/Tree arena that holds them and the
// addressing/traversal logic (NextContent, path resolution) the Story
// Engine steps over.
package content

import (
	"fmt"
	"strconv"
	"strings"

	"loom/listval"
	"loom/path"
)

// ValueKind discriminates the concrete type held by a Value.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueBool
	ValueDivertTarget
	ValueVariablePointer
	ValueList
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "Int"
	case ValueFloat:
		return "Float"
	case ValueString:
		return "String"
	case ValueBool:
		return "Bool"
	case ValueDivertTarget:
		return "DivertTarget"
	case ValueVariablePointer:
		return "VariablePointer"
	case ValueList:
		return "List"
	default:
		return "Unknown"
	}
}

// Value is the interface every runtime value satisfies, mirroring ink's
// own Value<T> hierarchy: a type tag, a display form, truthiness for use
// as a branch/conditional operand, and structural equality.
type Value interface {
	Kind() ValueKind
	String() string
	Truthy() bool
	Equal(Value) bool
}

// IntValue is a whole-number value.
type IntValue struct{ V int }

func NewInt(v int) IntValue       { return IntValue{V: v} }
func (v IntValue) Kind() ValueKind { return ValueInt }
func (v IntValue) String() string  { return strconv.Itoa(v.V) }
func (v IntValue) Truthy() bool    { return v.V != 0 }
func (v IntValue) Equal(o Value) bool {
	if other, ok := o.(IntValue); ok {
		return v.V == other.V
	}
	if other, ok := o.(FloatValue); ok {
		return float64(v.V) == other.V
	}
	return false
}

// FloatValue is a floating-point value.
type FloatValue struct{ V float64 }

func NewFloat(v float64) FloatValue { return FloatValue{V: v} }
func (v FloatValue) Kind() ValueKind { return ValueFloat }
func (v FloatValue) String() string {
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}
func (v FloatValue) Truthy() bool { return v.V != 0 }
func (v FloatValue) Equal(o Value) bool {
	if other, ok := o.(FloatValue); ok {
		return v.V == other.V
	}
	if other, ok := o.(IntValue); ok {
		return v.V == float64(other.V)
	}
	return false
}

// StringValue is a text value, whether a literal or the result of
// begin/end-string evaluation.
type StringValue struct{ V string }

func NewString(v string) StringValue { return StringValue{V: v} }
func (v StringValue) Kind() ValueKind { return ValueString }
func (v StringValue) String() string  { return v.V }
func (v StringValue) Truthy() bool    { return len(v.V) > 0 }
func (v StringValue) Equal(o Value) bool {
	other, ok := o.(StringValue)
	return ok && v.V == other.V
}

// BoolValue is a boolean value.
type BoolValue struct{ V bool }

func NewBool(v bool) BoolValue      { return BoolValue{V: v} }
func (v BoolValue) Kind() ValueKind { return ValueBool }
func (v BoolValue) String() string {
	if v.V {
		return "true"
	}
	return "false"
}
func (v BoolValue) Truthy() bool { return v.V }
func (v BoolValue) Equal(o Value) bool {
	other, ok := o.(BoolValue)
	return ok && v.V == other.V
}

// DivertTargetValue carries a path rather than jumping to it; produced by
// `-> knot` used as a value (e.g. assigned to a variable) rather than as
// a control-flow divert.
type DivertTargetValue struct{ Target path.Path }

func NewDivertTarget(p path.Path) DivertTargetValue { return DivertTargetValue{Target: p} }
func (v DivertTargetValue) Kind() ValueKind          { return ValueDivertTarget }
func (v DivertTargetValue) String() string           { return "DivertTargetValue(" + v.Target.String() + ")" }
func (v DivertTargetValue) Truthy() bool             { return true }
func (v DivertTargetValue) Equal(o Value) bool {
	other, ok := o.(DivertTargetValue)
	return ok && v.Target.Equal(other.Target)
}

// VariablePointerValue names a variable by reference together with a
// call-stack depth, the shape ink uses for `ref` parameters. The engine
// does not assign through it: a variable assignment always writes the
// variable named by the assignment itself.
type VariablePointerValue struct {
	Name          string
	ContextIndex  int // -1 = unresolved/global, >=0 = callstack frame depth
}

func NewVariablePointer(name string, contextIndex int) VariablePointerValue {
	return VariablePointerValue{Name: name, ContextIndex: contextIndex}
}
func (v VariablePointerValue) Kind() ValueKind { return ValueVariablePointer }
func (v VariablePointerValue) String() string  { return "VariablePointerValue(" + v.Name + ")" }
func (v VariablePointerValue) Truthy() bool    { return true }
func (v VariablePointerValue) Equal(o Value) bool {
	other, ok := o.(VariablePointerValue)
	return ok && v.Name == other.Name
}

// ListValue wraps a listval.List as a runtime Value.
type ListValue struct{ V listval.List }

func NewList(l listval.List) ListValue { return ListValue{V: l} }
func (v ListValue) Kind() ValueKind    { return ValueList }
func (v ListValue) String() string {
	items := v.V.Items()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Name
	}
	return strings.Join(parts, ", ")
}
func (v ListValue) Truthy() bool { return v.V.Len() > 0 }
func (v ListValue) Equal(o Value) bool {
	other, ok := o.(ListValue)
	return ok && listval.Equal(v.V, other.V)
}

// CastToFloat returns the value as a float64 when it is numeric.
func CastToFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case IntValue:
		return float64(t.V), true
	case FloatValue:
		return t.V, true
	default:
		return 0, false
	}
}

// CastToInt returns the value as an int when it is numeric (floats
// truncate, matching ink's int() coercion).
func CastToInt(v Value) (int, bool) {
	switch t := v.(type) {
	case IntValue:
		return t.V, true
	case FloatValue:
		return int(t.V), true
	default:
		return 0, false
	}
}

// Describe is used by error messages and trace logging to name a value's
// runtime type the way ink's own diagnostics do.
func Describe(v Value) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%s(%s)", v.Kind(), v.String())
}
