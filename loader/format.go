package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"loom/content"
	"loom/path"
)

// builder reconstructs a content.Tree from the document format's tagged
// JSON: each shape gets its own small reader, errors bubble up wrapped
// with the detail that failed.
type builder struct {
	tree *content.Tree
}

var commandMnemonics = map[string]content.ControlCommandKind{
	"ev": content.EvalStart, "/ev": content.EvalEnd, "out": content.EvalOutput,
	"du": content.Duplicate, "pop": content.PopEvaluated,
	"str": content.BeginString, "/str": content.EndString, "nop": content.NoOp,
	"choiceCnt": content.ChoiceCount, "turn": content.Turns, "visit": content.VisitIndex,
	"seq": content.SequenceShuffleIndex, "thread": content.StartThread,
	"done": content.Done, "end": content.End,
	"listInt": content.ListFromInt, "range": content.ListRange, "lrnd": content.ListRandom,
	"#": content.BeginTag, "/#": content.EndTag,
	"ret": content.PopFunction, "->->": content.PopTunnel,
}

var nativeOps = map[string]content.NativeFunctionKind{
	"+": content.OpAdd, "-": content.OpSubtract, "*": content.OpMultiply,
	"/": content.OpDivide, "%": content.OpMod, "neg": content.OpNegate,
	"==": content.OpEqual, "!=": content.OpNotEqual, ">": content.OpGreater,
	"<": content.OpLess, ">=": content.OpGreaterOrEqual, "<=": content.OpLessOrEqual,
	"&&": content.OpAnd, "||": content.OpOr, "!": content.OpNot,
	"min": content.OpMin, "max": content.OpMax,
	"has": content.OpHas, "hasnt": content.OpHasnt, "^": content.OpIntersect,
}

var unaryOps = map[content.NativeFunctionKind]bool{
	content.OpNegate: true, content.OpNot: true,
}

// buildContainerInto parses raw (a JSON array) as the content of the
// already-allocated container id, recursing into nested containers and
// named children found in the trailing metadata object.
func (b *builder) buildContainerInto(raw json.RawMessage, id path.NodeID) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return fmt.Errorf("container: %w", err)
	}

	n := len(arr)
	var meta map[string]json.RawMessage
	if n > 0 {
		if m, ok := asMetadata(arr[n-1]); ok {
			meta = m
			n--
		}
	}

	for i := 0; i < n; i++ {
		if err := b.addItem(id, arr[i]); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	// Metadata goes last so named children land after the story-order
	// items in the container's Content.
	if meta != nil {
		if err := b.applyMetadata(id, meta); err != nil {
			return err
		}
	}
	return nil
}

// leafObjectKeys names every key that marks a JSON object as a leaf
// runtime object rather than a container's trailing metadata.
var leafObjectKeys = []string{"^->", "VAR?", "CNT?", "VAR=", "temp=", "->", "->t->", "f()", "x()", "*", "#", "n()"}

func asMetadata(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(bytes.TrimSpace(raw)) == 0 || raw[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	for _, k := range leafObjectKeys {
		if _, ok := m[k]; ok {
			return nil, false
		}
	}
	return m, true
}

func (b *builder) applyMetadata(id path.NodeID, meta map[string]json.RawMessage) error {
	node := b.tree.Node(id)
	container := b.tree.Container(node)
	if container == nil {
		return fmt.Errorf("metadata attached to a non-container node")
	}
	if raw, ok := meta["#n"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return fmt.Errorf("#n: %w", err)
		}
		container.Name = name
	}
	if raw, ok := meta["#f"]; ok {
		var flags int
		if err := json.Unmarshal(raw, &flags); err != nil {
			return fmt.Errorf("#f: %w", err)
		}
		container.VisitsCounted = flags&0x1 != 0
		container.TurnIndexCounted = flags&0x2 != 0
		container.CountingAtStartOnly = flags&0x4 != 0
	}
	for name, raw := range meta {
		if name == "#n" || name == "#f" {
			continue
		}
		childID := b.tree.AddContainer(id, name)
		if err := b.buildContainerInto(raw, childID); err != nil {
			return fmt.Errorf("named child %q: %w", name, err)
		}
	}
	return nil
}

func (b *builder) addItem(parentID path.NodeID, raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty item")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		return b.addStringLeaf(parentID, s)
	case '[':
		childID := b.tree.AddContainer(parentID, "")
		return b.buildContainerInto(raw, childID)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return err
		}
		return b.addObjectLeaf(parentID, obj)
	default:
		return b.addNumberLeaf(parentID, raw)
	}
}

func (b *builder) addStringLeaf(parentID path.NodeID, s string) error {
	switch {
	case s == "\n":
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeText, Text: "\n"}, "")
	case s == "<>":
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeGlue}, "")
	case commandMnemonicMatch(s) != nil:
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeControlCommand, Command: content.ControlCommand{Kind: *commandMnemonicMatch(s)}}, "")
	case strings.HasPrefix(s, "^"):
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeText, Text: strings.TrimPrefix(s, "^")}, "")
	case strings.HasPrefix(s, "->"):
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeDivert, Divert: content.Divert{Target: path.Parse(s[2:])}}, "")
	case strings.HasPrefix(s, "CNT?"):
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeVariableReference, VarRef: content.VariableReference{IsCountRef: true, PathForCount: path.Parse(s[4:])}}, "")
	case strings.HasPrefix(s, "VAR?"):
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeVariableReference, VarRef: content.VariableReference{Name: s[4:]}}, "")
	case strings.HasPrefix(s, "VAR="):
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeVariableAssignment, VarAssign: content.VariableAssignment{Name: s[4:], IsGlobal: true}}, "")
	case strings.HasPrefix(s, "temp="):
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeVariableAssignment, VarAssign: content.VariableAssignment{Name: s[5:], IsGlobal: false, IsNewDeclaration: true}}, "")
	default:
		return fmt.Errorf("unrecognized string leaf %q", s)
	}
	return nil
}

func commandMnemonicMatch(s string) *content.ControlCommandKind {
	if k, ok := commandMnemonics[s]; ok {
		return &k
	}
	return nil
}

func (b *builder) addNumberLeaf(parentID path.NodeID, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("number leaf: %w", err)
	}
	s := num.String()
	if strings.ContainsAny(s, ".eE") {
		f, err := num.Float64()
		if err != nil {
			return err
		}
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeValue, Value: content.NewFloat(f)}, "")
		return nil
	}
	n, err := num.Int64()
	if err != nil {
		return err
	}
	b.tree.AddChild(parentID, content.Node{Kind: content.NodeValue, Value: content.NewInt(int(n))}, "")
	return nil
}

func (b *builder) addObjectLeaf(parentID path.NodeID, obj map[string]json.RawMessage) error {
	switch {
	case has(obj, "^->"):
		target, err := str(obj, "^->")
		if err != nil {
			return err
		}
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeValue, Value: content.NewDivertTarget(path.Parse(target))}, "")
		return nil

	case has(obj, "->"):
		target, err := str(obj, "->")
		if err != nil {
			return err
		}
		d := content.Divert{Target: path.Parse(target)}
		if boolField(obj, "var") {
			d.Flags.VarDivertName = target
			d.Target = path.Path{}
		}
		d.Flags.IsConditional = boolField(obj, "c")
		d.Flags.PushesToStack = boolField(obj, "stack")
		d.Flags.IsFunction = boolField(obj, "f")
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeDivert, Divert: d}, "")
		return nil

	case has(obj, "->t->"):
		target, err := str(obj, "->t->")
		if err != nil {
			return err
		}
		d := content.Divert{Target: path.Parse(target)}
		d.Flags.PushesToStack = true
		d.Flags.IsConditional = boolField(obj, "c")
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeDivert, Divert: d}, "")
		return nil

	case has(obj, "f()"):
		target, err := str(obj, "f()")
		if err != nil {
			return err
		}
		d := content.Divert{Target: path.Parse(target)}
		d.Flags.PushesToStack = true
		d.Flags.IsFunction = true
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeDivert, Divert: d}, "")
		return nil

	case has(obj, "x()"):
		target, err := str(obj, "x()")
		if err != nil {
			return err
		}
		d := content.Divert{Target: path.Parse(target)}
		d.Flags.IsExternal = true
		d.Flags.ExternalArgs = intField(obj, "n")
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeDivert, Divert: d}, "")
		return nil

	case has(obj, "*"):
		target, err := str(obj, "*")
		if err != nil {
			return err
		}
		cp := content.ChoicePoint{
			Target:               path.Parse(target),
			OnceOnly:             !boolField(obj, "sticky"),
			IsInvisibleDefault:   boolField(obj, "invisible"),
			HasCondition:         boolField(obj, "cond"),
			HasStartContent:      boolField(obj, "startContent"),
			HasChoiceOnlyContent: boolField(obj, "choiceOnlyContent"),
		}
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeChoicePoint, Choice: cp}, "")
		return nil

	case has(obj, "#"):
		text, err := str(obj, "#")
		if err != nil {
			return err
		}
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeTag, Tag: content.Tag{Text: text}}, "")
		return nil

	case has(obj, "n()"):
		opName, err := str(obj, "n()")
		if err != nil {
			return err
		}
		op, ok := nativeOps[opName]
		if !ok {
			return fmt.Errorf("unknown native op %q", opName)
		}
		argc := 2
		if unaryOps[op] {
			argc = 1
		}
		if v, ok := obj["na"]; ok {
			argc = intFieldRaw(v)
		}
		b.tree.AddChild(parentID, content.Node{Kind: content.NodeNativeFunctionCall, NativeCall: content.NativeFunctionCall{Op: op, NumArgs: argc}}, "")
		return nil

	default:
		return fmt.Errorf("unrecognized leaf object with keys %v", keysOf(obj))
	}
}

func has(obj map[string]json.RawMessage, key string) bool {
	_, ok := obj[key]
	return ok
}

func str(obj map[string]json.RawMessage, key string) (string, error) {
	var s string
	if err := json.Unmarshal(obj[key], &s); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func boolField(obj map[string]json.RawMessage, key string) bool {
	raw, ok := obj[key]
	if !ok {
		return false
	}
	var v bool
	_ = json.Unmarshal(raw, &v)
	return v
}

func intField(obj map[string]json.RawMessage, key string) int {
	raw, ok := obj[key]
	if !ok {
		return 0
	}
	return intFieldRaw(raw)
}

func intFieldRaw(raw json.RawMessage) int {
	var n int
	_ = json.Unmarshal(raw, &n)
	return n
}

func keysOf(obj map[string]json.RawMessage) []string {
	out := make([]string, 0, len(obj))
	for k := range obj {
		out = append(out, k)
	}
	return out
}
