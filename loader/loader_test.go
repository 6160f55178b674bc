package loader

import (
	"testing"

	"loom/content"
)

func TestLoadSimpleStory(t *testing.T) {
	doc := `{
		"inkVersion": 21,
		"root": [
			"^Hello, world!",
			"\n",
			"end"
		]
	}`

	tree, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	root := tree.Container(tree.Node(tree.Root))
	if root == nil {
		t.Fatal("root is not a container")
	}
	if len(root.Content) != 3 {
		t.Fatalf("expected 3 content items, got %d", len(root.Content))
	}

	first := tree.Node(root.Content[0])
	if first.Kind != content.NodeText || first.Text != "Hello, world!" {
		t.Errorf("unexpected first node: %+v", first)
	}
	last := tree.Node(root.Content[2])
	if last.Kind != content.NodeControlCommand || last.Command.Kind != content.End {
		t.Errorf("unexpected last node: %+v", last)
	}
}

func TestLoadRejectsOldVersion(t *testing.T) {
	_, err := Load([]byte(`{"inkVersion": 10, "root": ["^hi"]}`))
	le, ok := err.(*LoadError)
	if !ok || le.Code != ErrVersionTooOld {
		t.Fatalf("expected version-too-old, got %v", err)
	}
}

func TestLoadRejectsNewVersion(t *testing.T) {
	_, err := Load([]byte(`{"inkVersion": 99, "root": ["^hi"]}`))
	le, ok := err.(*LoadError)
	if !ok || le.Code != ErrVersionTooNew {
		t.Fatalf("expected version-too-new, got %v", err)
	}
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	_, err := Load([]byte(`{"inkVersion": 21}`))
	le, ok := err.(*LoadError)
	if !ok || le.Code != ErrMissingRoot {
		t.Fatalf("expected missing-root, got %v", err)
	}
}

func TestLoadNamedKnotAndDivert(t *testing.T) {
	doc := `{
		"inkVersion": 21,
		"root": [
			{"->": "hello"},
			{
				"#n": "main",
				"hello": ["^Hi there", "\n", "end"]
			}
		]
	}`
	tree, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root := tree.Container(tree.Node(tree.Root))
	if root.Name != "main" {
		t.Errorf("expected root name main, got %q", root.Name)
	}
	divertNode := tree.Node(root.Content[0])
	if divertNode.Kind != content.NodeDivert {
		t.Fatalf("expected divert node, got %+v", divertNode)
	}
	if divertNode.Divert.Target.String() != "hello" {
		t.Errorf("unexpected divert target %q", divertNode.Divert.Target.String())
	}
}

func TestLoadChoicePoint(t *testing.T) {
	doc := `{
		"inkVersion": 21,
		"root": [
			{"*": "0", "cond": false},
			"end"
		]
	}`
	tree, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root := tree.Container(tree.Node(tree.Root))
	cpNode := tree.Node(root.Content[0])
	if cpNode.Kind != content.NodeChoicePoint {
		t.Fatalf("expected choice point, got %+v", cpNode)
	}
	if !cpNode.Choice.OnceOnly {
		t.Error("expected choice point to default once-only")
	}
}
