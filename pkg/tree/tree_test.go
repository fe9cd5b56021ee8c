package tree

import (
	"errors"
	"testing"

	"github.com/sigaihealth/vercelsourcerecover/pkg/models"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
		n     int
	}{
		{"flat", `{"files":[{"file":"src/a.js","uid":"x"},"b.txt"]}`, ShapeFlat, 2},
		{"array", `[{"name":"lib","type":"directory","children":[]},{"name":"a.txt","type":"file"}]`, ShapeArray, 2},
		{"single", `{"name":"src","type":"directory","children":[{"name":"a","type":"file"}]}`, ShapeSingle, 1},
		{"null files is a node", `{"files":null,"name":"x","type":"file"}`, ShapeSingle, 1},
	}

	for _, tt := range tests {
		l, err := Parse([]byte(tt.body))
		if err != nil {
			t.Fatalf("%s: Parse: %v", tt.name, err)
		}
		if l.Shape != tt.shape {
			t.Errorf("%s: shape = %v, want %v", tt.name, l.Shape, tt.shape)
		}
		if l.Len() != tt.n {
			t.Errorf("%s: Len() = %d, want %d", tt.name, l.Len(), tt.n)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, body := range []string{"", "  ", "null"} {
		if _, err := Parse([]byte(body)); !errors.Is(err, ErrEmptyListing) {
			t.Errorf("Parse(%q) err = %v, want ErrEmptyListing", body, err)
		}
	}
	if _, err := Parse([]byte(`42`)); err == nil {
		t.Error("Parse(42) should fail")
	}
}

func TestParseArrayKeepsNonObjectsAsNil(t *testing.T) {
	l, err := Parse([]byte(`["loose.txt", {"name":"a","type":"file"}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if l.Nodes[0] != nil {
		t.Errorf("expected nil node for string element, got %+v", l.Nodes[0])
	}
	if l.Nodes[1] == nil || l.Nodes[1].Kind != models.KindFile {
		t.Errorf("expected file node, got %+v", l.Nodes[1])
	}
}

func TestParseResolvesKinds(t *testing.T) {
	l, err := Parse([]byte(`[
		{"name":"d","type":"directory"},
		{"name":"implicit","type":"whatever","children":[]},
		{"name":"fn","type":"lambda","children":[{"name":"x","type":"file"}]},
		{"name":"mw","type":"edge"},
		{"name":"f","type":"file","uid":"abc"},
		{"name":"odd","type":"symlink"}
	]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []models.NodeKind{
		models.KindDirectory,
		models.KindDirectory,
		models.KindLambda,
		models.KindEdge,
		models.KindFile,
		models.KindUnknown,
	}
	for i, k := range want {
		if got := l.Nodes[i].Kind; got != k {
			t.Errorf("node %q kind = %v, want %v", l.Nodes[i].Name, got, k)
		}
	}
	if l.Nodes[0].HasChildren() {
		t.Error("directory without children array should report HasChildren() = false")
	}
	if !l.Nodes[1].HasChildren() {
		t.Error("empty children array should report HasChildren() = true")
	}
}

func TestCount(t *testing.T) {
	l, err := Parse([]byte(`[
		{"name":"src","type":"directory","children":[
			{"name":"a.js","type":"file"},
			{"name":"lib","type":"directory","children":[{"name":"b.js","type":"file"}]}
		]},
		{"name":"README.md","type":"file"}
	]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := CountNodes(l.Nodes); got != 5 {
		t.Errorf("CountNodes = %d, want 5", got)
	}
	if got := CountFiles(l.Nodes); got != 3 {
		t.Errorf("CountFiles = %d, want 3", got)
	}
}

func TestBuildChildPath(t *testing.T) {
	tests := []struct {
		parent, name, want string
	}{
		{"", "a.txt", "a.txt"},
		{"src", "a.txt", "src/a.txt"},
		{"src/lib", "b", "src/lib/b"},
	}
	for _, tt := range tests {
		if got := BuildChildPath(tt.parent, tt.name); got != tt.want {
			t.Errorf("BuildChildPath(%q, %q) = %q, want %q", tt.parent, tt.name, got, tt.want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		rel, dir, name string
	}{
		{"a.txt", "", "a.txt"},
		{"src/a.js", "src", "a.js"},
		{"src/lib/b.js", "src/lib", "b.js"},
	}
	for _, tt := range tests {
		dir, name := SplitPath(tt.rel)
		if dir != tt.dir || name != tt.name {
			t.Errorf("SplitPath(%q) = (%q, %q), want (%q, %q)", tt.rel, dir, name, tt.dir, tt.name)
		}
	}
}
