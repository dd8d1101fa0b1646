package graph

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestKindText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindRoom, "room"},
		{KindUser, "user"},
		{KindServer, "server"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			got, err := tt.kind.MarshalText()
			if err != nil {
				t.Fatalf("MarshalText() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalText() = %q, want %q", got, tt.want)
			}

			var back Kind
			if err := back.UnmarshalText(got); err != nil {
				t.Fatalf("UnmarshalText() error = %v", err)
			}
			if back != tt.kind {
				t.Errorf("UnmarshalText() = %v, want %v", back, tt.kind)
			}
		})
	}

	t.Run("unknown kind is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseKind("channel"); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind() error = %v, want ErrUnknownKind", err)
		}
		if _, err := Kind(7).MarshalText(); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("MarshalText() error = %v, want ErrUnknownKind", err)
		}
	})
}

func TestNodeLabel(t *testing.T) {
	t.Parallel()

	n := Node{Kind: KindServer, ID: 42}
	if got := n.Label(); got != "server_42" {
		t.Errorf("Label() = %q, want %q", got, "server_42")
	}
}

func TestGraphEdges(t *testing.T) {
	t.Parallel()

	t.Run("self-loop is rejected", func(t *testing.T) {
		t.Parallel()
		g := New()
		a := g.AddNode(Node{Kind: KindRoom, ID: 1})
		if err := g.AddEdge(a, a); !errors.Is(err, ErrSelfLoop) {
			t.Errorf("AddEdge() error = %v, want ErrSelfLoop", err)
		}
	})

	t.Run("out of range endpoint is rejected", func(t *testing.T) {
		t.Parallel()
		g := New()
		a := g.AddNode(Node{Kind: KindRoom, ID: 1})
		if err := g.AddEdge(a, 5); !errors.Is(err, ErrNodeOutOfRange) {
			t.Errorf("AddEdge() error = %v, want ErrNodeOutOfRange", err)
		}
		if _, err := g.UpdateEdge(-1, a); !errors.Is(err, ErrNodeOutOfRange) {
			t.Errorf("UpdateEdge() error = %v, want ErrNodeOutOfRange", err)
		}
	})

	t.Run("update edge is idempotent in both directions", func(t *testing.T) {
		t.Parallel()
		g := New()
		a := g.AddNode(Node{Kind: KindServer, ID: 1})
		b := g.AddNode(Node{Kind: KindRoom, ID: 2})

		created, err := g.UpdateEdge(a, b)
		if err != nil || !created {
			t.Fatalf("first UpdateEdge() = %v, %v; want true, nil", created, err)
		}
		created, err = g.UpdateEdge(b, a)
		if err != nil || created {
			t.Fatalf("second UpdateEdge() = %v, %v; want false, nil", created, err)
		}
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
		}
		if !g.HasEdge(b, a) {
			t.Error("HasEdge(b, a) = false, want true")
		}
	})

	t.Run("add edge always appends", func(t *testing.T) {
		t.Parallel()
		g := New()
		a := g.AddNode(Node{Kind: KindUser, ID: 1})
		b := g.AddNode(Node{Kind: KindRoom, ID: 2})
		for range 2 {
			if err := g.AddEdge(a, b); err != nil {
				t.Fatalf("AddEdge() error = %v", err)
			}
		}
		if g.EdgeCount() != 2 {
			t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
		}
		if g.Degree(a) != 2 {
			t.Errorf("Degree() = %d, want 2", g.Degree(a))
		}
	})
}

func TestGraphMap(t *testing.T) {
	t.Parallel()

	g := New()
	a := g.AddNode(Node{Kind: KindUser, ID: 1})
	b := g.AddNode(Node{Kind: KindRoom, ID: 2})
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	mapped := g.Map(func(n Node) Node {
		n.ID += 100
		return n
	})

	if mapped.Node(a).ID != 101 || mapped.Node(b).ID != 102 {
		t.Errorf("mapped ids = %d, %d; want 101, 102", mapped.Node(a).ID, mapped.Node(b).ID)
	}
	if g.Node(a).ID != 1 {
		t.Error("Map() modified the source graph")
	}
	if !mapped.HasEdge(a, b) || mapped.EdgeCount() != 1 {
		t.Error("Map() did not keep the topology")
	}

	// mutating the copy must not leak into the source
	c := mapped.AddNode(Node{Kind: KindServer, ID: 3})
	if err := mapped.AddEdge(a, c); err != nil {
		t.Fatal(err)
	}
	if g.Degree(a) != 1 {
		t.Errorf("source Degree() = %d after mutating copy, want 1", g.Degree(a))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	buildRoom(t, b, "!r1:hs1", "@a:hs1", "@b:hs2")
	buildRoom(t, b, "!r2:hs2", "@b:hs2", "@c:hs3")
	g := b.Graph()

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	back, err := FromSnapshot(s)
	if err != nil {
		t.Fatalf("FromSnapshot() error = %v", err)
	}

	if back.NodeCount() != g.NodeCount() {
		t.Fatalf("NodeCount() = %d, want %d", back.NodeCount(), g.NodeCount())
	}
	for i := range g.NodeCount() {
		if back.Node(NodeIndex(i)) != g.Node(NodeIndex(i)) {
			t.Errorf("node %d = %v, want %v", i, back.Node(NodeIndex(i)), g.Node(NodeIndex(i)))
		}
	}
	want := g.Edges()
	got := back.Edges()
	if len(got) != len(want) {
		t.Fatalf("EdgeCount() = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	t.Parallel()

	g := New()
	a := g.AddNode(Node{Kind: KindRoom, ID: 7})
	b := g.AddNode(Node{Kind: KindUser, ID: 8})
	if err := g.AddEdge(b, a); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"nodes":[{"kind":"room","id":7},{"kind":"user","id":8}],"edges":[[1,0]]}`
	if string(data) != want {
		t.Errorf("snapshot JSON = %s, want %s", data, want)
	}
}

func TestFromSnapshotRejectsBadEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap Snapshot
		want error
	}{
		{
			name: "dangling endpoint",
			snap: Snapshot{Nodes: []Node{{Kind: KindRoom, ID: 1}}, Edges: [][2]NodeIndex{{0, 3}}},
			want: ErrNodeOutOfRange,
		},
		{
			name: "self-loop",
			snap: Snapshot{Nodes: []Node{{Kind: KindRoom, ID: 1}}, Edges: [][2]NodeIndex{{0, 0}}},
			want: ErrSelfLoop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := FromSnapshot(tt.snap); !errors.Is(err, tt.want) {
				t.Errorf("FromSnapshot() error = %v, want %v", err, tt.want)
			}
		})
	}
}
