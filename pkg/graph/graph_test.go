package graph_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/JaimeStill/counsel/pkg/graph"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	Value int
	Trail []string
	Next  string
}

type delta struct {
	Add  int
	Mark string
	Next string
}

func mergeCounter(s counter, d delta) counter {
	s.Value += d.Add
	if d.Mark != "" {
		s.Trail = append(slices.Clone(s.Trail), d.Mark)
	}
	if d.Next != "" {
		s.Next = d.Next
	}
	return s
}

func cloneCounter(s counter) counter {
	s.Trail = slices.Clone(s.Trail)
	return s
}

func mark(name string, add int, next string) graph.NodeFunc[counter, delta] {
	return func(ctx context.Context, s counter) (delta, error) {
		return delta{Add: add, Mark: name, Next: next}, nil
	}
}

func byNext(s counter) string { return s.Next }

func newGraph(opts ...graph.Option[counter]) *graph.Graph[counter, delta] {
	opts = append([]graph.Option[counter]{graph.WithClone(cloneCounter)}, opts...)
	return graph.New("test", mergeCounter, opts...)
}

func mustCompile(t *testing.T, g *graph.Graph[counter, delta]) *graph.Runner[counter, delta] {
	t.Helper()
	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return r
}

func TestRunLinear(t *testing.T) {
	g := newGraph()
	g.AddNode("a", mark("a", 1, ""))
	g.AddNode("b", mark("b", 2, ""))
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.End)
	g.SetEntryPoint("a")

	got, err := mustCompile(t, g).Run(context.Background(), counter{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Value != 3 {
		t.Errorf("Value = %d, want 3", got.Value)
	}
	if !slices.Equal(got.Trail, []string{"a", "b"}) {
		t.Errorf("Trail = %v, want [a b]", got.Trail)
	}
}

func TestRunRouting(t *testing.T) {
	tests := []struct {
		name      string
		next      string
		wantTrail []string
	}{
		{name: "left branch", next: "left", wantTrail: []string{"start", "left"}},
		{name: "right branch", next: "right", wantTrail: []string{"start", "right"}},
		{name: "straight to end", next: "done", wantTrail: []string{"start"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph()
			g.AddNode("start", mark("start", 0, tt.next))
			g.AddNode("left", mark("left", 0, ""))
			g.AddNode("right", mark("right", 0, ""))
			g.AddRouting("start", byNext, map[string]string{
				"left":  "left",
				"right": "right",
				"done":  graph.End,
			})
			g.AddEdge("left", graph.End)
			g.AddEdge("right", graph.End)
			g.SetEntryPoint("start")

			got, err := mustCompile(t, g).Run(context.Background(), counter{})
			if err != nil {
				t.Fatalf("Run error: %v", err)
			}
			if !slices.Equal(got.Trail, tt.wantTrail) {
				t.Errorf("Trail = %v, want %v", got.Trail, tt.wantTrail)
			}
		})
	}
}

func TestCompileValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *graph.Graph[counter, delta])
		want  error
	}{
		{
			name: "missing entry point",
			build: func(g *graph.Graph[counter, delta]) {
				g.AddNode("a", mark("a", 0, ""))
				g.AddEdge("a", graph.End)
			},
			want: graph.ErrNoEntryPoint,
		},
		{
			name: "entry not registered",
			build: func(g *graph.Graph[counter, delta]) {
				g.AddNode("a", mark("a", 0, ""))
				g.AddEdge("a", graph.End)
				g.SetEntryPoint("missing")
			},
			want: graph.ErrNodeNotFound,
		},
		{
			name: "node without transition",
			build: func(g *graph.Graph[counter, delta]) {
				g.AddNode("a", mark("a", 0, ""))
				g.AddNode("b", mark("b", 0, ""))
				g.AddEdge("a", "b")
				g.SetEntryPoint("a")
			},
			want: graph.ErrNoTransition,
		},
		{
			name: "edge to unknown node",
			build: func(g *graph.Graph[counter, delta]) {
				g.AddNode("a", mark("a", 0, ""))
				g.AddEdge("a", "ghost")
				g.SetEntryPoint("a")
			},
			want: graph.ErrNodeNotFound,
		},
		{
			name: "routing to unknown node",
			build: func(g *graph.Graph[counter, delta]) {
				g.AddNode("a", mark("a", 0, ""))
				g.AddRouting("a", byNext, map[string]string{"x": "ghost", "y": graph.End})
				g.SetEntryPoint("a")
			},
			want: graph.ErrNodeNotFound,
		},
		{
			name: "edge from unknown node",
			build: func(g *graph.Graph[counter, delta]) {
				g.AddNode("a", mark("a", 0, ""))
				g.AddEdge("a", graph.End)
				g.AddEdge("ghost", "a")
				g.SetEntryPoint("a")
			},
			want: graph.ErrNodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph()
			tt.build(g)
			_, err := g.Compile()
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefinitionErrors(t *testing.T) {
	g := newGraph()

	if err := g.AddNode("a", mark("a", 0, "")); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	if err := g.AddNode("a", mark("a", 0, "")); !errors.Is(err, graph.ErrDuplicateNode) {
		t.Errorf("duplicate AddNode error = %v, want ErrDuplicateNode", err)
	}
	if err := g.AddNode(graph.End, mark("end", 0, "")); !errors.Is(err, graph.ErrInvalidNodeName) {
		t.Errorf("reserved AddNode error = %v, want ErrInvalidNodeName", err)
	}
	if err := g.AddEdge("a", graph.End); err != nil {
		t.Fatalf("AddEdge error: %v", err)
	}
	if err := g.AddRouting("a", byNext, map[string]string{"x": graph.End}); !errors.Is(err, graph.ErrDuplicateTransition) {
		t.Errorf("second transition error = %v, want ErrDuplicateTransition", err)
	}
	if err := g.AddRouting("b", byNext, nil); !errors.Is(err, graph.ErrInvalidRouting) {
		t.Errorf("empty routing error = %v, want ErrInvalidRouting", err)
	}
}

func TestStepLimit(t *testing.T) {
	g := newGraph(graph.WithMaxSteps[counter](5))
	g.AddNode("loop", mark("loop", 1, ""))
	g.AddEdge("loop", "loop")
	g.SetEntryPoint("loop")

	got, err := mustCompile(t, g).Run(context.Background(), counter{})
	if !errors.Is(err, graph.ErrStepLimit) {
		t.Fatalf("Run error = %v, want ErrStepLimit", err)
	}
	if got.Value != 5 {
		t.Errorf("Value = %d, want 5 merged steps before the limit", got.Value)
	}
}

func TestUnmappedRoute(t *testing.T) {
	g := newGraph()
	g.AddNode("a", mark("a", 0, "elsewhere"))
	g.AddRouting("a", byNext, map[string]string{"done": graph.End})
	g.SetEntryPoint("a")

	_, err := mustCompile(t, g).Run(context.Background(), counter{})
	if !errors.Is(err, graph.ErrUnmappedRoute) {
		t.Errorf("Run error = %v, want ErrUnmappedRoute", err)
	}
}

func TestNodeError(t *testing.T) {
	boom := errors.New("boom")

	g := newGraph()
	g.AddNode("a", mark("a", 1, ""))
	g.AddNode("b", func(ctx context.Context, s counter) (delta, error) {
		return delta{}, boom
	})
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.End)
	g.SetEntryPoint("a")

	got, err := mustCompile(t, g).Run(context.Background(), counter{})
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want boom", err)
	}
	if got.Value != 1 {
		t.Errorf("Value = %d, want state from before the failing node", got.Value)
	}
}

func TestNodePanic(t *testing.T) {
	g := newGraph()
	g.AddNode("a", func(ctx context.Context, s counter) (delta, error) {
		panic("unexpected")
	})
	g.AddEdge("a", graph.End)
	g.SetEntryPoint("a")

	_, err := mustCompile(t, g).Run(context.Background(), counter{})
	if !errors.Is(err, graph.ErrNodePanic) {
		t.Errorf("Run error = %v, want ErrNodePanic", err)
	}
}

func TestNodeReceivesSnapshot(t *testing.T) {
	g := newGraph()
	g.AddNode("mutate", func(ctx context.Context, s counter) (delta, error) {
		s.Trail[0] = "mutated"
		return delta{}, nil
	})
	g.AddEdge("mutate", graph.End)
	g.SetEntryPoint("mutate")

	initial := counter{Trail: []string{"original"}}
	got, err := mustCompile(t, g).Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Trail[0] != "original" || initial.Trail[0] != "original" {
		t.Errorf("node mutation leaked into state: %v", got.Trail)
	}
}

func TestStream(t *testing.T) {
	build := func() *graph.Runner[counter, delta] {
		g := newGraph()
		g.AddNode("a", mark("a", 1, ""))
		g.AddNode("b", mark("b", 1, ""))
		g.AddNode("c", mark("c", 1, ""))
		g.AddEdge("a", "b")
		g.AddEdge("b", "c")
		g.AddEdge("c", graph.End)
		g.SetEntryPoint("a")
		return mustCompile(t, g)
	}

	t.Run("one update per node", func(t *testing.T) {
		var nodes []string
		var last counter
		for u, err := range build().Stream(context.Background(), counter{}) {
			if err != nil {
				t.Fatalf("Stream error: %v", err)
			}
			nodes = append(nodes, u.Node)
			last = u.State
		}
		if !slices.Equal(nodes, []string{"a", "b", "c"}) {
			t.Errorf("nodes = %v, want [a b c]", nodes)
		}
		if last.Value != 3 {
			t.Errorf("final Value = %d, want 3", last.Value)
		}
	})

	t.Run("break stops execution", func(t *testing.T) {
		var executed []string
		for u, err := range build().Stream(context.Background(), counter{}) {
			if err != nil {
				t.Fatalf("Stream error: %v", err)
			}
			executed = append(executed, u.Node)
			if u.Node == "a" {
				break
			}
		}
		if !slices.Equal(executed, []string{"a"}) {
			t.Errorf("executed = %v, want [a]", executed)
		}
	})

	t.Run("restartable", func(t *testing.T) {
		r := build()
		first, _ := r.Run(context.Background(), counter{})
		second, _ := r.Run(context.Background(), counter{})
		if first.Value != second.Value {
			t.Errorf("runs differ: %d vs %d", first.Value, second.Value)
		}
	})
}

func TestObserver(t *testing.T) {
	var events []graph.NodeEvent
	g := newGraph(graph.WithObserver[counter](func(e graph.NodeEvent) {
		events = append(events, e)
	}))
	g.AddNode("a", mark("a", 1, ""))
	g.AddNode("b", mark("b", 1, ""))
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.End)
	g.SetEntryPoint("a")

	if _, err := mustCompile(t, g).Run(context.Background(), counter{}); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Node != "a" || events[1].Node != "b" {
		t.Errorf("event order = %s, %s", events[0].Node, events[1].Node)
	}
	if events[1].Step != 2 || events[0].Graph != "test" {
		t.Errorf("event metadata = %+v", events[1])
	}
}

func TestTimeout(t *testing.T) {
	g := newGraph(graph.WithTimeout[counter](20 * time.Millisecond))
	g.AddNode("slow", func(ctx context.Context, s counter) (delta, error) {
		select {
		case <-ctx.Done():
			return delta{}, ctx.Err()
		case <-time.After(time.Second):
			return delta{Add: 1}, nil
		}
	})
	g.AddEdge("slow", graph.End)
	g.SetEntryPoint("slow")

	_, err := mustCompile(t, g).Run(context.Background(), counter{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run error = %v, want DeadlineExceeded", err)
	}
}

func TestCancelledContext(t *testing.T) {
	g := newGraph()
	g.AddNode("a", mark("a", 1, ""))
	g.AddEdge("a", graph.End)
	g.SetEntryPoint("a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := mustCompile(t, g).Run(ctx, counter{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want Canceled", err)
	}
	if got.Value != 0 {
		t.Errorf("Value = %d, want no node executed", got.Value)
	}
}
