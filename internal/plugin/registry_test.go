package plugin

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/seenimoa/notegraph/internal/graph"
)

type upperPlugin struct{ name string }

func (p upperPlugin) Info() Info                { return Info{Name: p.name, Version: "1"} }
func (p upperPlugin) Transform(s string) string { return strings.ToUpper(s) }

type suffixPlugin struct{ name, suffix string }

func (p suffixPlugin) Info() Info                { return Info{Name: p.name} }
func (p suffixPlugin) Transform(s string) string { return s + p.suffix }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(upperPlugin{name: "upper"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	p, err := r.Get("upper")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Info().Name != "upper" {
		t.Errorf("got %q", p.Info().Name)
	}

	_, err = r.Get("missing")
	var nf *ErrPluginNotFound
	if !errors.As(err, &nf) || nf.Name != "missing" {
		t.Errorf("err = %v, want ErrPluginNotFound", err)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	if err := NewRegistry().Register(upperPlugin{}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestRegistryApplyOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(suffixPlugin{name: "z", suffix: "-z"})
	r.Register(upperPlugin{name: "a"})
	r.Register(suffixPlugin{name: "m", suffix: "-m"})

	if got := r.Apply("x"); got != "X-Z-m" {
		t.Errorf("Apply = %q, want %q", got, "X-Z-m")
	}

	// Replacing keeps the position.
	r.Register(suffixPlugin{name: "z", suffix: "-y"})
	if got := r.Apply("x"); got != "X-Y-m" {
		t.Errorf("Apply after replace = %q, want %q", got, "X-Y-m")
	}

	r.Unregister("a")
	if got := r.Apply("x"); got != "x-y-m" {
		t.Errorf("Apply after unregister = %q, want %q", got, "x-y-m")
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(upperPlugin{name: "b"})
	r.Register(upperPlugin{name: "a"})
	r.Register(NewGraphPlugin(nil))

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("got %d plugins", len(list))
	}
	if list[0].Name != "LineGraph" || list[1].Name != "a" || list[2].Name != "b" {
		t.Errorf("List = %+v", list)
	}
}

func TestGraphPlugin(t *testing.T) {
	p := NewGraphPlugin(graph.New(graph.DefaultOptions()))
	info := p.Info()
	if info.Name != GraphName || info.Version != "2.0" {
		t.Errorf("Info = %+v", info)
	}

	out := p.Transform("before @graph[1,2,3] after")
	if !strings.HasPrefix(out, "before <svg") || !strings.HasSuffix(out, "</svg> after") {
		t.Errorf("Transform = %q", out)
	}
	if got := p.Transform("no markers"); got != "no markers" {
		t.Errorf("Transform changed plain text: %q", got)
	}
}

func TestRegistryConcurrentApply(t *testing.T) {
	r := NewRegistry()
	r.Register(NewGraphPlugin(nil))

	want := r.Apply("@graph[1,2]")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Apply("@graph[1,2]"); got != want {
				t.Error("concurrent Apply differs")
			}
		}()
	}
	wg.Wait()
}
