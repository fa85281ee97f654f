// Package testing provides a recording tree renderer and mount helpers for
// testing components without a real document.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    tester := drifttest.NewTesterWithT(t)
//	    c := &counter{}
//	    core.Init(c, tester.Root, nil, nil)
//	    tester.Mount(c, "DIV")
//
//	    c.SetState(core.Partial{"count": 1}, nil)
//
//	    if got := tester.Renderer.RenderCount(c); got != 1 {
//	        t.Errorf("renders = %d, want 1", got)
//	    }
//	}
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import drifttest "github.com/go-drift/reconcile/pkg/testing"
package testing
