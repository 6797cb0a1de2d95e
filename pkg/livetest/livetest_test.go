package livetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/js"
	"github.com/aderemi/folionav/pkg/protocol"
)

type toggle struct {
	core.BaseComponent
	terminated chan core.TerminateReason
}

func newToggle() *toggle {
	return &toggle{terminated: make(chan core.TerminateReason, 1)}
}

func (c *toggle) Name() string { return "toggle" }

func (c *toggle) Mount(_ context.Context, params core.Params, _ core.Session) error {
	c.Assigns().Set("open", params.Get("open") == "true")
	return nil
}

func (c *toggle) HandleEvent(_ context.Context, event string, _ map[string]any) error {
	switch event {
	case "flip":
		c.Assigns().Set("open", !c.Assigns().GetBool("open"))
		if c.Assigns().GetBool("open") {
			return c.Socket().PushCommands(js.Commands{js.JS.ScrollTo(0)}.Payload())
		}
	case "fail":
		return errors.New("boom")
	}
	return nil
}

func (c *toggle) HandleInfo(_ context.Context, msg any) error {
	if open, ok := msg.(bool); ok {
		c.Assigns().Set("open", open)
	}
	return nil
}

func (c *toggle) Terminate(_ context.Context, reason core.TerminateReason) error {
	select {
	case c.terminated <- reason:
	default:
	}
	return nil
}

func (c *toggle) Render(_ context.Context) core.Renderer {
	return core.RendererFunc(func(_ context.Context, w io.Writer) error {
		class := "menu"
		if c.Assigns().GetBool("open") {
			class = "menu is-open"
		}
		_, err := fmt.Fprintf(w, `<nav id="menu" class="%s" aria-expanded="%t"><span data-slot="state">%t</span></nav>`,
			class, c.Assigns().GetBool("open"), c.Assigns().GetBool("open"))
		return err
	})
}

func TestMount(t *testing.T) {
	lt := Mount(t, newToggle(), WithParams(core.Params{"open": "true"}))

	lt.AssertText("true").AssertAssign("open", true)
	lt.HTML().HasElement("nav", `id="menu"`).HasClass("is-open").HasID("menu")

	lt.Event("flip", nil)
	lt.AssertAssign("open", false).AssertNoText(">true<")
	lt.HTML().NoClass("is-open")

	if err := lt.EventErr("fail", nil); err == nil {
		t.Error("expected error from fail")
	}

	lt.SendInfo(true).AssertAssign("open", true)
}

func TestMount_PushesCommands(t *testing.T) {
	lt := Mount(t, newToggle())
	lt.Event("flip", nil)

	last := lt.Transport().LastSent()
	if last == nil || last.Event != protocol.EventCommands {
		t.Fatalf("LastSent() = %v, want commands", last)
	}
	ops := CommandOps(last)
	if len(ops) != 1 || ops[0]["op"] != js.OpScrollTo {
		t.Errorf("ops = %v", ops)
	}

	lt.Transport().Reset()
	if n := len(lt.Transport().Sent()); n != 0 {
		t.Errorf("Sent() after Reset = %d messages", n)
	}
}

func TestMount_Terminate(t *testing.T) {
	comp := newToggle()
	lt := Mount(t, comp)
	lt.Terminate(core.TerminateNormal)

	if reason := <-comp.terminated; reason != core.TerminateNormal {
		t.Errorf("reason = %v", reason)
	}
}

func TestHTMLAssert_AttrOf(t *testing.T) {
	ha := NewHTMLAssert(t, `<ul><li><a href="#a" data-section="a" aria-current="true">A</a></li><li><a data-section="b">B</a></li></ul>`)

	if v, ok := ha.AttrOf(`data-section="a"`, "aria-current"); !ok || v != "true" {
		t.Errorf("AttrOf(a) = %q, %v", v, ok)
	}
	if _, ok := ha.AttrOf(`data-section="b"`, "aria-current"); ok {
		t.Error("AttrOf(b) found aria-current")
	}
	if _, ok := ha.AttrOf(`data-section="c"`, "href"); ok {
		t.Error("AttrOf(c) found a missing element")
	}
	if n := ha.Count("<li>"); n != 2 {
		t.Errorf("Count(<li>) = %d", n)
	}
}

func TestClient(t *testing.T) {
	var comp *toggle
	c := Connect(t, func() core.Component {
		comp = newToggle()
		return comp
	})

	reply := c.Join(map[string]any{"params": map[string]any{"open": true}})
	rendered, _ := reply.Response()["rendered"].(string)
	NewHTMLAssert(t, rendered).HasClass("is-open")

	// Closing renders a diff before the reply.
	reply, pushed := c.Call("flip", nil)
	if reply.Status() != protocol.StatusOK {
		t.Fatalf("flip reply = %v", reply.Response())
	}
	if len(pushed) != 1 || pushed[0].Event != protocol.EventDiff {
		t.Fatalf("pushed = %v", pushed)
	}

	// Opening pushes commands, then the diff.
	c.Push("flip", nil)
	c.Expect(protocol.EventCommands)
	c.Expect(protocol.EventDiff)

	reply, _ = c.Call("fail", nil)
	if reply.Status() != protocol.StatusError {
		t.Errorf("fail status = %s", reply.Status())
	}

	if n := c.Router().Broadcast(false); n != 1 {
		t.Errorf("Broadcast() = %d", n)
	}
	c.Expect(protocol.EventDiff)

	c.Leave()
	if reason := <-comp.terminated; reason != core.TerminateNormal {
		t.Errorf("reason = %v", reason)
	}
}

func TestClient_Disconnect(t *testing.T) {
	var comp *toggle
	c := Connect(t, func() core.Component {
		comp = newToggle()
		return comp
	})
	c.Join(nil)
	c.Disconnect()

	if reason := <-comp.terminated; reason != core.TerminateDisconnect {
		t.Errorf("reason = %v", reason)
	}
}
