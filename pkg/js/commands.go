// Package js builds client operations that the server pushes in a
// "commands" event. Operations are data, not code: the embedded client
// interprets each one by name.
package js

import (
	"strings"
)

// Operation names understood by the client.
const (
	OpScrollTo = "scrollTo"
	OpPatch    = "patch"
)

// Scroll behaviors.
const (
	BehaviorSmooth  = "smooth"
	BehaviorInstant = "instant"
)

// Command is one client operation.
type Command struct {
	Op   string
	Args map[string]any
}

// Map returns the wire form of the command.
func (c Command) Map() map[string]any {
	m := make(map[string]any, len(c.Args)+1)
	for k, v := range c.Args {
		m[k] = v
	}
	m["op"] = c.Op
	return m
}

// String renders the command for logs, e.g. patch(#about).
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Op)
	b.WriteByte('(')
	if path, ok := c.Args["path"].(string); ok {
		b.WriteString(path)
	}
	b.WriteByte(')')
	return b.String()
}

// Commands holds an ordered sequence of commands.
type Commands []Command

// Payload returns the commands in wire form, in order.
func (cs Commands) Payload() []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c.Map()
	}
	return out
}

// String implements fmt.Stringer.
func (cs Commands) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

// JS is the namespace for client commands.
var JS = jsNamespace{}

type jsNamespace struct{}

// ScrollTo scrolls the window so that top is at the viewport's top edge.
// Behavior defaults to smooth.
func (jsNamespace) ScrollTo(top float64, opts ...ScrollOption) Command {
	config := scrollConfig{behavior: BehaviorSmooth}
	for _, opt := range opts {
		opt(&config)
	}
	return Command{Op: OpScrollTo, Args: map[string]any{
		"top":      top,
		"behavior": config.behavior,
	}}
}

// Patch changes the current URL without reloading, e.g. "#about".
func (jsNamespace) Patch(path string, opts ...PatchOption) Command {
	config := patchConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return Command{Op: OpPatch, Args: map[string]any{"path": path, "replace": config.replace}}
}

// Option types

type scrollConfig struct {
	behavior string
}

// ScrollOption configures ScrollTo.
type ScrollOption func(*scrollConfig)

// Instant jumps without animation.
func Instant() ScrollOption {
	return func(c *scrollConfig) {
		c.behavior = BehaviorInstant
	}
}

type patchConfig struct {
	replace bool
}

// PatchOption configures Patch.
type PatchOption func(*patchConfig)

// Replace replaces the current history entry instead of pushing one.
func Replace() PatchOption {
	return func(c *patchConfig) {
		c.replace = true
	}
}
