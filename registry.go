package main

import "fmt"

// pair is a code block and the copy button that belongs to it.
type pair struct {
	code *Element
	copy *Element
}

// Registry maps block identifiers to their elements. It stands in for the
// page's element tree and is owned by the interaction goroutine.
type Registry struct {
	pairs map[string]pair
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pairs: make(map[string]pair)}
}

// Add registers a code block and creates its copy button. Both start with
// an unset display. Duplicate identifiers are rejected.
func (r *Registry) Add(id, text, markup string) (*Element, error) {
	if id == "" {
		return nil, fmt.Errorf("register block: empty id")
	}
	if _, ok := r.pairs[id]; ok {
		return nil, fmt.Errorf("register block: duplicate id %q", id)
	}
	code := &Element{ID: id, Text: text, Markup: markup}
	r.pairs[id] = pair{code: code, copy: &Element{ID: id, Text: "copy"}}
	r.order = append(r.order, id)
	return code, nil
}

// Code resolves the code block with the given id.
func (r *Registry) Code(id string) (*Element, error) {
	p, ok := r.pairs[id]
	if !ok || p.code == nil {
		return nil, &LookupError{ID: id, Role: "code block"}
	}
	return p.code, nil
}

// CopyButton resolves the copy button paired with the block id.
func (r *Registry) CopyButton(id string) (*Element, error) {
	p, ok := r.pairs[id]
	if !ok || p.copy == nil {
		return nil, &LookupError{ID: id, Role: "copy button"}
	}
	return p.copy, nil
}

// IDs returns the registered identifiers in insertion order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int { return len(r.order) }

// Displays snapshots the display state of every code block by id.
func (r *Registry) Displays() map[string]Display {
	out := make(map[string]Display, len(r.pairs))
	for id, p := range r.pairs {
		out[id] = p.code.Display
	}
	return out
}

// Restore applies a snapshot taken with Displays. Ids that no longer exist
// are ignored; the copy button follows its block.
func (r *Registry) Restore(displays map[string]Display) {
	for id, d := range displays {
		p, ok := r.pairs[id]
		if !ok {
			continue
		}
		p.code.Display = d
		p.copy.Display = d
	}
}
