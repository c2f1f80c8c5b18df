package catalog

import (
	"slices"
	"text/template"
	"text/template/parse"
)

// checkReferences walks every parse tree associated with root and rejects
// root-level field reads that are neither declared slots nor the persona.
func checkReferences(root *template.Template, name string, declared []string) error {
	allowed := func(field string) bool {
		return field == PersonaKey || slices.Contains(declared, field)
	}
	for _, t := range root.Templates() {
		if t.Tree == nil || t.Tree.Root == nil {
			continue
		}
		w := &refWalker{template: name, allowed: allowed}
		w.node(t.Tree.Root, false)
		if w.err != nil {
			return w.err
		}
	}
	return nil
}

type refWalker struct {
	template string
	allowed  func(string) bool
	err      error
}

func (w *refWalker) reject(field string) {
	if w.err == nil {
		w.err = &SlotReferenceError{Template: w.template, Slot: field, Reason: "references undeclared slot"}
	}
}

// node visits n. rebound is true inside range/with bodies where dot no
// longer points at the template data.
func (w *refWalker) node(n parse.Node, rebound bool) {
	if n == nil || w.err != nil {
		return
	}
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			w.node(c, rebound)
		}
	case *parse.ActionNode:
		w.node(n.Pipe, rebound)
	case *parse.IfNode:
		w.branch(&n.BranchNode, rebound, false)
	case *parse.RangeNode:
		w.branch(&n.BranchNode, rebound, true)
	case *parse.WithNode:
		w.branch(&n.BranchNode, rebound, true)
	case *parse.TemplateNode:
		w.node(n.Pipe, rebound)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			w.node(cmd, rebound)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			w.node(arg, rebound)
		}
	case *parse.ChainNode:
		w.node(n.Node, rebound)
	case *parse.FieldNode:
		if !rebound && len(n.Ident) > 0 && !w.allowed(n.Ident[0]) {
			w.reject(n.Ident[0])
		}
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" && !w.allowed(n.Ident[1]) {
			w.reject(n.Ident[1])
		}
	}
}

func (w *refWalker) branch(b *parse.BranchNode, rebound, rebinds bool) {
	w.node(b.Pipe, rebound)
	w.node(b.List, rebound || rebinds)
	w.node(b.ElseList, rebound)
}
