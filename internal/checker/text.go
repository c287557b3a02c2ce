package checker

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Verdict describes how a function binds to a function type.
func (b Binding) Verdict() string {
	switch {
	case b.Assignable:
		return "assignable"
	case b.Adaptable:
		return "adaptable"
	default:
		return "rejected"
	}
}

// WriteText writes a plain console summary of the report, sorted by name.
func WriteText(w io.Writer, report *Report) error {
	var b strings.Builder

	rels := slices.Clone(report.Relations)
	slices.SortFunc(rels, func(x, y Relation) int {
		return cmp.Or(
			cmp.Compare(x.Type.Name, y.Type.Name),
			cmp.Compare(x.Capability.Name, y.Capability.Name),
		)
	})
	fmt.Fprintf(&b, "Capabilities (%d relations):\n", len(rels))
	for _, rel := range rels {
		name := rel.Type.PkgName + "." + rel.Type.Name
		if rel.ViaPointer {
			name = "*" + name
		}
		fmt.Fprintf(&b, "  %s satisfies %s.%s\n", name, rel.Capability.PkgName, rel.Capability.Name)
	}

	bindings := slices.Clone(report.Bindings)
	slices.SortFunc(bindings, func(x, y Binding) int {
		return cmp.Or(
			cmp.Compare(x.Func.Name, y.Func.Name),
			cmp.Compare(x.Target.Name, y.Target.Name),
		)
	})
	fmt.Fprintf(&b, "Bindings (%d):\n", len(bindings))
	for _, bd := range bindings {
		fmt.Fprintf(&b, "  %s -> %s: %s\n", bd.Func.Signature, bd.Target.Name, bd.Verdict())
	}

	fmt.Fprintf(&b, "Diagnostics (%d):\n", len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		fmt.Fprintf(&b, "  %s: %s\n", d.Pos, d.Msg)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
