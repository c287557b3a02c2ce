package diagram

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/olehluchkiv/lessons/internal/checker"
)

// Options controls Mermaid diagram generation.
type Options struct {
	MaxMethodsPerBox int  // default 5, 0 means unlimited
	ShowRejected     bool // draw bindings that neither assign nor adapt
}

// DefaultOptions returns sensible defaults for diagram generation.
func DefaultOptions() Options {
	return Options{MaxMethodsPerBox: 5}
}

// GenerateMermaid produces a Mermaid classDiagram from a checker report.
// Capabilities and concrete types are drawn as classes joined by `--|>`;
// function types are drawn as classes with `..>` edges from the functions
// that bind to them.
func GenerateMermaid(report *checker.Report, opts Options) string {
	var b strings.Builder

	caps := slices.Clone(report.Capabilities)
	slices.SortFunc(caps, func(x, y checker.Capability) int {
		return cmp.Or(cmp.Compare(x.PkgName, y.PkgName), cmp.Compare(x.Name, y.Name))
	})
	typs := slices.Clone(report.Types)
	slices.SortFunc(typs, func(x, y checker.TypeDef) int {
		return cmp.Or(cmp.Compare(x.PkgName, y.PkgName), cmp.Compare(x.Name, y.Name))
	})
	funcTypes := slices.Clone(report.FuncTypes)
	slices.SortFunc(funcTypes, func(x, y checker.FuncType) int {
		return cmp.Or(cmp.Compare(x.PkgName, y.PkgName), cmp.Compare(x.Name, y.Name))
	})
	rels := slices.Clone(report.Relations)
	slices.SortFunc(rels, func(x, y checker.Relation) int {
		return cmp.Or(
			cmp.Compare(NodeID(x.Type.PkgName, x.Type.Name), NodeID(y.Type.PkgName, y.Type.Name)),
			cmp.Compare(NodeID(x.Capability.PkgName, x.Capability.Name), NodeID(y.Capability.PkgName, y.Capability.Name)),
		)
	})
	var bindings []checker.Binding
	for _, bd := range report.Bindings {
		if bd.Adaptable || opts.ShowRejected {
			bindings = append(bindings, bd)
		}
	}
	slices.SortFunc(bindings, func(x, y checker.Binding) int {
		return cmp.Or(cmp.Compare(x.Func.Name, y.Func.Name), cmp.Compare(x.Target.Name, y.Target.Name))
	})

	var funcs []checker.FuncDef
	seenFuncs := make(map[string]bool)
	for _, bd := range bindings {
		id := NodeID(bd.Func.PkgName, bd.Func.Name)
		if !seenFuncs[id] {
			seenFuncs[id] = true
			funcs = append(funcs, *bd.Func)
		}
	}

	hasNodes := len(caps) > 0 || len(typs) > 0 || len(funcTypes) > 0

	b.WriteString("classDiagram")
	if hasNodes {
		b.WriteString("\n")
		b.WriteString("    direction LR\n")
		b.WriteString("    classDef capabilityStyle fill:#2374ab,stroke:#1a5a8a,color:#fff,stroke-width:2px,font-weight:bold\n")
		b.WriteString("    classDef implStyle fill:#4a9c6d,stroke:#357a50,color:#fff,stroke-width:2px\n")
		b.WriteString("    classDef funcTypeStyle fill:#c47f17,stroke:#9a6412,color:#fff,stroke-width:2px")
	}

	for _, c := range caps {
		b.WriteString("\n")
		writeCapabilityBlock(&b, c, opts)
	}
	for _, typ := range typs {
		b.WriteString("\n")
		writeTypeBlock(&b, typ)
	}
	for _, ft := range funcTypes {
		b.WriteString("\n")
		writeFuncTypeBlock(&b, ft)
	}
	for _, fn := range funcs {
		b.WriteString("\n")
		writeFuncBlock(&b, fn)
	}

	if hasNodes && (len(rels) > 0 || len(bindings) > 0) {
		b.WriteString("\n")
	}
	for _, rel := range rels {
		b.WriteString("\n")
		writeRelation(&b, rel)
	}
	for _, bd := range bindings {
		b.WriteString("\n")
		writeBinding(&b, bd)
	}

	if hasNodes {
		b.WriteString("\n")
		for _, c := range caps {
			b.WriteString(fmt.Sprintf("\n    cssClass \"%s\" capabilityStyle", NodeID(c.PkgName, c.Name)))
		}
		for _, typ := range typs {
			b.WriteString(fmt.Sprintf("\n    cssClass \"%s\" implStyle", NodeID(typ.PkgName, typ.Name)))
		}
		for _, ft := range funcTypes {
			b.WriteString(fmt.Sprintf("\n    cssClass \"%s\" funcTypeStyle", NodeID(ft.PkgName, ft.Name)))
		}
		for _, fn := range funcs {
			b.WriteString(fmt.Sprintf("\n    cssClass \"%s\" implStyle", NodeID(fn.PkgName, fn.Name)))
		}
	}

	return b.String()
}

// SanitizeSignature removes characters in signatures that break Mermaid syntax.
// Mermaid treats {}, <>, and ~ as special in class diagram labels.
func SanitizeSignature(sig string) string {
	sig = strings.ReplaceAll(sig, "<-chan", "chan")
	// "interface" is reserved in Mermaid.js (<<interface>> tag parsing).
	sig = strings.ReplaceAll(sig, "interface{}", "any")
	sig = strings.ReplaceAll(sig, "{}", "")
	return sig
}

func sanitizeID(s string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_")
	return r.Replace(s)
}

// NodeID builds a sanitized node ID from pkgName and a declaration name.
func NodeID(pkgName, name string) string {
	return sanitizeID(pkgName + "_" + name)
}

func writeCapabilityBlock(b *strings.Builder, c checker.Capability, opts Options) {
	b.WriteString(fmt.Sprintf("    class %s {\n", NodeID(c.PkgName, c.Name)))
	b.WriteString("        <<interface>>\n")
	if c.SourceFile != "" {
		b.WriteString("        %% file: " + c.SourceFile + "\n")
	}
	writeMethodLines(b, c.Methods, opts)
	b.WriteString("    }")
}

// writeTypeBlock only shows the name; methods are already listed on the
// capabilities the type satisfies.
func writeTypeBlock(b *strings.Builder, typ checker.TypeDef) {
	b.WriteString(fmt.Sprintf("    class %s {\n", NodeID(typ.PkgName, typ.Name)))
	if typ.SourceFile != "" {
		b.WriteString("        %% file: " + typ.SourceFile + "\n")
	}
	b.WriteString("    }")
}

func writeFuncTypeBlock(b *strings.Builder, ft checker.FuncType) {
	b.WriteString(fmt.Sprintf("    class %s {\n", NodeID(ft.PkgName, ft.Name)))
	b.WriteString("        <<func>>\n")
	b.WriteString(fmt.Sprintf("        +%s\n", SanitizeSignature(ft.Signature)))
	b.WriteString("    }")
}

func writeMethodLines(b *strings.Builder, methods []checker.MethodSig, opts Options) {
	limit := len(methods)
	truncated := false
	if opts.MaxMethodsPerBox > 0 && limit > opts.MaxMethodsPerBox {
		limit = opts.MaxMethodsPerBox
		truncated = true
	}

	for i := 0; i < limit; i++ {
		b.WriteString(fmt.Sprintf("        +%s\n", SanitizeSignature(methods[i].Signature)))
	}
	if truncated {
		b.WriteString("        ...\n")
	}
}

func writeRelation(b *strings.Builder, rel checker.Relation) {
	typeID := NodeID(rel.Type.PkgName, rel.Type.Name)
	capID := NodeID(rel.Capability.PkgName, rel.Capability.Name)
	b.WriteString(fmt.Sprintf("    %s --|> %s", typeID, capID))
}

func writeFuncBlock(b *strings.Builder, fn checker.FuncDef) {
	b.WriteString(fmt.Sprintf("    class %s {\n", NodeID(fn.PkgName, fn.Name)))
	b.WriteString("        <<function>>\n")
	b.WriteString(fmt.Sprintf("        +%s\n", SanitizeSignature(fn.Signature)))
	b.WriteString("    }")
}

// writeBinding labels the edge with the binding verdict.
func writeBinding(b *strings.Builder, bd checker.Binding) {
	funcID := NodeID(bd.Func.PkgName, bd.Func.Name)
	targetID := NodeID(bd.Target.PkgName, bd.Target.Name)
	b.WriteString(fmt.Sprintf("    %s ..> %s : %s", funcID, targetID, bd.Verdict()))
}
