package checker

import (
	"strings"
	"unicode"
)

// Filter applies filtering options to the report. Capabilities, types and
// function declarations that no longer take part in a relation or binding
// are pruned. Diagnostics are always kept.
func Filter(report *Report, opts Options) *Report {
	filtered := &Report{Diagnostics: report.Diagnostics}

	capSet := make(map[string]bool)
	typeSet := make(map[string]bool)
	funcSet := make(map[string]bool)
	funcTypeSet := make(map[string]bool)

	for _, rel := range report.Relations {
		c := rel.Capability
		typ := rel.Type

		if !opts.IncludeStdlib && isStdlib(c.PkgPath) {
			continue
		}
		if !opts.IncludeUnexported && (isUnexported(c.Name) || isUnexported(typ.Name)) {
			continue
		}
		if opts.Filter != "" && !matchesPrefix(opts.Filter, c.PkgPath, typ.PkgPath) {
			continue
		}

		filtered.Relations = append(filtered.Relations, rel)
		capSet[key(c.PkgPath, c.Name)] = true
		typeSet[key(typ.PkgPath, typ.Name)] = true
	}

	for _, b := range report.Bindings {
		if !opts.IncludeUnexported && (isUnexported(b.Func.Name) || isUnexported(b.Target.Name)) {
			continue
		}
		if opts.Filter != "" && !matchesPrefix(opts.Filter, b.Func.PkgPath, b.Target.PkgPath) {
			continue
		}

		filtered.Bindings = append(filtered.Bindings, b)
		funcSet[key(b.Func.PkgPath, b.Func.Name)] = true
		funcTypeSet[key(b.Target.PkgPath, b.Target.Name)] = true
	}

	for _, c := range report.Capabilities {
		if capSet[key(c.PkgPath, c.Name)] {
			filtered.Capabilities = append(filtered.Capabilities, c)
		}
	}
	for _, typ := range report.Types {
		if typeSet[key(typ.PkgPath, typ.Name)] {
			filtered.Types = append(filtered.Types, typ)
		}
	}
	for _, fn := range report.Funcs {
		if funcSet[key(fn.PkgPath, fn.Name)] {
			filtered.Funcs = append(filtered.Funcs, fn)
		}
	}
	for _, ft := range report.FuncTypes {
		if funcTypeSet[key(ft.PkgPath, ft.Name)] {
			filtered.FuncTypes = append(filtered.FuncTypes, ft)
		}
	}

	return filtered
}

func matchesPrefix(prefix string, pkgPaths ...string) bool {
	for _, p := range pkgPaths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func isStdlib(pkgPath string) bool {
	// Stdlib packages have no dot in the first path element
	firstPart, _, _ := strings.Cut(pkgPath, "/")
	return !strings.Contains(firstPart, ".")
}

func isUnexported(name string) bool {
	if name == "" {
		return true
	}
	// Built-in types like 'error' are lowercase but considered exported
	if name == "error" {
		return false
	}
	return unicode.IsLower(rune(name[0]))
}

func key(pkgPath, name string) string {
	return pkgPath + "." + name
}
