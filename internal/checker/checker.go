package checker

import (
	"context"
	"fmt"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyze loads Go packages from dir and reports which types satisfy which
// capabilities, which functions bind to which function types, and every
// type error the packages were rejected with.
func Analyze(ctx context.Context, dir string, opts Options, logger *slog.Logger) (*Report, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax |
			packages.NeedTypesInfo | packages.NeedImports,
		Dir:     dir,
		Context: ctx,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	// Pull in common stdlib capabilities even when nothing imports them.
	var stdPkgs []*packages.Package
	if opts.IncludeStdlib {
		stdPkgs, err = packages.Load(cfg, "fmt", "io", "sort", "context")
		if err != nil {
			logger.Warn("failed to load stdlib packages", "error", err)
		}
	}

	logger.Info("packages loaded", "packages_count", len(pkgs))

	report := &Report{}

	// Packages that fail to type-check still carry partial type info;
	// keep going and record why they were rejected.
	for _, pkg := range pkgs {
		for _, e := range packageErrors(pkg) {
			logger.Debug("package error", "package", pkg.PkgPath, "pos", e.Pos, "kind", e.Kind, "error", e.Msg)
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				PkgPath: pkg.PkgPath,
				Pos:     relativePos(e.Pos, dir),
				Msg:     e.Msg,
			})
		}
	}

	seenCaps := make(map[string]bool) // pkgPath.Name dedup
	localCaps := make(map[string]bool)

	collectCapabilities := func(scope *types.Scope, pkgPath, pkgName string, fset *token.FileSet) {
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			iface, ok := named.Underlying().(*types.Interface)
			if !ok {
				continue
			}
			key := pkgPath + "." + tn.Name()
			if seenCaps[key] {
				continue
			}
			seenCaps[key] = true
			report.Capabilities = append(report.Capabilities, Capability{
				Name:       tn.Name(),
				PkgPath:    pkgPath,
				PkgName:    pkgName,
				Methods:    extractIfaceMethods(iface),
				TypeObj:    iface,
				SourceFile: resolveSourceFile(fset, tn.Pos(), dir),
			})
			logger.Debug("found capability", "name", tn.Name(), "package", pkgPath, "methods", iface.NumMethods())
		}
	}

	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}

		scope := pkg.Types.Scope()
		collectCapabilities(scope, pkg.PkgPath, pkg.Name, pkg.Fset)
		localCaps[pkg.PkgPath] = true

		for _, name := range scope.Names() {
			switch obj := scope.Lookup(name).(type) {
			case *types.Func:
				sig := obj.Type().(*types.Signature)
				if sig.TypeParams().Len() > 0 {
					continue
				}
				report.Funcs = append(report.Funcs, FuncDef{
					Name:       obj.Name(),
					PkgPath:    pkg.PkgPath,
					PkgName:    pkg.Name,
					Signature:  formatSignature(obj),
					TypeObj:    sig,
					SourceFile: resolveSourceFile(pkg.Fset, obj.Pos(), dir),
				})
			case *types.TypeName:
				named, ok := obj.Type().(*types.Named)
				if !ok {
					continue
				}
				switch u := named.Underlying().(type) {
				case *types.Interface:
					// collected above
				case *types.Signature:
					if named.TypeParams().Len() > 0 {
						continue
					}
					report.FuncTypes = append(report.FuncTypes, FuncType{
						Name:       obj.Name(),
						PkgPath:    pkg.PkgPath,
						PkgName:    pkg.Name,
						Signature:  shortType(u),
						TypeObj:    named,
						SourceFile: resolveSourceFile(pkg.Fset, obj.Pos(), dir),
					})
				default:
					report.Types = append(report.Types, TypeDef{
						Name:       obj.Name(),
						PkgPath:    pkg.PkgPath,
						PkgName:    pkg.Name,
						IsStruct:   isStruct(named),
						Methods:    extractTypeMethods(named),
						TypeObj:    named,
						SourceFile: resolveSourceFile(pkg.Fset, obj.Pos(), dir),
					})
				}
			}
		}

		// Imported capabilities (stdlib and dependencies) can be satisfied
		// by local types too.
		for _, imp := range pkg.Imports {
			if imp.Types == nil {
				continue
			}
			collectCapabilities(imp.Types.Scope(), imp.PkgPath, imp.Name, imp.Fset)
		}
	}

	if tn, ok := types.Universe.Lookup("error").(*types.TypeName); ok {
		if iface, ok := tn.Type().Underlying().(*types.Interface); ok && !seenCaps["builtin.error"] {
			seenCaps["builtin.error"] = true
			report.Capabilities = append(report.Capabilities, Capability{
				Name:    "error",
				PkgPath: "builtin",
				PkgName: "builtin",
				Methods: extractIfaceMethods(iface),
				TypeObj: iface,
			})
		}
	}

	for _, pkg := range stdPkgs {
		if pkg.Types != nil {
			collectCapabilities(pkg.Types.Scope(), pkg.PkgPath, pkg.Name, pkg.Fset)
		}
	}

	logger.Info("declarations collected",
		"capabilities", len(report.Capabilities),
		"types", len(report.Types),
		"funcs", len(report.Funcs),
		"func_types", len(report.FuncTypes))

	var methodSetCache typeutil.MethodSetCache

	for i := range report.Types {
		t := &report.Types[i]
		valType := t.TypeObj
		ptrType := types.NewPointer(valType)
		for j := range report.Capabilities {
			c := &report.Capabilities[j]

			// Every type satisfies a method-less interface; only report
			// that for markers declared in the analysed packages.
			if c.TypeObj.NumMethods() == 0 && !localCaps[c.PkgPath] {
				continue
			}

			if types.Implements(valType, c.TypeObj) || matchesMethodSet(methodSetCache.MethodSet(valType), c.TypeObj) {
				report.Relations = append(report.Relations, Relation{Type: t, Capability: c})
				logger.Debug("match found", "type", t.Name, "capability", c.Name, "via_pointer", false)
			} else if types.Implements(ptrType, c.TypeObj) || matchesMethodSet(methodSetCache.MethodSet(ptrType), c.TypeObj) {
				report.Relations = append(report.Relations, Relation{Type: t, Capability: c, ViaPointer: true})
				logger.Debug("match found", "type", t.Name, "capability", c.Name, "via_pointer", true)
			}
		}
	}

	for i := range report.Funcs {
		fn := &report.Funcs[i]
		for j := range report.FuncTypes {
			ft := &report.FuncTypes[j]
			target := ft.TypeObj.Underlying().(*types.Signature)
			if !sameShape(fn.TypeObj, target) {
				continue
			}
			b := Binding{
				Func:       fn,
				Target:     ft,
				Assignable: types.AssignableTo(fn.TypeObj, ft.TypeObj),
				Adaptable:  adaptable(fn.TypeObj, target),
			}
			report.Bindings = append(report.Bindings, b)
			logger.Debug("binding checked", "func", fn.Name, "target", ft.Name,
				"assignable", b.Assignable, "adaptable", b.Adaptable)
		}
	}

	logger.Info("analysis complete",
		"relations", len(report.Relations),
		"bindings", len(report.Bindings),
		"diagnostics", len(report.Diagnostics))

	return report, nil
}

// packageErrors returns the errors of pkg without the go list copies. When
// a package fails to compile, go list reports the compiler output as one
// position-less error that repeats the parse and type errors already
// recorded.
func packageErrors(pkg *packages.Package) []packages.Error {
	var listErrs, checkErrs []packages.Error
	for _, e := range pkg.Errors {
		if e.Kind == packages.ListError {
			listErrs = append(listErrs, e)
		} else {
			checkErrs = append(checkErrs, e)
		}
	}
	if len(checkErrs) > 0 {
		return checkErrs
	}
	return listErrs
}

// Rejections returns the diagnostics whose message reports a value that
// cannot be used as the declared type.
func (r *Report) Rejections() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if strings.Contains(d.Msg, "cannot use") {
			out = append(out, d)
		}
	}
	return out
}

// Binding looks up the binding of the named function to the named function
// type.
func (r *Report) Binding(funcName, targetName string) (Binding, bool) {
	for _, b := range r.Bindings {
		if b.Func.Name == funcName && b.Target.Name == targetName {
			return b, true
		}
	}
	return Binding{}, false
}

// Satisfies reports whether the named type satisfies the named capability,
// and whether only its pointer does.
func (r *Report) Satisfies(typeName, capName string) (ok, viaPointer bool) {
	for _, rel := range r.Relations {
		if rel.Type.Name == typeName && rel.Capability.Name == capName {
			return true, rel.ViaPointer
		}
	}
	return false, false
}

func sameShape(a, b *types.Signature) bool {
	return a.Params().Len() == b.Params().Len() &&
		a.Results().Len() == b.Results().Len() &&
		a.Variadic() == b.Variadic()
}

// adaptable reports whether fn can be wrapped into a function of type
// target: parameters flow from target into fn, results from fn out to
// target.
func adaptable(fn, target *types.Signature) bool {
	if !sameShape(fn, target) {
		return false
	}
	for i := 0; i < fn.Params().Len(); i++ {
		if !types.AssignableTo(target.Params().At(i).Type(), fn.Params().At(i).Type()) {
			return false
		}
	}
	for i := 0; i < fn.Results().Len(); i++ {
		if !types.AssignableTo(fn.Results().At(i).Type(), target.Results().At(i).Type()) {
			return false
		}
	}
	return true
}

func extractIfaceMethods(iface *types.Interface) []MethodSig {
	methods := make([]MethodSig, iface.NumMethods())
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		methods[i] = MethodSig{
			Name:      m.Name(),
			Signature: formatSignature(m),
		}
	}
	return methods
}

func extractTypeMethods(named *types.Named) []MethodSig {
	var methods []MethodSig
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		methods = append(methods, MethodSig{
			Name:      m.Name(),
			Signature: formatSignature(m),
		})
	}
	return methods
}

func formatSignature(fn *types.Func) string {
	sig := fn.Type().(*types.Signature)
	var b strings.Builder
	b.WriteString(fn.Name())
	b.WriteString("(")
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(shortType(params.At(i).Type()))
	}
	b.WriteString(")")
	results := sig.Results()
	if results.Len() > 0 {
		b.WriteString(" ")
		if results.Len() == 1 {
			b.WriteString(shortType(results.At(0).Type()))
		} else {
			b.WriteString("(")
			for i := 0; i < results.Len(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(shortType(results.At(i).Type()))
			}
			b.WriteString(")")
		}
	}
	return b.String()
}

func shortType(t types.Type) string {
	return types.TypeString(t, func(pkg *types.Package) string {
		return pkg.Name()
	})
}

func isStruct(named *types.Named) bool {
	_, ok := named.Underlying().(*types.Struct)
	return ok
}

func matchesMethodSet(mset *types.MethodSet, iface *types.Interface) bool {
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		if mset.Lookup(m.Pkg(), m.Name()) == nil {
			return false
		}
	}
	return true
}

// resolveSourceFile resolves a token position to a file path relative to moduleRoot.
func resolveSourceFile(fset *token.FileSet, pos token.Pos, moduleRoot string) string {
	if fset == nil || !pos.IsValid() {
		return ""
	}
	position := fset.Position(pos)
	if !position.IsValid() || position.Filename == "" {
		return ""
	}
	rel, err := filepath.Rel(moduleRoot, position.Filename)
	if err != nil {
		return position.Filename
	}
	return rel
}

// relativePos rewrites the file part of a "file:line:col" position to be
// relative to moduleRoot.
func relativePos(pos, moduleRoot string) string {
	idx := strings.Index(pos, ".go:")
	if idx < 0 {
		return pos
	}
	file, rest := pos[:idx+len(".go")], pos[idx+len(".go"):]
	rel, err := filepath.Rel(moduleRoot, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return pos
	}
	return rel + rest
}
