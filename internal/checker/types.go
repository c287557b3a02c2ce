package checker

import "go/types"

// Capability represents an interface declared in (or imported by) the
// analysed module. Method-less and marker interfaces are included.
type Capability struct {
	Name       string
	PkgPath    string
	PkgName    string
	Methods    []MethodSig
	TypeObj    *types.Interface
	SourceFile string
}

// TypeDef represents a named concrete type.
type TypeDef struct {
	Name       string
	PkgPath    string
	PkgName    string
	IsStruct   bool
	Methods    []MethodSig
	TypeObj    *types.Named
	SourceFile string
}

// MethodSig captures a method name and its signature string.
type MethodSig struct {
	Name      string
	Signature string
}

// Relation captures that a concrete type satisfies a capability.
type Relation struct {
	Type       *TypeDef
	Capability *Capability
	ViaPointer bool // true if only *T (not T) satisfies the capability
}

// FuncDef is a package-level function.
type FuncDef struct {
	Name       string
	PkgPath    string
	PkgName    string
	Signature  string
	TypeObj    *types.Signature
	SourceFile string
}

// FuncType is a named type whose underlying type is a function signature,
// e.g. `type DogFeeder func(*Dog)`.
type FuncType struct {
	Name       string
	PkgPath    string
	PkgName    string
	Signature  string
	TypeObj    *types.Named
	SourceFile string
}

// Binding records whether Func can be stored in a variable of type Target.
//
// Assignable means a plain `var v Target = Func` type-checks. Adaptable
// means a wrapper `func(args) { Func(args) }` of type Target type-checks:
// every Target parameter can be passed to Func and every Func result can be
// returned as the Target result. Assignable implies Adaptable.
type Binding struct {
	Func       *FuncDef
	Target     *FuncType
	Assignable bool
	Adaptable  bool
}

// Diagnostic is a build-time rejection reported while loading a package.
type Diagnostic struct {
	PkgPath string
	Pos     string // file:line:col, relative to the module root when possible
	Msg     string
}

// Report holds the complete analysis output.
type Report struct {
	Capabilities []Capability
	Types        []TypeDef
	Relations    []Relation
	Funcs        []FuncDef
	FuncTypes    []FuncType
	Bindings     []Binding
	Diagnostics  []Diagnostic
}

// Options controls analysis behavior.
type Options struct {
	Filter            string // package path prefix filter
	IncludeStdlib     bool
	IncludeUnexported bool
}
