package generator

import "go.uber.org/zap"

// This file houses the intermediate representation handed to the templates:
// one typeModel per registered type, each carrying its rendered fragments in
// scan order (scan -> filter -> emit -> assemble).

// fragment kinds for template-driven emission
const (
	fragmentKindField  = "field"
	fragmentKindMethod = "method"
	fragmentKindBase   = "base"
)

// DefaultRuntimeNamespace is the namespace of the runtime type registry the
// generated code registers into.
const DefaultRuntimeNamespace = "Neat"

// Config holds generation settings for one conversion.
type Config struct {
	RuntimeNamespace string             // registry namespace, DefaultRuntimeNamespace when empty
	Template         string             // document template text; empty selects the built-in one
	Logger           *zap.SugaredLogger // defaults to the global logger
}

// bodyModel is the root template model for the registration body.
type bodyModel struct {
	Namespace string
	Types     []typeModel
}

// typeModel describes the registration statement of a single class or
// struct.
type typeModel struct {
	Namespace string
	Name      string // fully-qualified, e.g. Game::Derived
	Ident     string // transliterated variable name, e.g. game___derived_
	Bases     []fragment
	Fields    []fragment
	Methods   []fragment
}

// fragment is one registration fragment. Which fields are meaningful depends
// on Kind.
type fragment struct {
	Kind   string
	Owner  string // fully-qualified owning type (field, method)
	Name   string // member name (field, method)
	Type   string // field type, method return type or base type
	Params string // rendered parameter list of a method, empty when none
	Access string // rendered access enumerator, e.g. Neat::Access::Public
}
