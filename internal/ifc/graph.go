// Package ifc models the object graph of one compiled module interface:
// index-keyed tables of declarations, types, expressions and names, plus
// the heaps their sequences point into.
//
// A Graph is built once (by a snapshot decoder or a Builder) and is never
// mutated afterwards. Every accessor validates the index it is given and
// returns an assertion failure instead of panicking, because a dangling
// reference is an internal-consistency failure of the producer.
package ifc

import (
	"github.com/calumari/neatgen/internal/errors"
)

// Header identifies the unit a graph was produced from.
type Header struct {
	Unit        Unit       `yaml:"unit" msgpack:"unit"`
	GlobalScope ScopeIndex `yaml:"global_scope" msgpack:"global_scope"`
}

// Unit is the sort and name of a translation unit.
type Unit struct {
	Sort UnitSort   `yaml:"sort" msgpack:"sort"`
	Name TextOffset `yaml:"name" msgpack:"name"`
}

// ScopeDecl is a class, struct, union or namespace.
type ScopeDecl struct {
	Name        NameIndex       `yaml:"name" msgpack:"name"`
	Kind        TypeBasis       `yaml:"kind" msgpack:"kind"`
	Base        TypeIndex       `yaml:"base,omitempty" msgpack:"base"`
	Initializer ScopeIndex      `yaml:"initializer" msgpack:"initializer"`
	HomeScope   DeclIndex       `yaml:"home_scope,omitempty" msgpack:"home_scope"`
	Specifiers  BasicSpecifiers `yaml:"specifiers,omitempty" msgpack:"specifiers"`
	Access      Access          `yaml:"access,omitempty" msgpack:"access"`
}

// FieldDecl is a non-static data member.
type FieldDecl struct {
	Name      NameIndex `yaml:"name" msgpack:"name"`
	Type      TypeIndex `yaml:"type" msgpack:"type"`
	HomeScope DeclIndex `yaml:"home_scope,omitempty" msgpack:"home_scope"`
	Access    Access    `yaml:"access,omitempty" msgpack:"access"`
}

// MethodDecl is a non-static member function. Its Type is a Method type.
type MethodDecl struct {
	Name      NameIndex `yaml:"name" msgpack:"name"`
	Type      TypeIndex `yaml:"type" msgpack:"type"`
	HomeScope DeclIndex `yaml:"home_scope,omitempty" msgpack:"home_scope"`
	Access    Access    `yaml:"access,omitempty" msgpack:"access"`
}

// NamedDecl is the shape shared by the remaining declaration tables:
// variables, enumerations, aliases, templates, concepts, functions,
// constructors, destructors, using-declarations and intrinsics.
type NamedDecl struct {
	Name      NameIndex `yaml:"name" msgpack:"name"`
	Type      TypeIndex `yaml:"type,omitempty" msgpack:"type"`
	HomeScope DeclIndex `yaml:"home_scope,omitempty" msgpack:"home_scope"`
	Access    Access    `yaml:"access,omitempty" msgpack:"access"`
}

// ParameterDecl is a function or template parameter. Parameters have no
// home scope.
type ParameterDecl struct {
	Name TextOffset `yaml:"name" msgpack:"name"`
	Type TypeIndex  `yaml:"type,omitempty" msgpack:"type"`
}

// FriendDecl names the entity befriended by a class.
type FriendDecl struct {
	Entity ExprIndex `yaml:"entity" msgpack:"entity"`
}

// Friendship lists the friend declarations of one scope as a sequence of
// the declaration heap.
type Friendship struct {
	Scope   DeclIndex `yaml:"scope" msgpack:"scope"`
	Friends Sequence  `yaml:"friends" msgpack:"friends"`
}

// FundamentalType is a built-in type.
type FundamentalType struct {
	Basis     TypeBasis     `yaml:"basis" msgpack:"basis"`
	Precision TypePrecision `yaml:"precision,omitempty" msgpack:"precision"`
	Sign      TypeSign      `yaml:"sign,omitempty" msgpack:"sign"`
}

// DesignatedType is a type named by a declaration.
type DesignatedType struct {
	Decl DeclIndex `yaml:"decl" msgpack:"decl"`
}

// PointerType is T*.
type PointerType struct {
	Pointee TypeIndex `yaml:"pointee" msgpack:"pointee"`
}

// ReferenceType is T& or T&&, depending on the table it lives in.
type ReferenceType struct {
	Referee TypeIndex `yaml:"referee" msgpack:"referee"`
}

// QualifiedType is a cv-qualified type.
type QualifiedType struct {
	Unqualified TypeIndex  `yaml:"unqualified" msgpack:"unqualified"`
	Qualifiers  Qualifiers `yaml:"qualifiers" msgpack:"qualifiers"`
}

// TupleType is an ordered sequence of the type heap.
type TupleType struct {
	Start       uint32 `yaml:"start" msgpack:"start"`
	Cardinality uint32 `yaml:"cardinality" msgpack:"cardinality"`
}

// FunctionType is Target(Source). Source is null, a single type or a tuple.
type FunctionType struct {
	Target TypeIndex `yaml:"target" msgpack:"target"`
	Source TypeIndex `yaml:"source,omitempty" msgpack:"source"`
}

// MethodType is a member function type of Class.
type MethodType struct {
	Target TypeIndex `yaml:"target" msgpack:"target"`
	Source TypeIndex `yaml:"source,omitempty" msgpack:"source"`
	Class  TypeIndex `yaml:"class,omitempty" msgpack:"class"`
}

// BaseType is one entry of a base-class specifier.
type BaseType struct {
	Type    TypeIndex `yaml:"type" msgpack:"type"`
	Access  Access    `yaml:"access,omitempty" msgpack:"access"`
	Virtual bool      `yaml:"virtual,omitempty" msgpack:"virtual"`
}

// PlaceholderType is a deduced type; Elaboration is null when the deduced
// type was not recorded.
type PlaceholderType struct {
	Elaboration TypeIndex `yaml:"elaboration,omitempty" msgpack:"elaboration"`
}

// NamedDeclExpr is an expression naming a declaration.
type NamedDeclExpr struct {
	Type       TypeIndex `yaml:"type" msgpack:"type"`
	Resolution DeclIndex `yaml:"resolution" msgpack:"resolution"`
}

// Graph holds every table of one module interface.
type Graph struct {
	Header           Header       `yaml:"header" msgpack:"header"`
	Texts            []string     `yaml:"texts" msgpack:"texts"`
	ScopeDescriptors []Sequence   `yaml:"scope_descriptors" msgpack:"scope_descriptors"`
	Declarations     []DeclIndex  `yaml:"declarations" msgpack:"declarations"`
	TypeHeap         []TypeIndex  `yaml:"type_heap,omitempty" msgpack:"type_heap"`
	Friendships      []Friendship `yaml:"friendships,omitempty" msgpack:"friendships"`

	Scopes            []ScopeDecl     `yaml:"scopes,omitempty" msgpack:"scopes"`
	Fields            []FieldDecl     `yaml:"fields,omitempty" msgpack:"fields"`
	Methods           []MethodDecl    `yaml:"methods,omitempty" msgpack:"methods"`
	Parameters        []ParameterDecl `yaml:"parameters,omitempty" msgpack:"parameters"`
	Friends           []FriendDecl    `yaml:"friends,omitempty" msgpack:"friends"`
	Variables         []NamedDecl     `yaml:"variables,omitempty" msgpack:"variables"`
	Enumerations      []NamedDecl     `yaml:"enumerations,omitempty" msgpack:"enumerations"`
	Aliases           []NamedDecl     `yaml:"aliases,omitempty" msgpack:"aliases"`
	Templates         []NamedDecl     `yaml:"templates,omitempty" msgpack:"templates"`
	Concepts          []NamedDecl     `yaml:"concepts,omitempty" msgpack:"concepts"`
	Functions         []NamedDecl     `yaml:"functions,omitempty" msgpack:"functions"`
	Constructors      []NamedDecl     `yaml:"constructors,omitempty" msgpack:"constructors"`
	Destructors       []NamedDecl     `yaml:"destructors,omitempty" msgpack:"destructors"`
	UsingDeclarations []NamedDecl     `yaml:"using_declarations,omitempty" msgpack:"using_declarations"`
	Intrinsics        []NamedDecl     `yaml:"intrinsics,omitempty" msgpack:"intrinsics"`

	FundamentalTypes []FundamentalType `yaml:"fundamental_types,omitempty" msgpack:"fundamental_types"`
	DesignatedTypes  []DesignatedType  `yaml:"designated_types,omitempty" msgpack:"designated_types"`
	PointerTypes     []PointerType     `yaml:"pointer_types,omitempty" msgpack:"pointer_types"`
	LvalueReferences []ReferenceType   `yaml:"lvalue_references,omitempty" msgpack:"lvalue_references"`
	RvalueReferences []ReferenceType   `yaml:"rvalue_references,omitempty" msgpack:"rvalue_references"`
	QualifiedTypes   []QualifiedType   `yaml:"qualified_types,omitempty" msgpack:"qualified_types"`
	TupleTypes       []TupleType       `yaml:"tuple_types,omitempty" msgpack:"tuple_types"`
	FunctionTypes    []FunctionType    `yaml:"function_types,omitempty" msgpack:"function_types"`
	MethodTypes      []MethodType      `yaml:"method_types,omitempty" msgpack:"method_types"`
	BaseTypes        []BaseType        `yaml:"base_types,omitempty" msgpack:"base_types"`
	PlaceholderTypes []PlaceholderType `yaml:"placeholder_types,omitempty" msgpack:"placeholder_types"`

	DeclExpressions []NamedDeclExpr `yaml:"decl_expressions,omitempty" msgpack:"decl_expressions"`
}

func row[T any](table []T, index uint32, what string) (T, error) {
	if int(index) >= len(table) {
		var zero T
		return zero, errors.AssertionFailedf("%s index %d out of range (%d entries)", what, index, len(table))
	}
	return table[index], nil
}

func expectDecl(d DeclIndex, sort DeclSort) error {
	if d.Sort != sort {
		return errors.AssertionFailedf("expected a %s declaration, got %s", sort, d)
	}
	return nil
}

func expectType(t TypeIndex, sort TypeSort) error {
	if t.Sort != sort {
		return errors.AssertionFailedf("expected a %s type, got %s", sort, t)
	}
	return nil
}

// Text returns the string at off.
func (g *Graph) Text(off TextOffset) (string, error) {
	return row(g.Texts, uint32(off), "text")
}

// ModuleName returns the name of the unit the graph was produced from.
func (g *Graph) ModuleName() (string, error) {
	return g.Text(g.Header.Unit.Name)
}

// Identifier returns the text of an identifier name.
func (g *Graph) Identifier(n NameIndex) (string, error) {
	if n.Sort != NameIdentifier {
		return "", errors.AssertionFailedf("name %s is not an identifier", n)
	}
	return g.Text(TextOffset(n.Index))
}

// GlobalScope returns the member sequence of the global scope.
func (g *Graph) GlobalScope() ([]DeclIndex, error) {
	return g.ScopeMembers(g.Header.GlobalScope)
}

// ScopeMembers returns the member declarations of a scope descriptor in
// declaration order.
func (g *Graph) ScopeMembers(s ScopeIndex) ([]DeclIndex, error) {
	seq, err := row(g.ScopeDescriptors, uint32(s), "scope descriptor")
	if err != nil {
		return nil, err
	}
	return slice(g.Declarations, seq.Start, seq.Cardinality, "declaration heap")
}

// TupleElements returns the element types of a tuple in order.
func (g *Graph) TupleElements(t TypeIndex) ([]TypeIndex, error) {
	tuple, err := g.Tuple(t)
	if err != nil {
		return nil, err
	}
	return slice(g.TypeHeap, tuple.Start, tuple.Cardinality, "type heap")
}

// FriendsOf returns the friend declarations of the scope d. A scope with no
// friendship trait has none.
func (g *Graph) FriendsOf(d DeclIndex) ([]DeclIndex, error) {
	for _, f := range g.Friendships {
		if f.Scope == d {
			return slice(g.Declarations, f.Friends.Start, f.Friends.Cardinality, "declaration heap")
		}
	}
	return nil, nil
}

func slice[T any](heap []T, start, cardinality uint32, what string) ([]T, error) {
	end := uint64(start) + uint64(cardinality)
	if end > uint64(len(heap)) {
		return nil, errors.AssertionFailedf("%s slice [%d:%d] out of range (%d entries)", what, start, end, len(heap))
	}
	return heap[start:end], nil
}

func (g *Graph) Scope(d DeclIndex) (ScopeDecl, error) {
	if err := expectDecl(d, DeclScope); err != nil {
		return ScopeDecl{}, err
	}
	return row(g.Scopes, d.Index, "scope")
}

func (g *Graph) Field(d DeclIndex) (FieldDecl, error) {
	if err := expectDecl(d, DeclField); err != nil {
		return FieldDecl{}, err
	}
	return row(g.Fields, d.Index, "field")
}

func (g *Graph) Method(d DeclIndex) (MethodDecl, error) {
	if err := expectDecl(d, DeclMethod); err != nil {
		return MethodDecl{}, err
	}
	return row(g.Methods, d.Index, "method")
}

func (g *Graph) Parameter(d DeclIndex) (ParameterDecl, error) {
	if err := expectDecl(d, DeclParameter); err != nil {
		return ParameterDecl{}, err
	}
	return row(g.Parameters, d.Index, "parameter")
}

func (g *Graph) Friend(d DeclIndex) (FriendDecl, error) {
	if err := expectDecl(d, DeclFriend); err != nil {
		return FriendDecl{}, err
	}
	return row(g.Friends, d.Index, "friend")
}

// Named returns the row of any declaration stored in a NamedDecl table.
func (g *Graph) Named(d DeclIndex) (NamedDecl, error) {
	var table []NamedDecl
	switch d.Sort {
	case DeclVariable:
		table = g.Variables
	case DeclEnumeration:
		table = g.Enumerations
	case DeclAlias:
		table = g.Aliases
	case DeclTemplate:
		table = g.Templates
	case DeclConcept:
		table = g.Concepts
	case DeclFunction:
		table = g.Functions
	case DeclConstructor:
		table = g.Constructors
	case DeclDestructor:
		table = g.Destructors
	case DeclUsingDeclaration:
		table = g.UsingDeclarations
	case DeclIntrinsic:
		table = g.Intrinsics
	default:
		return NamedDecl{}, errors.AssertionFailedf("declaration %s has no named table", d)
	}
	return row(table, d.Index, d.Sort.String())
}

func (g *Graph) Fundamental(t TypeIndex) (FundamentalType, error) {
	if err := expectType(t, TypeFundamental); err != nil {
		return FundamentalType{}, err
	}
	return row(g.FundamentalTypes, t.Index, "fundamental type")
}

func (g *Graph) Designated(t TypeIndex) (DesignatedType, error) {
	if err := expectType(t, TypeDesignated); err != nil {
		return DesignatedType{}, err
	}
	return row(g.DesignatedTypes, t.Index, "designated type")
}

func (g *Graph) Pointer(t TypeIndex) (PointerType, error) {
	if err := expectType(t, TypePointer); err != nil {
		return PointerType{}, err
	}
	return row(g.PointerTypes, t.Index, "pointer type")
}

func (g *Graph) LvalueReference(t TypeIndex) (ReferenceType, error) {
	if err := expectType(t, TypeLvalueReference); err != nil {
		return ReferenceType{}, err
	}
	return row(g.LvalueReferences, t.Index, "lvalue reference")
}

func (g *Graph) RvalueReference(t TypeIndex) (ReferenceType, error) {
	if err := expectType(t, TypeRvalueReference); err != nil {
		return ReferenceType{}, err
	}
	return row(g.RvalueReferences, t.Index, "rvalue reference")
}

func (g *Graph) Qualified(t TypeIndex) (QualifiedType, error) {
	if err := expectType(t, TypeQualified); err != nil {
		return QualifiedType{}, err
	}
	return row(g.QualifiedTypes, t.Index, "qualified type")
}

func (g *Graph) Tuple(t TypeIndex) (TupleType, error) {
	if err := expectType(t, TypeTuple); err != nil {
		return TupleType{}, err
	}
	return row(g.TupleTypes, t.Index, "tuple type")
}

func (g *Graph) Function(t TypeIndex) (FunctionType, error) {
	if err := expectType(t, TypeFunction); err != nil {
		return FunctionType{}, err
	}
	return row(g.FunctionTypes, t.Index, "function type")
}

func (g *Graph) MethodType(t TypeIndex) (MethodType, error) {
	if err := expectType(t, TypeMethod); err != nil {
		return MethodType{}, err
	}
	return row(g.MethodTypes, t.Index, "method type")
}

func (g *Graph) Base(t TypeIndex) (BaseType, error) {
	if err := expectType(t, TypeBase); err != nil {
		return BaseType{}, err
	}
	return row(g.BaseTypes, t.Index, "base type")
}

func (g *Graph) Placeholder(t TypeIndex) (PlaceholderType, error) {
	if err := expectType(t, TypePlaceholder); err != nil {
		return PlaceholderType{}, err
	}
	return row(g.PlaceholderTypes, t.Index, "placeholder type")
}

func (g *Graph) DeclExpression(e ExprIndex) (NamedDeclExpr, error) {
	if e.Sort != ExprNamedDecl {
		return NamedDeclExpr{}, errors.AssertionFailedf("expected a NamedDecl expression, got %s", e)
	}
	return row(g.DeclExpressions, e.Index, "decl expression")
}
