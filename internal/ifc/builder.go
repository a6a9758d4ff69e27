package ifc

// ScopeRef is a scope under construction: the declaration that owns it and
// the descriptor its members are collected into. The global scope has a
// null Decl.
type ScopeRef struct {
	Decl    DeclIndex
	Members ScopeIndex
}

// Builder assembles a Graph table by table. It is used for fixtures and by
// tools that translate an external parser's output.
//
// Member sequences and friendship traits are laid out into their heaps when
// Graph is called, so declarations may be added to any scope in any order.
type Builder struct {
	g       Graph
	texts   map[string]TextOffset
	members [][]DeclIndex
	friends []friendList
}

type friendList struct {
	scope   DeclIndex
	friends []DeclIndex
}

// NewBuilder starts a graph for the unit named module. Scope descriptor 0 is
// the global scope.
func NewBuilder(sort UnitSort, module string) *Builder {
	b := &Builder{texts: make(map[string]TextOffset)}
	b.g.Header.Unit = Unit{Sort: sort, Name: b.Text(module)}
	b.g.Header.GlobalScope = b.newDescriptor()
	return b
}

func (b *Builder) newDescriptor() ScopeIndex {
	b.members = append(b.members, nil)
	return ScopeIndex(len(b.members) - 1)
}

// Text interns s in the text table.
func (b *Builder) Text(s string) TextOffset {
	if off, ok := b.texts[s]; ok {
		return off
	}
	off := TextOffset(len(b.g.Texts))
	b.g.Texts = append(b.g.Texts, s)
	b.texts[s] = off
	return off
}

// Identifier returns an identifier name for s.
func (b *Builder) Identifier(s string) NameIndex {
	return NameIndex{Sort: NameIdentifier, Index: uint32(b.Text(s))}
}

// Name returns a name of an arbitrary sort whose payload is the text s.
func (b *Builder) Name(sort NameSort, s string) NameIndex {
	return NameIndex{Sort: sort, Index: uint32(b.Text(s))}
}

// Global returns the global scope.
func (b *Builder) Global() ScopeRef {
	return ScopeRef{Members: b.g.Header.GlobalScope}
}

func (b *Builder) Fundamental(basis TypeBasis, precision TypePrecision, sign TypeSign) TypeIndex {
	b.g.FundamentalTypes = append(b.g.FundamentalTypes, FundamentalType{Basis: basis, Precision: precision, Sign: sign})
	return TypeIndex{Sort: TypeFundamental, Index: uint32(len(b.g.FundamentalTypes) - 1)}
}

func (b *Builder) Designated(d DeclIndex) TypeIndex {
	b.g.DesignatedTypes = append(b.g.DesignatedTypes, DesignatedType{Decl: d})
	return TypeIndex{Sort: TypeDesignated, Index: uint32(len(b.g.DesignatedTypes) - 1)}
}

func (b *Builder) Pointer(t TypeIndex) TypeIndex {
	b.g.PointerTypes = append(b.g.PointerTypes, PointerType{Pointee: t})
	return TypeIndex{Sort: TypePointer, Index: uint32(len(b.g.PointerTypes) - 1)}
}

func (b *Builder) LvalueRef(t TypeIndex) TypeIndex {
	b.g.LvalueReferences = append(b.g.LvalueReferences, ReferenceType{Referee: t})
	return TypeIndex{Sort: TypeLvalueReference, Index: uint32(len(b.g.LvalueReferences) - 1)}
}

func (b *Builder) RvalueRef(t TypeIndex) TypeIndex {
	b.g.RvalueReferences = append(b.g.RvalueReferences, ReferenceType{Referee: t})
	return TypeIndex{Sort: TypeRvalueReference, Index: uint32(len(b.g.RvalueReferences) - 1)}
}

func (b *Builder) Qualified(t TypeIndex, q Qualifiers) TypeIndex {
	b.g.QualifiedTypes = append(b.g.QualifiedTypes, QualifiedType{Unqualified: t, Qualifiers: q})
	return TypeIndex{Sort: TypeQualified, Index: uint32(len(b.g.QualifiedTypes) - 1)}
}

// Tuple appends elems to the type heap as one contiguous sequence.
func (b *Builder) Tuple(elems ...TypeIndex) TypeIndex {
	start := uint32(len(b.g.TypeHeap))
	b.g.TypeHeap = append(b.g.TypeHeap, elems...)
	b.g.TupleTypes = append(b.g.TupleTypes, TupleType{Start: start, Cardinality: uint32(len(elems))})
	return TypeIndex{Sort: TypeTuple, Index: uint32(len(b.g.TupleTypes) - 1)}
}

// params packs parameter types the way the compiler does: none is null, one
// is the type itself, more is a tuple.
func (b *Builder) params(ps []TypeIndex) TypeIndex {
	switch len(ps) {
	case 0:
		return TypeIndex{}
	case 1:
		return ps[0]
	default:
		return b.Tuple(ps...)
	}
}

func (b *Builder) Function(ret TypeIndex, params ...TypeIndex) TypeIndex {
	b.g.FunctionTypes = append(b.g.FunctionTypes, FunctionType{Target: ret, Source: b.params(params)})
	return TypeIndex{Sort: TypeFunction, Index: uint32(len(b.g.FunctionTypes) - 1)}
}

func (b *Builder) MethodType(class, ret TypeIndex, params ...TypeIndex) TypeIndex {
	b.g.MethodTypes = append(b.g.MethodTypes, MethodType{Target: ret, Source: b.params(params), Class: class})
	return TypeIndex{Sort: TypeMethod, Index: uint32(len(b.g.MethodTypes) - 1)}
}

func (b *Builder) Base(t TypeIndex, access Access, virtual bool) TypeIndex {
	b.g.BaseTypes = append(b.g.BaseTypes, BaseType{Type: t, Access: access, Virtual: virtual})
	return TypeIndex{Sort: TypeBase, Index: uint32(len(b.g.BaseTypes) - 1)}
}

func (b *Builder) Placeholder(elaboration TypeIndex) TypeIndex {
	b.g.PlaceholderTypes = append(b.g.PlaceholderTypes, PlaceholderType{Elaboration: elaboration})
	return TypeIndex{Sort: TypePlaceholder, Index: uint32(len(b.g.PlaceholderTypes) - 1)}
}

// Unsupported returns a type reference of a sort that carries no table.
func (b *Builder) Unsupported(sort TypeSort) TypeIndex {
	return TypeIndex{Sort: sort}
}

// Scope declares a scope of the given kind inside parent and opens a member
// descriptor for it.
func (b *Builder) Scope(parent ScopeRef, kind TypeBasis, name string, access Access) ScopeRef {
	members := b.newDescriptor()
	b.g.Scopes = append(b.g.Scopes, ScopeDecl{
		Name:        b.Identifier(name),
		Kind:        kind,
		Initializer: members,
		HomeScope:   parent.Decl,
		Access:      access,
	})
	d := DeclIndex{Sort: DeclScope, Index: uint32(len(b.g.Scopes) - 1)}
	b.attach(parent, d)
	return ScopeRef{Decl: d, Members: members}
}

func (b *Builder) Namespace(parent ScopeRef, name string) ScopeRef {
	return b.Scope(parent, BasisNamespace, name, AccessNone)
}

func (b *Builder) Struct(parent ScopeRef, name string) ScopeRef {
	return b.Scope(parent, BasisStruct, name, AccessNone)
}

func (b *Builder) Class(parent ScopeRef, name string) ScopeRef {
	return b.Scope(parent, BasisClass, name, AccessNone)
}

func (b *Builder) Union(parent ScopeRef, name string) ScopeRef {
	return b.Scope(parent, BasisUnion, name, AccessNone)
}

// NonExported marks s as not visible outside the module.
func (b *Builder) NonExported(s ScopeRef) {
	b.g.Scopes[s.Decl.Index].Specifiers |= SpecifierNonExported
}

// SetBase records the base-class specifier of s: nothing, a single base or a
// tuple of bases.
func (b *Builder) SetBase(s ScopeRef, bases ...TypeIndex) {
	var base TypeIndex
	switch len(bases) {
	case 0:
	case 1:
		base = bases[0]
	default:
		base = b.Tuple(bases...)
	}
	b.g.Scopes[s.Decl.Index].Base = base
}

// Type returns the designated type naming the scope s.
func (b *Builder) Type(s ScopeRef) TypeIndex {
	return b.Designated(s.Decl)
}

func (b *Builder) attach(s ScopeRef, d DeclIndex) {
	b.members[s.Members] = append(b.members[s.Members], d)
}

// Declare adds a member of any tabled sort to s. Scopes, parameters and
// friends have dedicated constructors.
func (b *Builder) Declare(s ScopeRef, sort DeclSort, name NameIndex, t TypeIndex, access Access) DeclIndex {
	var index int
	switch sort {
	case DeclField:
		b.g.Fields = append(b.g.Fields, FieldDecl{Name: name, Type: t, HomeScope: s.Decl, Access: access})
		index = len(b.g.Fields) - 1
	case DeclMethod:
		b.g.Methods = append(b.g.Methods, MethodDecl{Name: name, Type: t, HomeScope: s.Decl, Access: access})
		index = len(b.g.Methods) - 1
	default:
		table := b.namedTable(sort)
		if table == nil {
			panic("ifc: Declare cannot build a " + sort.String() + " declaration")
		}
		*table = append(*table, NamedDecl{Name: name, Type: t, HomeScope: s.Decl, Access: access})
		index = len(*table) - 1
	}
	d := DeclIndex{Sort: sort, Index: uint32(index)}
	b.attach(s, d)
	return d
}

func (b *Builder) namedTable(sort DeclSort) *[]NamedDecl {
	switch sort {
	case DeclVariable:
		return &b.g.Variables
	case DeclEnumeration:
		return &b.g.Enumerations
	case DeclAlias:
		return &b.g.Aliases
	case DeclTemplate:
		return &b.g.Templates
	case DeclConcept:
		return &b.g.Concepts
	case DeclFunction:
		return &b.g.Functions
	case DeclConstructor:
		return &b.g.Constructors
	case DeclDestructor:
		return &b.g.Destructors
	case DeclUsingDeclaration:
		return &b.g.UsingDeclarations
	case DeclIntrinsic:
		return &b.g.Intrinsics
	}
	return nil
}

func (b *Builder) Field(s ScopeRef, name string, t TypeIndex, access Access) DeclIndex {
	return b.Declare(s, DeclField, b.Identifier(name), t, access)
}

// Method declares a member function; t should be a Method type.
func (b *Builder) Method(s ScopeRef, name string, t TypeIndex, access Access) DeclIndex {
	return b.Declare(s, DeclMethod, b.Identifier(name), t, access)
}

// FunctionDecl declares a free function.
func (b *Builder) FunctionDecl(s ScopeRef, name string, t TypeIndex) DeclIndex {
	return b.Declare(s, DeclFunction, b.Identifier(name), t, AccessNone)
}

// Parameter adds a parameter declaration. Parameters belong to no scope.
func (b *Builder) Parameter(name string, t TypeIndex) DeclIndex {
	b.g.Parameters = append(b.g.Parameters, ParameterDecl{Name: b.Text(name), Type: t})
	return DeclIndex{Sort: DeclParameter, Index: uint32(len(b.g.Parameters) - 1)}
}

// DeclExpr returns a named-declaration expression resolving to d.
func (b *Builder) DeclExpr(t TypeIndex, d DeclIndex) ExprIndex {
	b.g.DeclExpressions = append(b.g.DeclExpressions, NamedDeclExpr{Type: t, Resolution: d})
	return ExprIndex{Sort: ExprNamedDecl, Index: uint32(len(b.g.DeclExpressions) - 1)}
}

// Friend records entity as a friend of the class or struct s.
func (b *Builder) Friend(s ScopeRef, entity ExprIndex) DeclIndex {
	b.g.Friends = append(b.g.Friends, FriendDecl{Entity: entity})
	d := DeclIndex{Sort: DeclFriend, Index: uint32(len(b.g.Friends) - 1)}
	for i := range b.friends {
		if b.friends[i].scope == s.Decl {
			b.friends[i].friends = append(b.friends[i].friends, d)
			return d
		}
	}
	b.friends = append(b.friends, friendList{scope: s.Decl, friends: []DeclIndex{d}})
	return d
}

// Graph lays out the member and friend heaps and returns the graph. The
// result shares table storage with the builder, so the builder should not be
// modified afterwards.
func (b *Builder) Graph() *Graph {
	g := b.g
	g.Declarations = nil
	g.ScopeDescriptors = make([]Sequence, len(b.members))
	for i, ms := range b.members {
		g.ScopeDescriptors[i] = Sequence{Start: uint32(len(g.Declarations)), Cardinality: uint32(len(ms))}
		g.Declarations = append(g.Declarations, ms...)
	}
	g.Friendships = nil
	for _, fl := range b.friends {
		g.Friendships = append(g.Friendships, Friendship{
			Scope:   fl.scope,
			Friends: Sequence{Start: uint32(len(g.Declarations)), Cardinality: uint32(len(fl.friends))},
		})
		g.Declarations = append(g.Declarations, fl.friends...)
	}
	return &g
}
