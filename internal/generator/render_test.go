package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

func newTestGenerator(b *ifc.Builder) *generator {
	return newGenerator(b.Graph(), quiet())
}

func TestRenderFundamental(t *testing.T) {
	tests := []struct {
		name string
		ft   ifc.FundamentalType
		want string
	}{
		{"int", ifc.FundamentalType{Basis: ifc.BasisInt}, "int"},
		{"unsigned int", ifc.FundamentalType{Basis: ifc.BasisInt, Sign: ifc.SignUnsigned}, "unsigned int"},
		{"signed int", ifc.FundamentalType{Basis: ifc.BasisInt, Sign: ifc.SignSigned}, "int"},
		{"short", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionShort}, "short"},
		{"unsigned short", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionShort, Sign: ifc.SignUnsigned}, "unsigned short"},
		{"long", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionLong}, "long"},
		{"long long", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionBit64}, "long long"},
		{"unsigned long long", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionBit64, Sign: ifc.SignUnsigned}, "unsigned long long"},
		{"long double", ifc.FundamentalType{Basis: ifc.BasisDouble, Precision: ifc.PrecisionLong}, "long double"},
		{"char", ifc.FundamentalType{Basis: ifc.BasisChar}, "char"},
		{"signed char", ifc.FundamentalType{Basis: ifc.BasisChar, Sign: ifc.SignSigned}, "signed char"},
		{"unsigned char", ifc.FundamentalType{Basis: ifc.BasisChar, Sign: ifc.SignUnsigned}, "unsigned char"},
		{"char8_t", ifc.FundamentalType{Basis: ifc.BasisChar, Precision: ifc.PrecisionBit8}, "char8_t"},
		{"char16_t", ifc.FundamentalType{Basis: ifc.BasisChar, Precision: ifc.PrecisionBit16}, "char16_t"},
		{"char32_t", ifc.FundamentalType{Basis: ifc.BasisChar, Precision: ifc.PrecisionBit32}, "char32_t"},
		{"wchar_t", ifc.FundamentalType{Basis: ifc.BasisWcharT}, "wchar_t"},
		{"bool", ifc.FundamentalType{Basis: ifc.BasisBool}, "bool"},
		{"void", ifc.FundamentalType{Basis: ifc.BasisVoid}, "void"},
		{"float", ifc.FundamentalType{Basis: ifc.BasisFloat}, "float"},
		{"int128", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionBit128}, "<UNEXPECTED_BITNESS Bit128> int"},
		{"bit16 int", ifc.FundamentalType{Basis: ifc.BasisInt, Precision: ifc.PrecisionBit16}, "<UNEXPECTED_BITNESS Bit16> int"},
		{"nullptr", ifc.FundamentalType{Basis: ifc.BasisNullptr}, "<UNEXPECTED_FUNDAMENTAL_TYPE Nullptr>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderFundamental(tt.ft))
		})
	}
}

func TestRenderType(t *testing.T) {
	b := ifc.NewBuilder(ifc.UnitPrimary, "m")
	intT := b.Fundamental(ifc.BasisInt, ifc.PrecisionDefault, ifc.SignPlain)
	voidT := b.Fundamental(ifc.BasisVoid, ifc.PrecisionDefault, ifc.SignPlain)
	ns := b.Namespace(b.Global(), "Outer")
	inner := b.Namespace(ns, "Inner")
	widget := b.Struct(inner, "Widget")
	widgetT := b.Type(widget)
	alias := b.Declare(ns, ifc.DeclAlias, b.Identifier("Handle"), intT, ifc.AccessNone)
	param := b.Parameter("T", ifc.TypeIndex{})

	tests := []struct {
		name string
		t    ifc.TypeIndex
		want string
	}{
		{"designated", widgetT, "Outer::Inner::Widget"},
		{"alias", b.Designated(alias), "Outer::Handle"},
		{"template parameter", b.Designated(param), "T"},
		{"pointer", b.Pointer(widgetT), "Outer::Inner::Widget*"},
		{"lvalue reference", b.LvalueRef(intT), "int&"},
		{"rvalue reference", b.RvalueRef(widgetT), "Outer::Inner::Widget&&"},
		{"pointer to pointer", b.Pointer(b.Pointer(intT)), "int**"},
		{"pointer to const", b.Pointer(b.Qualified(intT, ifc.QualifierConst)), "int const*"},
		{"const pointer", b.Qualified(b.Pointer(intT), ifc.QualifierConst), "int* const"},
		{"const reference", b.LvalueRef(b.Qualified(widgetT, ifc.QualifierConst)), "Outer::Inner::Widget const&"},
		{"restrict dropped", b.Qualified(b.Pointer(intT), ifc.QualifierRestrict), "int*"},
		{"base", b.Base(widgetT, ifc.AccessPublic, false), "Outer::Inner::Widget"},
		{"placeholder", b.Placeholder(intT), "int"},
		{"tuple", b.Tuple(intT, widgetT), "int, Outer::Inner::Widget"},
		{"empty tuple", b.Tuple(), ""},
		{"function", b.Function(voidT), "void()"},
		{"function with params", b.Function(intT, intT, b.Pointer(voidT)), "int(int, void*)"},
		{"array", b.Unsupported(ifc.TypeArray), "<UNSUPPORTED_TYPE Array>"},
		{"method", b.MethodType(widgetT, voidT), "<UNSUPPORTED_TYPE Method>"},
		{"pointer to member", b.Pointer(b.Unsupported(ifc.TypePointerToMember)), "<UNSUPPORTED_TYPE PointerToMember>*"},
		{"decltype", b.Unsupported(ifc.TypeDecltype), "<UNSUPPORTED_TYPE Decltype>"},
		{"syntax tree", b.Unsupported(ifc.TypeSyntaxTree), "<UNSUPPORTED_TYPE SyntaxTree>"},
	}

	g := newTestGenerator(b)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.renderType(tt.t)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderQualifiedIsCanonical(t *testing.T) {
	b := ifc.NewBuilder(ifc.UnitPrimary, "m")
	intT := b.Fundamental(ifc.BasisInt, ifc.PrecisionDefault, ifc.SignPlain)
	cv := ifc.QualifierConst | ifc.QualifierVolatile

	tests := []struct {
		name string
		t    ifc.TypeIndex
	}{
		{"merged", b.Pointer(b.Qualified(intT, cv))},
		{"nested", b.Pointer(b.Qualified(b.Qualified(intT, ifc.QualifierVolatile), ifc.QualifierConst))},
		{"reversed", b.Pointer(b.Qualified(b.Qualified(intT, ifc.QualifierConst), ifc.QualifierVolatile))},
		{"const deduced volatile", b.Pointer(b.Qualified(b.Placeholder(b.Qualified(intT, ifc.QualifierVolatile)), ifc.QualifierConst))},
		{"volatile deduced const", b.Pointer(b.Qualified(b.Placeholder(b.Qualified(intT, ifc.QualifierConst)), ifc.QualifierVolatile))},
		{"deduced twice", b.Pointer(b.Qualified(b.Placeholder(b.Placeholder(b.Qualified(intT, cv))), ifc.QualifierConst))},
	}

	g := newTestGenerator(b)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.renderType(tt.t)
			require.NoError(t, err)
			assert.Equal(t, "int const volatile*", got)
		})
	}
}

func TestRenderFailures(t *testing.T) {
	b := ifc.NewBuilder(ifc.UnitPrimary, "m")
	intT := b.Fundamental(ifc.BasisInt, ifc.PrecisionDefault, ifc.SignPlain)
	s := b.Struct(b.Global(), "S")
	b.Field(s, "x", intT, ifc.AccessNone)
	ctor := b.Declare(s, ifc.DeclConstructor, b.Identifier("S"), ifc.TypeIndex{}, ifc.AccessNone)

	tests := []struct {
		name string
		t    ifc.TypeIndex
	}{
		{"unrecorded placeholder", b.Pointer(b.Placeholder(ifc.TypeIndex{}))},
		{"dangling pointer", ifc.TypeIndex{Sort: ifc.TypePointer, Index: 99}},
		{"null", ifc.TypeIndex{}},
		{"unknown sort", ifc.TypeIndex{Sort: 200}},
		{"designated constructor", b.Designated(ctor)},
		{"designated friend", b.Designated(ifc.DeclIndex{Sort: ifc.DeclFriend})},
	}

	g := newTestGenerator(b)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.renderType(tt.t)
			require.Error(t, err)
			assert.True(t, errors.HasAssertionFailure(err), "%+v", err)
		})
	}
}

func TestRenderCyclicGraphs(t *testing.T) {
	t.Run("pointer to itself", func(t *testing.T) {
		b := ifc.NewBuilder(ifc.UnitPrimary, "m")
		self := b.Pointer(ifc.TypeIndex{Sort: ifc.TypePointer, Index: 0})
		g := newTestGenerator(b)

		_, err := g.renderType(self)
		require.Error(t, err)
		assert.True(t, errors.HasAssertionFailure(err))
		assert.Contains(t, errors.Describe(err), "type graph too deep or cyclic")
		assert.Zero(t, g.depth)
	})

	t.Run("qualified itself", func(t *testing.T) {
		b := ifc.NewBuilder(ifc.UnitPrimary, "m")
		self := b.Qualified(ifc.TypeIndex{Sort: ifc.TypeQualified, Index: 0}, ifc.QualifierConst)
		g := newTestGenerator(b)

		_, err := g.renderType(self)
		require.Error(t, err)
		assert.True(t, errors.HasAssertionFailure(err))
	})

	t.Run("deep but finite", func(t *testing.T) {
		b := ifc.NewBuilder(ifc.UnitPrimary, "m")
		typ := b.Fundamental(ifc.BasisChar, ifc.PrecisionDefault, ifc.SignPlain)
		for range 100 {
			typ = b.Pointer(typ)
		}
		g := newTestGenerator(b)

		got, err := g.renderType(typ)
		require.NoError(t, err)
		assert.Equal(t, "char"+strings.Repeat("*", 100), got)
	})
}

func TestRenderFramesInnermostFirst(t *testing.T) {
	b := ifc.NewBuilder(ifc.UnitPrimary, "m")
	hole := b.Placeholder(ifc.TypeIndex{})
	ref := b.LvalueRef(hole)
	ptr := b.Pointer(ref)
	g := newTestGenerator(b)

	_, err := g.renderType(ptr)
	require.Error(t, err)
	assert.Equal(t, []string{
		"while rendering type " + hole.String(),
		"while rendering type " + ref.String(),
		"while rendering type " + ptr.String(),
	}, errors.Frames(err))
	assert.Contains(t, errors.Describe(err), "no recorded deduced type")
}

func TestResolveNamespace(t *testing.T) {
	b := ifc.NewBuilder(ifc.UnitPrimary, "m")
	a := b.Namespace(b.Global(), "A")
	bb := b.Namespace(a, "B")
	top := b.Struct(b.Global(), "Top")
	nested := b.Class(bb, "Nested")
	inClass := b.Struct(nested, "Inner")
	fn := b.FunctionDecl(bb, "run", ifc.TypeIndex{})
	g := newTestGenerator(b)

	tests := []struct {
		name string
		d    ifc.DeclIndex
		want string
	}{
		{"global", top.Decl, ""},
		{"namespace", a.Decl, ""},
		{"nested namespace", bb.Decl, "A::"},
		{"class in namespace", nested.Decl, "A::B::"},
		{"class in class", inClass.Decl, "A::B::Nested::"},
		{"function", fn, "A::B::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.resolveNamespace(tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("home scopes forming a cycle", func(t *testing.T) {
		cb := ifc.NewBuilder(ifc.UnitPrimary, "m")
		x := cb.Struct(cb.Global(), "X")
		y := cb.Struct(cb.Global(), "Y")
		graph := cb.Graph()
		graph.Scopes[x.Decl.Index].HomeScope = y.Decl
		graph.Scopes[y.Decl.Index].HomeScope = x.Decl
		cg := newGenerator(graph, quiet())

		_, err := cg.resolveNamespace(x.Decl)
		require.Error(t, err)
		assert.True(t, errors.HasAssertionFailure(err))
		assert.Contains(t, errors.Describe(err), "type graph too deep or cyclic")
	})

	t.Run("parameter has no home scope", func(t *testing.T) {
		_, err := g.resolveNamespace(b.Parameter("T", ifc.TypeIndex{}))
		require.Error(t, err)
		assert.True(t, errors.HasAssertionFailure(err))
	})
}

func TestIdentifier(t *testing.T) {
	tests := map[string]string{
		"Game::Base":       "game___base_",
		"Vault":            "vault_",
		"HTTPServer":       "httpserver_",
		"myType":           "my_type_",
		"a::b_c":           "a__b_c_",
		"Ns::Vec3D":        "ns___vec3_d_",
		"Outer::Inner::X1": "outer___inner___x1_",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Identifier(in))
		})
	}
}
