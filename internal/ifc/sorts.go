package ifc

import (
	"strconv"
	"strings"

	"github.com/calumari/neatgen/internal/errors"
)

// DeclSort tags the declaration table a DeclIndex points into.
type DeclSort uint8

// Declaration sorts. The zero value is reserved for the null index.
const (
	_ DeclSort = iota
	DeclEnumerator
	DeclVariable
	DeclParameter
	DeclField
	DeclBitfield
	DeclScope
	DeclEnumeration
	DeclAlias
	DeclTemploid
	DeclTemplate
	DeclPartialSpecialization
	DeclSpecialization
	DeclExplicitInstantiation
	DeclConcept
	DeclFunction
	DeclMethod
	DeclConstructor
	DeclInheritedConstructor
	DeclDestructor
	DeclReference
	DeclUsingDeclaration
	DeclUsingDirective
	DeclFriend
	DeclExpansion
	DeclDeductionGuide
	DeclBarren
	DeclTuple
	DeclSyntaxTree
	DeclIntrinsic
	DeclProperty
	DeclOutputSegment
	DeclVendorExtension
)

var declSortNames = []string{
	"", "Enumerator", "Variable", "Parameter", "Field", "Bitfield", "Scope", "Enumeration",
	"Alias", "Temploid", "Template", "PartialSpecialization", "Specialization",
	"ExplicitInstantiation", "Concept", "Function", "Method", "Constructor",
	"InheritedConstructor", "Destructor", "Reference", "UsingDeclaration", "UsingDirective",
	"Friend", "Expansion", "DeductionGuide", "Barren", "Tuple", "SyntaxTree", "Intrinsic",
	"Property", "OutputSegment", "VendorExtension",
}

func (s DeclSort) String() string { return sortName(declSortNames, "DeclSort", s) }

// TypeSort tags the type table a TypeIndex points into.
type TypeSort uint8

// Type sorts. The zero value is reserved for the null index.
const (
	_ TypeSort = iota
	TypeFundamental
	TypeDesignated
	TypeTor
	TypeSyntactic
	TypeExpansion
	TypePointer
	TypePointerToMember
	TypeLvalueReference
	TypeRvalueReference
	TypeFunction
	TypeMethod
	TypeArray
	TypeTypename
	TypeQualified
	TypeBase
	TypeDecltype
	TypePlaceholder
	TypeTuple
	TypeForall
	TypeUnaligned
	TypeSyntaxTree
	TypeVendorExtension
)

var typeSortNames = []string{
	"", "Fundamental", "Designated", "Tor", "Syntactic", "Expansion", "Pointer",
	"PointerToMember", "LvalueReference", "RvalueReference", "Function", "Method", "Array",
	"Typename", "Qualified", "Base", "Decltype", "Placeholder", "Tuple", "Forall", "Unaligned",
	"SyntaxTree", "VendorExtension",
}

func (s TypeSort) String() string { return sortName(typeSortNames, "TypeSort", s) }

// ExprSort tags the expression table an ExprIndex points into. Only named
// declaration expressions carry a table; the other sorts are kept as tags.
type ExprSort uint8

// Expression sorts. The zero value is reserved for the null index.
const (
	_ ExprSort = iota
	ExprLiteral
	ExprNamedDecl
	ExprTemplateId
	ExprCall
	ExprType
	ExprPath
	ExprUnresolvedId
	ExprVendorExtension
)

var exprSortNames = []string{
	"", "Literal", "NamedDecl", "TemplateId", "Call", "Type", "Path", "UnresolvedId",
	"VendorExtension",
}

func (s ExprSort) String() string { return sortName(exprSortNames, "ExprSort", s) }

// NameSort tags what a NameIndex refers to.
type NameSort uint8

// Name sorts. Identifier names index the text table directly.
const (
	_ NameSort = iota
	NameIdentifier
	NameOperator
	NameConversion
	NameLiteral
	NameTemplate
	NameSpecialization
	NameSourceFile
	NameGuide
)

var nameSortNames = []string{
	"", "Identifier", "Operator", "Conversion", "Literal", "Template", "Specialization",
	"SourceFile", "Guide",
}

func (s NameSort) String() string { return sortName(nameSortNames, "NameSort", s) }

// UnitSort classifies the translation unit a graph was produced from.
type UnitSort uint8

const (
	UnitSource UnitSort = iota
	UnitPrimary
	UnitPartition
	UnitHeader
	UnitExportedTU
)

var unitSortNames = []string{"Source", "Primary", "Partition", "Header", "ExportedTU"}

func (s UnitSort) String() string { return sortName(unitSortNames, "UnitSort", s) }

// TypeBasis is the basic kind of a fundamental type. Scope declarations use
// the Class, Struct, Union and Namespace values as their kind.
type TypeBasis uint8

const (
	BasisVoid TypeBasis = iota
	BasisBool
	BasisChar
	BasisWcharT
	BasisInt
	BasisFloat
	BasisDouble
	BasisNullptr
	BasisEllipsis
	BasisSegmentType
	BasisClass
	BasisStruct
	BasisUnion
	BasisEnum
	BasisTypename
	BasisNamespace
	BasisInterface
	BasisFunction
	BasisEmpty
	BasisVariableTemplate
	BasisConcept
	BasisAuto
	BasisDecltypeAuto
	BasisOverload
)

var basisNames = []string{
	"Void", "Bool", "Char", "Wchar_t", "Int", "Float", "Double", "Nullptr", "Ellipsis",
	"SegmentType", "Class", "Struct", "Union", "Enum", "Typename", "Namespace", "Interface",
	"Function", "Empty", "VariableTemplate", "Concept", "Auto", "DecltypeAuto", "Overload",
}

func (b TypeBasis) String() string { return sortName(basisNames, "TypeBasis", b) }

// TypePrecision is the bit precision of a fundamental type.
type TypePrecision uint8

const (
	PrecisionDefault TypePrecision = iota
	PrecisionShort
	PrecisionLong
	PrecisionBit8
	PrecisionBit16
	PrecisionBit32
	PrecisionBit64
	PrecisionBit128
)

var precisionNames = []string{"Default", "Short", "Long", "Bit8", "Bit16", "Bit32", "Bit64", "Bit128"}

func (p TypePrecision) String() string { return sortName(precisionNames, "TypePrecision", p) }

// TypeSign is the signedness of a fundamental type.
type TypeSign uint8

const (
	SignPlain TypeSign = iota
	SignSigned
	SignUnsigned
)

var signNames = []string{"Plain", "Signed", "Unsigned"}

func (s TypeSign) String() string { return sortName(signNames, "TypeSign", s) }

// Access is the declared access of a member. AccessNone means the access was
// not written and the enclosing kind's default applies.
type Access uint8

const (
	AccessNone Access = iota
	AccessPrivate
	AccessProtected
	AccessPublic
)

var accessNames = []string{"None", "Private", "Protected", "Public"}

func (a Access) String() string { return sortName(accessNames, "Access", a) }

// Valid reports whether a is one of the four defined access values.
func (a Access) Valid() bool { return a <= AccessPublic }

// Qualifiers is the cv-qualifier bitset of a qualified type.
type Qualifiers uint8

const (
	QualifierConst Qualifiers = 1 << iota
	QualifierVolatile
	QualifierRestrict
)

var qualifierNames = []string{"Const", "Volatile", "Restrict"}

// Has reports whether every bit of q2 is set in q.
func (q Qualifiers) Has(q2 Qualifiers) bool { return q&q2 == q2 }

func (q Qualifiers) String() string { return flagsString(qualifierNames, uint16(q)) }

// BasicSpecifiers is the declaration specifier bitset.
type BasicSpecifiers uint8

const (
	SpecifierC BasicSpecifiers = 1 << iota
	SpecifierInternal
	SpecifierVague
	SpecifierExternal
	SpecifierDeprecated
	SpecifierInitializedInClass
	SpecifierNonExported
	SpecifierIsMemberOfGlobalModule
)

var specifierNames = []string{
	"C", "Internal", "Vague", "External", "Deprecated", "InitializedInClass", "NonExported",
	"IsMemberOfGlobalModule",
}

// Has reports whether every bit of s2 is set in s.
func (s BasicSpecifiers) Has(s2 BasicSpecifiers) bool { return s&s2 == s2 }

func (s BasicSpecifiers) String() string { return flagsString(specifierNames, uint16(s)) }

func sortName[S ~uint8](names []string, kind string, s S) string {
	if int(s) < len(names) && names[s] != "" {
		return names[s]
	}
	return kind + "(" + strconv.Itoa(int(s)) + ")"
}

// parseSort accepts a sort name or a raw decimal value. Raw values let
// snapshots carry values outside the known range.
func parseSort[S ~uint8](names []string, kind, text string) (S, error) {
	for i, n := range names {
		if n != "" && n == text {
			return S(i), nil
		}
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(text, kind+"("), ")")
	if v, err := strconv.ParseUint(raw, 10, 8); err == nil {
		return S(v), nil
	}
	return 0, errors.Newf("unknown %s %q", kind, text)
}

func flagsString(names []string, v uint16) string {
	if v == 0 {
		return ""
	}
	var parts []string
	for i, n := range names {
		if v&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

func parseFlags(names []string, kind, text string) (uint16, error) {
	var v uint16
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	for _, part := range strings.Split(text, "|") {
		part = strings.TrimSpace(part)
		found := false
		for i, n := range names {
			if n == part {
				v |= 1 << i
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Newf("unknown %s flag %q", kind, part)
		}
	}
	return v, nil
}

func (s DeclSort) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *DeclSort) UnmarshalText(b []byte) (err error) {
	*s, err = parseSort[DeclSort](declSortNames, "DeclSort", string(b))
	return err
}

func (s TypeSort) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *TypeSort) UnmarshalText(b []byte) (err error) {
	*s, err = parseSort[TypeSort](typeSortNames, "TypeSort", string(b))
	return err
}

func (s ExprSort) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *ExprSort) UnmarshalText(b []byte) (err error) {
	*s, err = parseSort[ExprSort](exprSortNames, "ExprSort", string(b))
	return err
}

func (s NameSort) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *NameSort) UnmarshalText(b []byte) (err error) {
	*s, err = parseSort[NameSort](nameSortNames, "NameSort", string(b))
	return err
}

func (s UnitSort) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *UnitSort) UnmarshalText(b []byte) (err error) {
	*s, err = parseSort[UnitSort](unitSortNames, "UnitSort", string(b))
	return err
}

func (b TypeBasis) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
func (b *TypeBasis) UnmarshalText(text []byte) (err error) {
	*b, err = parseSort[TypeBasis](basisNames, "TypeBasis", string(text))
	return err
}

func (p TypePrecision) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *TypePrecision) UnmarshalText(b []byte) (err error) {
	*p, err = parseSort[TypePrecision](precisionNames, "TypePrecision", string(b))
	return err
}

func (s TypeSign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *TypeSign) UnmarshalText(b []byte) (err error) {
	*s, err = parseSort[TypeSign](signNames, "TypeSign", string(b))
	return err
}

func (a Access) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *Access) UnmarshalText(b []byte) (err error) {
	*a, err = parseSort[Access](accessNames, "Access", string(b))
	return err
}

func (q Qualifiers) MarshalText() ([]byte, error) { return []byte(q.String()), nil }
func (q *Qualifiers) UnmarshalText(b []byte) error {
	v, err := parseFlags(qualifierNames, "qualifier", string(b))
	*q = Qualifiers(v)
	return err
}

func (s BasicSpecifiers) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *BasicSpecifiers) UnmarshalText(b []byte) error {
	v, err := parseFlags(specifierNames, "specifier", string(b))
	*s = BasicSpecifiers(v)
	return err
}
