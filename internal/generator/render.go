package generator

import (
	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// renderType renders t as a canonical C++ type name. Qualifiers follow the
// east-const convention: they are written after the type they apply to, so
// the output does not depend on how nested qualified layers were built.
//
// Sorts the registry cannot express render as an <UNSUPPORTED_TYPE ...>
// token. Dangling references and unrecorded placeholders are failures.
func (g *generator) renderType(t ifc.TypeIndex) (string, error) {
	leave, err := g.descend(t)
	if err != nil {
		return "", err
	}
	defer leave()
	s, err := g.renderTypeSort(t)
	if err != nil {
		return "", errors.WithFrame(err, "while rendering type %s", t)
	}
	return s, nil
}

func (g *generator) renderTypeSort(t ifc.TypeIndex) (string, error) {
	switch t.Sort {
	case ifc.TypeFundamental:
		ft, err := g.graph.Fundamental(t)
		if err != nil {
			return "", err
		}
		return renderFundamental(ft), nil
	case ifc.TypeDesignated:
		dt, err := g.graph.Designated(t)
		if err != nil {
			return "", err
		}
		if dt.Decl.Sort == ifc.DeclParameter {
			// template parameters are never qualified
			return g.declName(dt.Decl)
		}
		return g.qualifiedName(dt.Decl)
	case ifc.TypePointer:
		pt, err := g.graph.Pointer(t)
		if err != nil {
			return "", err
		}
		return g.decorate(pt.Pointee, "*")
	case ifc.TypeLvalueReference:
		rt, err := g.graph.LvalueReference(t)
		if err != nil {
			return "", err
		}
		return g.decorate(rt.Referee, "&")
	case ifc.TypeRvalueReference:
		rt, err := g.graph.RvalueReference(t)
		if err != nil {
			return "", err
		}
		return g.decorate(rt.Referee, "&&")
	case ifc.TypeQualified:
		return g.renderQualified(t)
	case ifc.TypeBase:
		bt, err := g.graph.Base(t)
		if err != nil {
			return "", err
		}
		return g.renderType(bt.Type)
	case ifc.TypePlaceholder:
		pt, err := g.graph.Placeholder(t)
		if err != nil {
			return "", err
		}
		if pt.Elaboration.IsNull() {
			return "", errors.AssertionFailedf("placeholder type %s has no recorded deduced type", t)
		}
		return g.renderType(pt.Elaboration)
	case ifc.TypeTuple:
		return g.renderTuple(t)
	case ifc.TypeFunction:
		ft, err := g.graph.Function(t)
		if err != nil {
			return "", err
		}
		ret, err := g.renderType(ft.Target)
		if err != nil {
			return "", err
		}
		params, err := g.renderParams(ft.Source)
		if err != nil {
			return "", err
		}
		return ret + "(" + params + ")", nil
	case ifc.TypeExpansion, ifc.TypePointerToMember, ifc.TypeMethod, ifc.TypeDecltype,
		ifc.TypeForall, ifc.TypeUnaligned, ifc.TypeVendorExtension, ifc.TypeTor,
		ifc.TypeSyntactic, ifc.TypeSyntaxTree, ifc.TypeArray, ifc.TypeTypename:
		return "<UNSUPPORTED_TYPE " + t.Sort.String() + ">", nil
	case 0:
		return "", errors.AssertionFailedf("null type reference")
	default:
		return "", errors.AssertionFailedf("unknown type sort %s", t.Sort)
	}
}

func (g *generator) decorate(t ifc.TypeIndex, suffix string) (string, error) {
	s, err := g.renderType(t)
	if err != nil {
		return "", err
	}
	return s + suffix, nil
}

// renderQualified merges the qualifiers of nested qualified layers, looking
// through recorded placeholder elaborations, and writes them after the
// unqualified type, const before volatile. Restrict has no spelling in the
// registry and is dropped.
func (g *generator) renderQualified(t ifc.TypeIndex) (string, error) {
	var q ifc.Qualifiers
	for steps := 0; ; steps++ {
		if steps > maxNesting {
			return "", errors.AssertionFailedf("qualified type chain too deep or cyclic at %s", t)
		}
		if t.Sort == ifc.TypeQualified {
			qt, err := g.graph.Qualified(t)
			if err != nil {
				return "", err
			}
			q |= qt.Qualifiers
			t = qt.Unqualified
			continue
		}
		if t.Sort == ifc.TypePlaceholder {
			pt, err := g.graph.Placeholder(t)
			if err != nil {
				return "", err
			}
			if !pt.Elaboration.IsNull() {
				t = pt.Elaboration
				continue
			}
		}
		break
	}
	s, err := g.renderType(t)
	if err != nil {
		return "", err
	}
	if q.Has(ifc.QualifierConst) {
		s += " const"
	}
	if q.Has(ifc.QualifierVolatile) {
		s += " volatile"
	}
	return s, nil
}

func (g *generator) renderTuple(t ifc.TypeIndex) (string, error) {
	elems, err := g.graph.TupleElements(t)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		s, err := g.renderType(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return joinRendered(parts), nil
}

// renderParams renders a parameter list: null for none, a single type or a
// tuple.
func (g *generator) renderParams(source ifc.TypeIndex) (string, error) {
	if source.IsNull() {
		return "", nil
	}
	return g.renderType(source)
}

var basisKeywords = map[ifc.TypeBasis]string{
	ifc.BasisVoid:   "void",
	ifc.BasisBool:   "bool",
	ifc.BasisChar:   "char",
	ifc.BasisWcharT: "wchar_t",
	ifc.BasisInt:    "int",
	ifc.BasisFloat:  "float",
	ifc.BasisDouble: "double",
}

// renderFundamental spells a built-in type. A precision keyword stands alone
// for int ("short", "unsigned long long") and precedes any other basis
// ("long double"). Only char is ever spelled "signed", since signed char is
// distinct from char.
func renderFundamental(ft ifc.FundamentalType) string {
	if ft.Basis == ifc.BasisChar {
		switch ft.Precision {
		case ifc.PrecisionBit8:
			return "char8_t"
		case ifc.PrecisionBit16:
			return "char16_t"
		case ifc.PrecisionBit32:
			return "char32_t"
		}
	}

	var sign string
	switch {
	case ft.Sign == ifc.SignUnsigned:
		sign = "unsigned "
	case ft.Sign == ifc.SignSigned && ft.Basis == ifc.BasisChar:
		sign = "signed "
	}

	basis, ok := basisKeywords[ft.Basis]
	if !ok {
		basis = "<UNEXPECTED_FUNDAMENTAL_TYPE " + ft.Basis.String() + ">"
	}

	var precision string
	switch ft.Precision {
	case ifc.PrecisionDefault:
		return sign + basis
	case ifc.PrecisionShort:
		precision = "short"
	case ifc.PrecisionLong:
		precision = "long"
	case ifc.PrecisionBit64:
		precision = "long long"
	default:
		// unexpected bitness keeps the basis keyword
		return sign + "<UNEXPECTED_BITNESS " + ft.Precision.String() + "> " + basis
	}
	if ft.Basis == ifc.BasisInt {
		return sign + precision
	}
	return sign + precision + " " + basis
}
