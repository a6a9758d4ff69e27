package generator

import (
	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// privateReflectionHook is the friend a type declares to opt into having
// its non-public members reflected.
const privateReflectionHook = "reflect_private_members"

// privateReflectionSignature is the rendered type the hook must have.
const privateReflectionSignature = "void()"

// isExported reports whether a scope is visible outside its module.
func isExported(s ifc.ScopeDecl) bool {
	return !s.Specifiers.Has(ifc.SpecifierNonExported)
}

// effectiveAccess resolves an unwritten access to the default of the
// enclosing kind: private for classes, public otherwise.
func effectiveAccess(a ifc.Access, kind ifc.TypeBasis) (ifc.Access, error) {
	if !a.Valid() {
		return 0, errors.AssertionFailedf("invalid access value %d, expected %d to %d (inclusive)",
			uint8(a), uint8(ifc.AccessNone), uint8(ifc.AccessPublic))
	}
	if a != ifc.AccessNone {
		return a, nil
	}
	if kind == ifc.BasisClass {
		return ifc.AccessPrivate, nil
	}
	return ifc.AccessPublic, nil
}

// memberAccess returns the effective access of a member and whether it is
// emitted.
func memberAccess(a ifc.Access, kind ifc.TypeBasis, reflectPrivate bool) (ifc.Access, bool, error) {
	eff, err := effectiveAccess(a, kind)
	if err != nil {
		return 0, false, err
	}
	return eff, eff == ifc.AccessPublic || reflectPrivate, nil
}

// reflectsPrivateMembers reports whether the scope d befriends
// <runtime namespace>::reflect_private_members with signature void(). Every
// friend is considered; friends named by expressions other than a named
// declaration are logged and ignored.
func (g *generator) reflectsPrivateMembers(d ifc.DeclIndex) (bool, error) {
	friends, err := g.graph.FriendsOf(d)
	if err != nil {
		return false, err
	}
	want := g.namespace + "::" + privateReflectionHook
	for _, f := range friends {
		fd, err := g.graph.Friend(f)
		if err != nil {
			return false, err
		}
		switch fd.Entity.Sort {
		case ifc.ExprNamedDecl:
			expr, err := g.graph.DeclExpression(fd.Entity)
			if err != nil {
				return false, err
			}
			name, err := g.qualifiedName(expr.Resolution)
			if err != nil {
				return false, errors.WithFrame(err, "while inspecting friend %s", f)
			}
			if name != want {
				continue
			}
			sig, err := g.renderType(expr.Type)
			if err != nil {
				return false, errors.WithFrame(err, "while inspecting friend %s", f)
			}
			if sig == privateReflectionSignature {
				return true, nil
			}
			g.log.Warnw("Friend has the private reflection name but not its signature",
				"friend", name, "signature", sig, "want", privateReflectionSignature)
		default:
			g.log.Warnw("Unexpected expression in friend declaration",
				"scope", d.String(), "sort", fd.Entity.Sort.String())
		}
	}
	return false, nil
}
