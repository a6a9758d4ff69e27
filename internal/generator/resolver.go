package generator

import (
	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// qualifiedName renders the fully-qualified name of d, e.g. Game::Base.
func (g *generator) qualifiedName(d ifc.DeclIndex) (string, error) {
	prefix, err := g.resolveNamespace(d)
	if err != nil {
		return "", err
	}
	name, err := g.declName(d)
	if err != nil {
		return "", err
	}
	return prefix + name, nil
}

// resolveNamespace walks the home-scope chain of d and returns the prefix
// that qualifies its name: "" at global scope, otherwise the enclosing
// scopes joined and terminated by "::".
func (g *generator) resolveNamespace(d ifc.DeclIndex) (string, error) {
	leave, err := g.descend(d)
	if err != nil {
		return "", err
	}
	defer leave()
	home, err := g.homeScope(d)
	if err != nil {
		return "", errors.WithFrame(err, "while resolving namespace of %s", d)
	}
	if home.IsNull() {
		return "", nil
	}
	enclosing, err := g.qualifiedName(home)
	if err != nil {
		return "", errors.WithFrame(err, "while resolving namespace of %s", d)
	}
	if enclosing == "" {
		return "", nil
	}
	return enclosing + "::", nil
}

func (g *generator) homeScope(d ifc.DeclIndex) (ifc.DeclIndex, error) {
	switch d.Sort {
	case ifc.DeclField:
		f, err := g.graph.Field(d)
		return f.HomeScope, err
	case ifc.DeclScope:
		s, err := g.graph.Scope(d)
		return s.HomeScope, err
	case ifc.DeclMethod:
		m, err := g.graph.Method(d)
		return m.HomeScope, err
	case ifc.DeclVariable, ifc.DeclIntrinsic, ifc.DeclEnumeration, ifc.DeclAlias,
		ifc.DeclTemplate, ifc.DeclConcept, ifc.DeclFunction, ifc.DeclConstructor,
		ifc.DeclDestructor, ifc.DeclUsingDeclaration:
		n, err := g.graph.Named(d)
		return n.HomeScope, err
	default:
		return ifc.DeclIndex{}, errors.AssertionFailedf("cannot get the home scope of a %s declaration", d.Sort)
	}
}

// declName returns the unqualified name of a declaration a type can
// designate.
func (g *generator) declName(d ifc.DeclIndex) (string, error) {
	switch d.Sort {
	case ifc.DeclParameter:
		p, err := g.graph.Parameter(d)
		if err != nil {
			return "", err
		}
		return g.graph.Text(p.Name)
	case ifc.DeclScope:
		s, err := g.graph.Scope(d)
		if err != nil {
			return "", err
		}
		return g.graph.Identifier(s.Name)
	case ifc.DeclField:
		f, err := g.graph.Field(d)
		if err != nil {
			return "", err
		}
		return g.graph.Identifier(f.Name)
	case ifc.DeclMethod:
		m, err := g.graph.Method(d)
		if err != nil {
			return "", err
		}
		return g.graph.Identifier(m.Name)
	case ifc.DeclTemplate, ifc.DeclFunction, ifc.DeclEnumeration, ifc.DeclAlias,
		ifc.DeclConcept, ifc.DeclVariable:
		n, err := g.graph.Named(d)
		if err != nil {
			return "", err
		}
		return g.graph.Identifier(n.Name)
	default:
		return "", errors.AssertionFailedf("cannot name a %s declaration", d.Sort)
	}
}
