package generator

import (
	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// emitMembers builds the field and method fragments of the type typeName in
// declaration order. Members of other sorts are not reflected.
func (g *generator) emitMembers(typeName string, s ifc.ScopeDecl, reflectPrivate bool) (fields, methods []fragment, err error) {
	members, err := g.graph.ScopeMembers(s.Initializer)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range members {
		switch d.Sort {
		case ifc.DeclField:
			f, ok, err := g.emitField(typeName, s.Kind, d, reflectPrivate)
			if err != nil {
				return nil, nil, errors.WithFrame(err, "while rendering members of %s", typeName)
			}
			if ok {
				fields = append(fields, f)
			}
		case ifc.DeclMethod:
			m, ok, err := g.emitMethod(typeName, s.Kind, d, reflectPrivate)
			if err != nil {
				return nil, nil, errors.WithFrame(err, "while rendering members of %s", typeName)
			}
			if ok {
				methods = append(methods, m)
			}
		}
	}
	return fields, methods, nil
}

// memberName returns the identifier of a member, or false for names the
// registry cannot spell (operators, conversion functions).
func (g *generator) memberName(typeName string, n ifc.NameIndex) (string, bool, error) {
	if n.Sort != ifc.NameIdentifier {
		g.log.Warnw("Skipping member without an identifier name", "type", typeName, "name", n.String())
		return "", false, nil
	}
	name, err := g.graph.Identifier(n)
	return name, err == nil, err
}

func (g *generator) emitField(typeName string, kind ifc.TypeBasis, d ifc.DeclIndex, reflectPrivate bool) (fragment, bool, error) {
	field, err := g.graph.Field(d)
	if err != nil {
		return fragment{}, false, err
	}
	name, ok, err := g.memberName(typeName, field.Name)
	if !ok || err != nil {
		return fragment{}, false, err
	}
	access, emit, err := memberAccess(field.Access, kind, reflectPrivate)
	if !emit || err != nil {
		return fragment{}, false, err
	}
	fieldType, err := g.renderType(field.Type)
	if err != nil {
		return fragment{}, false, err
	}
	return fragment{
		Kind:   fragmentKindField,
		Owner:  typeName,
		Name:   name,
		Type:   fieldType,
		Access: accessLiteral(g.namespace, access),
	}, true, nil
}

func (g *generator) emitMethod(typeName string, kind ifc.TypeBasis, d ifc.DeclIndex, reflectPrivate bool) (fragment, bool, error) {
	method, err := g.graph.Method(d)
	if err != nil {
		return fragment{}, false, err
	}
	name, ok, err := g.memberName(typeName, method.Name)
	if !ok || err != nil {
		return fragment{}, false, err
	}
	access, emit, err := memberAccess(method.Access, kind, reflectPrivate)
	if !emit || err != nil {
		return fragment{}, false, err
	}
	if method.Type.Sort != ifc.TypeMethod {
		return fragment{}, false, errors.AssertionFailedf("method %s of %s has a %s type, expected Method", name, typeName, method.Type.Sort)
	}
	mt, err := g.graph.MethodType(method.Type)
	if err != nil {
		return fragment{}, false, err
	}
	ret, err := g.renderType(mt.Target)
	if err != nil {
		return fragment{}, false, err
	}
	params, err := g.renderParams(mt.Source)
	if err != nil {
		return fragment{}, false, err
	}
	return fragment{
		Kind:   fragmentKindMethod,
		Owner:  typeName,
		Name:   name,
		Type:   ret,
		Params: params,
		Access: accessLiteral(g.namespace, access),
	}, true, nil
}

// emitBases builds the base-class fragments of a scope. The base specifier
// is null, a single Base type or a tuple of Base types.
func (g *generator) emitBases(s ifc.ScopeDecl) ([]fragment, error) {
	if s.Base.IsNull() {
		return nil, nil
	}
	defaultAccess := ifc.AccessPublic
	if s.Kind == ifc.BasisClass {
		defaultAccess = ifc.AccessPrivate
	}

	var bases []ifc.TypeIndex
	switch s.Base.Sort {
	case ifc.TypeBase:
		bases = []ifc.TypeIndex{s.Base}
	case ifc.TypeTuple:
		elems, err := g.graph.TupleElements(s.Base)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			if e.Sort != ifc.TypeBase {
				return nil, errors.AssertionFailedf("base specifier tuple %s holds a %s type", s.Base, e.Sort)
			}
		}
		bases = elems
	default:
		return nil, errors.AssertionFailedf("unexpected base specifier sort %s", s.Base.Sort)
	}

	out := make([]fragment, 0, len(bases))
	for _, b := range bases {
		bt, err := g.graph.Base(b)
		if err != nil {
			return nil, err
		}
		access := defaultAccess
		if bt.Access != ifc.AccessNone {
			if access, err = effectiveAccess(bt.Access, s.Kind); err != nil {
				return nil, err
			}
		}
		name, err := g.renderType(bt.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, fragment{
			Kind:   fragmentKindBase,
			Type:   name,
			Access: accessLiteral(g.namespace, access),
		})
	}
	return out, nil
}
