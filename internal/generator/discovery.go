package generator

import (
	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// scanGlobal walks the global scope depth-first, pre-order. The order types
// are met in is the order they are registered in.
func (g *generator) scanGlobal() error {
	decls, err := g.graph.GlobalScope()
	if err != nil {
		return err
	}
	return g.scanDecls(decls)
}

func (g *generator) scanMembers(members ifc.ScopeIndex) error {
	decls, err := g.graph.ScopeMembers(members)
	if err != nil {
		return err
	}
	return g.scanDecls(decls)
}

func (g *generator) scanDecls(decls []ifc.DeclIndex) error {
	for _, d := range decls {
		if err := g.scanDecl(d); err != nil {
			return err
		}
	}
	return nil
}

// scanDecl recurses into namespaces and registers classes and structs.
// Other declarations are not reflected.
func (g *generator) scanDecl(d ifc.DeclIndex) error {
	if d.Sort != ifc.DeclScope {
		return nil
	}
	s, err := g.graph.Scope(d)
	if err != nil {
		return err
	}
	switch s.Kind {
	case ifc.BasisClass, ifc.BasisStruct:
		return g.emitType(d, s)
	case ifc.BasisNamespace:
		leave, err := g.descend(d)
		if err != nil {
			return err
		}
		defer leave()
		if err := g.scanMembers(s.Initializer); err != nil {
			return errors.WithFrame(err, "while scanning scope %s", d)
		}
	case ifc.BasisUnion:
		g.log.Debugw("Skipping union", "scope", d.String())
	}
	return nil
}

// emitType builds the registration of one class or struct.
func (g *generator) emitType(d ifc.DeclIndex, s ifc.ScopeDecl) error {
	if !isExported(s) {
		g.log.Debugw("Skipping non-exported type", "scope", d.String())
		return nil
	}
	name, err := g.qualifiedName(d)
	if err != nil {
		return errors.WithFrame(err, "while scanning scope %s", d)
	}
	reflectPrivate, err := g.reflectsPrivateMembers(d)
	if err != nil {
		return errors.WithFrame(err, "while generating reflection data for %s", name)
	}
	fields, methods, err := g.emitMembers(name, s, reflectPrivate)
	if err != nil {
		return errors.WithFrame(err, "while generating reflection data for %s", name)
	}
	bases, err := g.emitBases(s)
	if err != nil {
		return errors.WithFrame(err, "while generating reflection data for %s", name)
	}

	ident := Identifier(name)
	if other, ok := g.idents[ident]; ok {
		return errors.WithHintf(
			errors.Mark(errors.Newf("%s and %s both register as %s", other, name, ident), errors.ErrUnsupported),
			"rename one of the types; registration identifiers replace every non-alphanumeric character with '_'")
	}
	g.idents[ident] = name

	g.types = append(g.types, typeModel{
		Namespace: g.namespace,
		Name:      name,
		Ident:     ident,
		Bases:     bases,
		Fields:    fields,
		Methods:   methods,
	})
	g.log.Debugw("Registered type", "type", name, "bases", len(bases), "fields", len(fields),
		"methods", len(methods), "private", reflectPrivate)
	return nil
}
