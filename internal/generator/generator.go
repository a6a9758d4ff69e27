// Package generator turns the object graph of a compiled module interface
// into C++ source that registers reflection metadata for every exported
// class and struct into the runtime type registry.
package generator

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
	"github.com/calumari/neatgen/internal/logger"
)

// generator holds transient state while scanning one graph. It never
// mutates the graph.
type generator struct {
	graph     *ifc.Graph
	namespace string
	document  string
	log       *zap.SugaredLogger
	types     []typeModel
	idents    map[string]string // registration identifier -> type name
	depth     int
}

// maxNesting bounds the recursive walks over the graph: type rendering,
// home-scope resolution and namespace scanning. A cyclic graph fails here
// instead of recursing forever.
const maxNesting = 256

// descend enters one level of a recursive walk at at. The returned func
// leaves the level again.
func (g *generator) descend(at fmt.Stringer) (func(), error) {
	if g.depth >= maxNesting {
		return nil, errors.AssertionFailedf("type graph too deep or cyclic at %s", at)
	}
	g.depth++
	return func() { g.depth-- }, nil
}

// Generate converts graph into the text of one reflection source file.
func Generate(graph *ifc.Graph, cfg Config) ([]byte, error) {
	var out bytes.Buffer
	if err := Write(&out, graph, cfg); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Write converts graph and writes the document to w. Nothing is written when
// the conversion fails.
func Write(w io.Writer, graph *ifc.Graph, cfg Config) error {
	doc, err := newGenerator(graph, cfg).run()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, doc)
	return errors.Wrap(err, "write document")
}

func newGenerator(graph *ifc.Graph, cfg Config) *generator {
	g := &generator{
		graph:     graph,
		namespace: cfg.RuntimeNamespace,
		document:  cfg.Template,
		log:       cfg.Logger,
		idents:    map[string]string{},
	}
	if g.namespace == "" {
		g.namespace = DefaultRuntimeNamespace
	}
	if g.document == "" {
		g.document = DefaultDocumentTemplate()
	}
	if g.log == nil {
		g.log = logger.Logger
	}
	return g
}

// run orchestrates scanning, emission and document assembly.
func (g *generator) run() (string, error) {
	if sort := g.graph.Header.Unit.Sort; sort != ifc.UnitPrimary {
		err := errors.Newf("cannot convert a %s unit: only primary module interface units are supported", sort)
		return "", errors.WithHint(errors.Mark(err, errors.ErrUnsupported),
			"convert the primary interface unit of the module (the .ixx file), not a partition or header unit")
	}
	module, err := g.graph.ModuleName()
	if err != nil {
		return "", errors.WithFrame(err, "while reading the module name")
	}

	if err := g.scanGlobal(); err != nil {
		return "", errors.WithFrame(err, "while generating reflection data for module %s", module)
	}

	body, err := renderBody(bodyModel{Namespace: g.namespace, Types: g.types})
	if err != nil {
		return "", err
	}
	g.log.Debugw("Assembled registration body", "module", module, "types", len(g.types))
	return assembleDocument(g.document, module, body, g.namespace)
}
