package ifc

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calumari/neatgen/internal/errors"
)

const handwritten = `
header:
  unit: {sort: Primary, name: 0}
  global_scope: 0
texts: [game, Point, x]
scope_descriptors:
  - {start: 0, cardinality: 1}
  - {start: 1, cardinality: 1}
declarations: [Scope/0, Field/0]
scopes:
  - name: Identifier/1
    kind: Struct
    initializer: 1
    specifiers: External
fields:
  - name: Identifier/2
    type: Fundamental/0
    home_scope: Scope/0
    access: Public
fundamental_types:
  - {basis: Float}
qualified_types:
  - {unqualified: Fundamental/0, qualifiers: Const|Volatile}
`

func sampleGraph() *Graph {
	b := NewBuilder(UnitPrimary, "game")
	ns := b.Namespace(b.Global(), "Game")
	s := b.Class(ns, "Player")
	intT := b.Fundamental(BasisInt, PrecisionLong, SignUnsigned)
	b.Field(s, "score", b.Pointer(b.Qualified(intT, QualifierConst)), AccessPrivate)
	b.Method(s, "Reset", b.MethodType(b.Type(s), b.Fundamental(BasisVoid, PrecisionDefault, SignPlain), intT, intT), AccessPublic)
	b.SetBase(s, b.Base(b.Type(b.Struct(ns, "Entity")), AccessNone, true))
	b.Friend(s, b.DeclExpr(TypeIndex{}, b.FunctionDecl(ns, "helper", TypeIndex{})))
	return b.Graph()
}

func TestDecodeHandwritten(t *testing.T) {
	g, err := Decode(strings.NewReader(handwritten), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, UnitPrimary, g.Header.Unit.Sort)
	scope, err := g.Scope(DeclIndex{Sort: DeclScope})
	require.NoError(t, err)
	assert.Equal(t, BasisStruct, scope.Kind)
	assert.True(t, scope.HomeScope.IsNull())
	assert.True(t, scope.Specifiers.Has(SpecifierExternal))

	field, err := g.Field(DeclIndex{Sort: DeclField})
	require.NoError(t, err)
	assert.Equal(t, AccessPublic, field.Access)
	assert.Equal(t, TypeIndex{Sort: TypeFundamental}, field.Type)

	q, err := g.Qualified(TypeIndex{Sort: TypeQualified})
	require.NoError(t, err)
	assert.Equal(t, QualifierConst|QualifierVolatile, q.Qualifiers)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("header: {}\nbogus: 1\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("texts: []\n"), Format("json"))
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	want := sampleGraph()

	for _, f := range []Format{FormatYAML, FormatMsgpack} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph()

	t.Run("by suffix", func(t *testing.T) {
		for _, name := range []string{"a.ifc.yaml", "b.ifc.yml", "c.IFC.msgpack"} {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, g))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, g, loaded, name)
		}
	})

	t.Run("unknown suffix", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "a.json"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEnvironment))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.ifc.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEnvironment))
	})
}

func TestTrimSuffix(t *testing.T) {
	assert.Equal(t, "game", TrimSuffix("game.ifc.yaml"))
	assert.Equal(t, "Game", TrimSuffix("Game.IFC.MSGPACK"))
	assert.Equal(t, "notes.txt", TrimSuffix("notes.txt"))

	f, ok := FormatOf("/tmp/x/game.ifc.yml")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)
}
