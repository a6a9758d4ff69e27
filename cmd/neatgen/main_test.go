package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
	"github.com/calumari/neatgen/internal/logger"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, path, module string) {
	t.Helper()
	b := ifc.NewBuilder(ifc.UnitPrimary, module)
	s := b.Struct(b.Global(), "Point")
	i := b.Fundamental(ifc.BasisInt, ifc.PrecisionDefault, ifc.SignPlain)
	b.Field(s, "x", i, ifc.AccessNone)
	b.Field(s, "y", i, ifc.AccessNone)
	require.NoError(t, ifc.Save(path, b.Graph()))
}

func TestConvertCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSnapshot(t, "geo.ifc.yaml", "geo")

	t.Run("root with two arguments", func(t *testing.T) {
		out, err := run(t, "geo.ifc.yaml", "geo.cpp")
		require.NoError(t, err)
		assert.Contains(t, out, "Converted geo.ifc.yaml -> geo.cpp")
		data, err := os.ReadFile("geo.cpp")
		require.NoError(t, err)
		assert.Contains(t, string(data), "import geo;")
		assert.Contains(t, string(data), `Field::create<Point, int, &Point::x>("x", Neat::Access::Public)`)
	})

	t.Run("namespace flag", func(t *testing.T) {
		_, err := run(t, "convert", "--namespace", "Mirror", "geo.ifc.yaml", "mirror.cpp")
		require.NoError(t, err)
		data, err := os.ReadFile("mirror.cpp")
		require.NoError(t, err)
		assert.Contains(t, string(data), "Mirror::Access::Public")
		assert.NotContains(t, string(data), "Neat::")
	})

	t.Run("bad output extension", func(t *testing.T) {
		_, err := run(t, "convert", "geo.ifc.yaml", "geo.txt")
		require.Error(t, err)
	})

	t.Run("single argument", func(t *testing.T) {
		_, err := run(t, "geo.ifc.yaml")
		require.Error(t, err)
	})
}

func TestScanAndCheckCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(in, 0o755))
	writeSnapshot(t, filepath.Join(in, "a.ifc.yaml"), "a")
	writeSnapshot(t, filepath.Join(in, "b.ifc.msgpack"), "b")

	_, err := run(t, "check", in, out)
	require.Error(t, err)

	stdout, err := run(t, "scan", "--workers", "2", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "a.cpp")
	assert.Contains(t, stdout, "b.cpp")

	stdout, err = run(t, "check", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "up to date")

	require.NoError(t, os.WriteFile(filepath.Join(out, "a.cpp"), []byte("stale"), 0o644))
	stdout, err = run(t, "check", in, out)
	require.Error(t, err)
	assert.Contains(t, stdout, "stale")
}

func TestConfigFileIsHonoured(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSnapshot(t, "geo.ifc.yaml", "geo")

	_, err := run(t, "config", "init")
	require.NoError(t, err)
	_, err = run(t, "config", "init")
	require.Error(t, err, "refuses to overwrite")

	require.NoError(t, os.WriteFile("neatgen.toml", []byte("runtime_namespace = \"Refl\"\noutput_extension = \".gen.cpp\"\n"), 0o644))
	_, err = run(t, "geo.ifc.yaml", "geo.cpp")
	require.Error(t, err, "extension comes from the config file")

	_, err = run(t, "geo.ifc.yaml", "geo.gen.cpp")
	require.NoError(t, err)
	data, err := os.ReadFile("geo.gen.cpp")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Refl::Access::Public")
}

func TestSnapshotCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSnapshot(t, "geo.ifc.yaml", "geo")

	_, err := run(t, "snapshot", "geo.ifc.yaml", "geo.ifc.msgpack")
	require.NoError(t, err)
	g, err := ifc.Load("geo.ifc.msgpack")
	require.NoError(t, err)
	name, err := g.ModuleName()
	require.NoError(t, err)
	assert.Equal(t, "geo", name)
}

// the checked-in examples must match what the current generator produces
func TestExamplesAreUpToDate(t *testing.T) {
	tests := []struct {
		dir  string
		args []string
	}{
		{dir: "game"},
		{dir: "vault", args: []string{"--config", filepath.Join("..", "..", "examples", "vault", "neatgen.toml")}},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			dir := filepath.Join("..", "..", "examples", tt.dir, "generated")
			args := append([]string{"check"}, tt.args...)
			out, err := run(t, append(args, dir, dir)...)
			require.NoError(t, err, out)
			assert.Contains(t, out, "up to date")
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^neatgen \S+\n$`, out)
}

func TestVersionOf(t *testing.T) {
	const rev = "0123456789abcdef0123"
	tests := []struct {
		name string
		bi   debug.BuildInfo
		want string
	}{
		{"module version", debug.BuildInfo{Main: debug.Module{Version: "v1.4.0"}}, "v1.4.0"},
		{"no vcs data", debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "devel"},
		{"revision", debug.BuildInfo{
			Main:     debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: rev}},
		}, "0123456789ab"},
		{"short revision", debug.BuildInfo{
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
		}, "abc123"},
		{"modified tree", debug.BuildInfo{
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: rev},
				{Key: "vcs.modified", Value: "true"},
			},
		}, "0123456789ab-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, versionOf(&tt.bi))
		})
	}
}

func TestReportFailure(t *testing.T) {
	saved, savedJSON := logger.Logger, logger.JSONOutput
	t.Cleanup(func() { logger.Logger, logger.JSONOutput = saved, savedJSON })
	failure := errors.WithHint(errors.New("generated files are out of date"), "run 'neatgen scan in out'")

	t.Run("text", func(t *testing.T) {
		logger.JSONOutput = false
		var out bytes.Buffer
		reportFailure(&out, failure)
		assert.Equal(t, "neatgen: generated files are out of date\nhint: run 'neatgen scan in out'\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		logger.Logger, logger.JSONOutput = zap.New(core).Sugar(), true
		var out bytes.Buffer
		reportFailure(&out, failure)

		assert.Empty(t, out.String())
		entries := logs.FilterMessage("Command failed").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "generated files are out of date", fields["error"])
		assert.Equal(t, []interface{}{"run 'neatgen scan in out'"}, fields["hints"])
	})
}
