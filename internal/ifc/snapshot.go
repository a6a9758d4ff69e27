package ifc

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/calumari/neatgen/internal/errors"
)

// Format is a graph snapshot encoding.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Snapshot file suffixes, by format.
var snapshotSuffixes = map[string]Format{
	".ifc.yaml":    FormatYAML,
	".ifc.yml":     FormatYAML,
	".ifc.msgpack": FormatMsgpack,
}

// FormatOf returns the snapshot format implied by a file name.
func FormatOf(path string) (Format, bool) {
	base := strings.ToLower(filepath.Base(path))
	for suffix, f := range snapshotSuffixes {
		if strings.HasSuffix(base, suffix) {
			return f, true
		}
	}
	return "", false
}

// TrimSuffix strips the snapshot suffix from a file name, so "game.ifc.yaml"
// becomes "game".
func TrimSuffix(name string) string {
	lower := strings.ToLower(name)
	for suffix := range snapshotSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

// Decode reads a graph in the given format.
func Decode(r io.Reader, f Format) (*Graph, error) {
	var g Graph
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&g); err != nil {
			return nil, errors.Wrap(err, "decode yaml snapshot")
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&g); err != nil {
			return nil, errors.Wrap(err, "decode msgpack snapshot")
		}
	default:
		return nil, errors.Newf("unknown snapshot format %q", f)
	}
	return &g, nil
}

// Encode writes g in the given format.
func Encode(w io.Writer, g *Graph, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return errors.Wrap(err, "encode yaml snapshot")
		}
		return enc.Close()
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(g); err != nil {
			return errors.Wrap(err, "encode msgpack snapshot")
		}
		return nil
	default:
		return errors.Newf("unknown snapshot format %q", f)
	}
}

// Load reads the snapshot at path, picking the format from its suffix.
func Load(path string) (*Graph, error) {
	f, ok := FormatOf(path)
	if !ok {
		return nil, errors.Mark(errors.Newf("%s is not a graph snapshot (want one of .ifc.yaml, .ifc.yml, .ifc.msgpack)", path), errors.ErrEnvironment)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read snapshot %s", path), errors.ErrEnvironment)
	}
	g, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return g, nil
}

// Save writes g to path, picking the format from its suffix.
func Save(path string, g *Graph) error {
	f, ok := FormatOf(path)
	if !ok {
		return errors.Mark(errors.Newf("%s is not a graph snapshot name", path), errors.ErrEnvironment)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, g, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Mark(errors.Wrapf(err, "write snapshot %s", path), errors.ErrEnvironment)
	}
	return nil
}
