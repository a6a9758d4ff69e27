package ifc

import (
	"strconv"
	"strings"

	"github.com/calumari/neatgen/internal/errors"
)

// DeclIndex references a row of one of the declaration tables. The zero
// value is the null reference.
type DeclIndex struct {
	Sort  DeclSort
	Index uint32
}

// IsNull reports whether d is the null reference.
func (d DeclIndex) IsNull() bool { return d.Sort == 0 }

func (d DeclIndex) String() string { return indexString(d.Sort, d.Index) }

// TypeIndex references a row of one of the type tables. Sorts without a
// table (the unsupported ones) only carry their tag. The zero value is the
// null reference.
type TypeIndex struct {
	Sort  TypeSort
	Index uint32
}

// IsNull reports whether t is the null reference.
func (t TypeIndex) IsNull() bool { return t.Sort == 0 }

func (t TypeIndex) String() string { return indexString(t.Sort, t.Index) }

// ExprIndex references an expression. The zero value is the null reference.
type ExprIndex struct {
	Sort  ExprSort
	Index uint32
}

// IsNull reports whether e is the null reference.
func (e ExprIndex) IsNull() bool { return e.Sort == 0 }

func (e ExprIndex) String() string { return indexString(e.Sort, e.Index) }

// NameIndex references a name. Identifier names index the text table.
type NameIndex struct {
	Sort  NameSort
	Index uint32
}

// IsNull reports whether n is the null reference.
func (n NameIndex) IsNull() bool { return n.Sort == 0 }

func (n NameIndex) String() string { return indexString(n.Sort, n.Index) }

// TextOffset indexes the text table.
type TextOffset uint32

// ScopeIndex indexes the scope descriptor table.
type ScopeIndex uint32

// Sequence is a slice of a heap: Cardinality entries starting at Start.
type Sequence struct {
	Start       uint32 `yaml:"start" msgpack:"start"`
	Cardinality uint32 `yaml:"cardinality" msgpack:"cardinality"`
}

func indexString[S interface {
	~uint8
	String() string
}](sort S, index uint32) string {
	if sort == 0 {
		return ""
	}
	return sort.String() + "/" + strconv.FormatUint(uint64(index), 10)
}

// splitIndex parses the "<Sort>/<n>" text form. Empty text is the null
// reference.
func splitIndex(text string) (sort string, index uint32, null bool, err error) {
	if text == "" {
		return "", 0, true, nil
	}
	s, n, ok := strings.Cut(text, "/")
	if !ok {
		return "", 0, false, errors.Newf("malformed index %q, want <Sort>/<n>", text)
	}
	v, err := strconv.ParseUint(n, 10, 32)
	if err != nil {
		return "", 0, false, errors.Wrapf(err, "malformed index %q", text)
	}
	return s, uint32(v), false, nil
}

func (d DeclIndex) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DeclIndex) UnmarshalText(b []byte) error {
	s, n, null, err := splitIndex(string(b))
	if err != nil || null {
		*d = DeclIndex{}
		return err
	}
	sort, err := parseSort[DeclSort](declSortNames, "DeclSort", s)
	*d = DeclIndex{Sort: sort, Index: n}
	return err
}

func (t TypeIndex) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *TypeIndex) UnmarshalText(b []byte) error {
	s, n, null, err := splitIndex(string(b))
	if err != nil || null {
		*t = TypeIndex{}
		return err
	}
	sort, err := parseSort[TypeSort](typeSortNames, "TypeSort", s)
	*t = TypeIndex{Sort: sort, Index: n}
	return err
}

func (e ExprIndex) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *ExprIndex) UnmarshalText(b []byte) error {
	s, n, null, err := splitIndex(string(b))
	if err != nil || null {
		*e = ExprIndex{}
		return err
	}
	sort, err := parseSort[ExprSort](exprSortNames, "ExprSort", s)
	*e = ExprIndex{Sort: sort, Index: n}
	return err
}

func (n NameIndex) MarshalText() ([]byte, error) { return []byte(n.String()), nil }
func (n *NameIndex) UnmarshalText(b []byte) error {
	s, i, null, err := splitIndex(string(b))
	if err != nil || null {
		*n = NameIndex{}
		return err
	}
	sort, err := parseSort[NameSort](nameSortNames, "NameSort", s)
	*n = NameIndex{Sort: sort, Index: i}
	return err
}
