package molecule

import "fmt"

// Kind is the encoding family of a Layout
type Kind uint8

const (
	// KindFixed is a value of a known number of bytes (arrays, structs and
	// integers)
	KindFixed Kind = iota
	// KindFixVec is a vector of fixed size items, prefixed by the item
	// count
	KindFixVec
	// KindDynVec is a vector of variable size items, prefixed by the full
	// size and the items offsets
	KindDynVec
	// KindTable is a fixed list of fields, encoded like a KindDynVec
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindFixVec:
		return "fixvec"
	case KindDynVec:
		return "dynvec"
	case KindTable:
		return "table"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Layout describes the encoding of a type. A single generic engine reads and
// verifies every Layout, so a schema is a set of Layout values instead of
// per-field code.
type Layout struct {
	Name string
	Kind Kind
	// Size is the size of the value for KindFixed, and the size of each
	// item for KindFixVec
	Size int
	// Item is the Layout of the items of a KindDynVec
	Item *Layout
	// Fields are the fields of a KindTable
	Fields []Field
}

// Field is a field of a table
type Field struct {
	Name     string
	Layout   *Layout
	Optional bool
}

// Layouts of the Molecule builtin and common types
var (
	Byte     = Fixed("byte", 1)
	Uint32   = Fixed("Uint32", 4)
	Uint64   = Fixed("Uint64", 8) //nolint:gomnd
	Byte32   = Fixed("Byte32", 32)
	Bytes    = FixVec("Bytes", 1)
	BytesVec = DynVec("BytesVec", Bytes)
)

// Fixed returns the Layout of a value of size bytes
func Fixed(name string, size int) *Layout {
	return &Layout{Name: name, Kind: KindFixed, Size: size}
}

// FixVec returns the Layout of a vector of items of itemSize bytes
func FixVec(name string, itemSize int) *Layout {
	return &Layout{Name: name, Kind: KindFixVec, Size: itemSize}
}

// DynVec returns the Layout of a vector of variable size items
func DynVec(name string, item *Layout) *Layout {
	return &Layout{Name: name, Kind: KindDynVec, Item: item}
}

// Table returns the Layout of a table with the given fields
func Table(name string, fields ...Field) *Layout {
	return &Layout{Name: name, Kind: KindTable, Fields: fields}
}

// Required returns a non optional table Field
func Required(name string, l *Layout) Field {
	return Field{Name: name, Layout: l}
}

// Optional returns an optional table Field
func Optional(name string, l *Layout) Field {
	return Field{Name: name, Layout: l, Optional: true}
}

// verify checks the envelope of the value at c against the Layout. Nested
// values are not checked: they are verified when accessed.
func (l *Layout) verify(c Cursor, compatible bool) error {
	switch l.Kind {
	case KindFixed:
		if c.size != l.Size {
			return fmt.Errorf("%w: %s expects %d bytes, got %d", ErrVerify,
				l.Name, l.Size, c.size)
		}
		return nil
	case KindFixVec:
		n, err := c.fixVecLen()
		if err != nil {
			return err
		}
		// compare in uint64 so that a huge count can not overflow
		if uint64(c.size) != NumberSize+uint64(n)*uint64(l.Size) {
			return fmt.Errorf("%w: %s of %d items of %d bytes in %d bytes",
				ErrVerify, l.Name, n, l.Size, c.size)
		}
		return nil
	case KindDynVec:
		_, err := verifyOffsets(c)
		return err
	case KindTable:
		n, err := verifyOffsets(c)
		if err != nil {
			return err
		}
		if n < len(l.Fields) || (!compatible && n != len(l.Fields)) {
			return fmt.Errorf("%w: %s expects %d fields, got %d", ErrVerify,
				l.Name, len(l.Fields), n)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %s", ErrVerify, l.Kind)
}

// verifyOffsets checks the header of a dynvec or table, and returns its item
// count
func verifyOffsets(c Cursor) (int, error) {
	n, err := c.offsetsHeader()
	if err != nil {
		return 0, err
	}
	prev := uint32(NumberSize * (n + 1))
	for i := 0; i < n; i++ {
		off, err := c.Uint32At(NumberSize * (i + 1))
		if err != nil {
			return 0, err
		}
		if off < prev || int(off) > c.size {
			return 0, fmt.Errorf("%w: offset %d of item %d", ErrVerify, off, i)
		}
		prev = off
	}
	return n, nil
}
