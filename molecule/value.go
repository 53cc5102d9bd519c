package molecule

import "fmt"

// Value is a Cursor interpreted with a Layout. Creating a Value only checks
// the envelope of the Cursor; the nested values are checked when they are
// accessed through Field, OptionalField or Index.
type Value struct {
	Cursor
	Layout     *Layout
	compatible bool
}

// NewValue verifies the envelope of c against l and returns the Value. With
// compatible set, tables with more fields than the ones in their Layout are
// accepted.
func NewValue(c Cursor, l *Layout, compatible bool) (Value, error) {
	v := Value{Cursor: c, Layout: l, compatible: compatible}
	if err := v.Verify(compatible); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Verify checks the envelope of the Value against its Layout
func (v Value) Verify(compatible bool) error {
	if err := v.Layout.verify(v.Cursor, compatible); err != nil {
		return fmt.Errorf("%s: %w", v.Layout.Name, err)
	}
	return nil
}

// Len returns the number of items of a vector, the number of fields present
// in a table, or the size of a fixed value
func (v Value) Len() (int, error) {
	switch v.Layout.Kind {
	case KindFixVec:
		return v.fixVecLen()
	case KindDynVec, KindTable:
		return v.offsetsHeader()
	}
	return v.size, nil
}

// Index returns the verified item i of a vector
func (v Value) Index(i int) (Value, error) {
	switch v.Layout.Kind {
	case KindFixVec:
		n, err := v.fixVecLen()
		if err != nil {
			return Value{}, err
		}
		if i < 0 || i >= n {
			return Value{}, &OutOfBoundError{Offset: i, Total: n}
		}
		c, err := v.Slice(NumberSize+i*v.Layout.Size, v.Layout.Size)
		if err != nil {
			return Value{}, err
		}
		return Value{Cursor: c, Layout: v.itemLayout(), compatible: v.compatible}, nil
	case KindDynVec:
		n, err := v.offsetsHeader()
		if err != nil {
			return Value{}, err
		}
		c, err := v.itemByOffsets(i, n)
		if err != nil {
			return Value{}, err
		}
		item, err := NewValue(c, v.Layout.Item, v.compatible)
		if err != nil {
			return Value{}, fmt.Errorf("%s[%d]: %w", v.Layout.Name, i, err)
		}
		return item, nil
	}
	return Value{}, fmt.Errorf("%w: %s (%s) is not a vector", ErrVerify,
		v.Layout.Name, v.Layout.Kind)
}

func (v Value) itemLayout() *Layout {
	if v.Layout.Item != nil {
		return v.Layout.Item
	}
	return Fixed(v.Layout.Name+" item", v.Layout.Size)
}

// field returns the raw Cursor of the field i of a table. Fields beyond the
// ones present in the data are returned as empty Cursors.
func (v Value) field(i int) (Field, Cursor, error) {
	if v.Layout.Kind != KindTable {
		return Field{}, Cursor{}, fmt.Errorf("%w: %s (%s) is not a table",
			ErrVerify, v.Layout.Name, v.Layout.Kind)
	}
	if i < 0 || i >= len(v.Layout.Fields) {
		return Field{}, Cursor{}, &OutOfBoundError{Offset: i, Total: len(v.Layout.Fields)}
	}
	f := v.Layout.Fields[i]
	n, err := v.offsetsHeader()
	if err != nil {
		return f, Cursor{}, err
	}
	if i >= n {
		return f, Cursor{offset: v.offset + v.size, size: 0, src: v.src}, nil
	}
	c, err := v.itemByOffsets(i, n)
	return f, c, err
}

// Field returns the verified required field i of a table
func (v Value) Field(i int) (Value, error) {
	f, c, err := v.field(i)
	if err != nil {
		return Value{}, err
	}
	fv, err := NewValue(c, f.Layout, v.compatible)
	if err != nil {
		return Value{}, fmt.Errorf("%s.%s: %w", v.Layout.Name, f.Name, err)
	}
	return fv, nil
}

// OptionalField returns the field i of a table, and whether it is present.
// The field is verified only when present.
func (v Value) OptionalField(i int) (Value, bool, error) {
	f, c, err := v.field(i)
	if err != nil {
		return Value{}, false, err
	}
	if c.IsNone() {
		return Value{}, false, nil
	}
	fv, err := NewValue(c, f.Layout, v.compatible)
	if err != nil {
		return Value{}, false, fmt.Errorf("%s.%s: %w", v.Layout.Name, f.Name, err)
	}
	return fv, true, nil
}

// RawBytes returns the content of a Bytes value, without its length header
func (v Value) RawBytes() (Cursor, error) {
	if v.Layout.Kind != KindFixVec || v.Layout.Size != 1 {
		return Cursor{}, fmt.Errorf("%w: %s is not a byte vector", ErrVerify,
			v.Layout.Name)
	}
	n, err := v.fixVecLen()
	if err != nil {
		return Cursor{}, err
	}
	return v.Slice(NumberSize, n)
}
