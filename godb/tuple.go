package godb

import (
	"bytes"
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// Tuple is a row valued per a TupleDesc. Rid is nil until the tuple is read
// from or inserted into a page, at which point it names the tuple's home
// slot.
type Tuple struct {
	Desc   TupleDesc
	Fields []Field
	Rid    *RecordId
}

// NewTuple builds a tuple over desc. len(fields) must equal
// desc.numFields(), and each field's runtime type must agree with the
// column's declared DBType; this is not re-checked here, callers that
// build tuples by hand are expected to get it right (writeTo will fail
// loudly if they don't).
func NewTuple(desc TupleDesc, fields []Field) *Tuple {
	return &Tuple{Desc: desc, Fields: fields}
}

// writeTo serializes the tuple's fields, in order, into b. Fixed-width
// fields are always written at their configured width regardless of the
// Go value's actual length.
func (t *Tuple) writeTo(b *bytes.Buffer) error {
	for i, f := range t.Fields {
		if f.fieldType() != t.Desc.fieldType(i) {
			return newErr(DbError, "field %d has type %s, tuple desc wants %s", i, f.fieldType(), t.Desc.fieldType(i))
		}
		if err := f.serialize(b); err != nil {
			return err
		}
	}
	return nil
}

// readTupleFrom parses one tuple of shape desc from b.
func readTupleFrom(b *bytes.Reader, desc *TupleDesc) (*Tuple, error) {
	fields := make([]Field, desc.numFields())
	for i := 0; i < desc.numFields(); i++ {
		f, err := parseField(b, desc.fieldType(i))
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return &Tuple{Desc: *desc, Fields: fields}, nil
}

// equals compares two tuples by schema and field values; the RecordId is
// not part of tuple equality.
func (t *Tuple) equals(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Desc.equals(&other.Desc) {
		return false
	}
	if len(t.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f != other.Fields[i] {
			return false
		}
	}
	return true
}

// joinTuples concatenates t2's fields onto a copy of t1, for use by join
// operators.
func joinTuples(t1, t2 *Tuple) *Tuple {
	desc := t1.Desc.merge(&t2.Desc)
	fields := make([]Field, 0, len(t1.Fields)+len(t2.Fields))
	fields = append(fields, t1.Fields...)
	fields = append(fields, t2.Fields...)
	return &Tuple{Desc: *desc, Fields: fields}
}

// contentKey returns a hash of the tuple's field values, ignoring Rid and
// Desc. It is used by the optional distinct projection and by test
// utilities that need a cheap multiset comparison; it is not part of the
// on-disk format.
func (t *Tuple) contentKey() (uint64, error) {
	return hashstructure.Hash(t.Fields, hashstructure.FormatV2, nil)
}

func (t *Tuple) String() string {
	s := ""
	for i, f := range t.Fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%v", f)
	}
	return "(" + s + ")"
}
