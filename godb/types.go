package godb

// This file defines the closed set of field types GoDB supports, and the
// Field values that carry them. Every on-disk byte layout in the package
// (heap page slots, aggregator output tuples) is ultimately determined by
// the widths fixed here.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// DBType is the type of a tuple field.
type DBType int

const (
	IntType DBType = iota
	StringType
)

func (t DBType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	default:
		return "unknown"
	}
}

// width returns the fixed on-disk size in bytes of a value of this type,
// per the current process-wide Config.
func (t DBType) width() int {
	switch t {
	case IntType:
		return 4
	case StringType:
		return StringLength() + 4
	default:
		panic(fmt.Sprintf("godb: unknown DBType %d", t))
	}
}

// Field is a typed value stored in a tuple. The two concrete
// implementations are IntField and StringField.
type Field interface {
	fieldType() DBType
	serialize(w *bytes.Buffer) error
	String() string
}

// IntField is a 32-bit signed integer value.
type IntField struct {
	Value int32
}

func (f IntField) fieldType() DBType { return IntType }

func (f IntField) serialize(w *bytes.Buffer) error {
	return binary.Write(w, binary.BigEndian, f.Value)
}

func (f IntField) String() string {
	return fmt.Sprintf("%d", f.Value)
}

// compare orders two IntFields numerically.
func (f IntField) compare(other IntField) int {
	switch {
	case f.Value < other.Value:
		return -1
	case f.Value > other.Value:
		return 1
	default:
		return 0
	}
}

// StringField is a UTF-8 string value, stored on disk as a 4-byte
// big-endian length prefix followed by StringLength() bytes of payload.
// Equality and LIKE only ever consider the first Value's worth of bytes;
// anything beyond that is padding a writer produced and a reader ignores.
type StringField struct {
	Value string
}

func (f StringField) fieldType() DBType { return StringType }

func (f StringField) serialize(w *bytes.Buffer) error {
	payload := []byte(f.Value)
	n := StringLength()
	if len(payload) > n {
		return newErr(DbError, "string value %q exceeds configured StringLength %d", f.Value, n)
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(payload))); err != nil {
		return err
	}
	padded := make([]byte, n)
	copy(padded, payload)
	_, err := w.Write(padded)
	return err
}

func (f StringField) String() string {
	return f.Value
}

// compare orders two StringFields lexicographically.
func (f StringField) compare(other StringField) int {
	switch {
	case f.Value < other.Value:
		return -1
	case f.Value > other.Value:
		return 1
	default:
		return 0
	}
}

// CompareOp is a comparison or pattern-match predicate over two fields of
// compatible type.
type CompareOp int

const (
	OpLT CompareOp = iota
	OpLE
	OpEQ
	OpGT
	OpGE
	OpNE
	OpLike
)

// EvalPredicate applies op to a and b, which must be fields of the same
// concrete type. LIKE is defined only for StringField and is substring
// containment.
func EvalPredicate(op CompareOp, a, b Field) (bool, error) {
	switch av := a.(type) {
	case IntField:
		bv, ok := b.(IntField)
		if !ok {
			return false, newErr(DbError, "cannot compare IntField to %T", b)
		}
		c := av.compare(bv)
		return evalOrdering(op, c)
	case StringField:
		bv, ok := b.(StringField)
		if !ok {
			return false, newErr(DbError, "cannot compare StringField to %T", b)
		}
		if op == OpLike {
			return bytes.Contains([]byte(av.Value), []byte(bv.Value)), nil
		}
		c := av.compare(bv)
		return evalOrdering(op, c)
	default:
		return false, newErr(DbError, "unsupported field type %T", a)
	}
}

func evalOrdering(op CompareOp, c int) (bool, error) {
	switch op {
	case OpLT:
		return c < 0, nil
	case OpLE:
		return c <= 0, nil
	case OpEQ:
		return c == 0, nil
	case OpGT:
		return c > 0, nil
	case OpGE:
		return c >= 0, nil
	case OpNE:
		return c != 0, nil
	default:
		return false, newErr(DbError, "LIKE is not defined for this field type")
	}
}

// parseField reads a single field of type t from b.
func parseField(b *bytes.Reader, t DBType) (Field, error) {
	switch t {
	case IntType:
		var v int32
		if err := binary.Read(b, binary.BigEndian, &v); err != nil {
			return nil, newErr(FormatError, "reading int field: %v", err)
		}
		return IntField{Value: v}, nil
	case StringType:
		var length int32
		if err := binary.Read(b, binary.BigEndian, &length); err != nil {
			return nil, newErr(FormatError, "reading string length: %v", err)
		}
		n := StringLength()
		if length < 0 || int(length) > n {
			return nil, newErr(FormatError, "string field length %d out of range [0, %d]", length, n)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(b, payload); err != nil {
			return nil, newErr(FormatError, "reading string payload: %v", err)
		}
		return StringField{Value: string(payload[:length])}, nil
	default:
		return nil, newErr(FormatError, "unknown field type %d", t)
	}
}
