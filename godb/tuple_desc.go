package godb

import "fmt"

// FieldType names one column of a TupleDesc: its type and an optional,
// possibly-duplicated, possibly-empty display name.
type FieldType struct {
	Fname string
	Ftype DBType
}

// TupleDesc is the positional schema of a tuple: an ordered, non-empty
// sequence of (type, name?) pairs. Equality is positional by type only;
// names are descriptive metadata and are ignored by equals and by the
// on-disk layout.
type TupleDesc struct {
	Fields []FieldType
}

// NewTupleDesc builds a TupleDesc from field types and parallel names.
// names may be shorter than types (missing entries are treated as ""); it
// is an error to supply zero fields, per the Open Question resolved in
// SPEC_FULL.md.
func NewTupleDesc(types []DBType, names []string) (*TupleDesc, error) {
	if len(types) == 0 {
		return nil, newErr(DbError, "a TupleDesc must have at least one field")
	}
	fields := make([]FieldType, len(types))
	for i, t := range types {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fields[i] = FieldType{Fname: name, Ftype: t}
	}
	return &TupleDesc{Fields: fields}, nil
}

// numFields returns the number of columns in the schema.
func (td *TupleDesc) numFields() int {
	return len(td.Fields)
}

// fieldType returns the type of the i-th column.
func (td *TupleDesc) fieldType(i int) DBType {
	return td.Fields[i].Ftype
}

// fixedLen is the total on-disk width in bytes of one tuple of this shape:
// the sum of each field's own width. The legacy source computes this as
// numFields * IntType.width(), which silently breaks on STRING columns;
// this implementation intentionally does not reproduce that bug (see
// SPEC_FULL.md's Open Questions).
func (td *TupleDesc) fixedLen() int {
	total := 0
	for _, f := range td.Fields {
		total += f.Ftype.width()
	}
	return total
}

// equals compares two TupleDescs positionally by type only; names and
// their count-in-common play no role.
func (td *TupleDesc) equals(other *TupleDesc) bool {
	if len(td.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range td.Fields {
		if f.Ftype != other.Fields[i].Ftype {
			return false
		}
	}
	return true
}

// copy returns a deep-enough copy of td (the Fields slice is re-sliced so
// mutating the copy's Fields never mutates td's).
func (td *TupleDesc) copy() *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	return &TupleDesc{Fields: fields}
}

// merge concatenates the fields of td2 onto the fields of td, returning a
// new TupleDesc. merge(td, td2).fixedLen() == td.fixedLen() + td2.fixedLen().
func (td *TupleDesc) merge(td2 *TupleDesc) *TupleDesc {
	fields := make([]FieldType, 0, len(td.Fields)+len(td2.Fields))
	fields = append(fields, td.Fields...)
	fields = append(fields, td2.Fields...)
	return &TupleDesc{Fields: fields}
}

func (td *TupleDesc) String() string {
	s := ""
	for i, f := range td.Fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s(%s)", f.Fname, f.Ftype)
	}
	return s
}
