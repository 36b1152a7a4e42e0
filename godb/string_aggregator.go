package godb

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// StringAggregator aggregates one string field of its input tuples,
// optionally grouped by another field. COUNT is the only operator it
// supports.
type StringAggregator struct {
	gbfield     int
	gbfieldtype DBType
	gfieldName  string
	afield      int
	afieldName  string
	op          AggOp

	counts map[string]int64
}

// NewStringAggregator returns a StringAggregator over childDesc's
// afield-th field, grouped by gbfield (or NoGrouping). It fails
// construction with InvalidAggregateOp if op is not Count.
func NewStringAggregator(gbfield int, childDesc *TupleDesc, afield int, op AggOp) (*StringAggregator, error) {
	if op != Count {
		return nil, newErr(InvalidAggregateOp, "StringAggregator only supports Count, got %s", op)
	}
	a := &StringAggregator{
		gbfield:    gbfield,
		afield:     afield,
		afieldName: childDesc.Fields[afield].Fname,
		op:         op,
		counts:     make(map[string]int64),
	}
	if gbfield != NoGrouping {
		a.gbfieldtype = childDesc.fieldType(gbfield)
		a.gfieldName = childDesc.Fields[gbfield].Fname
	}
	return a, nil
}

func (a *StringAggregator) merge(t *Tuple) error {
	if _, ok := t.Fields[a.afield].(StringField); !ok {
		return newErr(AggregateError, "aggregate field %d is not a StringField", a.afield)
	}
	key := groupKey(t, a.gbfield)
	a.counts[key]++
	return nil
}

func (a *StringAggregator) tupleDesc() *TupleDesc {
	name := "count(" + a.afieldName + ")"
	if a.gbfield == NoGrouping {
		return &TupleDesc{Fields: []FieldType{{Fname: name, Ftype: IntType}}}
	}
	return &TupleDesc{Fields: []FieldType{{Fname: a.gfieldName, Ftype: a.gbfieldtype}, {Fname: name, Ftype: IntType}}}
}

func (a *StringAggregator) iterator() (Operator, error) {
	desc := a.tupleDesc()
	keys := maps.Keys(a.counts)
	slices.Sort(keys)
	tuples := make([]*Tuple, 0, len(keys))
	for _, key := range keys {
		count := IntField{Value: int32(a.counts[key])}
		fields := []Field{count}
		if a.gbfield != NoGrouping {
			gv, err := groupValueField(key, a.gbfieldtype)
			if err != nil {
				return nil, err
			}
			fields = []Field{gv, count}
		}
		tuples = append(tuples, &Tuple{Desc: *desc, Fields: fields})
	}
	return newSliceResultOp(desc, tuples), nil
}
