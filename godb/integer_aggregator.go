package godb

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// intAggState is one group's running aggregate state.
type intAggState struct {
	sum      int64
	count    int64
	min      int32
	max      int32
	sumCount int64
}

// IntegerAggregator aggregates one integer field of its input tuples,
// optionally grouped by another field.
type IntegerAggregator struct {
	gbfield     int
	gbfieldtype DBType
	gfieldName  string
	afield      int
	afieldName  string
	op          AggOp

	groups map[string]*intAggState
}

// NewIntegerAggregator returns an IntegerAggregator over childDesc's
// afield-th field, grouped by gbfield (or NoGrouping), using op. Output
// field names are derived from childDesc.
func NewIntegerAggregator(gbfield int, childDesc *TupleDesc, afield int, op AggOp) *IntegerAggregator {
	a := &IntegerAggregator{
		gbfield:    gbfield,
		afield:     afield,
		afieldName: childDesc.Fields[afield].Fname,
		op:         op,
		groups:     make(map[string]*intAggState),
	}
	if gbfield != NoGrouping {
		a.gbfieldtype = childDesc.fieldType(gbfield)
		a.gfieldName = childDesc.Fields[gbfield].Fname
	}
	return a
}

func (a *IntegerAggregator) merge(t *Tuple) error {
	key := groupKey(t, a.gbfield)
	st, ok := a.groups[key]
	if !ok {
		st = &intAggState{min: maxInt32, max: minInt32}
		a.groups[key] = st
	}

	v, ok := t.Fields[a.afield].(IntField)
	if !ok {
		return newErr(AggregateError, "aggregate field %d is not an IntField", a.afield)
	}

	st.sum += int64(v.Value)
	st.count++
	if v.Value < st.min {
		st.min = v.Value
	}
	if v.Value > st.max {
		st.max = v.Value
	}
	if a.op == ScAvg {
		sc, ok := t.Fields[a.afield+1].(IntField)
		if !ok {
			return newErr(AggregateError, "secondary count field %d is not an IntField", a.afield+1)
		}
		st.sumCount += int64(sc.Value)
	}
	return nil
}

const maxInt32 = int32(1<<31 - 1)
const minInt32 = -maxInt32 - 1

func (a *IntegerAggregator) tupleDesc() *TupleDesc {
	name := a.op.String() + "(" + a.afieldName + ")"
	if a.op == SumCount {
		if a.gbfield == NoGrouping {
			return &TupleDesc{Fields: []FieldType{{Fname: name, Ftype: IntType}, {Fname: "count", Ftype: IntType}}}
		}
		return &TupleDesc{Fields: []FieldType{{Fname: a.gfieldName, Ftype: a.gbfieldtype}, {Fname: name, Ftype: IntType}, {Fname: "count", Ftype: IntType}}}
	}
	if a.gbfield == NoGrouping {
		return &TupleDesc{Fields: []FieldType{{Fname: name, Ftype: IntType}}}
	}
	return &TupleDesc{Fields: []FieldType{{Fname: a.gfieldName, Ftype: a.gbfieldtype}, {Fname: name, Ftype: IntType}}}
}

func (a *IntegerAggregator) resultFields(key string, st *intAggState) ([]Field, error) {
	var agg []Field
	switch a.op {
	case Min:
		agg = []Field{IntField{Value: st.min}}
	case Max:
		agg = []Field{IntField{Value: st.max}}
	case Sum:
		agg = []Field{IntField{Value: int32(st.sum)}}
	case Count:
		agg = []Field{IntField{Value: int32(st.count)}}
	case Avg:
		if st.count == 0 {
			return nil, newErr(AggregateError, "average of an empty group")
		}
		agg = []Field{IntField{Value: int32(st.sum / st.count)}}
	case SumCount:
		agg = []Field{IntField{Value: int32(st.sum)}, IntField{Value: int32(st.count)}}
	case ScAvg:
		if st.sumCount == 0 {
			return nil, newErr(AggregateError, "sum-count average with zero total count")
		}
		agg = []Field{IntField{Value: int32(st.sum / st.sumCount)}}
	default:
		return nil, newErr(DbError, "unsupported aggregate op %s for IntegerAggregator", a.op)
	}
	if a.gbfield == NoGrouping {
		return agg, nil
	}
	gv, err := groupValueField(key, a.gbfieldtype)
	if err != nil {
		return nil, err
	}
	return append([]Field{gv}, agg...), nil
}

func (a *IntegerAggregator) iterator() (Operator, error) {
	desc := a.tupleDesc()
	keys := maps.Keys(a.groups)
	slices.Sort(keys)
	tuples := make([]*Tuple, 0, len(keys))
	for _, key := range keys {
		fields, err := a.resultFields(key, a.groups[key])
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, &Tuple{Desc: *desc, Fields: fields})
	}
	return newSliceResultOp(desc, tuples), nil
}
