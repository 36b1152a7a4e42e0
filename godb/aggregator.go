package godb

import "strconv"

// AggOp is an aggregation operator. Not every Aggregator implements
// every op: StringAggregator only implements COUNT.
type AggOp int

const (
	Min AggOp = iota
	Max
	Sum
	Count
	Avg
	SumCount
	ScAvg
)

func (op AggOp) String() string {
	switch op {
	case Min:
		return "min"
	case Max:
		return "max"
	case Sum:
		return "sum"
	case Count:
		return "count"
	case Avg:
		return "avg"
	case SumCount:
		return "sum_count"
	case ScAvg:
		return "sc_avg"
	default:
		return "unknown"
	}
}

// NoGrouping is the sentinel group-by field index meaning "aggregate the
// whole input into a single group".
const NoGrouping = -1

// Aggregator folds tuples into per-group state and, once done, produces
// an Operator over the finalized result tuples. merge must not be called
// after iterator(); iterator may be called more than once, each time
// returning an independent fresh cursor over the same frozen contents.
type Aggregator interface {
	merge(t *Tuple) error
	iterator() (Operator, error)
	tupleDesc() *TupleDesc
}

// groupKey is the textual form of a group-by field: tuple.field(g).String(),
// or "" under NoGrouping.
func groupKey(t *Tuple, gbfield int) string {
	if gbfield == NoGrouping {
		return ""
	}
	return t.Fields[gbfield].String()
}

// groupValueField reconstructs the typed Field for a stored group key.
func groupValueField(key string, gbfieldtype DBType) (Field, error) {
	switch gbfieldtype {
	case IntType:
		v, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return nil, newErr(AggregateError, "group key %q is not a valid int: %v", key, err)
		}
		return IntField{Value: int32(v)}, nil
	default:
		return StringField{Value: key}, nil
	}
}

// sliceResultOp is a minimal leaf Operator serving a precomputed,
// order-fixed slice of tuples -- used by every aggregator's iterator()
// to hand the Aggregate operator a pull source over its finalized groups.
type sliceResultOp struct {
	baseOp
	desc    *TupleDesc
	tuples  []*Tuple
	pos     int
}

func newSliceResultOp(desc *TupleDesc, tuples []*Tuple) *sliceResultOp {
	return &sliceResultOp{desc: desc, tuples: tuples}
}

func (s *sliceResultOp) tupleDesc() *TupleDesc { return s.desc }

func (s *sliceResultOp) open(tid TransactionID) error {
	s.doOpen(tid)
	s.pos = 0
	return nil
}

func (s *sliceResultOp) hasNext() (bool, error) {
	if !s.isOpen() {
		return false, nil
	}
	return s.pos < len(s.tuples), nil
}

func (s *sliceResultOp) next() (*Tuple, error) {
	ok, err := s.hasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "aggregate result exhausted")
	}
	t := s.tuples[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceResultOp) rewind() error {
	if !s.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	s.pos = 0
	return nil
}

func (s *sliceResultOp) close() error {
	s.doClose()
	return nil
}
