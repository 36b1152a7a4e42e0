package godb

// Filter passes through tuples from its child for which EvalPredicate(op,
// t.Fields[field], compareTo) is true.
type Filter struct {
	baseOp
	field     int
	op        CompareOp
	compareTo Field
	buf       peekBuffer
}

// NewFilter returns a Filter over child, comparing the field-th field of
// each child tuple to compareTo using op.
func NewFilter(child Operator, field int, op CompareOp, compareTo Field) *Filter {
	f := &Filter{field: field, op: op, compareTo: compareTo}
	f.kids = []Operator{child}
	return f
}

func (f *Filter) tupleDesc() *TupleDesc { return f.kids[0].tupleDesc() }

func (f *Filter) open(tid TransactionID) error {
	if !f.doOpen(tid) {
		return nil
	}
	return f.kids[0].open(tid)
}

func (f *Filter) fetchNext() (*Tuple, error) {
	for {
		ok, err := f.kids[0].hasNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		t, err := f.kids[0].next()
		if err != nil {
			return nil, err
		}
		keep, err := EvalPredicate(f.op, t.Fields[f.field], f.compareTo)
		if err != nil {
			return nil, err
		}
		if keep {
			return t, nil
		}
	}
}

func (f *Filter) hasNext() (bool, error) {
	if !f.isOpen() {
		return false, nil
	}
	return f.buf.hasNext(f.fetchNext)
}

func (f *Filter) next() (*Tuple, error) {
	if !f.isOpen() {
		return nil, newErr(NoSuchElementError, "filter is not open")
	}
	return f.buf.next(f.fetchNext)
}

func (f *Filter) rewind() error {
	if !f.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	f.buf.reset()
	return f.kids[0].rewind()
}

func (f *Filter) close() error {
	if !f.doClose() {
		return nil
	}
	f.buf.reset()
	return f.kids[0].close()
}
