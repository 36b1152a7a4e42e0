package godb

// Aggregate drains its child fully into an Aggregator when it is opened
// (not lazily on the first pull), then delegates to the aggregator's own
// result iterator. rewind resets
// only the result cursor; the aggregator's accumulated state is frozen
// once built and is never recomputed.
type Aggregate struct {
	baseOp
	agg    Aggregator
	result Operator
}

// NewAggregate returns an Aggregate of child using agg.
func NewAggregate(child Operator, agg Aggregator) *Aggregate {
	a := &Aggregate{agg: agg}
	a.kids = []Operator{child}
	return a
}

func (a *Aggregate) tupleDesc() *TupleDesc { return a.agg.tupleDesc() }

func (a *Aggregate) open(tid TransactionID) error {
	if !a.doOpen(tid) {
		return nil
	}
	if err := a.kids[0].open(tid); err != nil {
		return err
	}
	return a.drainAndBuild(tid)
}

func (a *Aggregate) drainAndBuild(tid TransactionID) error {
	for {
		ok, err := a.kids[0].hasNext()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		t, err := a.kids[0].next()
		if err != nil {
			return err
		}
		if err := a.agg.merge(t); err != nil {
			return err
		}
	}
	result, err := a.agg.iterator()
	if err != nil {
		return err
	}
	a.result = result
	return a.result.open(tid)
}

func (a *Aggregate) hasNext() (bool, error) {
	if !a.isOpen() {
		return false, nil
	}
	return a.result.hasNext()
}

func (a *Aggregate) next() (*Tuple, error) {
	if !a.isOpen() {
		return nil, newErr(NoSuchElementError, "aggregate is not open")
	}
	return a.result.next()
}

func (a *Aggregate) rewind() error {
	if !a.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	return a.result.rewind()
}

func (a *Aggregate) close() error {
	if !a.doClose() {
		return nil
	}
	if err := a.result.close(); err != nil {
		return err
	}
	return a.kids[0].close()
}
