package godb

// Limit passes through at most n tuples from its child, then reports
// exhausted regardless of how many the child still has.
type Limit struct {
	baseOp
	n     int
	count int
}

// NewLimit returns a Limit of child capped at n tuples.
func NewLimit(n int, child Operator) *Limit {
	l := &Limit{n: n}
	l.kids = []Operator{child}
	return l
}

func (l *Limit) tupleDesc() *TupleDesc { return l.kids[0].tupleDesc() }

func (l *Limit) open(tid TransactionID) error {
	if !l.doOpen(tid) {
		return nil
	}
	l.count = 0
	return l.kids[0].open(tid)
}

func (l *Limit) hasNext() (bool, error) {
	if !l.isOpen() || l.count >= l.n {
		return false, nil
	}
	return l.kids[0].hasNext()
}

func (l *Limit) next() (*Tuple, error) {
	ok, err := l.hasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "limit exhausted")
	}
	t, err := l.kids[0].next()
	if err != nil {
		return nil, err
	}
	l.count++
	return t, nil
}

func (l *Limit) rewind() error {
	if !l.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	l.count = 0
	return l.kids[0].rewind()
}

func (l *Limit) close() error {
	if !l.doClose() {
		return nil
	}
	return l.kids[0].close()
}
