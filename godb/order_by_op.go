package godb

import "golang.org/x/exp/slices"

// OrderBy is a blocking sort: on open it drains its child fully into
// memory, sorts once by the given field indices (ascending or descending
// per ascending), and serves the sorted slice from then on.
type OrderBy struct {
	baseOp
	fields    []int
	ascending []bool
	results   []*Tuple
	pos       int
}

// NewOrderBy returns an OrderBy of child keyed on fields (0-based column
// indices), with ascending[i] controlling the sort direction of fields[i].
func NewOrderBy(fields []int, child Operator, ascending []bool) (*OrderBy, error) {
	if len(fields) != len(ascending) {
		return nil, newErr(DbError, "NewOrderBy: %d fields but %d ascending flags", len(fields), len(ascending))
	}
	o := &OrderBy{fields: fields, ascending: ascending}
	o.kids = []Operator{child}
	return o, nil
}

func (o *OrderBy) tupleDesc() *TupleDesc { return o.kids[0].tupleDesc() }

func (o *OrderBy) open(tid TransactionID) error {
	if !o.doOpen(tid) {
		return nil
	}
	if err := o.kids[0].open(tid); err != nil {
		return err
	}
	return o.compute()
}

func (o *OrderBy) compute() error {
	results, err := drainAll(o.kids[0])
	if err != nil {
		return err
	}
	var sortErr error
	slices.SortFunc(results, func(a, b *Tuple) int {
		for i, f := range o.fields {
			c, err := compareFields(a.Fields[f], b.Fields[f])
			if err != nil {
				sortErr = err
				return 0
			}
			if c == 0 {
				continue
			}
			if o.ascending[i] {
				return c
			}
			return -c
		}
		return 0
	})
	if sortErr != nil {
		return sortErr
	}
	o.results = results
	o.pos = 0
	return nil
}

func (o *OrderBy) hasNext() (bool, error) {
	if !o.isOpen() {
		return false, nil
	}
	return o.pos < len(o.results), nil
}

func (o *OrderBy) next() (*Tuple, error) {
	ok, err := o.hasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "order by exhausted")
	}
	t := o.results[o.pos]
	o.pos++
	return t, nil
}

func (o *OrderBy) rewind() error {
	if !o.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	if err := o.kids[0].rewind(); err != nil {
		return err
	}
	return o.compute()
}

func (o *OrderBy) close() error {
	if !o.doClose() {
		return nil
	}
	o.results = nil
	return o.kids[0].close()
}
