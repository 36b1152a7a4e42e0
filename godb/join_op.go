package godb

import (
	"golang.org/x/exp/slices"
)

// EquiJoin computes the equality join of left and right on a single field
// from each side, via a sort-merge join: both children are drained and
// sorted by the join field once, then merged with a two-pointer scan that
// fans out matching runs. This keeps the join to O(n log n + n) instead of
// the nested-loop O(n*m) the contract would also permit.
type EquiJoin struct {
	baseOp
	leftField, rightField int
	desc                  *TupleDesc

	results []*Tuple
	pos     int
}

// NewEquiJoin returns an EquiJoin of left and right on leftField/rightField
// (0-based indices into each side's schema), which must agree in type.
func NewEquiJoin(left Operator, leftField int, right Operator, rightField int) (*EquiJoin, error) {
	lt := left.tupleDesc().fieldType(leftField)
	rt := right.tupleDesc().fieldType(rightField)
	if lt != rt {
		return nil, newErr(DbError, "cannot join fields of different types (%s vs %s)", lt, rt)
	}
	j := &EquiJoin{
		leftField:  leftField,
		rightField: rightField,
		desc:       left.tupleDesc().merge(right.tupleDesc()),
	}
	j.kids = []Operator{left, right}
	return j, nil
}

func (j *EquiJoin) tupleDesc() *TupleDesc { return j.desc }

func (j *EquiJoin) open(tid TransactionID) error {
	if !j.doOpen(tid) {
		return nil
	}
	if err := j.kids[0].open(tid); err != nil {
		return err
	}
	if err := j.kids[1].open(tid); err != nil {
		return err
	}
	return j.compute()
}

func drainAll(op Operator) ([]*Tuple, error) {
	var out []*Tuple
	for {
		ok, err := op.hasNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		t, err := op.next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func (j *EquiJoin) compute() error {
	left, err := drainAll(j.kids[0])
	if err != nil {
		return err
	}
	right, err := drainAll(j.kids[1])
	if err != nil {
		return err
	}

	if err := sortByField(left, j.leftField); err != nil {
		return err
	}
	if err := sortByField(right, j.rightField); err != nil {
		return err
	}

	j.results = nil
	i, k := 0, 0
	for i < len(left) && k < len(right) {
		c, err := compareFields(left[i].Fields[j.leftField], right[k].Fields[j.rightField])
		if err != nil {
			return err
		}
		switch {
		case c < 0:
			i++
		case c > 0:
			k++
		default:
			iEnd, kEnd := i+1, k+1
			for iEnd < len(left) {
				c, err := compareFields(left[iEnd].Fields[j.leftField], left[i].Fields[j.leftField])
				if err != nil {
					return err
				}
				if c != 0 {
					break
				}
				iEnd++
			}
			for kEnd < len(right) {
				c, err := compareFields(right[kEnd].Fields[j.rightField], right[k].Fields[j.rightField])
				if err != nil {
					return err
				}
				if c != 0 {
					break
				}
				kEnd++
			}
			for a := i; a < iEnd; a++ {
				for b := k; b < kEnd; b++ {
					j.results = append(j.results, joinTuples(left[a], right[b]))
				}
			}
			i, k = iEnd, kEnd
		}
	}
	j.pos = 0
	return nil
}

func sortByField(tuples []*Tuple, field int) error {
	var sortErr error
	slices.SortFunc(tuples, func(a, b *Tuple) int {
		c, err := compareFields(a.Fields[field], b.Fields[field])
		if err != nil {
			sortErr = err
			return 0
		}
		return c
	})
	return sortErr
}

func compareFields(a, b Field) (int, error) {
	lt, err := EvalPredicate(OpLT, a, b)
	if err != nil {
		return 0, err
	}
	if lt {
		return -1, nil
	}
	eq, err := EvalPredicate(OpEQ, a, b)
	if err != nil {
		return 0, err
	}
	if eq {
		return 0, nil
	}
	return 1, nil
}

func (j *EquiJoin) hasNext() (bool, error) {
	if !j.isOpen() {
		return false, nil
	}
	return j.pos < len(j.results), nil
}

func (j *EquiJoin) next() (*Tuple, error) {
	ok, err := j.hasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "join exhausted")
	}
	t := j.results[j.pos]
	j.pos++
	return t, nil
}

func (j *EquiJoin) rewind() error {
	if !j.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	if err := j.kids[0].rewind(); err != nil {
		return err
	}
	if err := j.kids[1].rewind(); err != nil {
		return err
	}
	return j.compute()
}

func (j *EquiJoin) close() error {
	if !j.doClose() {
		return nil
	}
	j.results = nil
	if err := j.kids[0].close(); err != nil {
		return err
	}
	return j.kids[1].close()
}
