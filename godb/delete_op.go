package godb

// Delete drains its child fully into a target DBFile's DeleteTuple and
// emits a single one-field "count" tuple on the first pull.
type Delete struct {
	baseOp
	file    *HeapFile
	desc    *TupleDesc
	done    bool
	emitted bool
	count   int32
}

// NewDelete returns a Delete of child's tuples from file.
func NewDelete(file *HeapFile, child Operator) *Delete {
	d := &Delete{
		file: file,
		desc: &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}},
	}
	d.kids = []Operator{child}
	return d
}

func (d *Delete) tupleDesc() *TupleDesc { return d.desc }

func (d *Delete) open(tid TransactionID) error {
	if !d.doOpen(tid) {
		return nil
	}
	return d.kids[0].open(tid)
}

func (d *Delete) drain() error {
	if d.done {
		return nil
	}
	for {
		ok, err := d.kids[0].hasNext()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		t, err := d.kids[0].next()
		if err != nil {
			return err
		}
		if err := d.file.DeleteTuple(d.tid, t); err != nil {
			return err
		}
		d.count++
	}
	d.done = true
	return nil
}

func (d *Delete) hasNext() (bool, error) {
	if !d.isOpen() {
		return false, nil
	}
	if err := d.drain(); err != nil {
		return false, err
	}
	return !d.emitted, nil
}

func (d *Delete) next() (*Tuple, error) {
	ok, err := d.hasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "delete already emitted its count")
	}
	d.emitted = true
	return &Tuple{Desc: *d.desc, Fields: []Field{IntField{Value: d.count}}}, nil
}

func (d *Delete) rewind() error {
	if !d.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	d.done = false
	d.emitted = false
	d.count = 0
	return d.kids[0].rewind()
}

func (d *Delete) close() error {
	if !d.doClose() {
		return nil
	}
	return d.kids[0].close()
}
