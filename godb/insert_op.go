package godb

// Insert drains its child fully into a target DBFile's InsertTuple and
// emits a single one-field "count" tuple on the first pull.
type Insert struct {
	baseOp
	file    *HeapFile
	desc    *TupleDesc
	done    bool
	emitted bool
	count   int32
}

// NewInsert returns an Insert of child's tuples into file.
func NewInsert(file *HeapFile, child Operator) *Insert {
	i := &Insert{
		file: file,
		desc: &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}},
	}
	i.kids = []Operator{child}
	return i
}

func (i *Insert) tupleDesc() *TupleDesc { return i.desc }

func (i *Insert) open(tid TransactionID) error {
	if !i.doOpen(tid) {
		return nil
	}
	return i.kids[0].open(tid)
}

func (i *Insert) drain() error {
	if i.done {
		return nil
	}
	for {
		ok, err := i.kids[0].hasNext()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		t, err := i.kids[0].next()
		if err != nil {
			return err
		}
		if err := i.file.InsertTuple(i.tid, t); err != nil {
			return err
		}
		i.count++
	}
	i.done = true
	return nil
}

func (i *Insert) hasNext() (bool, error) {
	if !i.isOpen() {
		return false, nil
	}
	if err := i.drain(); err != nil {
		return false, err
	}
	return !i.emitted, nil
}

func (i *Insert) next() (*Tuple, error) {
	ok, err := i.hasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "insert already emitted its count")
	}
	i.emitted = true
	return &Tuple{Desc: *i.desc, Fields: []Field{IntField{Value: i.count}}}, nil
}

func (i *Insert) rewind() error {
	if !i.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	i.done = false
	i.emitted = false
	i.count = 0
	return i.kids[0].rewind()
}

func (i *Insert) close() error {
	if !i.doClose() {
		return nil
	}
	return i.kids[0].close()
}
