package godb

import mapset "github.com/deckarep/golang-set/v2"

// Project outputs a subset (with renaming) of its child's fields, in the
// order given at construction. With distinct set, it suppresses output
// tuples whose content hash has already been emitted this open().
type Project struct {
	baseOp
	fields      []int
	outputNames []string
	distinct    bool
	desc        *TupleDesc
	buf         peekBuffer
	seen        mapset.Set[uint64]
}

// NewProject returns a Project of child selecting fields (0-based indices
// into child's schema), renamed to outputNames (same length as fields).
func NewProject(fields []int, outputNames []string, distinct bool, child Operator) (*Project, error) {
	if len(fields) != len(outputNames) {
		return nil, newErr(DbError, "NewProject: %d fields but %d output names", len(fields), len(outputNames))
	}
	childDesc := child.tupleDesc()
	out := make([]FieldType, len(fields))
	for i, f := range fields {
		out[i] = FieldType{Fname: outputNames[i], Ftype: childDesc.fieldType(f)}
	}
	p := &Project{
		fields:      fields,
		outputNames: outputNames,
		distinct:    distinct,
		desc:        &TupleDesc{Fields: out},
	}
	p.kids = []Operator{child}
	return p, nil
}

func (p *Project) tupleDesc() *TupleDesc { return p.desc }

func (p *Project) open(tid TransactionID) error {
	if !p.doOpen(tid) {
		return nil
	}
	if p.distinct {
		p.seen = mapset.NewSet[uint64]()
	}
	return p.kids[0].open(tid)
}

func (p *Project) project(t *Tuple) *Tuple {
	fields := make([]Field, len(p.fields))
	for i, f := range p.fields {
		fields[i] = t.Fields[f]
	}
	return &Tuple{Desc: *p.desc, Fields: fields}
}

func (p *Project) fetchNext() (*Tuple, error) {
	for {
		ok, err := p.kids[0].hasNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		t, err := p.kids[0].next()
		if err != nil {
			return nil, err
		}
		out := p.project(t)
		if !p.distinct {
			return out, nil
		}
		key, err := out.contentKey()
		if err != nil {
			return nil, err
		}
		if p.seen.Contains(key) {
			continue
		}
		p.seen.Add(key)
		return out, nil
	}
}

func (p *Project) hasNext() (bool, error) {
	if !p.isOpen() {
		return false, nil
	}
	return p.buf.hasNext(p.fetchNext)
}

func (p *Project) next() (*Tuple, error) {
	if !p.isOpen() {
		return nil, newErr(NoSuchElementError, "project is not open")
	}
	return p.buf.next(p.fetchNext)
}

func (p *Project) rewind() error {
	if !p.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	p.buf.reset()
	if p.distinct {
		p.seen = mapset.NewSet[uint64]()
	}
	return p.kids[0].rewind()
}

func (p *Project) close() error {
	if !p.doClose() {
		return nil
	}
	p.buf.reset()
	p.seen = nil
	return p.kids[0].close()
}
