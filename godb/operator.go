package godb

// Operator is the pull-model interface every node in a query plan
// implements. The contract is an explicit state machine -- {Closed,
// Open(...)} -- rather than a closure returned from an Iterator call: an
// operator that has been opened and then exhausted is still open, and
// must accept close() and rewind() in that state. Conflating "exhausted"
// with "closed" is exactly the bug this shape exists to avoid.
type Operator interface {
	// tupleDesc is the schema of output tuples, stable once constructed.
	tupleDesc() *TupleDesc

	// open prepares the operator (and its children) to be pulled from.
	// Calling open on an already-open operator is a no-op.
	open(tid TransactionID) error

	// hasNext reports whether next will succeed. Calling it on a closed
	// operator returns false without error.
	hasNext() (bool, error)

	// next returns the next output tuple. It fails NoSuchElementError if
	// hasNext would return false.
	next() (*Tuple, error)

	// rewind resets the operator to its pre-first-next state, equivalent
	// in observable effect to close() followed by open() with the same
	// TransactionID.
	rewind() error

	// close releases scan state and closes children. Closing an already
	// closed operator is a no-op.
	close() error

	// children exposes this operator's direct children for plan-tree
	// inspection by rewriters. Leaf operators return an empty slice.
	children() []Operator

	// setChildren rewires this operator's children, e.g. after a
	// rule-based rewrite substitutes one subtree for another.
	setChildren(children []Operator)
}

// opState is the {Closed, Open} state machine embedded by every operator
// in this package. It does not itself know how to produce tuples; it
// only tracks whether open() has been called and remembers the
// TransactionID it was opened under.
type opState struct {
	open bool
	tid  TransactionID
}

// doOpen transitions to Open if not already there, remembering tid.
// Returns true if this call actually performed the transition (so a
// caller can tell "was already open" from "just opened").
func (s *opState) doOpen(tid TransactionID) bool {
	if s.open {
		return false
	}
	s.open = true
	s.tid = tid
	return true
}

// doClose transitions to Closed. Returns true if this call actually
// performed the transition.
func (s *opState) doClose() bool {
	if !s.open {
		return false
	}
	s.open = false
	return true
}

func (s *opState) isOpen() bool { return s.open }

// baseOp embeds the {Closed, Open} state machine and a children slice, so
// a concrete operator gets idempotent open/close bookkeeping and
// plan-tree rewiring for free and only has to implement tupleDesc,
// hasNext, next, and the tuple-producing part of open/rewind.
type baseOp struct {
	opState
	kids []Operator
}

func (b *baseOp) children() []Operator { return b.kids }

func (b *baseOp) setChildren(children []Operator) { b.kids = children }

// peekBuffer is a one-tuple lookahead buffer shared by operators whose
// underlying data source only supports "give me the next one" rather
// than "is there a next one" -- which is every pull source in this
// package, since Go doesn't have a native peekable iterator. hasNext
// pulls into the buffer if empty and reports whether it holds a tuple;
// next drains it.
type peekBuffer struct {
	held  *Tuple
	err   error
	tried bool
}

func (b *peekBuffer) reset() {
	b.held = nil
	b.err = nil
	b.tried = false
}

// fill ensures the buffer holds the result of calling fetch, if it
// hasn't already tried this round.
func (b *peekBuffer) fill(fetch func() (*Tuple, error)) {
	if b.tried {
		return
	}
	b.held, b.err = fetch()
	b.tried = true
}

func (b *peekBuffer) hasNext(fetch func() (*Tuple, error)) (bool, error) {
	b.fill(fetch)
	if b.err != nil {
		return false, b.err
	}
	return b.held != nil, nil
}

func (b *peekBuffer) next(fetch func() (*Tuple, error)) (*Tuple, error) {
	ok, err := b.hasNext(fetch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "operator exhausted")
	}
	t := b.held
	b.held = nil
	b.tried = false
	return t, nil
}
