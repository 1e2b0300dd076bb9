package mongostore

import "context"

// opFunc is a captured store operation awaiting dispatch against the
// collection. Errors it returns are already wrapped as *OperationError.
type opFunc func(ctx context.Context, coll Collection) (any, error)

// opResult carries the outcome of a buffered operation back to its caller.
type opResult struct {
	value any
	err   error
}

// pendingOp is one queued operation: the captured call plus the channel its
// blocked caller waits on. The channel is buffered so replay never blocks on
// a caller that gave up.
type pendingOp struct {
	ctx  context.Context
	run  opFunc
	done chan opResult
}

// opBuffer queues operations issued before the store is ready so they can be
// replayed in arrival order. It is guarded by the store's mutex, not its own.
type opBuffer struct {
	ops []pendingOp
}

func (b *opBuffer) enqueue(op pendingOp) {
	b.ops = append(b.ops, op)
}

// drain returns the queued operations in FIFO order and empties the buffer.
func (b *opBuffer) drain() []pendingOp {
	ops := b.ops
	b.ops = nil
	return ops
}

func (b *opBuffer) len() int {
	return len(b.ops)
}
