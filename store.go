package mongostore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// SessionStore is the persistence contract generic session middleware
// consumes. *Store implements it once constructed; no readiness gate is
// required on the caller's side.
type SessionStore interface {
	Get(ctx context.Context, id string) (Session, error)
	Set(ctx context.Context, id string, session Session) error
	Destroy(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

var _ SessionStore = (*Store)(nil)

// State is the connection lifecycle state of a store.
type State int

const (
	// StateConnecting is the initial state; operations are buffered.
	StateConnecting State = iota
	// StateReady means the connection is established and the TTL index exists.
	StateReady
	// StateFailed is terminal: connect or index creation failed and the
	// store is permanently unusable.
	StateFailed
	// StateClosed is terminal: the store was closed by the caller.
	StateClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Store is a MongoDB-backed session store. It owns the database connection
// exclusively: operations borrow it but never outlive the store, and nothing
// replaces it once established.
type Store struct {
	cfg       Config
	logger    *slog.Logger
	connector Connector
	events    *notifier

	mu      sync.Mutex
	state   State
	client  Client
	coll    Collection
	connErr error
	buffer  opBuffer
	waiters int

	ready      chan struct{}
	closeReady sync.Once
}

// New constructs a store and starts connecting in the background. It returns
// immediately; operations issued before the connection is established are
// buffered and replayed in call order. Configuration problems are reported
// synchronously.
func New(opts ...Option) (*Store, error) {
	o := &storeOptions{
		cfg:       DefaultConfig(),
		connector: Connect,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cfg = o.cfg.normalize()

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		cfg:       o.cfg,
		logger:    o.logger,
		connector: o.connector,
		events:    &notifier{},
		ready:     make(chan struct{}),
	}

	go s.connect()

	return s, nil
}

// connect runs the connection lifecycle: dial, ensure the TTL index, then
// transition to ready. Each phase is attempted exactly once; a failure is
// terminal and retries are left to the operator.
func (s *Store) connect() {
	ctx := context.Background()

	s.logger.DebugContext(ctx, "connecting session store",
		slog.String("database", s.cfg.databaseName()),
		slog.String("collection", s.cfg.Collection),
	)

	client, err := s.connector(ctx, s.cfg)
	if err != nil {
		s.fail(errors.Join(ErrConnectionFailed, err))
		return
	}

	coll := client.Collection(s.cfg.databaseName(), s.cfg.Collection)
	if err := coll.EnsureTTLIndex(ctx, int32(s.cfg.ExpireAfterSeconds)); err != nil {
		_ = client.Disconnect(context.Background())
		s.fail(errors.Join(ErrIndexCreation, err))
		return
	}

	s.becomeReady(client, coll)
}

// becomeReady transitions to StateReady, replays the buffered operations in
// FIFO order and fires the connected notification exactly once.
func (s *Store) becomeReady(client Client, coll Collection) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		_ = client.Disconnect(context.Background())
		return
	}
	s.state = StateReady
	s.client = client
	s.coll = coll
	pending := s.buffer.drain()
	s.mu.Unlock()

	s.closeReady.Do(func() { close(s.ready) })

	s.logger.InfoContext(context.Background(), "session store ready",
		slog.String("collection", s.cfg.Collection),
		slog.Int("replayed_operations", len(pending)),
	)

	s.events.fireConnected()

	// Sequential replay keeps dispatch order identical to call order.
	for _, op := range pending {
		value, err := op.run(op.ctx, coll)
		op.done <- opResult{value: value, err: err}
	}
}

// fail transitions to the terminal StateFailed and routes the error through
// the delivery contract: buffered callers and readiness waiters receive it,
// error listeners are notified, and a failure nobody would see panics.
func (s *Store) fail(err error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateFailed
	s.connErr = err
	pending := s.buffer.drain()
	hasCaller := s.waiters > 0 || len(pending) > 0
	s.mu.Unlock()

	s.closeReady.Do(func() { close(s.ready) })

	s.logger.ErrorContext(context.Background(), "session store connection failed",
		slog.Any("error", err),
	)

	for _, op := range pending {
		op.done <- opResult{err: err}
	}

	plan := deliveryPlan(hasCaller, s.events.hasErrorListeners())
	if plan.has(deliverEmit) {
		s.events.fireError(err)
	}
	if plan.has(deliverPanic) {
		panic(err)
	}
}

// WaitReady blocks until the store is ready, the connection has failed, or
// the context is done. It is the readiness callback analog: constructing the
// store and waiting on it is equivalent to passing a completion callback.
func (s *Store) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateFailed:
		err := s.connErr
		s.mu.Unlock()
		return err
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	}
	s.waiters++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.waiters--
		s.mu.Unlock()
	}()

	select {
	case <-s.ready:
		s.mu.Lock()
		err := s.connErr
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current lifecycle state. Diagnostics only; by the time
// the caller inspects it the state may already have moved on.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnConnected registers a persistent listener for the connected event.
// A listener registered after the store became ready fires immediately.
func (s *Store) OnConnected(fn func()) { s.events.onConnected(fn) }

// OnceConnected registers a one-shot listener for the connected event.
func (s *Store) OnceConnected(fn func()) { s.events.onceConnected(fn) }

// OnError registers a persistent listener receiving every store failure.
func (s *Store) OnError(fn func(error)) { s.events.onError(fn) }

// OnceError registers a one-shot listener for the next store failure.
func (s *Store) OnceError(fn func(error)) { s.events.onceError(fn) }

// Get returns the session payload stored for id, or nil when no session
// exists. A stored session whose expiry has passed is deleted on the spot
// and reported as missing; the TTL index is only a backstop for sessions
// that are never re-read.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	value, err := s.execute(ctx, s.getOp(id))
	if err != nil {
		return nil, s.deliver("finding", id, nil, err)
	}
	if value == nil {
		return nil, nil
	}
	return value.(Session), nil
}

// Set persists the session payload under id, overwriting any prior content.
// Concurrent writers race with last-write-wins semantics at the database.
func (s *Store) Set(ctx context.Context, id string, session Session) error {
	rec, err := newRecord(id, session, s.cfg.TTL, time.Now())
	if err != nil {
		return s.deliver("setting", id, session, err)
	}

	_, err = s.execute(ctx, func(ctx context.Context, coll Collection) (any, error) {
		if err := coll.Upsert(ctx, rec); err != nil {
			return nil, &OperationError{Op: "setting", ID: id, Payload: session, Err: err}
		}
		return nil, nil
	})
	if err != nil {
		return s.deliver("setting", id, session, err)
	}
	return nil
}

// Destroy removes the session stored under id. Absence of a match is not an
// error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	_, err := s.execute(ctx, func(ctx context.Context, coll Collection) (any, error) {
		if err := coll.DeleteOne(ctx, id); err != nil {
			return nil, &OperationError{Op: "destroying", ID: id, Err: err}
		}
		return nil, nil
	})
	if err != nil {
		return s.deliver("destroying", id, nil, err)
	}
	return nil
}

// Clear removes every session in the collection unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.execute(ctx, func(ctx context.Context, coll Collection) (any, error) {
		if err := coll.DeleteMany(ctx); err != nil {
			return nil, &OperationError{Op: "clearing", Err: err}
		}
		return nil, nil
	})
	if err != nil {
		return s.deliver("clearing", "", nil, err)
	}
	return nil
}

// All returns every stored session record. Diagnostics only; it is not part
// of the middleware contract.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	value, err := s.execute(ctx, func(ctx context.Context, coll Collection) (any, error) {
		records, err := coll.FindAll(ctx)
		if err != nil {
			return nil, &OperationError{Op: "listing", Err: err}
		}
		return records, nil
	})
	if err != nil {
		return nil, s.deliver("listing", "", nil, err)
	}
	return value.([]Record), nil
}

// Close releases the database connection. Operations issued afterwards fail
// with ErrClosed; operations still buffered fail the same way.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	client := s.client
	s.state = StateClosed
	s.client = nil
	s.coll = nil
	s.connErr = ErrClosed
	pending := s.buffer.drain()
	s.mu.Unlock()

	s.closeReady.Do(func() { close(s.ready) })

	for _, op := range pending {
		op.done <- opResult{err: ErrClosed}
	}

	if client != nil {
		return client.Disconnect(ctx)
	}
	return nil
}

// getOp captures a lookup for id: a point read with lazy expiry on hit.
func (s *Store) getOp(id string) opFunc {
	return func(ctx context.Context, coll Collection) (any, error) {
		rec, err := coll.FindOne(ctx, id)
		if err != nil {
			return nil, &OperationError{Op: "finding", ID: id, Err: err}
		}
		if rec == nil {
			return nil, nil
		}
		if rec.expired(time.Now()) {
			if err := coll.DeleteOne(ctx, id); err != nil {
				return nil, &OperationError{Op: "destroying", ID: id, Err: err}
			}
			return nil, nil
		}
		return rec.Session, nil
	}
}

// execute routes an operation according to the lifecycle state: run directly
// when ready, fail when the connection is gone, and buffer while connecting.
// A buffered caller blocks until its operation is replayed, preserving the
// synchronous call contract.
func (s *Store) execute(ctx context.Context, op opFunc) (any, error) {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		coll := s.coll
		s.mu.Unlock()
		return op(ctx, coll)
	case StateFailed:
		err := s.connErr
		s.mu.Unlock()
		return nil, err
	case StateClosed:
		s.mu.Unlock()
		return nil, ErrClosed
	}

	done := make(chan opResult, 1)
	s.buffer.enqueue(pendingOp{ctx: ctx, run: op, done: done})
	s.mu.Unlock()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		// The operation may still be replayed later; only the caller's wait
		// is abandoned here.
		return nil, ctx.Err()
	}
}

// deliver applies the error-delivery contract to a failed operation: the
// caller receives the wrapped error, and registered error listeners receive
// it independently. Operation calls always have a caller, so the panic
// branch of the plan is unreachable here.
func (s *Store) deliver(op, id string, payload any, err error) error {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		err = &OperationError{Op: op, ID: id, Payload: payload, Err: err}
	}

	s.logger.ErrorContext(context.Background(), "session store operation failed",
		slog.String("operation", op),
		slog.String("session_id", id),
		slog.Any("error", err),
	)

	plan := deliveryPlan(true, s.events.hasErrorListeners())
	if plan.has(deliverEmit) {
		s.events.fireError(err)
	}
	return err
}
