package events

// EmitFunc delivers one event.
type EmitFunc func(Event)

// Emitter is bound to one Queue and may be called from any goroutine. Events
// emitted from a single goroutine arrive in emission order.
type Emitter struct {
	queue *Queue
}

// NewEmitter binds an emitter to q.
func NewEmitter(q *Queue) *Emitter {
	return &Emitter{queue: q}
}

// Emit enqueues ev and returns immediately.
func (e *Emitter) Emit(ev Event) {
	if e == nil || e.queue == nil {
		return
	}
	e.queue.Put(ev)
}

// Func adapts the emitter to an EmitFunc.
func (e *Emitter) Func() EmitFunc {
	return e.Emit
}
