package effect

// Sink accepts effects. Script-facing handles only ever see this side.
type Sink interface {
	Push(Effect)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Effect)

func (f SinkFunc) Push(e Effect) { f(e) }

// Queue is a FIFO buffer of pending effects.
type Queue struct {
	items []Effect
}

// Push appends e to the back of the queue.
func (q *Queue) Push(e Effect) {
	q.items = append(q.items, e)
}

// PushAll appends effects in order.
func (q *Queue) PushAll(es []Effect) {
	q.items = append(q.items, es...)
}

// Pop removes and returns the front of the queue.
func (q *Queue) Pop() (Effect, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return e, true
}

func (q *Queue) Len() int { return len(q.items) }

// Buffer collects effects so a producer's output can be committed as a unit.
type Buffer struct {
	Effects []Effect
}

func (b *Buffer) Push(e Effect) { b.Effects = append(b.Effects, e) }
