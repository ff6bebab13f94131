// Package event provides a small typed publish/subscribe primitive.
//
// Listeners are invoked synchronously in registration order. A listener may
// add or remove listeners, itself included, while an event is being emitted:
// the current emission works on a snapshot and skips anything removed in
// the meantime.
package event

import "golang.org/x/exp/slices"

// Handle identifies a registered listener.
type Handle uint64

type listener[P any] struct {
	handle  Handle
	fn      func(P)
	once    bool
	removed bool
}

// Emitter dispatches payloads of type P to listeners keyed by K.
// The zero value is ready to use. It is not safe for concurrent use.
type Emitter[K comparable, P any] struct {
	last      Handle
	listeners map[K][]*listener[P]
	kinds     map[Handle]K
}

// On registers fn for every emission of kind.
func (e *Emitter[K, P]) On(kind K, fn func(P)) Handle {
	return e.add(kind, fn, false)
}

// Once registers fn for the next emission of kind only.
func (e *Emitter[K, P]) Once(kind K, fn func(P)) Handle {
	return e.add(kind, fn, true)
}

func (e *Emitter[K, P]) add(kind K, fn func(P), once bool) Handle {
	if e.listeners == nil {
		e.listeners = make(map[K][]*listener[P])
		e.kinds = make(map[Handle]K)
	}

	e.last++
	l := &listener[P]{handle: e.last, fn: fn, once: once}
	e.listeners[kind] = append(e.listeners[kind], l)
	e.kinds[l.handle] = kind
	return l.handle
}

// Off removes the listener behind h. It reports whether anything was removed.
func (e *Emitter[K, P]) Off(h Handle) bool {
	kind, ok := e.kinds[h]
	if !ok {
		return false
	}
	delete(e.kinds, h)

	list := e.listeners[kind]
	i := slices.IndexFunc(list, func(l *listener[P]) bool { return l.handle == h })
	if i < 0 {
		return false
	}

	list[i].removed = true
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(e.listeners, kind)
	} else {
		e.listeners[kind] = list
	}
	return true
}

// Emit calls every listener registered for kind with payload.
func (e *Emitter[K, P]) Emit(kind K, payload P) {
	list := e.listeners[kind]
	if len(list) == 0 {
		return
	}

	for _, l := range slices.Clone(list) {
		if l.removed {
			continue
		}
		if l.once {
			e.Off(l.handle)
		}
		l.fn(payload)
	}
}

// Count returns the number of listeners registered for kind.
func (e *Emitter[K, P]) Count(kind K) int {
	return len(e.listeners[kind])
}

// Clear removes every listener.
func (e *Emitter[K, P]) Clear() {
	for _, list := range e.listeners {
		for _, l := range list {
			l.removed = true
		}
	}
	e.listeners = nil
	e.kinds = nil
}
