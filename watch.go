package typedprefs

import "context"

// Change reports a stored value that was written or removed through the registry.
type Change struct {
	Key string
	// Cleared is set when the stored value was removed and reads fall back to the default.
	Cleared bool
}

// Subscribe calls fn after every successful Set, Clear and ClearAll on r, on the
// goroutine that made the change. Writes made to the store behind the registry's
// back are not observed. The returned function removes the subscription.
func (r *Registry) Subscribe(fn func(Change)) (unsubscribe func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	if r.subs == nil {
		r.subs = make(map[uint64]func(Change))
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn

	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Registry) notify(c Change) {
	r.subMu.Lock()
	fns := make([]func(Change), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Watch streams the value of p after each change until ctx is done, then closes
// the channel. Changes that arrive while the receiver is busy are coalesced, so
// the receiver always sees the latest value. A value that cannot be read is
// logged and skipped.
func (p *Pref[T]) Watch(ctx context.Context) <-chan T {
	out := make(chan T)
	changed := make(chan struct{}, 1)

	unsubscribe := p.d.registry.Subscribe(func(c Change) {
		if c.Key != p.d.key {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}

			v, err := p.Get(ctx)
			if err != nil {
				p.d.registry.logger.Warn("Skipping unreadable preference change", "key", p.d.key, "error", err)
				continue
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
