package overlay

import "errors"

type KeyType int

const (
	KeyRune KeyType = iota
	KeyBackspace
	KeyPaste
)

type KeyEvent struct {
	Type KeyType
	Rune rune   // KeyRune
	Text string // KeyPaste
}

type KeyHandler func(KeyEvent) error

// KeyRouter fans keyboard events out to subscribers in subscription
// order. The host owns one router; sessions subscribe to it.
type KeyRouter struct {
	next uint64
	subs []keySub
}

type keySub struct {
	id uint64
	fn KeyHandler
}

func NewKeyRouter() *KeyRouter { return &KeyRouter{} }

// Subscription is released with Close. Close is idempotent.
type Subscription struct {
	router *KeyRouter
	id     uint64
}

func (r *KeyRouter) Subscribe(fn KeyHandler) *Subscription {
	r.next++
	r.subs = append(r.subs, keySub{id: r.next, fn: fn})
	return &Subscription{router: r, id: r.next}
}

func (r *KeyRouter) Len() int { return len(r.subs) }

func (r *KeyRouter) Dispatch(ev KeyEvent) error {
	var errs []error
	for _, s := range append([]keySub(nil), r.subs...) {
		if err := s.fn(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Subscription) Close() {
	if s == nil || s.router == nil {
		return
	}
	r := s.router
	for i, sub := range r.subs {
		if sub.id == s.id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			break
		}
	}
	s.router = nil
}
