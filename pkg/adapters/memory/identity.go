package memory

import (
	"sync"

	"github.com/aretw0/silt/pkg/core"
)

// Identity is a manually driven identity provider. It starts signed out.
type Identity struct {
	mu        sync.Mutex
	user      core.User
	signedIn  bool
	watchers  map[int]func(core.User, bool)
	nextWatch int
}

// NewIdentity creates a signed-out provider.
func NewIdentity() *Identity {
	return &Identity{watchers: make(map[int]func(core.User, bool))}
}

// Current returns the signed-in user, if any.
func (i *Identity) Current() (core.User, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.user, i.signedIn
}

// SignIn sets the current user and notifies watchers.
func (i *Identity) SignIn(uid string) {
	i.set(core.User{UID: uid}, true)
}

// SignOut clears the current user and notifies watchers.
func (i *Identity) SignOut() {
	i.set(core.User{}, false)
}

func (i *Identity) set(u core.User, ok bool) {
	i.mu.Lock()
	if i.signedIn == ok && i.user == u {
		i.mu.Unlock()
		return
	}
	i.user = u
	i.signedIn = ok
	var notify []func(core.User, bool)
	for _, fn := range i.watchers {
		notify = append(notify, fn)
	}
	i.mu.Unlock()

	for _, fn := range notify {
		fn(u, ok)
	}
}

// OnChange registers fn for sign-in and sign-out events.
func (i *Identity) OnChange(fn func(u core.User, ok bool)) core.Unsubscribe {
	i.mu.Lock()
	defer i.mu.Unlock()

	id := i.nextWatch
	i.nextWatch++
	i.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.watchers, id)
			i.mu.Unlock()
		})
	}
}
