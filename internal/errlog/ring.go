package errlog

import (
	"sync"
	"time"
)

const DefaultCapacity = 100

type Entry struct {
	Time  time.Time `json:"time"`
	Error *Error    `json:"error"`
}

// Ring keeps the most recent errors up to a fixed capacity.
// Safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	buf   []Entry
	start int
	n     int
	now   func() time.Time
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]Entry, capacity), now: time.Now}
}

// Record stores err, evicting the oldest entry when full. nil is ignored.
func (r *Ring) Record(err error) {
	e := As(err)
	if e == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := Entry{Time: r.now().UTC(), Error: e}
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = entry
		r.n++
		return
	}
	r.buf[r.start] = entry
	r.start = (r.start + 1) % len(r.buf)
}

// Entries returns a copy, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func (r *Ring) Cap() int { return len(r.buf) }

func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.buf {
		r.buf[i] = Entry{}
	}
	r.start = 0
	r.n = 0
}
