package lifecycle

import (
	"sync/atomic"
	"time"
)

// Lifecycle tracks the gateway's run state: when the process came up and
// whether it is draining ahead of shutdown. The readiness endpoint consults
// it; the signal handler is the only writer.
type Lifecycle struct {
	started  time.Time
	draining atomic.Bool
}

func New() *Lifecycle {
	return &Lifecycle{started: time.Now()}
}

func (l *Lifecycle) SetDraining(draining bool) {
	if l == nil {
		return
	}
	l.draining.Store(draining)
}

func (l *Lifecycle) IsDraining() bool {
	if l == nil {
		return false
	}
	return l.draining.Load()
}

// Uptime reports how long the process has been serving. A zero-value
// Lifecycle reports zero.
func (l *Lifecycle) Uptime() time.Duration {
	if l == nil || l.started.IsZero() {
		return 0
	}
	return time.Since(l.started)
}
