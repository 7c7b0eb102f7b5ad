package debate

import (
	"sync"
	"time"

	"github.com/rostra-dev/rostra/internal/logging"
)

// PollerConfig tunes the reply poller's schedule and budget.
type PollerConfig struct {
	// MaxAttempts is the total poll budget before the poller gives up.
	MaxAttempts int
	// FixedAttempts is how many polls run at InitialInterval before
	// backoff kicks in.
	FixedAttempts int
	// InitialInterval is the delay before the first poll and between the
	// first FixedAttempts polls.
	InitialInterval time.Duration
	// BackoffFactor multiplies the interval after each poll past
	// FixedAttempts.
	BackoffFactor float64
	// MaxInterval caps the backed-off interval.
	MaxInterval time.Duration
}

// DefaultPollerConfig returns the standard schedule: one second for the
// first five attempts, then 1.2x backoff capped at three seconds, thirty
// attempts total.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		MaxAttempts:     30,
		FixedAttempts:   5,
		InitialInterval: time.Second,
		BackoffFactor:   1.2,
		MaxInterval:     3 * time.Second,
	}
}

// PollFunc fetches the current server transcript for the open debate.
type PollFunc func() ([]Message, error)

// Poller watches the server transcript for a new assistant reply after a
// send. It fires at a fixed cadence, then backs off, and gives up after a
// bounded number of attempts. A Poller runs at most one watch; the machine
// creates a fresh one per send.
type Poller struct {
	mu      sync.Mutex
	clock   Clock
	cfg     PollerConfig
	log     *logging.Logger
	timer   Timer
	stopped bool
	started bool
}

// NewPoller returns an idle poller. log may be nil.
func NewPoller(clock Clock, cfg PollerConfig, log *logging.Logger) *Poller {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Poller{clock: clock, cfg: cfg, log: log}
}

// Start begins polling. baseline is the real-message count before the
// awaited reply; a fetched transcript longer than baseline is inspected
// for the newest assistant message. Exactly one of onReply or onExhausted
// fires unless Stop is called first. onReply receives the extracted reply
// and the full server snapshot it came from.
func (p *Poller) Start(baseline int, fetch PollFunc, onReply func(Message, []Message), onExhausted func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	p.scheduleLocked(1, baseline, fetch, onReply, onExhausted)
}

// Stop cancels the watch. Callbacks scheduled but not yet fired are
// suppressed. Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Poller) scheduleLocked(attempt, baseline int, fetch PollFunc, onReply func(Message, []Message), onExhausted func()) {
	p.timer = p.clock.AfterFunc(p.intervalFor(attempt), func() {
		p.poll(attempt, baseline, fetch, onReply, onExhausted)
	})
}

func (p *Poller) poll(attempt, baseline int, fetch PollFunc, onReply func(Message, []Message), onExhausted func()) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	server, err := fetch()
	if err != nil {
		p.log.Debug("poll attempt failed", "attempt", attempt, "error", err)
	} else if len(server) > baseline {
		if reply, ok := newestAssistant(server); ok {
			p.mu.Lock()
			if p.stopped {
				p.mu.Unlock()
				return
			}
			p.stopped = true
			p.timer = nil
			p.mu.Unlock()
			onReply(reply, server)
			return
		}
		p.log.Debug("transcript grew without assistant reply", "attempt", attempt, "server_len", len(server))
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	if attempt >= p.cfg.MaxAttempts {
		p.stopped = true
		p.timer = nil
		p.mu.Unlock()
		p.log.Warn("poll budget exhausted", "attempts", attempt)
		onExhausted()
		return
	}
	p.scheduleLocked(attempt+1, baseline, fetch, onReply, onExhausted)
	p.mu.Unlock()
}

// intervalFor returns the delay before the given 1-based attempt.
func (p *Poller) intervalFor(attempt int) time.Duration {
	if attempt <= p.cfg.FixedAttempts {
		return p.cfg.InitialInterval
	}
	interval := float64(p.cfg.InitialInterval)
	for i := p.cfg.FixedAttempts; i < attempt; i++ {
		interval *= p.cfg.BackoffFactor
	}
	if capped := float64(p.cfg.MaxInterval); interval > capped {
		interval = capped
	}
	return time.Duration(interval)
}

// newestAssistant returns the last assistant message in server order.
func newestAssistant(server []Message) (Message, bool) {
	for i := len(server) - 1; i >= 0; i-- {
		if server[i].Role == RoleAssistant {
			return server[i], true
		}
	}
	return Message{}, false
}
