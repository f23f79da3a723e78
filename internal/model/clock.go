package model

import (
	"sync"
	"time"
)

// Clock tracks one side's remaining thinking time. Running out is reported
// but has no effect on the board; the rules engine knows nothing of time.
type Clock struct {
	mu          sync.Mutex
	timeLeft    time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
	now         func() time.Time
}

type ClientClock struct {
	TimeLeft int  `json:"timeLeft"` // tenths of a second
	Running  bool `json:"running"`
	Flagged  bool `json:"flagged"`
}

func NewClock(initialTime time.Duration) *Clock {
	return &Clock{
		timeLeft: initialTime,
		now:      time.Now,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.timeLeft -= c.now().Sub(c.lastStarted)
		c.isRunning = false
	}
}

func (c *Clock) GetTimeLeft() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.timeLeft - c.now().Sub(c.lastStarted)
	}
	return c.timeLeft
}

func (c *Clock) Client() ClientClock {
	left := c.GetTimeLeft()
	c.mu.Lock()
	running := c.isRunning
	c.mu.Unlock()
	return ClientClock{
		TimeLeft: int(left.Milliseconds() / 100),
		Running:  running,
		Flagged:  left <= 0,
	}
}
