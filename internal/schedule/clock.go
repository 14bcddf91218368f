package schedule

import "time"

// Clock abstracts time.Now so the scheduler and orchestrator can be driven by
// a fake clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func NewSystemClock() Clock { return systemClock{} }
