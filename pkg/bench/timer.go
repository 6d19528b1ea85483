package bench

import (
	"golang.org/x/sys/unix"
)

// Timer measures one operation at a time. It reads the process-CPU
// clock by default so frequency scaling, power states and context
// switches do not distort the numbers.
type Timer struct {
	clockID int32
	start   unix.Timespec
	end     unix.Timespec
}

func NewTimer() *Timer {
	return &Timer{clockID: unix.CLOCK_PROCESS_CPUTIME_ID}
}

// NewWallTimer reads the monotonic wall clock instead.
func NewWallTimer() *Timer {
	return &Timer{clockID: unix.CLOCK_MONOTONIC}
}

func (t *Timer) Start() {
	_ = unix.ClockGettime(t.clockID, &t.start)
}

func (t *Timer) Stop() {
	_ = unix.ClockGettime(t.clockID, &t.end)
}

func (t *Timer) ElapsedSeconds() float64 {
	return float64(t.end.Sec-t.start.Sec) +
		float64(t.end.Nsec-t.start.Nsec)/1e9
}

func (t *Timer) ElapsedMs() float64 {
	return float64(t.end.Sec-t.start.Sec)*1e3 +
		float64(t.end.Nsec-t.start.Nsec)/1e6
}
