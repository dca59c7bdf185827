package main

import (
	"sync"

	"snake-matrix/game/types"
)

// TurnLatch holds the last turn pressed since the loop last looked. Key
// handlers write it from their own goroutine; the loop takes it once per tick.
type TurnLatch struct {
	mutex sync.Mutex
	turn  types.Direction
}

// Set latches d, replacing any turn not yet taken. None is ignored.
func (l *TurnLatch) Set(d types.Direction) {
	if d == types.None {
		return
	}
	l.mutex.Lock()
	l.turn = d
	l.mutex.Unlock()
}

// Take returns the latched turn and clears it.
func (l *TurnLatch) Take() types.Direction {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	d := l.turn
	l.turn = types.None
	return d
}

// Turn lets the latch drive a Runner.
func (l *TurnLatch) Turn() types.Direction {
	return l.Take()
}
