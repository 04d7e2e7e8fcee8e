// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

// spike.Time contains all the timing state and parameter information
// for running a network.
type Time struct {
	Time       float32 `desc:"accumulated amount of simulation time the network has been running"`
	Cycle      int     `desc:"cycle counter: number of iterations of updating since the last Reset"`
	CycleTot   int     `desc:"total cycle count -- increments continuously from whenever it was last reset"`
	TimePerCyc float32 `def:"0.1" desc:"amount of simulation time per cycle -- the integration step dt"`
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.TimePerCyc = 0.1
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.Time = 0
	tm.Cycle = 0
	tm.CycleTot = 0
	if tm.TimePerCyc == 0 {
		tm.TimePerCyc = 0.1
	}
}

// CycleInc increments at the cycle level
func (tm *Time) CycleInc() {
	tm.Cycle++
	tm.CycleTot++
	tm.Time += tm.TimePerCyc
}
