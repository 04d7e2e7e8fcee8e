// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spike is the overall repository for the spike discrete-time
spiking neural network simulation engine.

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* spike: the core engine -- neuron model state machines, plastic
connections, the reusable connection pool, and the network container
that schedules the four-phase update cycle and manages dense vs. sparse
connection storage.

* chans: Hodgkin-Huxley ion channel conductances and voltage-dependent
gating rate functions.

* f16: the half-precision (16 bit) floating point weight encoding used
for compressed connection storage.

* examples: these compile into runnable programs -- examples/bench is a
scaling benchmark for different network sizes.
*/
package spike
