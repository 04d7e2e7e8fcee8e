// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/ints"
	"github.com/goki/ki/kit"
)

// NeuronType is a registered, named neuron configuration: a model
// variant plus the full parameter set used for every neuron created
// from it.
type NeuronType struct {
	Name  string       `desc:"registry name, also the id prefix for neurons of this type"`
	Model NeuronModel  `desc:"model variant"`
	Prms  NeuronParams `desc:"parameters applied to every neuron created from this type"`
}

// Population is a named group of neurons of one registered type.
type Population struct {
	Name string   `desc:"population name"`
	Type string   `desc:"registered neuron type of the members"`
	IDs  []string `desc:"member neuron ids, in creation order"`
}

// spike.Network is a dynamic network of heterogeneous neurons: typed
// neuron instances addressed by stable string ids, directed weighted
// connections in dense or sparse storage, and named populations for
// bulk wiring and stimulation.
type Network struct {
	Nm       string             `desc:"overall name of network -- helps discriminate if there are multiple"`
	MetaData map[string]string  `desc:"optional metadata saved in network weights files -- e.g., training provenance"`
	WtsFile  string             `desc:"filename of last weights file loaded or saved"`

	Neurons map[string]Neuron      `view:"-" desc:"all neurons by id"`
	Order   []string               `view:"-" desc:"neuron ids in creation order -- the deterministic iteration order"`
	NameMap map[string]string      `view:"-" desc:"alias to neuron id -- aliases must be unique"`
	Types   map[string]*NeuronType `view:"-" desc:"registered neuron types by name"`
	TypeCtr map[string]int         `view:"-" desc:"per-type counter for id assignment"`
	ByType  map[string][]string    `view:"-" desc:"neuron ids by registered type, in creation order"`
	Pops    map[string]*Population `view:"-" desc:"populations by name"`

	Conns       ConnStore       `desc:"all connections, in dense or sparse storage"`
	Pool        *ConnPool       `view:"-" desc:"connection object pool for wiring / pruning churn"`
	WtInit      erand.RndParams `view:"inline" desc:"initial weight distribution for bulk random wiring"`
	HalfWts     bool            `inactive:"+" desc:"if true, new connections store weights half-precision"`
	SparsityThr float32         `def:"0.1" desc:"weights at or below this magnitude are not worth storing -- sparse bulk wiring skips them"`

	FunTimes map[string]*timer.Time `view:"-" desc:"timers for each major function (step of processing)"`
	Mu       sync.Mutex             `view:"-" desc:"protects shared structures during parallel wiring"`
}

var KiT_Network = kit.Types.AddType(&Network{}, nil)

// NewNetwork returns a new network with the given name, empty type
// registry, dense connection storage, and a default connection pool.
func NewNetwork(name string) *Network {
	nt := &Network{Nm: name}
	nt.Defaults()
	return nt
}

// Defaults initializes all the maps and sets default wiring params.
func (nt *Network) Defaults() {
	nt.Neurons = make(map[string]Neuron)
	nt.NameMap = make(map[string]string)
	nt.Types = make(map[string]*NeuronType)
	nt.TypeCtr = make(map[string]int)
	nt.ByType = make(map[string][]string)
	nt.Pops = make(map[string]*Population)
	nt.Conns.Init(Dense)
	nt.Pool = NewConnPool(0)
	nt.WtInit.Dist = erand.Uniform
	nt.WtInit.Mean = 0.5
	nt.WtInit.Var = 0.25
	nt.SparsityThr = 0.1
	nt.FunTimes = make(map[string]*timer.Time)
	nt.MetaData = make(map[string]string)
}

func (nt *Network) Name() string  { return nt.Nm }
func (nt *Network) Label() string { return nt.Nm }

// NNeurons returns the number of neurons in the network.
func (nt *Network) NNeurons() int { return len(nt.Order) }

// NConns returns the number of connections in the network.
func (nt *Network) NConns() int { return nt.Conns.Len() }

//////////////////////////////////////////////////////////////////////////////////////
//  Type registry

// RegisterNeuronType registers a named neuron configuration.  If prms
// is nil, the model's defaults are used.  Registering an existing name
// replaces it, affecting future creations only.
func (nt *Network) RegisterNeuronType(name string, mdl NeuronModel, prms *NeuronParams) error {
	if name == "" {
		err := fmt.Errorf("RegisterNeuronType: type name must not be empty in Network: %v", nt.Nm)
		log.Println(err)
		return err
	}
	np := ModelDefaults(mdl)
	if prms != nil {
		np = *prms
	}
	if err := np.Validate(mdl); err != nil {
		log.Println(err)
		return err
	}
	nt.Types[name] = &NeuronType{Name: name, Model: mdl, Prms: np}
	return nil
}

// RegisterStdTypes registers all model variants under their standard
// names with default parameters.
func (nt *Network) RegisterStdTypes() {
	for mdl := LIF; mdl < NeuronModelN; mdl++ {
		nt.RegisterNeuronType(mdl.String(), mdl, nil)
	}
}

// IsNeuronTypeRegistered reports whether the given type name is
// registered.
func (nt *Network) IsNeuronTypeRegistered(name string) bool {
	_, ok := nt.Types[name]
	return ok
}

//////////////////////////////////////////////////////////////////////////////////////
//  Neuron creation and lookup

// CreateNeuron creates one neuron of the given registered type and
// returns it.  The id is the type name plus a per-type counter, and is
// stable for the life of the network.
func (nt *Network) CreateNeuron(typeName string) (Neuron, error) {
	tp, ok := nt.Types[typeName]
	if !ok {
		err := fmt.Errorf("CreateNeuron: type named: %v not registered in Network: %v", typeName, nt.Nm)
		log.Println(err)
		return nil, err
	}
	nrn, err := NewNeuron(tp.Model, &tp.Prms)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	ctr := nt.TypeCtr[typeName]
	nt.TypeCtr[typeName] = ctr + 1
	nb := nrn.AsBase()
	nb.ID = fmt.Sprintf("%s_%d", typeName, ctr)
	nb.Typ = typeName
	nt.Neurons[nb.ID] = nrn
	nt.Order = append(nt.Order, nb.ID)
	nt.ByType[typeName] = append(nt.ByType[typeName], nb.ID)
	return nrn, nil
}

// NeuronByID returns the neuron with the given id (nil if not found).
func (nt *Network) NeuronByID(id string) Neuron {
	return nt.Neurons[id]
}

// NeuronByIDTry returns the neuron with the given id -- emits a log
// error message if not found.
func (nt *Network) NeuronByIDTry(id string) (Neuron, error) {
	nrn := nt.Neurons[id]
	if nrn == nil {
		err := fmt.Errorf("Neuron id: %v not found in Network: %v", id, nt.Nm)
		log.Println(err)
		return nil, err
	}
	return nrn, nil
}

// NameNeuron assigns a unique human-readable alias to the neuron with
// the given id.
func (nt *Network) NameNeuron(id, name string) error {
	nrn, err := nt.NeuronByIDTry(id)
	if err != nil {
		return err
	}
	if oid, ok := nt.NameMap[name]; ok && oid != id {
		err := fmt.Errorf("NameNeuron: name: %v already in use for neuron: %v in Network: %v", name, oid, nt.Nm)
		log.Println(err)
		return err
	}
	nb := nrn.AsBase()
	if nb.Nm != "" {
		delete(nt.NameMap, nb.Nm)
	}
	nb.Nm = name
	nt.NameMap[name] = id
	return nil
}

// NeuronByName returns the neuron with the given alias (nil if not
// found).
func (nt *Network) NeuronByName(name string) Neuron {
	id, ok := nt.NameMap[name]
	if !ok {
		return nil
	}
	return nt.Neurons[id]
}

//////////////////////////////////////////////////////////////////////////////////////
//  Populations

// CreatePopulation creates n neurons of the given registered type
// under the given population name.
func (nt *Network) CreatePopulation(name, typeName string, n int) (*Population, error) {
	if _, ok := nt.Pops[name]; ok {
		err := fmt.Errorf("CreatePopulation: population named: %v already exists in Network: %v", name, nt.Nm)
		log.Println(err)
		return nil, err
	}
	if !nt.IsNeuronTypeRegistered(typeName) {
		err := fmt.Errorf("CreatePopulation: type named: %v not registered in Network: %v", typeName, nt.Nm)
		log.Println(err)
		return nil, err
	}
	pop := &Population{Name: name, Type: typeName}
	pop.IDs = make([]string, 0, n)
	for i := 0; i < n; i++ {
		nrn, err := nt.CreateNeuron(typeName)
		if err != nil {
			return nil, err
		}
		pop.IDs = append(pop.IDs, nrn.AsBase().ID)
	}
	nt.Pops[name] = pop
	return pop, nil
}

// PopByName returns the population with the given name (nil if not
// found).
func (nt *Network) PopByName(name string) *Population {
	return nt.Pops[name]
}

// PopByNameTry returns the population with the given name -- emits a
// log error message if not found.
func (nt *Network) PopByNameTry(name string) (*Population, error) {
	pop := nt.Pops[name]
	if pop == nil {
		err := fmt.Errorf("Population named: %v not found in Network: %v", name, nt.Nm)
		log.Println(err)
		return nil, err
	}
	return pop, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Stimulation and readout

// Stimulate adds the given input current to the neuron with the given
// id, to be consumed on the next cycle's update.
func (nt *Network) Stimulate(id string, cur float32) error {
	nrn, err := nt.NeuronByIDTry(id)
	if err != nil {
		return err
	}
	nrn.AddInput(cur)
	return nil
}

// StimulatePopulation adds the given input current to every member of
// the named population.
func (nt *Network) StimulatePopulation(name string, cur float32) error {
	pop, err := nt.PopByNameTry(name)
	if err != nil {
		return err
	}
	for _, id := range pop.IDs {
		nt.Neurons[id].AddInput(cur)
	}
	return nil
}

// ApplyInputs applies the tensor values as input currents to the named
// population, member i receiving value i.  Extra values are ignored;
// extra members get nothing.
func (nt *Network) ApplyInputs(name string, in *etensor.Float32) error {
	pop, err := nt.PopByNameTry(name)
	if err != nil {
		return err
	}
	n := ints.MinInt(len(pop.IDs), len(in.Values))
	for i := 0; i < n; i++ {
		nt.Neurons[pop.IDs[i]].AddInput(in.Values[i])
	}
	return nil
}

// OutputActivations returns the current potentials of the named
// population, in member order.
func (nt *Network) OutputActivations(name string) ([]float32, error) {
	pop, err := nt.PopByNameTry(name)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(pop.IDs))
	for i, id := range pop.IDs {
		out[i] = nt.Neurons[id].Potential()
	}
	return out, nil
}

// MostActiveNeuron returns the neuron with the highest current
// potential among those whose id starts with the given prefix (empty
// prefix scans all).  Earliest-created wins ties; nil if none match.
func (nt *Network) MostActiveNeuron(prefix string) Neuron {
	var best Neuron
	bestVm := float32(0)
	for _, id := range nt.Order {
		if prefix != "" && !strings.HasPrefix(id, prefix) {
			continue
		}
		nrn := nt.Neurons[id]
		if best == nil || nrn.Potential() > bestVm {
			best = nrn
			bestVm = nrn.Potential()
		}
	}
	return best
}

//////////////////////////////////////////////////////////////////////////////////////
//  Running

// Cycle runs one full network update: propagate spikes from the
// previous cycle, clear fired flags, update every neuron, then apply
// plasticity.  The phases are strictly ordered, so a spike emitted
// this cycle is seen by downstream neurons on the next one.
func (nt *Network) Cycle(tm *Time) {
	dt := tm.TimePerCyc
	nt.PropagateSpikes()
	nt.ClearFired()
	nt.UpdateNeurons(dt)
	nt.ApplyPlasticity(tm.Time, dt)
	tm.CycleInc()
}

// CycleN runs n full network cycles.
func (nt *Network) CycleN(tm *Time, n int) {
	for i := 0; i < n; i++ {
		nt.Cycle(tm)
	}
}

// PropagateSpikes delivers the weighted spike of every source that
// fired on the previous cycle to its destinations' pending input.
func (nt *Network) PropagateSpikes() {
	nt.FunTimerStart("Propagate")
	nt.Conns.Do(func(cn *Connection) bool {
		src := nt.Neurons[cn.Src]
		dst := nt.Neurons[cn.Dst]
		if src != nil && dst != nil {
			cn.Propagate(src, dst)
		}
		return true
	})
	nt.FunTimerStop("Propagate")
}

// ClearFired clears every neuron's fired flag ahead of this cycle's
// updates.
func (nt *Network) ClearFired() {
	for _, id := range nt.Order {
		nt.Neurons[id].ClearFired()
	}
}

// UpdateNeurons advances every neuron by one step.  A panic in one
// neuron's update is recovered and logged, leaving the rest of the
// network unaffected.
func (nt *Network) UpdateNeurons(dt float32) {
	nt.FunTimerStart("Update")
	for _, id := range nt.Order {
		nt.updateOne(nt.Neurons[id], dt)
	}
	nt.FunTimerStop("Update")
}

func (nt *Network) updateOne(nrn Neuron, dt float32) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Network: %v neuron: %v update panic: %v\n", nt.Nm, nrn.AsBase().ID, r)
		}
	}()
	nrn.Update(dt)
}

// ApplyPlasticity applies each connection's learning rule from the
// endpoint spike activity of this cycle.
func (nt *Network) ApplyPlasticity(tm, dt float32) {
	nt.FunTimerStart("Plasticity")
	nt.Conns.Do(func(cn *Connection) bool {
		src := nt.Neurons[cn.Src]
		dst := nt.Neurons[cn.Dst]
		if src != nil && dst != nil {
			cn.ApplyPlasticity(src.AsBase(), dst.AsBase(), tm, dt)
		}
		return true
	})
	nt.FunTimerStop("Plasticity")
}

// ProcessInputCycles is the number of cycles ProcessInput runs after
// stimulation.
const ProcessInputCycles = 10

// ProcessInput resets all neuron state, applies the input values to
// the input population, runs ProcessInputCycles cycles, and returns
// the output population's potentials.
func (nt *Network) ProcessInput(in, out string, vals []float32, tm *Time) ([]float32, error) {
	pin, err := nt.PopByNameTry(in)
	if err != nil {
		return nil, err
	}
	if _, err = nt.PopByNameTry(out); err != nil {
		return nil, err
	}
	nt.ResetState(tm)
	n := ints.MinInt(len(pin.IDs), len(vals))
	for i := 0; i < n; i++ {
		nt.Neurons[pin.IDs[i]].AddInput(vals[i])
	}
	nt.CycleN(tm, ProcessInputCycles)
	return nt.OutputActivations(out)
}

// ResetState resets every neuron to construction-time defaults and
// zeroes the time counters.  Connections and weights are untouched.
func (nt *Network) ResetState(tm *Time) {
	for _, id := range nt.Order {
		nt.Neurons[id].Reset()
	}
	if tm != nil {
		tm.Reset()
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Storage and weights

// SetStorageMode converts connection storage between dense and sparse
// representations.  Converting to sparse collapses dense parallel
// edges down to the most recently added one per pair, recycling the
// rest through the pool; otherwise the connection set is preserved
// exactly.
func (nt *Network) SetStorageMode(mode StorageMode) {
	for _, cn := range nt.Conns.SetMode(mode) {
		nt.Pool.Put(cn)
	}
}

// SetHalfWts switches all existing connections -- and all future ones
// -- to half-precision weight storage (or back).  Switching to half is
// lossy per the float16 codec; switching back preserves the encoded
// values exactly.
func (nt *Network) SetHalfWts(on bool) {
	nt.HalfWts = on
	nt.Conns.Do(func(cn *Connection) bool {
		cn.SetHalf(on)
		return true
	})
}

// PruneConnections removes all connections with absolute weight below
// the threshold, recycling them through the pool, and returns the
// number removed.
func (nt *Network) PruneConnections(thr float32) int {
	return nt.Conns.Prune(thr, nt.Pool)
}

//////////////////////////////////////////////////////////////////////////////////////
//  Params

// ApplyParams applies the given param sheet to all neurons in the
// network, matching by type name ("Neuron"), class (registered type
// name) and name (alias or id) selectors.  Calls Update on the params
// after setting.  Returns true if any were applied, and error for any
// params that failed to apply.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, id := range nt.Order {
		nrn := nt.Neurons[id]
		app, err := pars.Apply(nrn, setMsg)
		if app {
			applied = true
			nrn.AsBase().Prms.Update()
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

//////////////////////////////////////////////////////////////////////////////////////
//  Misc Reports

// SizeReport returns a string reporting the number and memory
// footprint of neurons per registered type and of the connections, and
// the total.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	tnms := make([]string, 0, len(nt.ByType))
	for tnm := range nt.ByType {
		tnms = append(tnms, tnm)
	}
	sort.StringSlice(tnms).Sort()
	neur := 0
	neurMem := 0
	for _, tnm := range tnms {
		ids := nt.ByType[tnm]
		nmem := 0
		for _, id := range ids {
			nmem += int(unsafe.Sizeof(NeuronBase{})) + 4*len(nt.Neurons[id].State())
		}
		neur += len(ids)
		neurMem += nmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t NeurMem: %v\n", tnm, len(ids), (datasize.ByteSize)(nmem).HumanReadable())
	}
	nc := nt.Conns.Len()
	cmem := nc * int(unsafe.Sizeof(Connection{}))
	fmt.Fprintf(&b, "\n%14s:\t Neurons: %d\t NeurMem: %v \t Conns: %d \t ConnMem: %v\n", nt.Nm, neur, (datasize.ByteSize)(neurMem).HumanReadable(), nc, (datasize.ByteSize)(cmem).HumanReadable())
	return b.String()
}

// TimerReport reports the amount of time spent in each function.
func (nt *Network) TimerReport() {
	fmt.Printf("TimerReport: %v\n", nt.Nm)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	nfn := len(nt.FunTimes)
	fnms := make([]string, nfn)
	idx := 0
	for k := range nt.FunTimes {
		fnms[idx] = k
		idx++
	}
	sort.StringSlice(fnms).Sort()
	pcts := make([]float64, nfn)
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = nt.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (nt *Network) FunTimerStart(fun string) {
	ft, ok := nt.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		nt.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (nt *Network) FunTimerStop(fun string) {
	ft := nt.FunTimes[fun]
	ft.Stop()
}
