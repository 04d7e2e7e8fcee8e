// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"
	"strings"
)

// NewNeuron returns a freshly constructed neuron of the given model
// variant, with state at construction-time defaults.  If prms is nil,
// ModelDefaults are used.  Params are validated for the variant's
// requirements before construction.
func NewNeuron(mdl NeuronModel, prms *NeuronParams) (Neuron, error) {
	var np NeuronParams
	if prms != nil {
		np = *prms
	} else {
		np = ModelDefaults(mdl)
	}
	if err := np.Validate(mdl); err != nil {
		return nil, err
	}
	var nrn Neuron
	switch mdl {
	case LIF:
		nrn = &LIFNeuron{}
	case AdaptiveLIF:
		nrn = &AdaptiveLIFNeuron{}
	case Izhikevich:
		nrn = &IzhikevichNeuron{}
	case HodgkinHuxley:
		nrn = &HodgkinHuxleyNeuron{}
	case GRU:
		nrn = &GRUNeuron{}
	case Attention:
		nrn = &AttnNeuron{}
	case Conv:
		nrn = &ConvNeuron{}
	case Adaptive:
		nrn = &AdaptiveNeuron{}
	default:
		return nil, fmt.Errorf("spike.NewNeuron: unknown neuron model: %d", mdl)
	}
	nb := nrn.AsBase()
	nb.Mdl = mdl
	nb.Prms = np
	nb.Prms.Update()
	switch nr := nrn.(type) {
	case *GRUNeuron:
		nr.buildGRU()
	case *ConvNeuron:
		nr.buildConv()
	}
	nrn.Reset()
	return nrn, nil
}

// ModelDefaults returns the standard parameter set for the given model
// variant: the shared defaults, with the variant's published values
// where they differ.
func ModelDefaults(mdl NeuronModel) NeuronParams {
	np := NeuronParams{}
	np.Defaults()
	switch mdl {
	case Attention:
		np.Attn.Heads = 4
		np.Attn.DModel = 64
		np.Attn.Scale = 1
	}
	return np
}

// ModelFromString returns the model variant named by the given string,
// case-insensitively.
func ModelFromString(s string) (NeuronModel, error) {
	for mdl := LIF; mdl < NeuronModelN; mdl++ {
		if strings.EqualFold(s, mdl.String()) {
			return mdl, nil
		}
	}
	return NeuronModelN, fmt.Errorf("spike.ModelFromString: unknown neuron model: %q", s)
}
