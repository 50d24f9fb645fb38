package http

import (
	"doelab/internal/doe"
	"doelab/internal/estimation"
	"doelab/internal/spc"
	"doelab/internal/synth"
	api "doelab/pkg/contracts/api/v1"
)

// designToDomain converts a design contract, filling defaults for omitted fields
func designToDomain(r api.DesignRequest) doe.DesignRequest {
	n := api.DefaultNumSamples
	if r.NumSamples != nil {
		n = *r.NumSamples
	}

	vars := make([]doe.Variable, len(r.Variables))
	for i, v := range r.Variables {
		vars[i] = doe.Variable{
			Name:   v.Name,
			Type:   doe.VariableType(v.Type),
			Min:    api.DefaultMin,
			Max:    api.DefaultMax,
			Levels: v.Levels,
		}
		if v.Min != nil {
			vars[i].Min = *v.Min
		}
		if v.Max != nil {
			vars[i].Max = *v.Max
		}
	}

	return doe.DesignRequest{
		Strategy:   doe.Strategy(r.Strategy),
		NumSamples: n,
		Variables:  vars,
		Seed:       r.Seed,
	}
}

// confidenceOf returns the requested level or the engine default
func confidenceOf(r api.EstimationRequest) float64 {
	if r.ConfidenceLevel == nil {
		return estimation.DefaultConfidence
	}
	return *r.ConfidenceLevel
}

func spcToDomain(r api.SPCRequest) spc.AnalysisRequest {
	sigma := spc.DefaultSigma
	if r.Sigma != nil {
		sigma = *r.Sigma
	}
	return spc.AnalysisRequest{
		Data:           spc.Table(r.Data),
		TargetVariable: r.TargetVariable,
		FactorVariable: r.FactorVariable,
		Sigma:          sigma,
	}
}

func generationToDomain(r api.GenerationRequest) synth.BatchRequest {
	return synth.BatchRequest{Matrix: r.Matrix, Context: r.Context, Mock: r.Mock}
}
