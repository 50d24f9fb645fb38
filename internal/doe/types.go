package doe

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// VariableType classifies an experiment variable
type VariableType string

const (
	TypeContinuous  VariableType = "continuous"
	TypeCategorical VariableType = "categorical"
	TypeDiscrete    VariableType = "discrete"
)

// IsValid reports whether t is a known variable type
func (t VariableType) IsValid() bool {
	switch t {
	case TypeContinuous, TypeCategorical, TypeDiscrete:
		return true
	}
	return false
}

// Strategy selects the sampling algorithm
type Strategy string

const (
	StrategySpaceFilling Strategy = "space-filling"
	StrategyFactorial    Strategy = "factorial"
	StrategyRandom       Strategy = "random"
)

// ParseStrategy resolves a strategy name. The short forms "lhc" and "lhs"
// are accepted for space-filling.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "space-filling", "space_filling", "lhc", "lhs", "latin-hypercube":
		return StrategySpaceFilling, nil
	case "factorial", "full-factorial":
		return StrategyFactorial, nil
	case "random":
		return StrategyRandom, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, name)
}

// Variable is one experiment factor.
// Min and Max apply to continuous variables, Levels to categorical and discrete ones.
type Variable struct {
	Name   string       `json:"name" yaml:"name"`
	Type   VariableType `json:"type" yaml:"type"`
	Min    float64      `json:"min,omitempty" yaml:"min,omitempty"`
	Max    float64      `json:"max,omitempty" yaml:"max,omitempty"`
	Levels []any        `json:"levels,omitempty" yaml:"levels,omitempty"`
}

// DesignRequest describes the design to generate
type DesignRequest struct {
	Strategy   Strategy   `json:"strategy" yaml:"strategy"`
	NumSamples int        `json:"num_samples" yaml:"num_samples"`
	Variables  []Variable `json:"variables" yaml:"variables"`

	// Seed makes the random strategies reproducible when set
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// NewDesignRequest builds and validates a request.
// Level values are normalised so that every numeric level is a float64.
func NewDesignRequest(strategy string, numSamples int, variables []Variable) (*DesignRequest, error) {
	s, err := ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	req := &DesignRequest{
		Strategy:   s,
		NumSamples: numSamples,
		Variables:  variables,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the request and normalises variable levels in place
func (r *DesignRequest) Validate() error {
	s, err := ParseStrategy(string(r.Strategy))
	if err != nil {
		return err
	}
	r.Strategy = s

	if len(r.Variables) == 0 {
		return fmt.Errorf("%w: at least one variable is required", ErrInvalidInput)
	}
	if s != StrategyFactorial && r.NumSamples < 1 {
		return fmt.Errorf("%w: num_samples must be at least 1, got %d", ErrInvalidInput, r.NumSamples)
	}

	seen := make(map[string]struct{}, len(r.Variables))
	for i := range r.Variables {
		v := &r.Variables[i]
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("%w: variable %d has no name", ErrInvalidInput, i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("%w: duplicate variable name %q", ErrInvalidInput, v.Name)
		}
		seen[v.Name] = struct{}{}

		v.Type = VariableType(strings.ToLower(string(v.Type)))
		if !v.Type.IsValid() {
			return fmt.Errorf("%w: variable %q has unknown type %q", ErrInvalidInput, v.Name, v.Type)
		}

		if v.Type == TypeContinuous {
			if math.IsNaN(v.Min) || math.IsInf(v.Min, 0) || math.IsNaN(v.Max) || math.IsInf(v.Max, 0) {
				return fmt.Errorf("%w: variable %q bounds must be finite", ErrInvalidBounds, v.Name)
			}
			if v.Min > v.Max {
				return fmt.Errorf("%w: variable %q has min %g > max %g", ErrInvalidBounds, v.Name, v.Min, v.Max)
			}
			continue
		}

		for j, level := range v.Levels {
			norm, err := normalizeLevel(level)
			if err != nil {
				return fmt.Errorf("%w: variable %q level %d: %v", ErrInvalidInput, v.Name, j, err)
			}
			v.Levels[j] = norm
		}
	}
	return nil
}

// continuous returns the continuous variables in declaration order
func (r *DesignRequest) continuous() []Variable {
	out := make([]Variable, 0, len(r.Variables))
	for _, v := range r.Variables {
		if v.Type == TypeContinuous {
			out = append(out, v)
		}
	}
	return out
}

// normalizeLevel maps a level to either a string or a finite float64
func normalizeLevel(level any) (any, error) {
	var f float64
	switch v := level.(type) {
	case string:
		return v, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("not a number: %s", v)
		}
		f = n
	default:
		return nil, fmt.Errorf("unsupported level type %T", level)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("level must be finite")
	}
	return f, nil
}

// Row is one run of the design, keyed by variable name
type Row map[string]any

// DesignMatrix is the generated design
type DesignMatrix struct {
	Strategy   Strategy `json:"strategy"`
	NumFactors int      `json:"num_factors"`
	NumRuns    int      `json:"num_runs"`
	Columns    []string `json:"columns"`
	Matrix     []Row    `json:"matrix"`
}
