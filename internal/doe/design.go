package doe

import (
	"math"
	"math/rand/v2"
)

// sampler produces the design columns and rows for a validated request
type sampler func(req *DesignRequest, rng *rand.Rand) ([]string, []Row)

var samplers = map[Strategy]sampler{
	StrategySpaceFilling: latinHypercube,
	StrategyFactorial:    fullFactorial,
	StrategyRandom:       uniformRandom,
}

// Option configures Generate
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithRand supplies the random source. It takes precedence over the request seed.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// Generate validates req and builds its design matrix
func Generate(req DesignRequest, opts ...Option) (*DesignMatrix, error) {
	// Validate normalises levels in place; keep the caller's slices untouched.
	req.Variables = cloneVariables(req.Variables)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = newRand(req.Seed)
	}

	columns, rows := samplers[req.Strategy](&req, o.rng)
	bounds := continuousBounds(req.Variables)
	for _, row := range rows {
		for k, v := range row {
			f, ok := v.(float64)
			if !ok {
				continue
			}
			f = Round4(f)
			// bounds win over the 4-decimal grid
			if b, ok := bounds[k]; ok {
				f = math.Min(math.Max(f, b.Min), b.Max)
			}
			row[k] = f
		}
	}

	return &DesignMatrix{
		Strategy:   req.Strategy,
		NumFactors: len(req.Variables),
		NumRuns:    len(rows),
		Columns:    columns,
		Matrix:     rows,
	}, nil
}

// Round4 rounds x to four decimal places, halves to even
func Round4(x float64) float64 {
	return math.RoundToEven(x*1e4) / 1e4
}

func continuousBounds(vars []Variable) map[string]Variable {
	bounds := make(map[string]Variable, len(vars))
	for _, v := range vars {
		if v.Type == TypeContinuous {
			bounds[v.Name] = v
		}
	}
	return bounds
}

func newRand(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func cloneVariables(in []Variable) []Variable {
	out := make([]Variable, len(in))
	for i, v := range in {
		out[i] = v
		if v.Levels != nil {
			out[i].Levels = append([]any(nil), v.Levels...)
		}
	}
	return out
}

func names(vars []Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

// scale maps u in [0,1] onto [min,max]
func scale(v Variable, u float64) float64 {
	x := v.Min + u*(v.Max-v.Min)
	// guard against rounding past the upper bound
	if x > v.Max {
		return v.Max
	}
	return x
}

// ExpectedRuns reports how many rows Generate would produce for r without
// building them. Factorial products that overflow int saturate at math.MaxInt.
func (r DesignRequest) ExpectedRuns() (int, error) {
	s, err := ParseStrategy(string(r.Strategy))
	if err != nil {
		return 0, err
	}
	if s != StrategyFactorial {
		if s == StrategyRandom && len(r.continuous()) == 0 {
			return 0, nil
		}
		return max(r.NumSamples, 0), nil
	}
	if len(r.Variables) == 0 {
		return 0, nil
	}

	total := 1
	for _, v := range r.Variables {
		n := len(levelSet(v))
		if total > math.MaxInt/n {
			return math.MaxInt, nil
		}
		total *= n
	}
	return total, nil
}
