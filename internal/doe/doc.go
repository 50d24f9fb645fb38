// Package doe builds Design-of-Experiments matrices.
//
// A DesignRequest names a sampling strategy and the experiment variables.
// Generate validates the request and dispatches to one of three samplers:
//
//   - space-filling: Latin hypercube over the continuous variables, one
//     sample per equal-width stratum in every dimension
//   - random: independent uniform draws per continuous variable
//   - factorial: full Cartesian product of every variable's level set
//
// Numeric cells are rounded to four decimal places. Categorical and
// discrete variables take part in factorial designs only; the other two
// strategies skip them but still count them in NumFactors.
//
// The package holds no state. Samplers are pure functions of the request
// and the random source passed to them.
package doe
