package doe

import "math/rand/v2"

// latinHypercube places n samples in the unit hypercube of the continuous
// variables so that every dimension has exactly one sample in each of the
// n strata [k/n, (k+1)/n). Each dimension gets its own permutation of the
// strata and a uniform jitter inside the stratum.
func latinHypercube(req *DesignRequest, rng *rand.Rand) ([]string, []Row) {
	vars := req.continuous()
	n := req.NumSamples

	rows := make([]Row, n)
	for i := range rows {
		rows[i] = make(Row, len(vars))
	}

	for _, v := range vars {
		perm := rng.Perm(n)
		for i, stratum := range perm {
			u := (float64(stratum) + rng.Float64()) / float64(n)
			rows[i][v.Name] = scale(v, u)
		}
	}
	return names(vars), rows
}
