package doe

import "math/rand/v2"

// uniformRandom draws every continuous variable independently from U[min,max].
// There is no joint structure between columns. A request with no continuous
// variables yields no rows.
func uniformRandom(req *DesignRequest, rng *rand.Rand) ([]string, []Row) {
	vars := req.continuous()
	if len(vars) == 0 {
		return names(vars), []Row{}
	}

	rows := make([]Row, req.NumSamples)
	for i := range rows {
		rows[i] = make(Row, len(vars))
	}
	for _, v := range vars {
		for i := range rows {
			rows[i][v.Name] = scale(v, rng.Float64())
		}
	}
	return names(vars), rows
}
