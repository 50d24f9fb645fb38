package doe

import "math/rand/v2"

// fallbackLevels is used for categorical and discrete variables declared without levels
var fallbackLevels = []any{"Level_A", "Level_B"}

// levelSet returns the levels a variable contributes to a factorial design
func levelSet(v Variable) []any {
	if v.Type == TypeContinuous {
		return []any{v.Min, v.Max}
	}
	if len(v.Levels) == 0 {
		return fallbackLevels
	}
	return v.Levels
}

// fullFactorial enumerates the Cartesian product of all level sets in
// declaration order, the last variable cycling fastest.
func fullFactorial(req *DesignRequest, _ *rand.Rand) ([]string, []Row) {
	vars := req.Variables
	sets := make([][]any, len(vars))
	total := 1
	for i, v := range vars {
		sets[i] = levelSet(v)
		total *= len(sets[i])
	}

	rows := make([]Row, 0, total)
	idx := make([]int, len(vars))
	for {
		row := make(Row, len(vars))
		for i, v := range vars {
			row[v.Name] = sets[i][idx[i]]
		}
		rows = append(rows, row)

		// odometer increment
		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(sets[pos]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return names(vars), rows
}
