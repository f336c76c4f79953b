package sweep

// Merge combines two record sets into one sorted set. When both contain the
// same temperature the record from a wins.
func Merge(a, b []Record) []Record {
	seen := make(map[float64]bool, len(a)+len(b))
	out := make([]Record, 0, len(a)+len(b))
	for _, set := range [][]Record{a, b} {
		for _, r := range set {
			if seen[r.Temperature] {
				continue
			}
			seen[r.Temperature] = true
			out = append(out, r)
		}
	}
	SortByTemperature(out)
	return out
}

// Temperatures extracts the temperature column.
func Temperatures(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Temperature
	}
	return out
}

// Peak returns the successful record with the largest specific heat and its
// index.
func Peak(records []Record) (Record, int, bool) {
	best := -1
	for i, r := range records {
		if r.Failed() {
			continue
		}
		if best < 0 || r.SpecificHeat > records[best].SpecificHeat {
			best = i
		}
	}
	if best < 0 {
		return Record{}, -1, false
	}
	return records[best], best, true
}
