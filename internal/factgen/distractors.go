package factgen

import "strconv"

// buildOptions assembles exactly OptionCount distinct option strings, one
// of which is the correct answer, then shuffles them.
func (g *Generator) buildOptions(answer int) []string {
	seen := map[string]bool{}
	var opts []string
	add := func(n int) {
		if n < 0 {
			return
		}
		s := strconv.Itoa(n)
		if !seen[s] {
			seen[s] = true
			opts = append(opts, s)
		}
	}

	add(answer)

	// Close neighbors first: off-by-one slips are the most tempting wrong
	// answers for arithmetic facts.
	add(answer - 1)
	add(answer + 1)

	// For larger answers, add magnitude-scaled misses.
	if answer >= 20 {
		offset := answer / 10
		add(answer - offset)
		add(answer + offset)
	}

	// Pad with sequential offsets until we have enough.
	for next := answer + 2; len(opts) < OptionCount; next++ {
		add(next)
	}

	opts = opts[:OptionCount]
	g.shuffle(opts)
	return opts
}

// shuffle is a Fisher-Yates pass over the options using the generator's
// injected random source, so option ordering is deterministic in tests.
func (g *Generator) shuffle(opts []string) {
	for i := len(opts) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		opts[i], opts[j] = opts[j], opts[i]
	}
}
