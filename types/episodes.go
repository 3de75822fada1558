package types

// episodeBook keeps the per-slot bookkeeping of the in-progress episodes
type episodeBook struct {
	returns []float64
	lens    []int
	idx     []int
}

func newEpisodeBook(numEnvs int) *episodeBook {
	return &episodeBook{
		returns: make([]float64, numEnvs),
		lens:    make([]int, numEnvs),
		idx:     make([]int, numEnvs),
	}
}

// resetMask marks the slots whose episode reaches maxEpisodeLen with this step.
// All false when maxEpisodeLen is not set.
func (b *episodeBook) resetMask(maxEpisodeLen int) []bool {
	mask := make([]bool, len(b.lens))
	if maxEpisodeLen <= 0 {
		return mask
	}
	for i, l := range b.lens {
		mask[i] = l+1 >= maxEpisodeLen
	}
	return mask
}

// continuation mask, true for the slots that are neither done nor force reset
func continuationMask(dones, resets []bool) []bool {
	mask := make([]bool, len(dones))
	for i := range dones {
		mask[i] = !(dones[i] || resets[i])
	}
	return mask
}

// record the step rewards. Ended slots push their return to the window and start over.
func (b *episodeBook) record(rewards []float64, mask []bool, window *ReturnWindow) {
	for i := range b.returns {
		b.returns[i] += rewards[i]
		b.lens[i] += 1
		if mask[i] {
			continue
		}
		b.idx[i] += 1
		window.Append(b.returns[i])
		b.returns[i] = 0
		b.lens[i] = 0
	}
}

// total number of completed episodes
func (b *episodeBook) completed() int {
	total := 0
	for _, c := range b.idx {
		total += c
	}
	return total
}

// per slot episode counts including the in-progress one, passed to the evaluator
func (b *episodeBook) episodes() []int {
	out := make([]int, len(b.idx))
	for i, c := range b.idx {
		out[i] = c + 1
	}
	return out
}
