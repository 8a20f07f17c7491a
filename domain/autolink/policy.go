package autolink

import "sort"

// Candidate is one potential neighbor for an anchor node. Candidates reach
// the policy already profile-scoped and pre-filtered: the anchor itself and
// pairs that already hold an edge never appear here.
type Candidate struct {
	NodeID string

	// Similarity is the cosine similarity to the anchor, when known.
	Similarity *float64

	// Distance is the cosine distance reported by the vector index, when
	// known. At least one of Similarity and Distance is always set.
	Distance *float64

	// Mutual reports whether the anchor appears in this candidate's own
	// nearest-neighbor set. Only consulted under StrictMutual.
	Mutual bool
}

// Accepted is a candidate the policy decided to link, with its final weight.
type Accepted struct {
	NodeID string
	Weight float64
}

// score returns the value used to order candidates: similarity when present,
// otherwise the distance complement.
func (c Candidate) score() float64 {
	if c.Similarity != nil {
		return *c.Similarity
	}
	if c.Distance != nil {
		return 1 - *c.Distance
	}
	return 0
}

// weight derives the edge weight: similarity as-is when known, otherwise the
// clamped distance complement. Weights always land in [0, 1].
func (c Candidate) weight() float64 {
	if c.Similarity != nil {
		return Clamp01(*c.Similarity)
	}
	if c.Distance != nil {
		return Clamp01(1 - *c.Distance)
	}
	return 0
}

// passes applies the recall-biased threshold rule: a candidate is linkable
// when its similarity clears MinCosine OR its distance is within MaxDistance.
func (c Candidate) passes(cfg Config) bool {
	if c.Similarity != nil && *c.Similarity >= cfg.MinCosine {
		return true
	}
	if c.Distance != nil && *c.Distance <= cfg.MaxDistance {
		return true
	}
	return false
}

// Decide evaluates candidates against cfg and returns the accepted set in
// creation order. The decision is pure and deterministic: the same candidates
// and config always produce the same edges.
//
// Candidates are evaluated best-first (similarity descending, node ID
// ascending on exact ties) and acceptance stops at MaxEdges. Ties at the
// cutoff are therefore broken by ascending node ID.
func Decide(candidates []Candidate, cfg Config) []Accepted {
	if cfg.MaxEdges == 0 || len(candidates) == 0 {
		return nil
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool {
		si, sj := ordered[i].score(), ordered[j].score()
		if si != sj {
			return si > sj
		}
		return ordered[i].NodeID < ordered[j].NodeID
	})

	accepted := make([]Accepted, 0, cfg.MaxEdges)
	for _, c := range ordered {
		if len(accepted) >= cfg.MaxEdges {
			break
		}
		if !c.passes(cfg) {
			continue
		}
		if cfg.StrictMutual && !c.Mutual {
			continue
		}
		accepted = append(accepted, Accepted{
			NodeID: c.NodeID,
			Weight: c.weight(),
		})
	}

	if len(accepted) == 0 {
		return nil
	}
	return accepted
}
