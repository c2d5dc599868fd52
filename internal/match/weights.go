package match

// Weights control how the four score components fuse into the combined
// score.
type Weights struct {
	Vector       float64 `json:"vector"`
	Graph        float64 `json:"graph"`
	Availability float64 `json:"availability"`
	Reputation   float64 `json:"reputation"`
}

// DefaultWeights returns the standard fusion weights.
func DefaultWeights() Weights {
	return Weights{
		Vector:       0.4,
		Graph:        0.3,
		Availability: 0.15,
		Reputation:   0.15,
	}
}

// Normalize rescales the weights to sum to 1 by dividing each by the
// sum. A non-positive sum falls back to the defaults.
func (w Weights) Normalize() Weights {
	sum := w.Vector + w.Graph + w.Availability + w.Reputation
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Vector:       w.Vector / sum,
		Graph:        w.Graph / sum,
		Availability: w.Availability / sum,
		Reputation:   w.Reputation / sum,
	}
}

// Combine fuses the component scores. Inputs are expected in [0,1]; the
// result is clamped there.
func (w Weights) Combine(vector, graph, availability, reputation float64) float64 {
	c := w.Vector*vector + w.Graph*graph + w.Availability*availability + w.Reputation*reputation
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
