package stream

// GatingPolicy decides when the output channel of a block becomes visible in
// snapshots relative to its reasoning channel. The engine has shipped both
// behaviors; here the choice is an explicit configuration with independent
// streaming as the default.
type GatingPolicy string

const (
	// GatingIndependent surfaces every channel as it streams.
	GatingIndependent GatingPolicy = "independent"
	// GatingReasoningFirst hides a block's output channel until its
	// reasoning channel has committed at least once, so a final answer is
	// never shown before its justification.
	GatingReasoningFirst GatingPolicy = "reasoning-first"
)

// Valid reports whether the policy is one of the recognized values.
func (p GatingPolicy) Valid() bool {
	switch p {
	case GatingIndependent, GatingReasoningFirst:
		return true
	}
	return false
}

// hides reports whether the named channel of a block should be withheld from
// snapshots under this policy.
func (p GatingPolicy) hides(b *blockState, name string) bool {
	if p != GatingReasoningFirst || name != "output" {
		return false
	}
	reasoning, ok := b.channels["reasoning"]
	if !ok {
		// No associated reasoning channel; the output stands alone.
		return false
	}
	return len(reasoning.committed) == 0
}
