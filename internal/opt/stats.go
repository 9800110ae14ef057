package opt

// Stats counts what a ReduceGotos run changed. Combining results from
// different methods is elementwise addition, which is associative and
// commutative, so per-method results may be reduced in any order or
// grouping.
type Stats struct {
	GotosReplacedWithReturns    uint32
	TrailingMovesRemoved        uint32
	InvertedConditionalBranches uint32
}

// Add returns the elementwise sum of two Stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		GotosReplacedWithReturns:    s.GotosReplacedWithReturns + o.GotosReplacedWithReturns,
		TrailingMovesRemoved:        s.TrailingMovesRemoved + o.TrailingMovesRemoved,
		InvertedConditionalBranches: s.InvertedConditionalBranches + o.InvertedConditionalBranches,
	}
}

// Zero reports whether the run changed nothing.
func (s Stats) Zero() bool {
	return s == Stats{}
}
