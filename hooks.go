package diamond

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ============================================================================
// Cut Hook Context Types
// ============================================================================

// CutContext contains information passed to cut hooks
type CutContext struct {
	Diamond     common.Address
	Caller      common.Address
	Cuts        []FacetCut
	Init        common.Address
	Calldata    []byte
	BlockNumber uint64
	Timestamp   time.Time
}

// CutResultContext contains a successful cut and its context
type CutResultContext struct {
	CutContext
	Duration time.Duration
}

// CutFailureContext contains a failed cut and its context
type CutFailureContext struct {
	CutContext
	Error    error
	Duration time.Duration
}

// ============================================================================
// Cut Hook Result Types
// ============================================================================

// BeforeCutHookResult represents the result of a "before" hook
// If Abort is true, the cut reverts with the given Reason
type BeforeCutHookResult struct {
	Abort  bool
	Reason string
}

// ============================================================================
// Cut Hook Function Types
// ============================================================================

// BeforeCutHook is called after the owner check and before any selector
// is touched. Returning Abort=true, or an error, reverts the cut.
type BeforeCutHook func(CutContext) (*BeforeCutHookResult, error)

// AfterCutHook is called once the cut and its initializer succeeded
// Any error returned will be logged but will not affect the cut
type AfterCutHook func(CutResultContext) error

// OnCutFailureHook is called when a cut reverts. The revert stands;
// failures cannot be recovered.
type OnCutFailureHook func(CutFailureContext) error
