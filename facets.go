package diamond

import (
	"io"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// DiamondCutFacet
// ============================================================================

// DiamondCutFacet exposes diamondCut. It carries lifecycle hooks that fire
// for every cut routed through it.
type DiamondCutFacet struct {
	*Dispatcher

	mu     sync.RWMutex
	logger logrus.FieldLogger

	beforeCutHooks    []BeforeCutHook
	afterCutHooks     []AfterCutHook
	onCutFailureHooks []OnCutFailureHook
}

// NewDiamondCutFacet creates the cut facet
func NewDiamondCutFacet() *DiamondCutFacet {
	f := &DiamondCutFacet{logger: discardLogger()}
	f.Dispatcher = MustDispatcher(DiamondCutABI, map[string]Handler{
		"diamondCut": f.diamondCut,
	})
	return f
}

// WithLogger sets the logger used to report hook errors
func (f *DiamondCutFacet) WithLogger(logger logrus.FieldLogger) *DiamondCutFacet {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger = logger
	return f
}

// OnBeforeCut registers a hook to execute before a cut is applied
func (f *DiamondCutFacet) OnBeforeCut(hook BeforeCutHook) *DiamondCutFacet {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeCutHooks = append(f.beforeCutHooks, hook)
	return f
}

// OnAfterCut registers a hook to execute after a successful cut
func (f *DiamondCutFacet) OnAfterCut(hook AfterCutHook) *DiamondCutFacet {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterCutHooks = append(f.afterCutHooks, hook)
	return f
}

// OnCutFailure registers a hook to execute when a cut reverts
func (f *DiamondCutFacet) OnCutFailure(hook OnCutFailureHook) *DiamondCutFacet {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCutFailureHooks = append(f.onCutFailureHooks, hook)
	return f
}

func (f *DiamondCutFacet) diamondCut(env *Env, args []interface{}) ([]interface{}, error) {
	if err := EnforceIsContractOwner(env); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	hookCtx := CutContext{
		Diamond:     env.Self,
		Caller:      env.Caller,
		Cuts:        Arg[[]FacetCut](args, 0),
		Init:        Arg[common.Address](args, 1),
		Calldata:    Arg[[]byte](args, 2),
		BlockNumber: env.Host.BlockNumber(),
		Timestamp:   time.Unix(int64(env.Host.Timestamp()), 0),
	}
	start := time.Now()

	for _, hook := range f.beforeCutHooks {
		result, err := hook(hookCtx)
		if err != nil {
			return nil, f.fail(hookCtx, start, Revert(err.Error()))
		}
		if result != nil && result.Abort {
			return nil, f.fail(hookCtx, start, Revert(result.Reason))
		}
	}

	if err := DiamondCut(env, hookCtx.Cuts, hookCtx.Init, hookCtx.Calldata); err != nil {
		return nil, f.fail(hookCtx, start, err)
	}

	resultCtx := CutResultContext{CutContext: hookCtx, Duration: time.Since(start)}
	for _, hook := range f.afterCutHooks {
		if err := hook(resultCtx); err != nil {
			f.logger.WithError(err).Warn("after-cut hook failed")
		}
	}
	return nil, nil
}

func (f *DiamondCutFacet) fail(hookCtx CutContext, start time.Time, err error) error {
	failureCtx := CutFailureContext{CutContext: hookCtx, Error: err, Duration: time.Since(start)}
	for _, hook := range f.onCutFailureHooks {
		if hookErr := hook(failureCtx); hookErr != nil {
			f.logger.WithError(hookErr).Warn("cut-failure hook failed")
		}
	}
	return err
}

// ============================================================================
// DiamondLoupeFacet
// ============================================================================

// DiamondLoupeFacet answers introspection queries against the routing table
type DiamondLoupeFacet struct {
	*Dispatcher
}

// NewDiamondLoupeFacet creates the loupe facet
func NewDiamondLoupeFacet() *DiamondLoupeFacet {
	f := &DiamondLoupeFacet{}
	f.Dispatcher = MustDispatcher(DiamondLoupeABI, map[string]Handler{
		"facets":                 f.facets,
		"facetFunctionSelectors": f.facetFunctionSelectors,
		"facetAddresses":         f.facetAddresses,
		"facetAddress":           f.facetAddress,
		"supportsInterface":      f.supportsInterface,
	})
	return f
}

// Facets lists every facet with its selectors, in registry order
func Facets(env *Env) []Facet {
	ds := LoadDiamondStorage(env)
	facets := make([]Facet, 0, len(ds.FacetAddresses))
	for _, addr := range ds.FacetAddresses {
		facets = append(facets, Facet{
			FacetAddress:      addr,
			FunctionSelectors: append([][4]byte{}, ds.FacetFunctionSelectors[addr].FunctionSelectors...),
		})
	}
	return facets
}

// FacetAddress returns the facet a selector routes to, or the zero address
func FacetAddress(env *Env, sel [4]byte) common.Address {
	return LoadDiamondStorage(env).SelectorToFacetAndPosition[sel].FacetAddress
}

func (f *DiamondLoupeFacet) facets(env *Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{Facets(env)}, nil
}

func (f *DiamondLoupeFacet) facetFunctionSelectors(env *Env, args []interface{}) ([]interface{}, error) {
	ds := LoadDiamondStorage(env)
	selectors := [][4]byte{}
	if fs, ok := ds.FacetFunctionSelectors[Arg[common.Address](args, 0)]; ok {
		selectors = append(selectors, fs.FunctionSelectors...)
	}
	return []interface{}{selectors}, nil
}

func (f *DiamondLoupeFacet) facetAddresses(env *Env, _ []interface{}) ([]interface{}, error) {
	ds := LoadDiamondStorage(env)
	return []interface{}{append([]common.Address{}, ds.FacetAddresses...)}, nil
}

func (f *DiamondLoupeFacet) facetAddress(env *Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{FacetAddress(env, Arg[[4]byte](args, 0))}, nil
}

func (f *DiamondLoupeFacet) supportsInterface(env *Env, args []interface{}) ([]interface{}, error) {
	ds := LoadDiamondStorage(env)
	return []interface{}{ds.SupportedInterfaces[Arg[[4]byte](args, 0)]}, nil
}

// ============================================================================
// OwnershipFacet
// ============================================================================

// OwnershipFacet implements ERC-173 with an explicit renounce
type OwnershipFacet struct {
	*Dispatcher
}

// NewOwnershipFacet creates the ownership facet
func NewOwnershipFacet() *OwnershipFacet {
	f := &OwnershipFacet{}
	f.Dispatcher = MustDispatcher(OwnershipABI, map[string]Handler{
		"owner":             f.owner,
		"transferOwnership": f.transferOwnership,
		"renounceOwnership": f.renounceOwnership,
	})
	return f
}

func (f *OwnershipFacet) owner(env *Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{ContractOwner(env)}, nil
}

func (f *OwnershipFacet) transferOwnership(env *Env, args []interface{}) ([]interface{}, error) {
	if err := EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	newOwner := Arg[common.Address](args, 0)
	if newOwner == (common.Address{}) {
		return nil, ErrOwnerZeroAddress
	}
	return nil, SetContractOwner(env, newOwner)
}

func (f *OwnershipFacet) renounceOwnership(env *Env, _ []interface{}) ([]interface{}, error) {
	if err := EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	return nil, SetContractOwner(env, common.Address{})
}

// ============================================================================
// DiamondInit
// ============================================================================

// DiamondInit registers the ERC-165 interfaces a freshly cut diamond
// supports. It runs by delegate call as the initializer of the first cut.
type DiamondInit struct {
	*Dispatcher
}

// NewDiamondInit creates the initializer contract
func NewDiamondInit() *DiamondInit {
	f := &DiamondInit{}
	f.Dispatcher = MustDispatcher(DiamondInitABI, map[string]Handler{
		"init": f.init,
	})
	return f
}

// Standard interface ids
var (
	IERC165ID       = mustInterfaceID(DiamondLoupeABI, "supportsInterface")
	IDiamondCutID   = mustInterfaceID(DiamondCutABI, "diamondCut")
	IDiamondLoupeID = mustInterfaceID(DiamondLoupeABI, "facets", "facetFunctionSelectors", "facetAddresses", "facetAddress")
	IERC173ID       = mustInterfaceID(OwnershipABI, "owner", "transferOwnership")
)

func (f *DiamondInit) init(env *Env, _ []interface{}) ([]interface{}, error) {
	ds := LoadDiamondStorage(env)
	for _, id := range [][4]byte{IERC165ID, IDiamondCutID, IDiamondLoupeID, IERC173ID} {
		ds.SupportedInterfaces[id] = true
	}
	return nil, nil
}

func mustInterfaceID(parsed *abi.ABI, names ...string) [4]byte {
	id, err := InterfaceID(parsed, names...)
	if err != nil {
		panic(err)
	}
	return id
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
