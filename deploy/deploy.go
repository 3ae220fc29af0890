// Package deploy installs a diamond and its facets on a ledger, following
// the standard EIP-2535 deployment sequence: cut facet, diamond, init
// contract, loupe and ownership facets, then one cut with init().
package deploy

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/metrics"
	"github.com/hashleap/diamond/selectors"
)

// Default idempotency window for cut submissions
const (
	DefaultCutCacheSize = 256
	DefaultCutCacheTTL  = 10 * time.Minute
)

// Ledger is the part of the in-process chain the deployer drives
type Ledger interface {
	Deploy(from common.Address, code diamond.Contract, construct func(*diamond.Env) error) (common.Address, *types.Receipt, error)
	Transact(from, to common.Address, value *big.Int, input []byte) (*types.Receipt, []byte, error)
}

// Facet is contract code with an ABI the selector table is derived from
type Facet interface {
	diamond.Contract
	ABI() *abi.ABI
}

// Deployment records the addresses of a deployed diamond
type Deployment struct {
	Owner          common.Address
	Diamond        common.Address
	CutFacet       common.Address
	DiamondInit    common.Address
	LoupeFacet     common.Address
	OwnershipFacet common.Address

	// Facets maps names of facets attached with AddFacet to their
	// addresses
	Facets map[string]common.Address
}

// Deployer deploys diamonds and submits cuts as one account
type Deployer struct {
	ledger   Ledger
	from     common.Address
	cutFacet *diamond.DiamondCutFacet
	cache    *diamond.CutCache
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
}

// Option configures a Deployer
type Option func(*Deployer)

// WithCutFacet deploys f as the diamond's cut facet, for instance one with
// lifecycle hooks registered
func WithCutFacet(f *diamond.DiamondCutFacet) Option {
	return func(d *Deployer) {
		d.cutFacet = f
	}
}

// WithCutCache shares a cut idempotency cache between deployers
func WithCutCache(c *diamond.CutCache) Option {
	return func(d *Deployer) {
		d.cache = c
	}
}

// WithLogger sets the deployment logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Deployer) {
		d.logger = logger
	}
}

// WithMetrics records cut outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Deployer) {
		d.metrics = m
	}
}

// New creates a deployer sending from from
func New(ledger Ledger, from common.Address, opts ...Option) *Deployer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Deployer{
		ledger: ledger,
		from:   from,
		logger: discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cutFacet == nil {
		d.cutFacet = diamond.NewDiamondCutFacet().WithLogger(d.logger)
	}
	if d.cache == nil {
		d.cache = diamond.NewCutCache(DefaultCutCacheSize, DefaultCutCacheTTL)
	}
	return d
}

// DeployDiamond deploys a diamond owned by the deployer with the loupe and
// ownership facets attached and ERC-165 support initialized
func (d *Deployer) DeployDiamond(ctx context.Context) (*Deployment, error) {
	dep := &Deployment{Owner: d.from, Facets: make(map[string]common.Address)}

	var err error
	if dep.CutFacet, err = d.deploy("DiamondCutFacet", d.cutFacet, nil); err != nil {
		return nil, err
	}
	if dep.Diamond, err = d.deploy("Diamond", diamond.NewDiamond(), diamond.Constructor(d.from, dep.CutFacet)); err != nil {
		return nil, err
	}
	if dep.DiamondInit, err = d.deploy("DiamondInit", diamond.NewDiamondInit(), nil); err != nil {
		return nil, err
	}

	loupe := diamond.NewDiamondLoupeFacet()
	if dep.LoupeFacet, err = d.deploy("DiamondLoupeFacet", loupe, nil); err != nil {
		return nil, err
	}
	ownership := diamond.NewOwnershipFacet()
	if dep.OwnershipFacet, err = d.deploy("OwnershipFacet", ownership, nil); err != nil {
		return nil, err
	}

	calldata, err := diamond.DiamondInitABI.Pack("init")
	if err != nil {
		return nil, fmt.Errorf("failed to pack init: %w", err)
	}
	cuts := []diamond.FacetCut{
		selectors.FromABI(loupe.ABI()).Cut(dep.LoupeFacet, diamond.Add),
		selectors.FromABI(ownership.ABI()).Cut(dep.OwnershipFacet, diamond.Add),
	}
	if _, err := d.Cut(ctx, dep.Diamond, cuts, dep.DiamondInit, calldata); err != nil {
		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		"diamond": dep.Diamond.Hex(),
		"owner":   d.from.Hex(),
	}).Info("diamond deployed")
	return dep, nil
}

// FacetOptions tunes AddFacet
type FacetOptions struct {
	// Action defaults to Add
	Action diamond.FacetCutAction

	// Exclude lists signatures to leave out of the cut
	Exclude []string

	// Init and InitCalldata run an initializer with the cut. A non-nil
	// InitCode is deployed first and replaces Init.
	Init         common.Address
	InitCode     diamond.Contract
	InitCalldata []byte
}

// AddFacet deploys facet and routes its selectors to it
func (d *Deployer) AddFacet(ctx context.Context, dep *Deployment, name string, facet Facet, opts FacetOptions) (common.Address, error) {
	addr, err := d.deploy(name, facet, nil)
	if err != nil {
		return common.Address{}, err
	}

	init := opts.Init
	if opts.InitCode != nil {
		if init, err = d.deploy(name+"Init", opts.InitCode, nil); err != nil {
			return common.Address{}, err
		}
	}

	action := opts.Action
	table := selectors.FromABI(facet.ABI()).Remove(opts.Exclude...)
	if _, err := d.Cut(ctx, dep.Diamond, []diamond.FacetCut{table.Cut(addr, action)}, init, opts.InitCalldata); err != nil {
		return common.Address{}, fmt.Errorf("failed to attach %s: %w", name, err)
	}

	dep.Facets[name] = addr
	d.logger.WithFields(logrus.Fields{
		"facet":     name,
		"address":   addr.Hex(),
		"action":    action.String(),
		"selectors": table.Len(),
	}).Info("facet attached")
	return addr, nil
}

// Cut submits a diamondCut once. Identical proposals submitted
// concurrently, or retried before any other cut reaches the diamond, share
// the first receipt.
func (d *Deployer) Cut(ctx context.Context, diamondAddr common.Address, cuts []diamond.FacetCut, init common.Address, calldata []byte) (*types.Receipt, error) {
	key, err := diamond.CutKey(diamondAddr, cuts, init, calldata)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	receipt, shared, err := d.cache.Do(ctx, key, func(context.Context) (*types.Receipt, error) {
		input, err := diamond.DiamondCutABI.Pack("diamondCut", cuts, init, calldata)
		if err != nil {
			return nil, fmt.Errorf("failed to pack diamondCut: %w", err)
		}
		receipt, _, err := d.ledger.Transact(d.from, diamondAddr, nil, input)
		return receipt, err
	})
	if err == nil && !shared {
		d.cache.Supersede(diamondAddr, key)
	}
	d.record(err, shared, time.Since(start))
	return receipt, err
}

func (d *Deployer) record(err error, shared bool, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	switch {
	case shared:
		d.metrics.CutCacheHits.Inc()
	case err != nil:
		d.metrics.CutsTotal.WithLabelValues("failure").Inc()
	default:
		d.metrics.CutsTotal.WithLabelValues("success").Inc()
		d.metrics.CutDuration.Observe(elapsed.Seconds())
	}
}

func (d *Deployer) deploy(name string, code diamond.Contract, construct func(*diamond.Env) error) (common.Address, error) {
	addr, _, err := d.ledger.Deploy(d.from, code, construct)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy %s: %w", name, err)
	}
	d.logger.WithFields(logrus.Fields{"contract": name, "address": addr.Hex()}).Debug("contract deployed")
	return addr, nil
}
