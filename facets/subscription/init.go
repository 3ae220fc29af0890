package subscription

import (
	"fmt"

	diamond "github.com/hashleap/diamond"
)

// InterfaceID is the ERC-165 identifier of the facet interface
var InterfaceID = func() [4]byte {
	names := make([]string, 0, len(ABI.Methods))
	for name := range ABI.Methods {
		names = append(names, name)
	}
	id, err := diamond.InterfaceID(ABI, names...)
	if err != nil {
		panic(err)
	}
	return id
}()

// Config holds the protocol parameters set when the facet is attached
type Config struct {
	MinDuration     uint16
	MaxDuration     uint16
	// ChargeGrace lets a plan owner charge up to this many seconds before
	// the next period is due. The default of 0 keeps a charge one day early
	// (13 days into a 14-day interval) rejected with DuplicatePayment.
	ChargeGrace     uint32
	BaseContractFee uint8
}

// DefaultConfig returns the bounds used when no initializer runs
func DefaultConfig() Config {
	return Config{
		MinDuration: DefaultMinDuration,
		MaxDuration: DefaultMaxDuration,
	}
}

// Initializer is the init contract passed to diamondCut when the facet is
// added. It runs in the diamond's storage context.
type Initializer struct {
	*diamond.Dispatcher
}

// NewInitializer creates the initializer code
func NewInitializer() *Initializer {
	i := &Initializer{}
	i.Dispatcher = diamond.MustDispatcher(InitializerABI, map[string]diamond.Handler{
		"init": i.init,
	})
	return i
}

// Calldata packs the init call for cfg
func (cfg Config) Calldata() ([]byte, error) {
	data, err := InitializerABI.Pack("init", cfg.MinDuration, cfg.MaxDuration, cfg.ChargeGrace, cfg.BaseContractFee)
	if err != nil {
		return nil, fmt.Errorf("failed to pack subscription init: %w", err)
	}
	return data, nil
}

func (i *Initializer) init(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	fee := diamond.Arg[uint8](args, 3)
	if fee > MaxBaseContractFee {
		return nil, ErrFeeTooHigh
	}
	s := load(env)
	if err := setDurationBounds(s, diamond.Arg[uint16](args, 0), diamond.Arg[uint16](args, 1)); err != nil {
		return nil, err
	}
	s.ChargeGrace = diamond.Arg[uint32](args, 2)
	s.BaseContractFee = fee

	diamond.LoadDiamondStorage(env).SupportedInterfaces[InterfaceID] = true
	return nil, nil
}
