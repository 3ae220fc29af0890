package crosschain

import (
	"math/big"

	diamond "github.com/hashleap/diamond"
)

var gatewayStoragePosition = diamond.StoragePosition("hashleap.crosschain.gateway")

type gatewayStorage struct {
	Sent uint64
}

func (s *gatewayStorage) Clone() diamond.Slot {
	c := *s
	return &c
}

// Gateway is a development stand-in for the Axelar gateway. sendToken
// records the request and emits TokenSent; no tokens are pulled, so the
// caller's approval stays in place.
type Gateway struct {
	*diamond.Dispatcher
}

// NewGateway creates the gateway code
func NewGateway() *Gateway {
	g := &Gateway{}
	g.Dispatcher = diamond.MustDispatcher(GatewayABI, map[string]diamond.Handler{
		"sendToken": g.sendToken,
		"sentCount": g.sentCount,
	})
	return g
}

func loadGateway(env *diamond.Env) *gatewayStorage {
	return diamond.LoadSlot(env, gatewayStoragePosition, func() *gatewayStorage { return &gatewayStorage{} })
}

func (g *Gateway) sendToken(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	loadGateway(env).Sent++
	return nil, diamond.EmitEvent(env, GatewayABI, "TokenSent",
		env.Caller,
		diamond.Arg[string](args, 0),
		diamond.Arg[string](args, 1),
		diamond.Arg[string](args, 2),
		diamond.Arg[*big.Int](args, 3),
	)
}

func (g *Gateway) sentCount(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{new(big.Int).SetUint64(loadGateway(env).Sent)}, nil
}
