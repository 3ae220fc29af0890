package diamond

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func keccakHash(s string) common.Hash {
	return crypto.Keccak256Hash([]byte(s))
}

// MustParseABI parses an ABI literal and panics on malformed JSON.
// Intended for package-level ABI constants.
func MustParseABI(abiJSON []byte) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(string(abiJSON)))
	if err != nil {
		panic(fmt.Sprintf("diamond: invalid ABI: %v", err))
	}
	return &parsed
}

// InterfaceID computes an ERC-165 interface identifier: the XOR of the
// selectors of the named methods.
func InterfaceID(parsed *abi.ABI, methods ...string) ([4]byte, error) {
	var id [4]byte
	for _, name := range methods {
		m, ok := parsed.Methods[name]
		if !ok {
			return id, fmt.Errorf("method %s not in ABI", name)
		}
		for i := range id {
			id[i] ^= m.ID[i]
		}
	}
	return id, nil
}

// EmitEvent packs an event declared in parsed and emits it for env.Self.
// args are given in declaration order; indexed arguments become topics.
func EmitEvent(env *Env, parsed *abi.ABI, name string, args ...interface{}) error {
	event, ok := parsed.Events[name]
	if !ok {
		return fmt.Errorf("event %s not in ABI", name)
	}
	if len(args) != len(event.Inputs) {
		return fmt.Errorf("event %s: want %d args, got %d", name, len(event.Inputs), len(args))
	}

	topics := []common.Hash{event.ID}
	var data []interface{}
	for i, input := range event.Inputs {
		if !input.Indexed {
			data = append(data, args[i])
			continue
		}
		topic, err := indexedTopic(args[i])
		if err != nil {
			return fmt.Errorf("event %s: topic %s: %w", name, input.Name, err)
		}
		topics = append(topics, topic)
	}

	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return fmt.Errorf("event %s: %w", name, err)
	}
	env.Host.Emit(env.Self, topics, packed)
	return nil
}

func indexedTopic(v interface{}) (common.Hash, error) {
	topics, err := abi.MakeTopics([]interface{}{v})
	if err != nil {
		return common.Hash{}, err
	}
	return topics[0][0], nil
}

// IsZero reports whether a value is nil or zero
func IsZero(v *big.Int) bool {
	return v == nil || v.Sign() == 0
}
