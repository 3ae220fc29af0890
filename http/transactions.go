package http

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"

	diamond "github.com/hashleap/diamond"
)

// Ledger is the raw execution surface of the dev chain
type Ledger interface {
	Transact(from, to common.Address, value *big.Int, input []byte) (*types.Receipt, []byte, error)
	StaticCall(from, to common.Address, value *big.Int, input []byte) ([]byte, error)
}

// CallRequest is the body of POST /v1/transactions and POST /v1/call.
// Value is decimal or 0x-hex wei; Data is 0x-hex calldata.
type CallRequest struct {
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

type callArgs struct {
	from, to common.Address
	value    *big.Int
	data     []byte
}

func (r *CallRequest) parse() (*callArgs, error) {
	if !common.IsHexAddress(r.From) {
		return nil, fmt.Errorf("invalid from address %q", r.From)
	}
	if !common.IsHexAddress(r.To) {
		return nil, fmt.Errorf("invalid to address %q", r.To)
	}
	args := &callArgs{
		from:  common.HexToAddress(r.From),
		to:    common.HexToAddress(r.To),
		value: new(big.Int),
	}
	if r.Value != "" {
		v, ok := new(big.Int).SetString(r.Value, 0)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("invalid value %q", r.Value)
		}
		args.value = v
	}
	if r.Data != "" {
		data, err := hexutil.Decode(r.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid data: %w", err)
		}
		args.data = data
	}
	return args, nil
}

// TransactionResponse reports a mined transaction
type TransactionResponse struct {
	Hash        common.Hash    `json:"hash"`
	Status      uint64         `json:"status"`
	BlockNumber uint64         `json:"blockNumber"`
	Return      hexutil.Bytes  `json:"return,omitempty"`
	Logs        []*types.Log   `json:"logs"`
	Revert      *diamond.Error `json:"revert,omitempty"`
}

// CallResponse carries the return data of a read-only call
type CallResponse struct {
	Return hexutil.Bytes `json:"return"`
}

func bindCall(c *gin.Context) (*callArgs, bool) {
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return nil, false
	}
	args, err := req.parse()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return nil, false
	}
	return args, true
}

// sendTransaction applies an unsigned developer transaction. A revert is
// still mined and is answered with 422 and the decoded reason.
func (s *Server) sendTransaction(c *gin.Context) {
	args, ok := bindCall(c)
	if !ok {
		return
	}

	receipt, ret, err := s.ledger.Transact(args.from, args.to, args.value, args.data)
	if receipt == nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	resp := TransactionResponse{
		Hash:        receipt.TxHash,
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Return:      ret,
		Logs:        receipt.Logs,
	}
	if err != nil {
		var rev *diamond.Error
		if !errors.As(err, &rev) {
			abort(c, http.StatusInternalServerError, err)
			return
		}
		resp.Revert = rev
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) call(c *gin.Context) {
	args, ok := bindCall(c)
	if !ok {
		return
	}

	ret, err := s.ledger.StaticCall(args.from, args.to, args.value, args.data)
	if err != nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, CallResponse{Return: ret})
}
