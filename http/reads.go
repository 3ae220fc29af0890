package http

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/client"
	"github.com/hashleap/diamond/facets/subscription"
)

// FacetView is one loupe entry
type FacetView struct {
	FacetAddress      common.Address `json:"facetAddress"`
	FunctionSelectors []string       `json:"functionSelectors"`
}

// PlanView is a subscription plan with its per-charge amount
type PlanView struct {
	ID              string         `json:"id"`
	Owner           common.Address `json:"owner"`
	Fee             string         `json:"fee"`
	ChargeAmount    string         `json:"chargeAmount"`
	AutoRenew       bool           `json:"autoRenew"`
	Duration        uint16         `json:"duration"`
	PaymentInterval uint16         `json:"paymentInterval"`
	Title           string         `json:"title"`
	Active          bool           `json:"active"`
}

// SubscriptionView is a subscriber's record in a plan
type SubscriptionView struct {
	PlanID     string         `json:"planId"`
	Subscriber common.Address `json:"subscriber"`
	Token      common.Address `json:"token"`
	Start      uint64         `json:"start"`
	LastCharge uint64         `json:"lastCharge"`
}

func selectorStrings(sels [][4]byte) []string {
	out := make([]string, len(sels))
	for i, sel := range sels {
		out[i] = diamond.SelectorHex(sel)
	}
	return out
}

func (s *Server) facets(c *gin.Context) {
	facets, err := s.diamond.Facets(c.Request.Context())
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	out := make([]FacetView, len(facets))
	for i, f := range facets {
		out[i] = FacetView{FacetAddress: f.FacetAddress, FunctionSelectors: selectorStrings(f.FunctionSelectors)}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) facetSelectors(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	sels, err := s.diamond.FacetFunctionSelectors(c.Request.Context(), addr)
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	if len(sels) == 0 {
		abort(c, http.StatusNotFound, fmt.Errorf("no facet at %s", addr.Hex()))
		return
	}
	c.JSON(http.StatusOK, FacetView{FacetAddress: addr, FunctionSelectors: selectorStrings(sels)})
}

func (s *Server) facetAddress(c *gin.Context) {
	sel, err := diamond.ParseSelector(c.Param("selector"))
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	facet, err := s.diamond.FacetAddress(c.Request.Context(), sel)
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	if facet == (common.Address{}) {
		abort(c, http.StatusNotFound, fmt.Errorf("selector %s not routed", diamond.SelectorHex(sel)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"selector": diamond.SelectorHex(sel), "facetAddress": facet})
}

func (s *Server) owner(c *gin.Context) {
	owner, err := s.diamond.Owner(c.Request.Context())
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner})
}

func (s *Server) plan(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	plan, err := s.diamond.GetPlan(c.Request.Context(), id)
	if err != nil {
		abortRead(c, err)
		return
	}
	c.JSON(http.StatusOK, PlanView{
		ID:              id.String(),
		Owner:           plan.Owner,
		Fee:             plan.Fee.String(),
		ChargeAmount:    plan.ChargeAmount().String(),
		AutoRenew:       plan.AutoRenew,
		Duration:        plan.Duration,
		PaymentInterval: plan.PaymentInterval,
		Title:           string(bytes.TrimRight(plan.Title[:], "\x00")),
		Active:          plan.Active,
	})
}

func (s *Server) subscribers(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	subs, err := s.diamond.GetSubscribers(c.Request.Context(), id)
	if err != nil {
		abortRead(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"planId": id.String(), "subscribers": subs})
}

func (s *Server) subscription(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	subscriber, ok := addressParam(c, "address")
	if !ok {
		return
	}
	sub, found, err := s.diamond.GetSubscription(c.Request.Context(), id, subscriber)
	if err != nil {
		abortRead(c, err)
		return
	}
	if !found {
		abort(c, http.StatusNotFound, fmt.Errorf("%s is not subscribed to plan %s", subscriber.Hex(), id))
		return
	}
	c.JSON(http.StatusOK, SubscriptionView{
		PlanID:     id.String(),
		Subscriber: subscriber,
		Token:      sub.Token,
		Start:      sub.Start,
		LastCharge: sub.LastCharge,
	})
}

// events returns decoded diamond events from ?from= (default 0), filtered
// by repeated ?name= parameters
func (s *Server) events(c *gin.Context) {
	var from uint64
	if v := c.Query("from"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			abort(c, http.StatusBadRequest, fmt.Errorf("invalid from block %q", v))
			return
		}
		from = n
	}
	events, err := s.diamond.FilterEvents(c.Request.Context(), from, c.QueryArray("name")...)
	if err != nil {
		if errors.Is(err, client.ErrUnknownEvent) {
			abort(c, http.StatusBadRequest, err)
			return
		}
		abort(c, http.StatusBadGateway, err)
		return
	}
	if events == nil {
		events = []client.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func addressParam(c *gin.Context, name string) (common.Address, bool) {
	v := c.Param(name)
	if !common.IsHexAddress(v) {
		abort(c, http.StatusBadRequest, fmt.Errorf("invalid address %q", v))
		return common.Address{}, false
	}
	return common.HexToAddress(v), true
}

func planIDParam(c *gin.Context) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(c.Param("id"), 10)
	if !ok || id.Sign() < 0 {
		abort(c, http.StatusBadRequest, fmt.Errorf("invalid plan id %q", c.Param("id")))
		return nil, false
	}
	return id, true
}

// abortRead maps plan lookups that revert with PlanNotFound to 404
func abortRead(c *gin.Context, err error) {
	if errors.Is(err, subscription.ErrPlanNotFound) {
		abort(c, http.StatusNotFound, err)
		return
	}
	abort(c, http.StatusBadGateway, err)
}
