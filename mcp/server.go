package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/client"
)

// ServerName is reported in the MCP handshake
const ServerName = "diamond"

// ToolHandler handles one tool call with decoded arguments. The returned
// value is marshalled to JSON text content; an error becomes an error
// result.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

type tool struct {
	name        string
	description string
	schema      string
	handler     ToolHandler
}

type options struct {
	logger  logrus.FieldLogger
	version string
}

// Option configures NewServer
type Option func(*options)

// WithLogger logs every tool call
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVersion sets the implementation version
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// NewServer registers the diamond tools over d
func NewServer(d *client.Diamond, opts ...Option) *mcpsdk.Server {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	o := &options{logger: discard, version: "dev"}
	for _, opt := range opts {
		opt(o)
	}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    ServerName,
		Version: o.version,
	}, nil)

	for _, t := range tools(d) {
		server.AddTool(&mcpsdk.Tool{
			Name:        t.name,
			Description: t.description,
			InputSchema: json.RawMessage(t.schema),
		}, wrap(t, o.logger))
	}
	return server
}

// Handler serves server over the SSE transport
func Handler(server *mcpsdk.Server) http.Handler {
	return mcpsdk.NewSSEHandler(func(req *http.Request) *mcpsdk.Server {
		return server
	}, &mcpsdk.SSEOptions{})
}

func wrap(t tool, logger logrus.FieldLogger) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		args := make(map[string]interface{})
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Errorf("failed to unmarshal arguments: %w", err)), nil
			}
		}

		log := logger.WithField("tool", t.name)
		out, err := t.handler(ctx, args)
		if err != nil {
			log.WithError(err).Warn("tool call failed")
			return errorResult(err), nil
		}
		log.Debug("tool call served")
		return jsonResult(out)
	}
}

type facetView struct {
	FacetAddress      common.Address `json:"facetAddress"`
	FunctionSelectors []string       `json:"functionSelectors"`
}

type planView struct {
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

func tools(d *client.Diamond) []tool {
	return []tool{
		{
			name:        "list_facets",
			description: "List the facets of the diamond and the selectors each one serves",
			schema:      `{"type": "object"}`,
			handler: func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
				facets, err := d.Facets(ctx)
				if err != nil {
					return nil, err
				}
				out := make([]facetView, len(facets))
				for i, f := range facets {
					sels := make([]string, len(f.FunctionSelectors))
					for j, sel := range f.FunctionSelectors {
						sels[j] = diamond.SelectorHex(sel)
					}
					out[i] = facetView{FacetAddress: f.FacetAddress, FunctionSelectors: sels}
				}
				return out, nil
			},
		},
		{
			name:        "facet_address",
			description: "Find the facet that serves a 4-byte function selector",
			schema:      `{"type": "object", "properties": {"selector": {"type": "string", "description": "0x-prefixed 4-byte selector"}}, "required": ["selector"]}`,
			handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				s, err := stringArg(args, "selector")
				if err != nil {
					return nil, err
				}
				sel, err := diamond.ParseSelector(s)
				if err != nil {
					return nil, err
				}
				facet, err := d.FacetAddress(ctx, sel)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"selector":     diamond.SelectorHex(sel),
					"facetAddress": facet,
					"routed":       facet != (common.Address{}),
				}, nil
			},
		},
		{
			name:        "owner",
			description: "Return the owner of the diamond",
			schema:      `{"type": "object"}`,
			handler: func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
				owner, err := d.Owner(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"owner": owner}, nil
			},
		},
		{
			name:        "get_plan",
			description: "Read a subscription plan by id",
			schema:      `{"type": "object", "properties": {"plan_id": {"type": ["integer", "string"]}}, "required": ["plan_id"]}`,
			handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id, err := bigIntArg(args, "plan_id")
				if err != nil {
					return nil, err
				}
				plan, err := d.GetPlan(ctx, id)
				if err != nil {
					return nil, client.DecodeError(err)
				}
				return planView{
					ID:              id.String(),
					Owner:           plan.Owner,
					Fee:             plan.Fee.String(),
					ChargeAmount:    plan.ChargeAmount().String(),
					AutoRenew:       plan.AutoRenew,
					Duration:        plan.Duration,
					PaymentInterval: plan.PaymentInterval,
					Title:           string(bytes.TrimRight(plan.Title[:], "\x00")),
					Active:          plan.Active,
				}, nil
			},
		},
		{
			name:        "is_subscribed",
			description: "Report whether an address holds a subscription to a plan",
			schema:      `{"type": "object", "properties": {"plan_id": {"type": ["integer", "string"]}, "subscriber": {"type": "string"}}, "required": ["plan_id", "subscriber"]}`,
			handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id, err := bigIntArg(args, "plan_id")
				if err != nil {
					return nil, err
				}
				subscriber, err := addressArg(args, "subscriber")
				if err != nil {
					return nil, err
				}
				ok, err := d.IsPlanSubscribed(ctx, id, subscriber)
				if err != nil {
					return nil, client.DecodeError(err)
				}
				return map[string]interface{}{
					"planId":     id.String(),
					"subscriber": subscriber,
					"subscribed": ok,
				}, nil
			},
		},
		{
			name:        "list_events",
			description: "List decoded diamond events, optionally filtered by event name",
			schema:      `{"type": "object", "properties": {"names": {"type": "array", "items": {"type": "string"}}, "from_block": {"type": "integer"}}}`,
			handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				names, err := stringsArg(args, "names")
				if err != nil {
					return nil, err
				}
				var from uint64
				if _, ok := args["from_block"]; ok {
					n, err := bigIntArg(args, "from_block")
					if err != nil {
						return nil, err
					}
					from = n.Uint64()
				}
				events, err := d.FilterEvents(ctx, from, names...)
				if err != nil {
					return nil, err
				}
				if events == nil {
					events = []client.Event{}
				}
				return events, nil
			},
		},
	}
}
