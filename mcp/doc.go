// Package mcp exposes read-only diamond tools to MCP (Model Context
// Protocol) clients.
//
// # Server Usage
//
// Build a server over a typed diamond client and serve it over SSE:
//
//	import (
//	    "github.com/hashleap/diamond/client"
//	    "github.com/hashleap/diamond/mcp"
//	)
//
//	d := client.New(diamondAddress, backend)
//	server := mcp.NewServer(d, mcp.WithLogger(logger))
//	http.Handle("/sse", mcp.Handler(server))
//
// # Tools
//
//	list_facets      facets and their selectors
//	facet_address    facet serving a 4-byte selector
//	owner            diamond owner
//	get_plan         subscription plan by id
//	is_subscribed    whether an address holds a subscription to a plan
//	list_events      decoded diamond events, optionally filtered by name
//
// # Client Usage
//
// Client wraps a connected SDK session and returns tool results as JSON:
//
//	session, _ := mcpsdk.NewClient(impl, nil).Connect(ctx, transport, nil)
//	c := mcp.NewClient(session)
//	raw, err := c.CallTool(ctx, "get_plan", map[string]interface{}{"plan_id": 0})
package mcp
