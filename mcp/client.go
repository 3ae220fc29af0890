package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolError is a tool call that returned an error result
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return e.Tool + ": " + e.Message
}

// Client calls the diamond tools over a connected SDK session
type Client struct {
	session *mcpsdk.ClientSession
}

// NewClient wraps a connected session
func NewClient(session *mcpsdk.ClientSession) *Client {
	return &Client{session: session}
}

// Close closes the underlying session
func (c *Client) Close() error {
	return c.session.Close()
}

// Tools lists the names of the server's tools
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	result, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(result.Tools))
	for i, t := range result.Tools {
		names[i] = t.Name
	}
	return names, nil
}

// CallTool invokes a tool and returns its JSON text. An error result is
// returned as *ToolError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (json.RawMessage, error) {
	result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, item := range result.Content {
		if tc, ok := item.(*mcpsdk.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	if result.IsError {
		return nil, &ToolError{Tool: name, Message: text.String()}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty tool result")
	}
	return json.RawMessage(text.String()), nil
}

// CallToolInto invokes a tool and decodes its JSON result into out
func (c *Client) CallToolInto(ctx context.Context, name string, args map[string]interface{}, out interface{}) error {
	raw, err := c.CallTool(ctx, name, args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
