package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-server-weaviate/core"
	"github.com/theapemachine/mcp-server-weaviate/core/middleware"
)

// Registry owns the tools exposed by the server and dispatches calls to them.
type Registry struct {
	server      *server.MCPServer
	mu          sync.RWMutex
	tools       map[string]core.Tool
	middlewares []middleware.Middleware
}

// NewRegistry creates a new tool registry. A nil server keeps the registry
// usable on its own, which is how the tests drive it.
func NewRegistry(mcpServer *server.MCPServer) *Registry {
	return &Registry{
		server: mcpServer,
		tools:  make(map[string]core.Tool),
	}
}

// Use adds middlewares around every tool handler. The first one added is the
// outermost.
func (r *Registry) Use(middlewares ...middleware.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middlewares = append(r.middlewares, middlewares...)
}

// RegisterTool registers a tool with the registry and the server. Calls that
// arrive through the server go through Call, so lookup and validation happen
// in one place.
func (r *Registry) RegisterTool(tool core.Tool) {
	handle := tool.Handle()

	r.mu.Lock()
	r.tools[handle.Name] = tool
	r.mu.Unlock()

	if r.server != nil {
		r.server.AddTool(handle, r.Call)
	}

	log.Debug("Registered tool", "name", handle.Name)
}

// Tools lists the registered tool descriptors sorted by name.
func (r *Registry) Tools() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]mcp.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		handles = append(handles, tool.Handle())
	}

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].Name < handles[j].Name
	})

	return handles
}

// Lookup returns the tool registered under the exact name.
func (r *Registry) Lookup(name string) (core.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	return tool, nil
}

type outcome struct {
	result *mcp.CallToolResult
	err    error
}

// Call looks the tool up, validates the arguments and runs the handler in its
// own goroutine. Every failure becomes an error result; only a cancelled
// context is returned as an error.
func (r *Registry) Call(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name

	tool, err := r.Lookup(name)
	if err != nil {
		log.Warn("Unknown tool", "name", name)
		return mcp.NewToolResultError(fmt.Sprintf("Unknown tool: %s", name)), nil
	}

	if err := Validate(tool.Handle().InputSchema, request.Params.Arguments); err != nil {
		return NewErrorResult(fmt.Errorf("%w for %s: %v", ErrInvalidParams, name, err)), nil
	}

	r.mu.RLock()
	handler := middleware.Chain(tool.Handler, r.middlewares...)
	r.mu.RUnlock()

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("Tool panicked", "name", name, "panic", recovered)
				done <- outcome{err: fmt.Errorf("%s failed: %v", name, recovered)}
			}
		}()

		result, err := handler(ctx, request)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			log.Error("Tool failed", "name", name, "error", out.err)
			return NewErrorResult(out.err), nil
		}

		return out.result, nil
	}
}
