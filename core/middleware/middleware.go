// Package middleware provides wrappers around MCP tool handlers
package middleware

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler is the shape of an MCP tool handler.
type Handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Middleware wraps a handler with extra behavior.
type Middleware func(Handler) Handler

// Chain applies middlewares so that the first one is the outermost.
func Chain(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// Logging logs every call with its duration and outcome.
func Logging(logger *log.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, request)

			fields := []interface{}{
				"tool", request.Params.Name,
				"duration", time.Since(start),
			}

			switch {
			case err != nil:
				logger.Error("Tool call failed", append(fields, "error", err)...)
			case result != nil && result.IsError:
				logger.Warn("Tool call returned an error result", fields...)
			default:
				logger.Info("Tool call", fields...)
			}

			return result, err
		}
	}
}
