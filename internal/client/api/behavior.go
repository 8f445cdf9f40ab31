package api

import (
	"context"
	"maps"

	"github.com/dmitrijs2005/scansync/internal/logging"
)

// RequestBehavior customizes every call made by a Client.
//
// BeforeSend runs once before dispatch. Exactly one of AfterSuccess and
// AfterError runs once after the terminal event.
type RequestBehavior interface {
	AdditionalHeaders() map[string]string
	BeforeSend(ctx context.Context, req *Request)
	AfterSuccess(ctx context.Context, req *Request)
	AfterError(ctx context.Context, req *Request, err error)
}

type EmptyRequestBehavior struct{}

func (EmptyRequestBehavior) AdditionalHeaders() map[string]string        { return nil }
func (EmptyRequestBehavior) BeforeSend(context.Context, *Request)        {}
func (EmptyRequestBehavior) AfterSuccess(context.Context, *Request)      {}
func (EmptyRequestBehavior) AfterError(context.Context, *Request, error) {}

// LoggingBehavior adds configured default headers and logs every call.
type LoggingBehavior struct {
	log     logging.Logger
	headers map[string]string
}

func NewLoggingBehavior(log logging.Logger, headers map[string]string) *LoggingBehavior {
	return &LoggingBehavior{log: log.With("component", "api"), headers: maps.Clone(headers)}
}

func (b *LoggingBehavior) AdditionalHeaders() map[string]string {
	return maps.Clone(b.headers)
}

func (b *LoggingBehavior) BeforeSend(ctx context.Context, req *Request) {
	b.log.Debug(ctx, "request sent", "method", req.Method, "endpoint", req.Endpoint)
}

func (b *LoggingBehavior) AfterSuccess(ctx context.Context, req *Request) {
	b.log.Info(ctx, "request succeeded", "method", req.Method, "endpoint", req.Endpoint)
}

func (b *LoggingBehavior) AfterError(ctx context.Context, req *Request, err error) {
	b.log.Warn(ctx, "request failed", "method", req.Method, "endpoint", req.Endpoint, "error", err)
}
