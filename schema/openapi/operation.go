package openapi

import (
	"fmt"
	"strings"
)

var supportedMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// Operation is one path item method. Request and response bodies hold either
// a schemagen.DataContract or any value the generator's ContractResolver
// understands.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Request     any
	Responses   []Response
}

// Response is one status entry of an operation.
type Response struct {
	Status      string
	Description string
	Body        any
}

// OperationOption configures an Operation.
type OperationOption func(*Operation)

// WithSummary attaches a summary to the operation.
func WithSummary(summary string) OperationOption {
	return func(op *Operation) {
		op.Summary = strings.TrimSpace(summary)
	}
}

// WithRequestBody sets the request body contract.
func WithRequestBody(body any) OperationOption {
	return func(op *Operation) {
		op.Request = body
	}
}

// WithResponse adds a response. A nil body produces a response without
// content.
func WithResponse(status, description string, body any) OperationOption {
	return func(op *Operation) {
		op.Responses = append(op.Responses, Response{
			Status:      status,
			Description: description,
			Body:        body,
		})
	}
}

func newOperation(path, method, operationID string, opts ...OperationOption) Operation {
	op := Operation{
		Path:        strings.TrimSpace(path),
		Method:      strings.ToLower(strings.TrimSpace(method)),
		OperationID: strings.TrimSpace(operationID),
	}
	if op.Method == "" {
		op.Method = "get"
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&op)
		}
	}
	if op.OperationID == "" {
		op.OperationID = fmt.Sprintf("%s:%s", op.Method, op.Path)
	}
	if len(op.Responses) == 0 {
		op.Responses = []Response{{Status: "204", Description: "No Content"}}
	}
	return op
}

func (op Operation) validate() error {
	if !strings.HasPrefix(op.Path, "/") {
		return fmt.Errorf("openapi: path %q must start with /", op.Path)
	}
	if !supportedMethods[op.Method] {
		return fmt.Errorf("openapi: operation %s %s: unsupported method", op.Method, op.Path)
	}
	for _, resp := range op.Responses {
		if resp.Status == "" {
			return fmt.Errorf("openapi: operation %s %s: response status must be set", op.Method, op.Path)
		}
	}
	return nil
}
