// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) provides the building blocks for
// composing media pipelines as sequences of commands. A Command is an
// atomic unit of work; a Chain executes commands in order, piping the
// output of one into the input of the next through a shared Context.
// Chains are themselves Commands, so pipelines can nest.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used by a chain to pipe the primary value
// between commands: after each command runs, the value under CtxOut is
// moved to CtxIn for the next command.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state bag for a single pipeline execution. It
// carries data between commands, collects errors, and tracks temporary
// files so they can be removed when the pipeline finishes.
type Context interface {
	// SetContext sets the standard Go context, used for cancellation and
	// for carrying the active trace span between commands.
	SetContext(ctx context.Context)

	// GetContext retrieves the standard Go context.
	GetContext() context.Context

	// Add stores a key-value pair; returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get retrieves a value by key, or nil when absent.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// AddError records an error under the name of the failing command.
	AddError(key string, err error)

	// GetErrors returns all recorded errors keyed by command name.
	GetErrors() map[string]error

	// FirstError returns the earliest recorded error, or nil. This is what
	// callers surface to clients, so the first failure wins.
	FirstError() error

	// HasErrors reports whether any error has been recorded.
	HasErrors() bool

	// AddTempFile tracks a transient file for cleanup in Close.
	AddTempFile(file string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// Close removes tracked temporary files. Defer it at pipeline start so
	// cleanup happens on both the success and failure paths.
	Close()
}

// Executable is anything with core execution logic against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, testable unit of work within a pipeline.
type Command interface {
	Executable

	// GetName returns the command name used in logs, spans, and metrics.
	GetName() string

	// GetInputParam returns the context key for the command's primary input.
	GetInputParam() string

	// GetOutputParam returns the context key for the command's primary output.
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetSuccessCounter returns the metric counter for successful runs.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the metric counter for failed runs.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. It is itself a Command so
// chains can be nested (composite pattern).
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing
	// after a command records an error. Default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
