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

// This file defines the error taxonomy shared by every core component.
// Core operations return one of these sentinels wrapped with context via
// fmt.Errorf("...: %w", Err...); only the HTTP layer maps them to client
// statuses, keeping the core transport-agnostic.
package model

import "errors"

var (
	// ErrNotFound reports that a session, file, or version reference does
	// not exist. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput reports a malformed or out-of-range request
	// (segment lists, missing fields, unsupported file types). Raised
	// before any transform is attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransformFailure reports that the external media or transcription
	// engine failed. Surfaced verbatim, no automatic retry, and no partial
	// version is ever recorded for a failed transform.
	ErrTransformFailure = errors.New("transform failure")

	// ErrSizeLimitExceeded reports an audio payload above the configured
	// transcription ceiling.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsSizeLimit reports whether err wraps ErrSizeLimitExceeded.
func IsSizeLimit(err error) bool { return errors.Is(err, ErrSizeLimitExceeded) }
