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

package transcribe

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/cleancut/cleancut/internal/core/model"
)

// RateLimited decorates a Transcriber with a client-side request-per-minute
// budget so the server degrades gracefully instead of tripping the
// service's quota. Wait blocks until a slot opens or the context ends.
type RateLimited struct {
	inner   Transcriber
	limiter *rate.Limiter
}

// NewRateLimited wraps inner with a limiter of requestsPerMinute. A zero or
// negative budget disables limiting.
func NewRateLimited(inner Transcriber, requestsPerMinute int) *RateLimited {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (r *RateLimited) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Transcribe(ctx, audioPath)
}
