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

// Package profanity merges the spans flagged by the external transcription
// service with matches against a caller-supplied custom word list.
//
// Matching is exact case-insensitive token equality; there is no stemming
// and no punctuation stripping here (display-side cleanup is the UI's
// concern). A custom match within 0.1s of an already-seeded span on both
// ends is treated as the same occurrence, and the externally flagged span
// wins.
package profanity

import (
	"math"
	"strings"

	"github.com/cleancut/cleancut/internal/core/model"
)

// dedupTolerance is the fixed time proximity, in seconds, under which a
// custom-list match is considered a duplicate of an existing span.
const dedupTolerance = 0.1

// Find returns the combined profanity spans for a transcription. Spans
// flagged by the external detector are seeded first; custom-list matches
// are appended only when no seeded span sits within the dedup tolerance.
// The function has no side effects and is idempotent for a given input.
func Find(tr *model.Transcription, customWords map[string]struct{}) []model.ProfanitySpan {
	spans := make([]model.ProfanitySpan, 0, len(tr.FlaggedProfanity))

	for _, fw := range tr.FlaggedProfanity {
		confidence := fw.Confidence
		if confidence == 0 {
			confidence = 1.0
		}
		spans = append(spans, model.ProfanitySpan{
			Word:       fw.Word,
			Start:      fw.StartTime,
			End:        fw.EndTime,
			Confidence: confidence,
			Source:     model.SpanSourceExternal,
		})
	}

	for _, w := range tr.Words {
		if _, hit := customWords[strings.ToLower(w.Word)]; !hit {
			continue
		}
		if hasNearDuplicate(spans, w.StartTime, w.EndTime) {
			continue
		}
		confidence := w.Confidence
		if confidence == 0 {
			confidence = 1.0
		}
		spans = append(spans, model.ProfanitySpan{
			Word:       w.Word,
			Start:      w.StartTime,
			End:        w.EndTime,
			Confidence: confidence,
			Source:     model.SpanSourceCustom,
		})
	}

	return spans
}

func hasNearDuplicate(spans []model.ProfanitySpan, start, end float64) bool {
	for _, s := range spans {
		if math.Abs(s.Start-start) < dedupTolerance && math.Abs(s.End-end) < dedupTolerance {
			return true
		}
	}
	return false
}

// ActiveSet builds the lowercased word set for one detection request from
// the global custom list and any per-request additions. Passing the set
// explicitly keeps the matcher free of shared mutable state.
func ActiveSet(global []string, extra []string) map[string]struct{} {
	out := make(map[string]struct{}, len(global)+len(extra))
	for _, w := range global {
		out[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range extra {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}
