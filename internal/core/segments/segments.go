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

// Package segments validates and canonicalizes client-supplied time-range
// lists before they are dispatched to a media transform.
//
// Two normalization modes exist because the operations differ in ordering
// semantics: mute-style operations apply each range independently, so the
// result is sorted for presentation; trim-and-join concatenates sub-clips
// in the order the caller gave them, so that order must be preserved.
// Both modes deduplicate exact (start, end) pairs.
package segments

import (
	"fmt"
	"sort"

	"github.com/cleancut/cleancut/internal/core/model"
)

// Normalize validates segs against the known source duration (0 means
// unknown; the end bound is then not checked), removes exact duplicates,
// and returns a copy sorted ascending by start time. When requireNonEmpty
// is set an empty list is rejected. All rejections wrap
// model.ErrInvalidInput.
func Normalize(segs []model.Segment, duration float64, requireNonEmpty bool) ([]model.Segment, error) {
	out, err := NormalizeOrdered(segs, duration, requireNonEmpty)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// NormalizeOrdered is Normalize without the sort: validation and exact
// deduplication only, preserving caller-specified ordering. Use this for
// trim-and-join, where segment order defines the output clip order.
func NormalizeOrdered(segs []model.Segment, duration float64, requireNonEmpty bool) ([]model.Segment, error) {
	if requireNonEmpty && len(segs) == 0 {
		return nil, fmt.Errorf("%w: at least one segment is required", model.ErrInvalidInput)
	}

	out := make([]model.Segment, 0, len(segs))
	seen := make(map[model.Segment]struct{}, len(segs))
	for i, s := range segs {
		if err := validate(s, duration); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func validate(s model.Segment, duration float64) error {
	if s.Start < 0 {
		return fmt.Errorf("%w: start %v is negative", model.ErrInvalidInput, s.Start)
	}
	if s.Start >= s.End {
		return fmt.Errorf("%w: start %v must be before end %v", model.ErrInvalidInput, s.Start, s.End)
	}
	if duration > 0 && s.End > duration {
		return fmt.Errorf("%w: end %v exceeds source duration %v", model.ErrInvalidInput, s.End, duration)
	}
	return nil
}
