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

// Package media wraps the external transcode toolchain behind a small
// interface so the editing engine and the pipelines can be tested without
// binaries on the path.
package media

import (
	"context"

	"github.com/cleancut/cleancut/internal/core/model"
)

// Transformer is the set of media operations the system needs. Every call
// reads inputPath and writes a complete new file at outputPath; inputs are
// never modified in place.
type Transformer interface {
	// Probe inspects a media file and reports stream-level metadata.
	Probe(ctx context.Context, inputPath string) (*model.ProbeInfo, error)

	// ConvertContainer re-wraps (and re-encodes where needed) the input
	// into the canonical storage container: mp4 for video, mp3 for audio.
	ConvertContainer(ctx context.Context, inputPath, outputPath string, toVideo bool) error

	// ExtractAudioTrack writes a mono 16kHz mp3 of the input's audio,
	// sized for the transcription service.
	ExtractAudioTrack(ctx context.Context, inputPath, outputPath string) error

	// MuteSegments silences the given time ranges on the audio track.
	// When hasVideo is set the video stream is stream-copied untouched.
	MuteSegments(ctx context.Context, inputPath, outputPath string, segs []model.Segment, hasVideo bool) error

	// Trim keeps only the given ranges. A single range is cut directly;
	// multiple ranges are cut and joined in the order given.
	Trim(ctx context.Context, inputPath, outputPath string, segs []model.Segment) error

	// Concatenate joins the inputs in order into one output file. With
	// reencode set, every input is normalized to a common format first,
	// which is required when the inputs came from different sources.
	Concatenate(ctx context.Context, inputPaths []string, outputPath string, reencode bool) error
}
