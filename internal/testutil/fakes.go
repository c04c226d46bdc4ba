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

// Package testutil provides in-memory stand-ins for the external media and
// transcription toolchains so pipelines and the editing engine can be
// tested without ffmpeg or network access.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cleancut/cleancut/internal/core/model"
)

// TransformerCall records one invocation of the fake transformer.
type TransformerCall struct {
	Op       string
	Input    string
	Inputs   []string
	Output   string
	Segments []model.Segment
	HasVideo bool
	Reencode bool
}

// FakeTransformer implements media.Transformer by writing small marker
// files where real outputs would go and recording every call.
type FakeTransformer struct {
	mu    sync.Mutex
	calls []TransformerCall

	// ProbeResult is returned from Probe; tests override it to control
	// durations for edit validation.
	ProbeResult model.ProbeInfo

	// FailOps lists operation names ("Trim", "MuteSegments", ...) that
	// should return a transform failure instead of succeeding.
	FailOps map[string]bool
}

// NewFakeTransformer returns a fake with a 60s video probe result.
func NewFakeTransformer() *FakeTransformer {
	return &FakeTransformer{
		ProbeResult: model.ProbeInfo{
			DurationSeconds: 60,
			Format:          "mov,mp4,m4a,3gp,3g2,mj2",
			Video:           &model.VideoStreamInfo{Codec: "h264", Resolution: "1920x1080", FPS: "30.00"},
			Audio:           &model.AudioStreamInfo{Codec: "aac", Channels: 2, SampleRate: "48000"},
		},
		FailOps: make(map[string]bool),
	}
}

// Calls returns a snapshot of the recorded invocations.
func (f *FakeTransformer) Calls() []TransformerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]TransformerCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeTransformer) record(call TransformerCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	fail := f.FailOps[call.Op]
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: %s forced to fail", model.ErrTransformFailure, call.Op)
	}
	if call.Output != "" {
		return os.WriteFile(call.Output, []byte(call.Op), 0o644)
	}
	return nil
}

func (f *FakeTransformer) Probe(_ context.Context, inputPath string) (*model.ProbeInfo, error) {
	if err := f.record(TransformerCall{Op: "Probe", Input: inputPath}); err != nil {
		return nil, err
	}
	result := f.ProbeResult
	return &result, nil
}

func (f *FakeTransformer) ConvertContainer(_ context.Context, inputPath, outputPath string, toVideo bool) error {
	return f.record(TransformerCall{Op: "ConvertContainer", Input: inputPath, Output: outputPath, HasVideo: toVideo})
}

func (f *FakeTransformer) ExtractAudioTrack(_ context.Context, inputPath, outputPath string) error {
	return f.record(TransformerCall{Op: "ExtractAudioTrack", Input: inputPath, Output: outputPath})
}

func (f *FakeTransformer) MuteSegments(_ context.Context, inputPath, outputPath string, segs []model.Segment, hasVideo bool) error {
	return f.record(TransformerCall{Op: "MuteSegments", Input: inputPath, Output: outputPath, Segments: segs, HasVideo: hasVideo})
}

func (f *FakeTransformer) Trim(_ context.Context, inputPath, outputPath string, segs []model.Segment) error {
	return f.record(TransformerCall{Op: "Trim", Input: inputPath, Output: outputPath, Segments: segs})
}

func (f *FakeTransformer) Concatenate(_ context.Context, inputPaths []string, outputPath string, reencode bool) error {
	return f.record(TransformerCall{Op: "Concatenate", Inputs: inputPaths, Output: outputPath, Reencode: reencode})
}

// StubTranscriber returns a fixed transcription for every call.
type StubTranscriber struct {
	Result *model.Transcription
	Err    error
}

func (s *StubTranscriber) Transcribe(context.Context, string) (*model.Transcription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return &model.Transcription{FullText: "stub"}, nil
}
