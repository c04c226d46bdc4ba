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

package workflow

import (
	"context"
	"log/slog"

	"github.com/cleancut/cleancut/internal/core/commands"
	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/media"
	"github.com/cleancut/cleancut/internal/transcribe"
)

// TranscriptionWorkflow produces a word-timed transcription for a stored
// media file: extract a compact audio track, enforce the outbound size
// ceiling, and call the speech-to-text gateway.
type TranscriptionWorkflow struct {
	chain cor.Chain
}

// NewTranscriptionWorkflow wires the transcription chain. maxAudioBytes
// bounds the extracted audio; zero disables the check.
func NewTranscriptionWorkflow(transformer media.Transformer, fileManager *files.Manager, transcriber transcribe.Transcriber, maxAudioBytes int64) *TranscriptionWorkflow {
	chain := cor.NewBaseChain("media_transcription").
		AddCommand(commands.NewAudioExtract("audio_extract", transformer, fileManager)).
		AddCommand(commands.NewAudioSizeLimit("audio_size_limit", maxAudioBytes)).
		AddCommand(commands.NewTranscribeAudio("transcribe_audio", transcriber))
	return &TranscriptionWorkflow{chain: chain}
}

// Run transcribes the media at sourcePath. The extracted audio is a
// pipeline temp file and is removed on both the success and failure paths.
func (w *TranscriptionWorkflow) Run(ctx context.Context, sourcePath string) (*model.Transcription, error) {
	pipeline := cor.NewBaseContext()
	defer pipeline.Close()

	pipeline.SetContext(ctx)
	pipeline.Add(cor.CtxIn, &commands.TranscriptionArtifact{SourcePath: sourcePath})

	w.chain.Execute(pipeline)
	if pipeline.HasErrors() {
		err := pipeline.FirstError()
		logger.ErrorContext(ctx, "transcription failed", slog.String("source", sourcePath), slog.Any("error", err))
		return nil, err
	}
	result := pipeline.Get(cor.CtxIn).(*commands.TranscriptionArtifact).Result
	logger.InfoContext(ctx, "transcription complete",
		slog.String("source", sourcePath),
		slog.Int("words", len(result.Words)))
	return result, nil
}
