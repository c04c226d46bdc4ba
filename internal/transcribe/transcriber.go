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

// Package transcribe turns an audio file into a word-timed transcription
// via an external speech-to-text service.
package transcribe

import (
	"context"

	"github.com/cleancut/cleancut/internal/core/model"
)

// Transcriber converts the audio at audioPath into a transcription with
// word-level timing. Implementations must be safe for concurrent use.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error)
}
