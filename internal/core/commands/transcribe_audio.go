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

package commands

import (
	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/transcribe"
)

// TranscribeAudio sends the extracted audio to the speech-to-text gateway
// and stores the normalized transcription on the artifact. The terminal
// command of the transcription chain.
type TranscribeAudio struct {
	cor.BaseCommand
	transcriber transcribe.Transcriber
}

func NewTranscribeAudio(name string, transcriber transcribe.Transcriber) *TranscribeAudio {
	return &TranscribeAudio{BaseCommand: *cor.NewBaseCommand(name), transcriber: transcriber}
}

func (c *TranscribeAudio) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*TranscriptionArtifact)

	result, err := c.transcriber.Transcribe(context.GetContext(), artifact.AudioPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	artifact.Result = result

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}
