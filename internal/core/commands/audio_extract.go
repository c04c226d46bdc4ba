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
	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/media"
)

// AudioExtract renders a compact mono 16kHz mp3 of the source's audio
// track into the temp area. The output is always re-encoded, even for
// audio uploads: the downsample is what keeps the payload under the
// transcription service's size ceiling. The temp file is registered on
// the pipeline context so Close removes it on every exit path.
type AudioExtract struct {
	cor.BaseCommand
	transformer media.Transformer
	files       *files.Manager
}

func NewAudioExtract(name string, transformer media.Transformer, files *files.Manager) *AudioExtract {
	return &AudioExtract{
		BaseCommand: *cor.NewBaseCommand(name),
		transformer: transformer,
		files:       files,
	}
}

func (c *AudioExtract) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*TranscriptionArtifact)

	artifact.AudioPath = c.files.TempPath("audio", ".mp3")
	context.AddTempFile(artifact.AudioPath)

	if err := c.transformer.ExtractAudioTrack(context.GetContext(), artifact.SourcePath, artifact.AudioPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}
