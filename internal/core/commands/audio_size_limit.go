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
	"fmt"
	"os"

	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/core/model"
)

// AudioSizeLimit rejects extracted audio above the configured ceiling
// before any bytes leave the machine, so an oversized file fails fast
// instead of burning an upload against the transcription service.
type AudioSizeLimit struct {
	cor.BaseCommand
	maxBytes int64
}

func NewAudioSizeLimit(name string, maxBytes int64) *AudioSizeLimit {
	return &AudioSizeLimit{BaseCommand: *cor.NewBaseCommand(name), maxBytes: maxBytes}
}

func (c *AudioSizeLimit) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*TranscriptionArtifact)

	stat, err := os.Stat(artifact.AudioPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("stat extracted audio: %w", err))
		return
	}
	if c.maxBytes > 0 && stat.Size() > c.maxBytes {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf(
			"%w: extracted audio is %d bytes, limit is %d",
			model.ErrSizeLimitExceeded, stat.Size(), c.maxBytes))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}
