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
	"github.com/cleancut/cleancut/internal/media"
)

// MediaProbe captures stream metadata for the stored file. Probing runs
// synchronously in the upload pipeline so every FileRecord carries its
// duration from the moment it exists; edit validation depends on that.
type MediaProbe struct {
	cor.BaseCommand
	transformer media.Transformer
}

func NewMediaProbe(name string, transformer media.Transformer) *MediaProbe {
	return &MediaProbe{BaseCommand: *cor.NewBaseCommand(name), transformer: transformer}
}

func (c *MediaProbe) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*UploadArtifact)

	info, err := c.transformer.Probe(context.GetContext(), artifact.StoredPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	artifact.Probe = info

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}
