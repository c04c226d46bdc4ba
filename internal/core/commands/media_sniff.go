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
	"io"
	"os"

	"github.com/h2non/filetype"

	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/core/model"
)

// MediaKindSniff classifies an uploaded file as video or audio by its
// magic bytes, never by filename extension or client-supplied MIME type.
// Anything else is rejected as invalid input.
type MediaKindSniff struct {
	cor.BaseCommand
}

func NewMediaKindSniff(name string) *MediaKindSniff {
	return &MediaKindSniff{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *MediaKindSniff) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*UploadArtifact)

	kind, err := sniffKind(artifact.SourcePath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	artifact.Kind = kind

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}

func sniffKind(path string) (model.MediaKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening upload for type detection: %w", err)
	}
	defer f.Close()

	// 261 bytes is the longest magic-number prefix filetype inspects.
	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading upload header: %w", err)
	}

	t, err := filetype.Match(head[:n])
	if err != nil {
		return "", fmt.Errorf("detecting file type: %w", err)
	}
	switch t.MIME.Type {
	case "video":
		return model.MediaKindVideo, nil
	case "audio":
		return model.MediaKindAudio, nil
	}
	return "", fmt.Errorf("%w: unsupported media type %q, expected video or audio",
		model.ErrInvalidInput, t.MIME.Value)
}
