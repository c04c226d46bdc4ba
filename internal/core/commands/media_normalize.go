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
	"os"
	"path/filepath"
	"strings"

	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/media"
)

// ContainerNormalize moves a staged upload into the uploads area under a
// fresh file id, re-encoding into the canonical container (mp4 for video,
// mp3 for audio) when the source container differs. Files already in the
// canonical container are renamed, not re-encoded.
type ContainerNormalize struct {
	cor.BaseCommand
	transformer media.Transformer
	files       *files.Manager
}

func NewContainerNormalize(name string, transformer media.Transformer, files *files.Manager) *ContainerNormalize {
	return &ContainerNormalize{
		BaseCommand: *cor.NewBaseCommand(name),
		transformer: transformer,
		files:       files,
	}
}

func (c *ContainerNormalize) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*UploadArtifact)

	ext := files.CanonicalExt(artifact.Kind == model.MediaKindVideo)
	artifact.FileID = c.files.NewFileID()
	artifact.StoredPath = c.files.UploadPath(artifact.FileID, ext)

	var err error
	if strings.EqualFold(filepath.Ext(artifact.SourcePath), ext) {
		err = os.Rename(artifact.SourcePath, artifact.StoredPath)
	} else {
		err = c.transformer.ConvertContainer(context.GetContext(),
			artifact.SourcePath, artifact.StoredPath, artifact.Kind == model.MediaKindVideo)
	}
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}
