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
	"path/filepath"
	"time"

	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/core/model"
)

// FileRecordBuilder assembles the immutable FileRecord from everything the
// earlier commands gathered. It is the terminal command of the upload chain.
type FileRecordBuilder struct {
	cor.BaseCommand
}

func NewFileRecordBuilder(name string) *FileRecordBuilder {
	return &FileRecordBuilder{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *FileRecordBuilder) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(*UploadArtifact)

	stat, err := os.Stat(artifact.StoredPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("stat stored file: %w", err))
		return
	}

	artifact.Record = &model.FileRecord{
		ID:             artifact.FileID,
		OriginalName:   artifact.OriginalName,
		StoredFilename: filepath.Base(artifact.StoredPath),
		SizeBytes:      stat.Size(),
		MediaKind:      artifact.Kind,
		UploadedAt:     time.Now(),
		Probe:          artifact.Probe,
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), artifact)
}
