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

// Package commands contains the atomic pipeline steps for media ingestion
// and transcription. Each command enriches an artifact struct and passes
// it down the chain; a command that fails records its error on the pipeline
// context and produces no output.
package commands

import "github.com/cleancut/cleancut/internal/core/model"

// UploadArtifact is the value piped through the upload chain. SourcePath is
// the multipart staging file; the chain fills in the remaining fields until
// the record builder produces the final FileRecord.
type UploadArtifact struct {
	SourcePath   string
	OriginalName string
	Kind         model.MediaKind
	FileID       string
	StoredPath   string
	Probe        *model.ProbeInfo
	Record       *model.FileRecord
}

// TranscriptionArtifact is the value piped through the transcription chain.
type TranscriptionArtifact struct {
	SourcePath string
	AudioPath  string
	Result     *model.Transcription
}
