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

// Package workflow composes the pipeline commands into the two chains the
// API layer runs: media ingestion and transcription.
package workflow

import (
	"context"
	"log/slog"

	"github.com/cleancut/cleancut/internal/core/commands"
	"github.com/cleancut/cleancut/internal/core/cor"
	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/media"
	"github.com/cleancut/cleancut/internal/telemetry"
)

// logger carries pipeline events through the OpenTelemetry log bridge.
var logger = telemetry.Logger("cleancut/workflow")

// UploadWorkflow ingests one staged upload: sniff the real media type,
// normalize the container into the uploads area, probe the result, and
// build the immutable FileRecord.
type UploadWorkflow struct {
	chain cor.Chain
}

// NewUploadWorkflow wires the ingestion chain.
func NewUploadWorkflow(transformer media.Transformer, fileManager *files.Manager) *UploadWorkflow {
	chain := cor.NewBaseChain("media_upload").
		AddCommand(commands.NewMediaKindSniff("media_kind_sniff")).
		AddCommand(commands.NewContainerNormalize("container_normalize", transformer, fileManager)).
		AddCommand(commands.NewMediaProbe("media_probe", transformer)).
		AddCommand(commands.NewFileRecordBuilder("file_record_builder"))
	return &UploadWorkflow{chain: chain}
}

// Run ingests the staging file and returns the new FileRecord. The staging
// file is registered as a temp file, so it is removed whether the pipeline
// succeeds (after a re-encode) or fails partway.
func (w *UploadWorkflow) Run(ctx context.Context, stagingPath, originalName string) (*model.FileRecord, error) {
	pipeline := cor.NewBaseContext()
	defer pipeline.Close()

	pipeline.SetContext(ctx)
	pipeline.AddTempFile(stagingPath)
	pipeline.Add(cor.CtxIn, &commands.UploadArtifact{
		SourcePath:   stagingPath,
		OriginalName: originalName,
	})

	w.chain.Execute(pipeline)
	if pipeline.HasErrors() {
		err := pipeline.FirstError()
		logger.ErrorContext(ctx, "media ingest failed", slog.String("file", originalName), slog.Any("error", err))
		return nil, err
	}
	record := pipeline.Get(cor.CtxIn).(*commands.UploadArtifact).Record
	logger.InfoContext(ctx, "media ingested",
		slog.String("file", originalName),
		slog.String("id", record.ID),
		slog.String("kind", string(record.MediaKind)))
	return record, nil
}
