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

package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cleancut/cleancut/internal/core/model"
)

// MergeFiles concatenates two or more of a session's uploaded videos, in
// full and in the order given, into a single new version. Unlike MultiJoin
// no segments are cut and no re-encoding happens: the streams are copied,
// which is fast and lossless but assumes the uploads share compatible
// codecs (the ingestion pipeline normalizes everything to mp4). A failure
// records nothing.
func (e *Engine) MergeFiles(ctx context.Context, sessionID string, fileIDs []string, outputName string) (*EditResult, error) {
	if len(fileIDs) < 2 {
		return nil, fmt.Errorf("%w: merging requires at least two files", model.ErrInvalidInput)
	}

	state, ok := e.store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	// Validate everything before touching the filesystem.
	inputPaths := make([]string, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		record := findRecord(state.Session, fileID)
		if record == nil {
			return nil, fmt.Errorf("%w: file %s in session %s", model.ErrNotFound, fileID, sessionID)
		}
		if record.MediaKind != model.MediaKindVideo {
			return nil, fmt.Errorf("%w: file %s is not a video", model.ErrInvalidInput, fileID)
		}
		inputPaths = append(inputPaths, filepath.Join(e.files.UploadsDir(), record.StoredFilename))
	}

	if outputName == "" {
		outputName = "merged_video"
	}
	targetVersion := state.Session.CurrentVersion + 1
	mergedName := e.files.JoinOutputName(outputName, targetVersion, ".mp4")
	mergedPath := e.files.ProcessedPath(mergedName)

	if err := e.transformer.Concatenate(ctx, inputPaths, mergedPath, false); err != nil {
		e.files.Remove(mergedPath)
		return nil, err
	}

	entry := &model.EditEntry{
		Version:        targetVersion,
		Operation:      model.OpMerge,
		OutputFilename: mergedName,
		SourceVersion:  model.SourceVersionMultiple,
		Timestamp:      time.Now(),
		FileIDs:        fileIDs,
	}
	state.Session.CurrentVersion = targetVersion
	state.History = append(state.History, entry)

	return &EditResult{Version: targetVersion, OutputFilename: mergedName, Entry: entry}, nil
}
