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
	"sync"
	"time"

	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/core/segments"
)

// clipTask is one segment extraction within a multi-video join. Index
// preserves the caller's ordering across the parallel workers.
type clipTask struct {
	index      int
	sourcePath string
	segment    model.Segment
	tempPath   string
}

// MultiJoin cuts segments from several of a session's videos and joins
// them into a single new version. Clips appear in the output exactly in
// the order given: first by the order of the video entries, then by the
// order of the segments within each entry. Every clip extraction writes
// to the temp area; the final concatenation re-encodes so mismatched
// sources still join cleanly. A failure anywhere records nothing.
func (e *Engine) MultiJoin(ctx context.Context, sessionID string, videos []model.VideoSegments, outputName string) (*EditResult, error) {
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: at least one video with segments is required", model.ErrInvalidInput)
	}

	state, ok := e.store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	// Validate everything before touching the filesystem.
	var tasks []clipTask
	for i, vs := range videos {
		record := findRecord(state.Session, vs.VideoID)
		if record == nil {
			return nil, fmt.Errorf("%w: file %s in session %s", model.ErrNotFound, vs.VideoID, sessionID)
		}
		if record.MediaKind != model.MediaKindVideo {
			return nil, fmt.Errorf("%w: file %s is not a video", model.ErrInvalidInput, vs.VideoID)
		}
		duration := 0.0
		if record.Probe != nil {
			duration = record.Probe.DurationSeconds
		}
		segs, err := segments.NormalizeOrdered(vs.Segments, duration, true)
		if err != nil {
			return nil, fmt.Errorf("video %d (%s): %w", i, vs.VideoID, err)
		}
		videos[i].Segments = segs
		sourcePath := filepath.Join(e.files.UploadsDir(), record.StoredFilename)
		for _, seg := range segs {
			tasks = append(tasks, clipTask{
				index:      len(tasks),
				sourcePath: sourcePath,
				segment:    seg,
				tempPath:   e.files.TempPath("join_clip", ".mp4"),
			})
		}
	}

	defer func() {
		for _, task := range tasks {
			e.files.Remove(task.tempPath)
		}
	}()

	if err := e.extractClips(ctx, tasks); err != nil {
		return nil, err
	}

	targetVersion := state.Session.CurrentVersion + 1
	joinedName := e.files.JoinOutputName(outputName, targetVersion, ".mp4")
	joinedPath := e.files.ProcessedPath(joinedName)

	clipPaths := make([]string, len(tasks))
	for i, task := range tasks {
		clipPaths[i] = task.tempPath
	}
	if err := e.transformer.Concatenate(ctx, clipPaths, joinedPath, true); err != nil {
		e.files.Remove(joinedPath)
		return nil, err
	}

	entry := &model.EditEntry{
		Version:        targetVersion,
		Operation:      model.OpMultiTrimJoin,
		OutputFilename: joinedName,
		SourceVersion:  model.SourceVersionMultiple,
		Timestamp:      time.Now(),
		VideoSegments:  videos,
	}
	state.Session.CurrentVersion = targetVersion
	state.History = append(state.History, entry)

	return &EditResult{Version: targetVersion, OutputFilename: joinedName, Entry: entry}, nil
}

// extractClips cuts every task's segment in parallel, bounded by the
// engine's worker count. The first error wins; remaining workers drain
// the queue without starting new transforms.
func (e *Engine) extractClips(ctx context.Context, tasks []clipTask) error {
	queue := make(chan clipTask, len(tasks))
	for _, task := range tasks {
		queue <- task
	}
	close(queue)

	workers := e.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				mu.Lock()
				failed := firstErr != nil
				mu.Unlock()
				if failed {
					continue
				}
				err := e.transformer.Trim(ctx, task.sourcePath, task.tempPath, []model.Segment{task.segment})
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("clip %d: %w", task.index, err)
					}
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
