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
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/core/segments"
	"github.com/cleancut/cleancut/internal/media"
)

// Engine applies non-destructive edits to session media. Every edit reads
// an existing file (an original upload or a prior version's output) and
// writes a brand-new file in the processed area; sources are never
// modified. The engine owns version numbering: numbers are assigned under
// the session lock in completion order, increment only when the transform
// succeeds, and are never reused.
type Engine struct {
	store       Store
	files       *files.Manager
	transformer media.Transformer
	workers     int
}

// NewEngine creates the editing engine. workers bounds the parallel clip
// extraction in multi-video joins.
func NewEngine(store Store, fileManager *files.Manager, transformer media.Transformer, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		store:       store,
		files:       fileManager,
		transformer: transformer,
		workers:     workers,
	}
}

// EditRequest describes one single-source edit.
type EditRequest struct {
	SessionID string
	FileID    string
	Operation model.OperationType
	Segments  []model.Segment
	// JoinSegments selects the trim mode: false keeps a single range,
	// true cuts every range and joins them in the order given.
	JoinSegments bool
	// SourceVersion is "original" (or empty) for the uploaded file, or the
	// decimal string of an existing version to edit on top of it.
	SourceVersion string
}

// EditResult reports a successfully recorded edit.
type EditResult struct {
	Version        int
	OutputFilename string
	Entry          *model.EditEntry
}

// CreateSession registers a new empty session and returns it.
func (e *Engine) CreateSession() *model.Session {
	session := &model.Session{
		ID:        uuid.NewString(),
		Videos:    make([]*model.FileRecord, 0),
		CreatedAt: time.Now(),
	}
	e.store.Put(&State{Session: session})
	return session
}

// AddFile attaches an uploaded file record to a session.
func (e *Engine) AddFile(sessionID string, record *model.FileRecord) error {
	state, ok := e.store.Get(sessionID)
	if !ok {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.Session.Videos = append(state.Session.Videos, record)
	return nil
}

// ResolveSource maps (fileID, sourceVersion) to the absolute path of the
// media an operation should read, plus the file's record. sourceVersion is
// "original" or empty for the upload itself, or the decimal string of a
// previously recorded version.
func (e *Engine) ResolveSource(sessionID, fileID, sourceVersion string) (string, *model.FileRecord, error) {
	state, ok := e.store.Get(sessionID)
	if !ok {
		return "", nil, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	path, record, _, err := e.resolveLocked(state, fileID, sourceVersion)
	return path, record, err
}

// resolveLocked performs source resolution with the session lock held.
// The returned duration is the source's length in seconds when known
// (original uploads carry it from the synchronous probe) or zero when it
// is not; derived outputs are not re-probed.
func (e *Engine) resolveLocked(state *State, fileID, sourceVersion string) (string, *model.FileRecord, float64, error) {
	record := findRecord(state.Session, fileID)
	if record == nil {
		return "", nil, 0, fmt.Errorf("%w: file %s in session %s", model.ErrNotFound, fileID, state.Session.ID)
	}

	if sourceVersion == "" || sourceVersion == model.SourceVersionOriginal {
		duration := 0.0
		if record.Probe != nil {
			duration = record.Probe.DurationSeconds
		}
		return filepath.Join(e.files.UploadsDir(), record.StoredFilename), record, duration, nil
	}

	version, err := strconv.Atoi(sourceVersion)
	if err != nil || version < 1 {
		return "", nil, 0, fmt.Errorf("%w: source version %q", model.ErrInvalidInput, sourceVersion)
	}
	for _, entry := range state.History {
		if entry.Version == version {
			return e.files.ProcessedPath(entry.OutputFilename), record, 0, nil
		}
	}
	return "", nil, 0, fmt.Errorf("%w: version %d in session %s", model.ErrNotFound, version, state.Session.ID)
}

// ApplyEdit validates, executes, and records one single-source edit. The
// session lock is held for the full sequence so concurrent edits on the
// same session serialize and the version counter equals the number of
// successful edits. A failed transform records nothing.
func (e *Engine) ApplyEdit(ctx context.Context, req EditRequest) (*EditResult, error) {
	state, ok := e.store.Get(req.SessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", model.ErrNotFound, req.SessionID)
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	sourcePath, record, duration, err := e.resolveLocked(state, req.FileID, req.SourceVersion)
	if err != nil {
		return nil, err
	}

	isVideo := record.MediaKind == model.MediaKindVideo
	ext := files.CanonicalExt(isVideo)

	targetVersion := state.Session.CurrentVersion + 1
	outputName := e.files.ProcessedName(record.ID, targetVersion, req.Operation.ShortName(), ext)
	outputPath := e.files.ProcessedPath(outputName)

	switch req.Operation {
	case model.OpAudioRemoval, model.OpProfanity:
		segs, err := segments.Normalize(req.Segments, duration, true)
		if err != nil {
			return nil, err
		}
		req.Segments = segs
		err = e.transformer.MuteSegments(ctx, sourcePath, outputPath, segs, isVideo)
		if err != nil {
			e.files.Remove(outputPath)
			return nil, err
		}

	case model.OpTrim:
		if !isVideo {
			return nil, fmt.Errorf("%w: trim requires a video source", model.ErrInvalidInput)
		}
		segs, err := segments.NormalizeOrdered(req.Segments, duration, true)
		if err != nil {
			return nil, err
		}
		if len(segs) > 1 && !req.JoinSegments {
			return nil, fmt.Errorf("%w: multiple trim segments require joinSegments", model.ErrInvalidInput)
		}
		req.Segments = segs
		err = e.transformer.Trim(ctx, sourcePath, outputPath, segs)
		if err != nil {
			e.files.Remove(outputPath)
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unsupported operation %q", model.ErrInvalidInput, req.Operation)
	}

	sourceVersion := req.SourceVersion
	if sourceVersion == "" {
		sourceVersion = model.SourceVersionOriginal
	}
	entry := &model.EditEntry{
		Version:        targetVersion,
		Operation:      req.Operation,
		OutputFilename: outputName,
		SourceVersion:  sourceVersion,
		Timestamp:      time.Now(),
		Segments:       req.Segments,
		JoinSegments:   req.JoinSegments,
	}
	state.Session.CurrentVersion = targetVersion
	state.History = append(state.History, entry)

	return &EditResult{Version: targetVersion, OutputFilename: outputName, Entry: entry}, nil
}

// History returns the session, its edit entries, and the list of versions
// a client may pass as sourceVersion ("original" plus every recorded
// version number in order).
func (e *Engine) History(sessionID string) (*model.Session, []*model.EditEntry, []string, error) {
	state, ok := e.store.Get(sessionID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	entries := make([]*model.EditEntry, len(state.History))
	copy(entries, state.History)

	available := make([]string, 0, len(entries)+1)
	available = append(available, model.SourceVersionOriginal)
	for _, entry := range entries {
		available = append(available, strconv.Itoa(entry.Version))
	}
	return state.Session, entries, available, nil
}

// DeleteSession removes a session and best-effort deletes its files: the
// original uploads and every recorded version output. File removal
// failures do not block the session's removal from the store.
func (e *Engine) DeleteSession(sessionID string) error {
	state, ok := e.store.Get(sessionID)
	if !ok {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	state.mu.Lock()
	for _, record := range state.Session.Videos {
		e.files.Remove(filepath.Join(e.files.UploadsDir(), record.StoredFilename))
	}
	for _, entry := range state.History {
		e.files.Remove(e.files.ProcessedPath(entry.OutputFilename))
	}
	state.mu.Unlock()

	e.store.Delete(sessionID)
	return nil
}

func findRecord(session *model.Session, fileID string) *model.FileRecord {
	for _, record := range session.Videos {
		if record.ID == fileID {
			return record
		}
	}
	return nil
}
