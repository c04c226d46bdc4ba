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
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/testutil"
)

type engineFixture struct {
	engine      *Engine
	files       *files.Manager
	transformer *testutil.FakeTransformer
	session     *model.Session
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	fm, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	transformer := testutil.NewFakeTransformer()
	engine := NewEngine(NewMemoryStore(), fm, transformer, 2)
	return &engineFixture{
		engine:      engine,
		files:       fm,
		transformer: transformer,
		session:     engine.CreateSession(),
	}
}

func (f *engineFixture) addVideo(t *testing.T, id string, duration float64) *model.FileRecord {
	t.Helper()
	record := &model.FileRecord{
		ID:             id,
		OriginalName:   id + "_original.mp4",
		StoredFilename: id + ".mp4",
		MediaKind:      model.MediaKindVideo,
		UploadedAt:     time.Now(),
		Probe:          &model.ProbeInfo{DurationSeconds: duration},
	}
	require.NoError(t, f.engine.AddFile(f.session.ID, record))
	return record
}

func (f *engineFixture) edit(t *testing.T, req EditRequest) *EditResult {
	t.Helper()
	req.SessionID = f.session.ID
	result, err := f.engine.ApplyEdit(context.Background(), req)
	require.NoError(t, err)
	return result
}

func TestApplyEditIncrementsVersionOnlyOnSuccess(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	first := f.edit(t, EditRequest{
		FileID:    "vid1",
		Operation: model.OpAudioRemoval,
		Segments:  []model.Segment{{Start: 1, End: 2}},
	})
	assert.Equal(t, 1, first.Version)

	// A forced transform failure must not consume a version number.
	f.transformer.FailOps["MuteSegments"] = true
	_, err := f.engine.ApplyEdit(context.Background(), EditRequest{
		SessionID: f.session.ID,
		FileID:    "vid1",
		Operation: model.OpProfanity,
		Segments:  []model.Segment{{Start: 3, End: 4}},
	})
	require.Error(t, err)

	f.transformer.FailOps["MuteSegments"] = false
	second := f.edit(t, EditRequest{
		FileID:    "vid1",
		Operation: model.OpProfanity,
		Segments:  []model.Segment{{Start: 3, End: 4}},
	})
	assert.Equal(t, 2, second.Version, "version counter equals the number of successful edits")

	_, entries, _, err := f.engine.History(f.session.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "a failed edit must leave no history entry")
}

func TestApplyEditChainsBackToOriginal(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	v1 := f.edit(t, EditRequest{
		FileID:    "vid1",
		Operation: model.OpAudioRemoval,
		Segments:  []model.Segment{{Start: 5, End: 6}},
	})
	v2 := f.edit(t, EditRequest{
		FileID:        "vid1",
		Operation:     model.OpTrim,
		Segments:      []model.Segment{{Start: 0, End: 30}},
		SourceVersion: "1",
	})

	assert.Equal(t, model.SourceVersionOriginal, v1.Entry.SourceVersion)
	assert.Equal(t, "1", v2.Entry.SourceVersion)

	// Walking sourceVersion links from any entry terminates at "original".
	_, entries, _, err := f.engine.History(f.session.ID)
	require.NoError(t, err)
	byVersion := make(map[int]*model.EditEntry)
	for _, entry := range entries {
		byVersion[entry.Version] = entry
	}
	current := v2.Entry
	for hops := 0; ; hops++ {
		require.Less(t, hops, len(entries)+1, "source chain must not cycle")
		if current.SourceVersion == model.SourceVersionOriginal {
			break
		}
		n, convErr := strconv.Atoi(current.SourceVersion)
		require.NoError(t, convErr)
		require.Less(t, n, current.Version, "an edit may only build on a strictly earlier version")
		current = byVersion[n]
		require.NotNil(t, current)
	}

	// The second trim read version 1's output, not the original upload.
	calls := f.transformer.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "Trim", last.Op)
	assert.Equal(t, f.files.ProcessedPath(v1.OutputFilename), last.Input)
}

func TestResolveSourceRoundTrip(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	result := f.edit(t, EditRequest{
		FileID:    "vid1",
		Operation: model.OpAudioRemoval,
		Segments:  []model.Segment{{Start: 1, End: 2}},
	})

	path, record, err := f.engine.ResolveSource(f.session.ID, "vid1", strconv.Itoa(result.Version))
	require.NoError(t, err)
	assert.Equal(t, f.files.ProcessedPath(result.OutputFilename), path)
	assert.Equal(t, "vid1", record.ID)

	path, _, err = f.engine.ResolveSource(f.session.ID, "vid1", model.SourceVersionOriginal)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.files.UploadsDir(), "vid1.mp4"), path)

	_, _, err = f.engine.ResolveSource(f.session.ID, "vid1", "99")
	assert.True(t, model.IsNotFound(err))

	_, _, err = f.engine.ResolveSource(f.session.ID, "vid1", "not-a-version")
	assert.True(t, model.IsInvalidInput(err))

	_, _, err = f.engine.ResolveSource(f.session.ID, "missing", model.SourceVersionOriginal)
	assert.True(t, model.IsNotFound(err))
}

func TestApplyEditValidation(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	// Segments beyond the probed duration are rejected up front.
	_, err := f.engine.ApplyEdit(context.Background(), EditRequest{
		SessionID: f.session.ID,
		FileID:    "vid1",
		Operation: model.OpAudioRemoval,
		Segments:  []model.Segment{{Start: 50, End: 70}},
	})
	assert.True(t, model.IsInvalidInput(err))

	// Multiple trim ranges without join mode have no defined output.
	_, err = f.engine.ApplyEdit(context.Background(), EditRequest{
		SessionID: f.session.ID,
		FileID:    "vid1",
		Operation: model.OpTrim,
		Segments:  []model.Segment{{Start: 0, End: 5}, {Start: 10, End: 15}},
	})
	assert.True(t, model.IsInvalidInput(err))

	// No validation failure consumed a version number.
	session, _, _, err := f.engine.History(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentVersion)
	assert.Empty(t, f.transformer.Calls(), "rejected edits must not reach the transformer")
}

func TestApplyEditTrimJoinsSegmentsInCallerOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	result := f.edit(t, EditRequest{
		FileID:       "vid1",
		Operation:    model.OpTrim,
		Segments:     []model.Segment{{Start: 40, End: 50}, {Start: 0, End: 10}},
		JoinSegments: true,
	})

	calls := f.transformer.Calls()
	require.Len(t, calls, 1)
	// Caller order is the output order, so no sorting may happen.
	assert.Equal(t, []model.Segment{{Start: 40, End: 50}, {Start: 0, End: 10}}, calls[0].Segments)
	assert.Contains(t, result.OutputFilename, "_v1_trimmed")
}

func TestMultiJoinOrdersClipsAndRecordsMultiple(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)
	f.addVideo(t, "vid2", 60)

	result, err := f.engine.MultiJoin(context.Background(), f.session.ID, []model.VideoSegments{
		{VideoID: "vid2", Segments: []model.Segment{{Start: 10, End: 20}}},
		{VideoID: "vid1", Segments: []model.Segment{{Start: 0, End: 5}, {Start: 30, End: 35}}},
	}, "highlights")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Version)
	assert.Equal(t, "highlights_v1.mp4", result.OutputFilename)
	assert.Equal(t, model.SourceVersionMultiple, result.Entry.SourceVersion)
	assert.Equal(t, model.OpMultiTrimJoin, result.Entry.Operation)

	var trims []testutil.TransformerCall
	var concat *testutil.TransformerCall
	for _, call := range f.transformer.Calls() {
		switch call.Op {
		case "Trim":
			trims = append(trims, call)
		case "Concatenate":
			c := call
			concat = &c
		}
	}
	require.Len(t, trims, 3)
	require.NotNil(t, concat)
	assert.True(t, concat.Reencode, "mixed sources must be re-encoded when joined")
	require.Len(t, concat.Inputs, 3)

	// Clip order in the concat list follows the request order even though
	// extraction ran on parallel workers.
	clipByPath := make(map[string]testutil.TransformerCall)
	for _, trim := range trims {
		clipByPath[trim.Output] = trim
	}
	assert.Equal(t, model.Segment{Start: 10, End: 20}, clipByPath[concat.Inputs[0]].Segments[0])
	assert.Equal(t, model.Segment{Start: 0, End: 5}, clipByPath[concat.Inputs[1]].Segments[0])
	assert.Equal(t, model.Segment{Start: 30, End: 35}, clipByPath[concat.Inputs[2]].Segments[0])
}

func TestMultiJoinFailureRecordsNothing(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)
	f.transformer.FailOps["Trim"] = true

	_, err := f.engine.MultiJoin(context.Background(), f.session.ID, []model.VideoSegments{
		{VideoID: "vid1", Segments: []model.Segment{{Start: 0, End: 5}}},
	}, "")
	require.Error(t, err)

	session, entries, _, err := f.engine.History(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentVersion)
	assert.Empty(t, entries)
}

func TestMergeFilesCopiesStreamsInOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)
	f.addVideo(t, "vid2", 60)

	result, err := f.engine.MergeFiles(context.Background(), f.session.ID, []string{"vid2", "vid1"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Version)
	assert.Equal(t, "merged_video_v1.mp4", result.OutputFilename)
	assert.Equal(t, model.OpMerge, result.Entry.Operation)
	assert.Equal(t, model.SourceVersionMultiple, result.Entry.SourceVersion)
	assert.Equal(t, []string{"vid2", "vid1"}, result.Entry.FileIDs)

	calls := f.transformer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Concatenate", calls[0].Op)
	assert.False(t, calls[0].Reencode, "whole-file merges must copy streams, not re-encode")
	assert.Equal(t, []string{
		filepath.Join(f.files.UploadsDir(), "vid2.mp4"),
		filepath.Join(f.files.UploadsDir(), "vid1.mp4"),
	}, calls[0].Inputs)
}

func TestMergeFilesValidation(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	_, err := f.engine.MergeFiles(context.Background(), f.session.ID, []string{"vid1"}, "")
	assert.True(t, model.IsInvalidInput(err), "a single file cannot be merged")

	audio := &model.FileRecord{
		ID:             "aud1",
		StoredFilename: "aud1.mp3",
		MediaKind:      model.MediaKindAudio,
	}
	require.NoError(t, f.engine.AddFile(f.session.ID, audio))
	_, err = f.engine.MergeFiles(context.Background(), f.session.ID, []string{"vid1", "aud1"}, "")
	assert.True(t, model.IsInvalidInput(err))

	_, err = f.engine.MergeFiles(context.Background(), f.session.ID, []string{"vid1", "missing"}, "")
	assert.True(t, model.IsNotFound(err))

	session, entries, _, err := f.engine.History(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentVersion)
	assert.Empty(t, entries)
	assert.Empty(t, f.transformer.Calls(), "rejected merges must not reach the transformer")
}

func TestHistoryListsAvailableVersions(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)

	f.edit(t, EditRequest{
		FileID:    "vid1",
		Operation: model.OpAudioRemoval,
		Segments:  []model.Segment{{Start: 1, End: 2}},
	})
	f.edit(t, EditRequest{
		FileID:       "vid1",
		Operation:    model.OpTrim,
		Segments:     []model.Segment{{Start: 0, End: 10}},
		JoinSegments: true,
	})

	_, _, available, err := f.engine.History(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"original", "1", "2"}, available)
}

func TestDeleteSessionRemovesStateAndFiles(t *testing.T) {
	f := newEngineFixture(t)
	f.addVideo(t, "vid1", 60)
	f.edit(t, EditRequest{
		FileID:    "vid1",
		Operation: model.OpAudioRemoval,
		Segments:  []model.Segment{{Start: 1, End: 2}},
	})

	require.NoError(t, f.engine.DeleteSession(f.session.ID))

	_, _, _, err := f.engine.History(f.session.ID)
	assert.True(t, model.IsNotFound(err))
	assert.True(t, model.IsNotFound(f.engine.DeleteSession(f.session.ID)))
}
