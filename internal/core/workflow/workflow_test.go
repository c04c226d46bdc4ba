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

package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/testutil"
)

// mp4Header is the minimal ftyp box prefix that magic-number detection
// classifies as video/mp4.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2',
	0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm',
}

// mp3Header is an ID3v2 tag prefix, detected as audio/mpeg.
var mp3Header = []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

func newFileManager(t *testing.T) *files.Manager {
	t.Helper()
	m, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func stageFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestUploadWorkflowVideoAlreadyCanonical(t *testing.T) {
	fm := newFileManager(t)
	transformer := testutil.NewFakeTransformer()
	wf := NewUploadWorkflow(transformer, fm)

	staging := stageFile(t, "staging.mp4", mp4Header)
	record, err := wf.Run(context.Background(), staging, "holiday.mp4")
	require.NoError(t, err)

	assert.Equal(t, model.MediaKindVideo, record.MediaKind)
	assert.Equal(t, "holiday.mp4", record.OriginalName)
	assert.Equal(t, record.ID+".mp4", record.StoredFilename)
	require.NotNil(t, record.Probe)
	assert.Equal(t, 60.0, record.Probe.DurationSeconds)

	// Canonical container: the staging file is renamed, never re-encoded.
	for _, call := range transformer.Calls() {
		assert.NotEqual(t, "ConvertContainer", call.Op)
	}
	_, err = os.Stat(filepath.Join(fm.UploadsDir(), record.StoredFilename))
	assert.NoError(t, err)
	_, err = os.Stat(staging)
	assert.True(t, os.IsNotExist(err), "staging file must be gone after ingest")
}

func TestUploadWorkflowAudioNeedsConversion(t *testing.T) {
	fm := newFileManager(t)
	transformer := testutil.NewFakeTransformer()
	wf := NewUploadWorkflow(transformer, fm)

	staging := stageFile(t, "staging.bin", mp3Header)
	record, err := wf.Run(context.Background(), staging, "voice-memo.bin")
	require.NoError(t, err)

	assert.Equal(t, model.MediaKindAudio, record.MediaKind)
	assert.Equal(t, record.ID+".mp3", record.StoredFilename)

	converted := false
	for _, call := range transformer.Calls() {
		if call.Op == "ConvertContainer" {
			converted = true
			assert.False(t, call.HasVideo)
		}
	}
	assert.True(t, converted, "non-canonical container must be re-encoded")
	_, err = os.Stat(staging)
	assert.True(t, os.IsNotExist(err), "staging file must be cleaned up after conversion")
}

func TestUploadWorkflowRejectsUnknownType(t *testing.T) {
	fm := newFileManager(t)
	wf := NewUploadWorkflow(testutil.NewFakeTransformer(), fm)

	staging := stageFile(t, "notes.txt", []byte("plain text, not media"))
	_, err := wf.Run(context.Background(), staging, "notes.txt")
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))
	_, err = os.Stat(staging)
	assert.True(t, os.IsNotExist(err), "staging file must be cleaned up on failure")
}

func TestTranscriptionWorkflowHappyPath(t *testing.T) {
	fm := newFileManager(t)
	transformer := testutil.NewFakeTransformer()
	stub := &testutil.StubTranscriber{Result: &model.Transcription{FullText: "hello world"}}
	wf := NewTranscriptionWorkflow(transformer, fm, stub, 0)

	source := stageFile(t, "source.mp4", mp4Header)
	tr, err := wf.Run(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "hello world", tr.FullText)

	// The extracted audio must not survive the pipeline.
	leftovers, err := os.ReadDir(fm.TempDir())
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestTranscriptionWorkflowEnforcesSizeCeiling(t *testing.T) {
	fm := newFileManager(t)
	transformer := testutil.NewFakeTransformer()
	stub := &testutil.StubTranscriber{}
	// The fake extractor writes a handful of bytes; a 1-byte ceiling trips.
	wf := NewTranscriptionWorkflow(transformer, fm, stub, 1)

	source := stageFile(t, "source.mp4", mp4Header)
	_, err := wf.Run(context.Background(), source)
	require.Error(t, err)
	assert.True(t, model.IsSizeLimit(err))

	leftovers, readErr := os.ReadDir(fm.TempDir())
	require.NoError(t, readErr)
	assert.Empty(t, leftovers, "temp audio must be cleaned up on the failure path")
}
