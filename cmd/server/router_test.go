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

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancut/cleancut/internal/config"
	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/core/profanity"
	"github.com/cleancut/cleancut/internal/core/session"
	"github.com/cleancut/cleancut/internal/core/workflow"
	"github.com/cleancut/cleancut/internal/testutil"
)

// newTestServer swaps the shared state for an in-memory one and mounts the
// full route tree, so tests exercise the exact paths and JSON field names
// clients depend on.
func newTestServer(t *testing.T) (*gin.Engine, *testutil.FakeTransformer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fm, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	transformer := testutil.NewFakeTransformer()
	transcriber := &testutil.StubTranscriber{Result: &model.Transcription{
		FullText:           "well heck",
		DetectedLanguage:   "en",
		LanguageConfidence: 0.98,
		Words: []model.Word{
			{Word: "well", StartTime: 0.1, EndTime: 0.3, Confidence: 0.99},
			{Word: "heck", StartTime: 1.0, EndTime: 1.3, Confidence: 0.97},
		},
	}}

	state = &StateManager{
		config:      config.NewConfig(),
		files:       fm,
		transformer: transformer,
		transcriber: transcriber,
		engine:      session.NewEngine(session.NewMemoryStore(), fm, transformer, 2),
		customWords: profanity.NewCustomList(),
	}
	state.uploadWorkflow = workflow.NewUploadWorkflow(transformer, fm)
	state.transcriptionWorkflow = workflow.NewTranscriptionWorkflow(transformer, fm, transcriber, 200<<20)

	r := gin.New()
	registerRoutes(r)
	return r, transformer
}

// newSessionVideo registers a stored upload so routes can resolve it.
func newSessionVideo(t *testing.T, sessionID, id string) {
	t.Helper()
	path := filepath.Join(state.files.UploadsDir(), id+".mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0o644))
	require.NoError(t, state.engine.AddFile(sessionID, &model.FileRecord{
		ID:             id,
		OriginalName:   id + "_original.mp4",
		StoredFilename: id + ".mp4",
		MediaKind:      model.MediaKindVideo,
		Probe:          &model.ProbeInfo{DurationSeconds: 60},
	}))
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	decoded := make(map[string]any)
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestSessionCreateRoute(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/session/create", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["sessionId"])
}

func TestHistoryResponseUsesHistoryKey(t *testing.T) {
	r, _ := newTestServer(t)
	sess := state.engine.CreateSession()

	w, body := doJSON(t, r, http.MethodGet, "/api/session/"+sess.ID+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := body["history"]
	assert.True(t, ok, "edit entries must be under \"history\"")
	_, ok = body["editHistory"]
	assert.False(t, ok)
	assert.NotNil(t, body["availableVersions"])
}

func TestCustomWordRoutes(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/profanity/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := body["customProfanityList"]
	assert.True(t, ok, "word list lives under \"customProfanityList\"")

	w, body = doJSON(t, r, http.MethodPost, "/api/profanity/add", `{"words":["darn","golly"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []any{"darn", "golly"}, body["customProfanityList"])

	w, body = doJSON(t, r, http.MethodPost, "/api/profanity/remove", `{"words":["golly"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []any{"darn"}, body["customProfanityList"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/profanity/add", `{"words":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessTrimBindsFileID(t *testing.T) {
	r, _ := newTestServer(t)
	sess := state.engine.CreateSession()
	newSessionVideo(t, sess.ID, "vid1")

	w, body := doJSON(t, r, http.MethodPost, "/api/process/trim",
		`{"sessionId":"`+sess.ID+`","fileId":"vid1","segments":[{"start":0,"end":5}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), body["version"])
	assert.Contains(t, body["outputFile"], "_v1_trimmed")
	assert.Contains(t, body["downloadUrl"], "/api/download/")

	// Omitting fileId is rejected up front, and the message names the
	// field clients must send.
	w, body = doJSON(t, r, http.MethodPost, "/api/process/trim",
		`{"sessionId":"`+sess.ID+`","segments":[{"start":0,"end":5}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "fileId")
}

func TestMultiTrimJoinBindsVideoSegments(t *testing.T) {
	r, transformer := newTestServer(t)
	sess := state.engine.CreateSession()
	newSessionVideo(t, sess.ID, "vid1")
	newSessionVideo(t, sess.ID, "vid2")

	w, body := doJSON(t, r, http.MethodPost, "/api/process/multi-trim-join",
		`{"sessionId":"`+sess.ID+`","videoSegments":[`+
			`{"videoId":"vid1","segments":[{"start":0,"end":5}]},`+
			`{"videoId":"vid2","segments":[{"start":10,"end":20}]}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), body["version"])

	calls := transformer.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "Concatenate", last.Op)
	assert.True(t, last.Reencode)
}

func TestMergeMultipleCopiesStreams(t *testing.T) {
	r, transformer := newTestServer(t)
	sess := state.engine.CreateSession()
	newSessionVideo(t, sess.ID, "vid1")
	newSessionVideo(t, sess.ID, "vid2")

	w, body := doJSON(t, r, http.MethodPost, "/api/merge-multiple",
		`{"sessionId":"`+sess.ID+`","fileIds":["vid1","vid2"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), body["version"])
	assert.Contains(t, body["outputFile"], "merged_video_v1")

	calls := transformer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Concatenate", calls[0].Op)
	assert.False(t, calls[0].Reencode, "whole-file merges copy streams without re-encoding")

	w, _ = doJSON(t, r, http.MethodPost, "/api/merge-multiple",
		`{"sessionId":"`+sess.ID+`","fileIds":["vid1"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribeResponseFields(t *testing.T) {
	r, _ := newTestServer(t)
	sess := state.engine.CreateSession()
	newSessionVideo(t, sess.ID, "vid1")

	w, body := doJSON(t, r, http.MethodPost, "/api/transcribe",
		`{"sessionId":"`+sess.ID+`","fileId":"vid1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "well heck", body["fullText"])
	assert.Equal(t, "en", body["detectedLanguage"])
	assert.Equal(t, 0.98, body["languageConfidence"])
	assert.NotNil(t, body["transcription"])
}

func TestDetectProfanityIncludesLanguage(t *testing.T) {
	r, _ := newTestServer(t)
	sess := state.engine.CreateSession()
	newSessionVideo(t, sess.ID, "vid1")

	w, body := doJSON(t, r, http.MethodPost, "/api/detect-profanity",
		`{"sessionId":"`+sess.ID+`","fileId":"vid1","customWords":["heck"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "en", body["detectedLanguage"])
	spans, ok := body["profanitySegments"].([]any)
	require.True(t, ok)
	require.Len(t, spans, 1)
	span := spans[0].(map[string]any)
	assert.Equal(t, "heck", span["word"])
}

func TestUploadsServedStatically(t *testing.T) {
	r, _ := newTestServer(t)
	path := filepath.Join(state.files.UploadsDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video bytes"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/uploads/clip.mp4", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video bytes", w.Body.String())
}
