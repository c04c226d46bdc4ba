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

package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancut/cleancut/internal/core/model"
)

func writeFakeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))
	return path
}

func TestTranscribeFullFlow(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			var req transcriptRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://cdn.example/audio", req.AudioURL)
			assert.Equal(t, "universal", req.SpeechModel)
			assert.True(t, req.SpeakerLabels)
			// filter_profanity is what makes the service return the
			// filtered_words the detector merge seeds from.
			assert.True(t, req.FilterProfanity)
			assert.True(t, req.LanguageDetection)
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/job-1":
			polls++
			if polls == 1 {
				json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":     "job-1",
				"status": "completed",
				"text":   "Hello there.",
				"words": []map[string]any{
					{"text": "Hello", "start": 250, "end": 700, "confidence": 0.98, "speaker": "A"},
					{"text": "there.", "start": 700, "end": 1200, "confidence": 0.97, "speaker": "A"},
				},
				"utterances": []map[string]any{
					{"text": "Hello there.", "start": 250, "end": 1200, "speaker": "A"},
				},
				"filtered_words": []map[string]any{
					{"text": "heck", "start": 3000, "end": 3400, "confidence": 0.91},
				},
				"language_code":       "en",
				"language_confidence": 0.99,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewAssemblyAI(srv.URL, "test-key", "universal", 10*time.Millisecond)
	tr, err := client.Transcribe(context.Background(), writeFakeAudio(t))
	require.NoError(t, err)

	assert.Equal(t, "Hello there.", tr.FullText)
	assert.Equal(t, "en", tr.DetectedLanguage)

	// Millisecond timestamps must arrive in seconds.
	require.Len(t, tr.Words, 2)
	assert.Equal(t, 0.25, tr.Words[0].StartTime)
	assert.Equal(t, 0.7, tr.Words[0].EndTime)

	require.Len(t, tr.Segments, 1)
	assert.Equal(t, 1.2, tr.Segments[0].End)
	assert.Equal(t, "A", tr.Segments[0].Speaker)

	require.Len(t, tr.FlaggedProfanity, 1)
	assert.Equal(t, 3.0, tr.FlaggedProfanity[0].StartTime)
	assert.Equal(t, 3.4, tr.FlaggedProfanity[0].EndTime)
}

func TestTranscribeReportsJobError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "u"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "job-2", "status": "queued"})
		default:
			json.NewEncoder(w).Encode(map[string]string{"id": "job-2", "status": "error", "error": "audio too short"})
		}
	}))
	defer srv.Close()

	client := NewAssemblyAI(srv.URL, "k", "universal", time.Millisecond)
	_, err := client.Transcribe(context.Background(), writeFakeAudio(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio too short")
}

func TestTranscribeHonorsContextDuringPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "u"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "job-3", "status": "queued"})
		default:
			// Never completes.
			json.NewEncoder(w).Encode(map[string]string{"id": "job-3", "status": "processing"})
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewAssemblyAI(srv.URL, "k", "universal", 5*time.Millisecond)
	_, err := client.Transcribe(ctx, writeFakeAudio(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFallbackSegmentsAlignsSentences(t *testing.T) {
	words := []model.Word{
		{Word: "Good", StartTime: 0.1, EndTime: 0.3, Speaker: "A"},
		{Word: "morning.", StartTime: 0.3, EndTime: 0.6, Speaker: "A"},
		{Word: "How", StartTime: 1.0, EndTime: 1.2, Speaker: "B"},
		{Word: "are", StartTime: 1.2, EndTime: 1.3, Speaker: "B"},
		{Word: "you?", StartTime: 1.3, EndTime: 1.6, Speaker: "B"},
	}
	segs := fallbackSegments("Good morning. How are you?", words)
	require.Len(t, segs, 2)
	assert.Equal(t, 0.1, segs[0].Start)
	assert.Equal(t, 0.6, segs[0].End)
	assert.Equal(t, "A", segs[0].Speaker)
	assert.Equal(t, 1.0, segs[1].Start)
	assert.Equal(t, 1.6, segs[1].End)
	assert.Equal(t, "B", segs[1].Speaker)
}

func TestFallbackSegmentsWithoutWords(t *testing.T) {
	segs := fallbackSegments("just text", nil)
	require.Len(t, segs, 1)
	assert.Equal(t, "just text", segs[0].Text)
	assert.Zero(t, segs[0].Start)
}

func TestRateLimitedRespectsContext(t *testing.T) {
	// A 1-per-minute limiter with its single burst slot consumed cannot
	// admit a second call inside the test's deadline.
	rl := NewRateLimited(stubTranscriber{}, 1)
	_, err := rl.Transcribe(context.Background(), "a.mp3")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Transcribe(ctx, "a.mp3")
	require.Error(t, err)
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, string) (*model.Transcription, error) {
	return &model.Transcription{}, nil
}
