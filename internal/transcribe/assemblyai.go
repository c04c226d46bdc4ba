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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cleancut/cleancut/internal/core/model"
)

// AssemblyAI is a Transcriber backed by the AssemblyAI REST API. The flow
// is upload (raw bytes) -> submit transcript job -> poll until terminal.
// All timestamps from the service are milliseconds and are converted to
// seconds at the boundary; nothing downstream ever sees milliseconds.
type AssemblyAI struct {
	baseURL      string
	apiKey       string
	speechModel  string
	pollInterval time.Duration
	client       *http.Client
}

// NewAssemblyAI creates a client for the given endpoint. pollInterval
// controls how often a pending transcript job is re-checked.
func NewAssemblyAI(baseURL, apiKey, speechModel string, pollInterval time.Duration) *AssemblyAI {
	return &AssemblyAI{
		baseURL:      baseURL,
		apiKey:       apiKey,
		speechModel:  speechModel,
		pollInterval: pollInterval,
		client:       &http.Client{Timeout: 5 * time.Minute},
	}
}

type transcriptRequest struct {
	AudioURL          string `json:"audio_url"`
	SpeechModel       string `json:"speech_model,omitempty"`
	SpeakerLabels     bool   `json:"speaker_labels"`
	FilterProfanity   bool   `json:"filter_profanity"`
	FormatText        bool   `json:"format_text"`
	Punctuate         bool   `json:"punctuate"`
	LanguageDetection bool   `json:"language_detection"`
}

type apiWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

type transcriptResponse struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	Error              string    `json:"error"`
	Text               string    `json:"text"`
	Words              []apiWord `json:"words"`
	Utterances         []apiUtterance `json:"utterances"`
	FilteredWords      []apiWord      `json:"filtered_words"`
	LanguageCode       string    `json:"language_code"`
	LanguageConfidence float64   `json:"language_confidence"`
}

type apiUtterance struct {
	Text    string  `json:"text"`
	Start   int64   `json:"start"`
	End     int64   `json:"end"`
	Speaker string  `json:"speaker"`
	Conf    float64 `json:"confidence"`
}

func (a *AssemblyAI) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	audioURL, err := a.upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	jobID, err := a.submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	resp, err := a.poll(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return toTranscription(resp), nil
}

// upload pushes the raw audio bytes and returns the service-side URL.
func (a *AssemblyAI) upload(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio for upload: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/upload", file)
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", a.apiKey)
	req.Header.Set("content-type", "application/octet-stream")

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("audio upload failed: %w", err)
	}
	return out.UploadURL, nil
}

// submit starts a transcript job and returns its id.
func (a *AssemblyAI) submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:          audioURL,
		SpeechModel:       a.speechModel,
		SpeakerLabels:     true,
		FilterProfanity:   true,
		FormatText:        true,
		Punctuate:         true,
		LanguageDetection: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", a.apiKey)
	req.Header.Set("content-type", "application/json")

	var out transcriptResponse
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("transcript submit failed: %w", err)
	}
	return out.ID, nil
}

// poll re-checks the job until it reaches a terminal status.
func (a *AssemblyAI) poll(ctx context.Context, jobID string) (*transcriptResponse, error) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/transcript/"+jobID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("authorization", a.apiKey)

		var out transcriptResponse
		if err := a.do(req, &out); err != nil {
			return nil, fmt.Errorf("transcript poll failed: %w", err)
		}

		switch out.Status {
		case "completed":
			return &out, nil
		case "error":
			return nil, fmt.Errorf("transcription failed: %s", out.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("service returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// toTranscription converts the wire response into the domain model,
// dividing every millisecond timestamp by 1000 exactly once.
func toTranscription(resp *transcriptResponse) *model.Transcription {
	tr := &model.Transcription{
		FullText:           resp.Text,
		DetectedLanguage:   resp.LanguageCode,
		LanguageConfidence: resp.LanguageConfidence,
	}
	for _, w := range resp.Words {
		tr.Words = append(tr.Words, toWord(w))
	}
	for _, fw := range resp.FilteredWords {
		tr.FlaggedProfanity = append(tr.FlaggedProfanity, toWord(fw))
	}
	for i, u := range resp.Utterances {
		tr.Segments = append(tr.Segments, model.TranscriptSegment{
			Index:      i,
			Text:       u.Text,
			Start:      msToSeconds(u.Start),
			End:        msToSeconds(u.End),
			Confidence: u.Conf,
			Speaker:    u.Speaker,
		})
	}
	if len(tr.Segments) == 0 {
		tr.Segments = fallbackSegments(tr.FullText, tr.Words)
	}
	return tr
}

func toWord(w apiWord) model.Word {
	return model.Word{
		Word:       w.Text,
		StartTime:  msToSeconds(w.Start),
		EndTime:    msToSeconds(w.End),
		Confidence: w.Confidence,
		Speaker:    w.Speaker,
	}
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000.0
}
