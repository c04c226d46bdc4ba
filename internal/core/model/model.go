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

// Package model defines the core data structures for the editing backend.
// All state described here lives in process memory for the lifetime of a
// session; nothing in this package is persisted across restarts.
//
// Times are always expressed in seconds. Conversions from other units (the
// transcription service reports milliseconds) happen at the gateway
// boundaries, never here.
package model

import "time"

// MediaKind distinguishes the two classes of uploads the backend accepts.
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// OperationType identifies the edit operation that produced a version.
type OperationType string

const (
	OpAudioRemoval  OperationType = "audio_removal"
	OpTrim          OperationType = "trim"
	OpProfanity     OperationType = "profanity_filter"
	OpMultiTrimJoin OperationType = "multi_trim_join"
	OpMerge         OperationType = "merge"
)

// ShortName returns the operation token embedded in derived filenames
// (e.g. "<fileId>_v3_audio_removed.mp4"). The names are a debugging aid
// only and are not a parseable contract.
func (o OperationType) ShortName() string {
	switch o {
	case OpAudioRemoval:
		return "audio_removed"
	case OpTrim:
		return "trimmed"
	case OpProfanity:
		return "profanity_muted"
	case OpMultiTrimJoin:
		return "joined"
	case OpMerge:
		return "merged"
	}
	return "edited"
}

// Segment is a time range in seconds used to scope an edit operation.
// A valid segment satisfies 0 <= Start < End <= source duration.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// VideoSegments pairs a source video with the segments to extract from it,
// used by the multi-video trim-and-join operation.
type VideoSegments struct {
	VideoID  string    `json:"videoId"`
	Segments []Segment `json:"segments"`
}

// VideoStreamInfo describes the primary video stream of a probed file.
type VideoStreamInfo struct {
	Codec      string `json:"codec"`
	Resolution string `json:"resolution"`
	FPS        string `json:"fps"`
	Bitrate    string `json:"bitrate"`
}

// AudioStreamInfo describes the primary audio stream of a probed file.
type AudioStreamInfo struct {
	Codec      string `json:"codec"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sampleRate"`
	Bitrate    string `json:"bitrate"`
}

// ProbeInfo is the container-level metadata captured synchronously at
// upload time via the media transform gateway's probe capability.
type ProbeInfo struct {
	DurationSeconds float64          `json:"duration"`
	Format          string           `json:"format"`
	SizeBytes       int64            `json:"size"`
	Video           *VideoStreamInfo `json:"video,omitempty"`
	Audio           *AudioStreamInfo `json:"audio,omitempty"`
}

// FileRecord describes one uploaded media file. Records are immutable after
// creation; any re-encoding happens in the upload pipeline before the record
// is built, never as a post-creation mutation.
type FileRecord struct {
	ID             string     `json:"id"`
	OriginalName   string     `json:"originalName"`
	StoredFilename string     `json:"filename"`
	SizeBytes      int64      `json:"size"`
	MediaKind      MediaKind  `json:"fileType"`
	UploadedAt     time.Time  `json:"uploadedAt"`
	Probe          *ProbeInfo `json:"probeInfo,omitempty"`
}

// Session groups uploaded media and its derived edit history. Videos are
// kept in upload order. CurrentVersion starts at zero ("original") and is
// incremented by exactly one on every successful edit; it is monotonic and
// never reused even when a later edit targets an earlier version.
type Session struct {
	ID             string        `json:"id"`
	Videos         []*FileRecord `json:"videos"`
	CreatedAt      time.Time     `json:"createdAt"`
	CurrentVersion int           `json:"currentVersion"`
}

// SourceVersionOriginal is the literal marker a client passes to target the
// uploaded file rather than a derived version.
const SourceVersionOriginal = "original"

// SourceVersionMultiple is recorded for multi-video joins, which draw from
// several uploads rather than a single prior version.
const SourceVersionMultiple = "multiple"

// EditEntry is one immutable entry in a session's append-only edit history.
// SourceVersion is either "original", "multiple" (multi-join), or the
// decimal string of a version created strictly earlier, which guarantees
// the chain back to "original" terminates without cycles.
type EditEntry struct {
	Version        int             `json:"version"`
	Operation      OperationType   `json:"type"`
	OutputFilename string          `json:"filename"`
	SourceVersion  string          `json:"sourceVersion"`
	Timestamp      time.Time       `json:"timestamp"`
	Segments       []Segment       `json:"segments,omitempty"`
	JoinSegments   bool            `json:"joinSegments,omitempty"`
	VideoSegments  []VideoSegments `json:"videoSegments,omitempty"`
	FileIDs        []string        `json:"fileIds,omitempty"`
}

// Profanity span sources.
const (
	SpanSourceExternal = "external-detector"
	SpanSourceCustom   = "custom-list"
)

// ProfanitySpan is one flagged word occurrence. Spans are recomputed on
// every detection request and never cached server-side.
type ProfanitySpan struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Word is a single transcript token with second-resolution timing.
type Word struct {
	Word       string  `json:"word"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// TranscriptSegment is an utterance-level grouping of transcript text.
type TranscriptSegment struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Transcription is the normalized output of the transcription gateway.
// All timestamps are seconds; FlaggedProfanity carries the spans the
// external detector marked, prior to any custom-list merging.
type Transcription struct {
	FullText           string              `json:"fullText"`
	Words              []Word              `json:"words"`
	Segments           []TranscriptSegment `json:"segments"`
	DetectedLanguage   string              `json:"detectedLanguage"`
	LanguageConfidence float64             `json:"languageConfidence"`
	FlaggedProfanity   []Word              `json:"filtered_words"`
}
