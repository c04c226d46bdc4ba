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

// Package config defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the HTTP server, media storage areas, the ffmpeg toolchain, and the
// external transcription service.
//
// Structs:
//   - Application: General server settings (name, port, worker pool size).
//   - Storage: Root directory for the uploads/processed/temp areas and the
//     upload size ceiling.
//   - FFmpeg: Paths to the ffmpeg and ffprobe executables.
//   - Transcription: Endpoint, credentials, and limits for the external
//     speech-to-text service.
//   - Config: The top-level struct aggregating all of the above.
package config

// Application holds general application settings.
type Application struct {
	Name           string `toml:"name"`             // Service name, used in telemetry resources.
	Port           int    `toml:"port"`             // TCP port the HTTP server binds to.
	ThreadPoolSize int    `toml:"thread_pool_size"` // Worker pool size for parallel trim operations.
	DebugTelemetry bool   `toml:"debug_telemetry"`  // When true, export traces/metrics to stdout.
}

// Storage configures the on-disk media areas. All three areas live under
// Root: uploads/ for originals, processed/ for derived versions, temp/ for
// transient intermediates.
type Storage struct {
	Root           string `toml:"root"`             // Base directory for all media storage.
	MaxUploadBytes int64  `toml:"max_upload_bytes"` // Reject multipart uploads above this size.
}

// FFmpeg configures the external media engine executables.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path"`  // Path to the ffmpeg binary (default "ffmpeg").
	FFprobePath string `toml:"ffprobe_path"` // Path to the ffprobe binary (default "ffprobe").
}

// Transcription configures the external speech-to-text service.
type Transcription struct {
	BaseURL              string `toml:"base_url"`                // API base URL (e.g. "https://api.assemblyai.com").
	APIKey               string `toml:"api_key"`                 // Service credential.
	SpeechModel          string `toml:"speech_model"`            // Model identifier requested from the service.
	PollIntervalSeconds  int    `toml:"poll_interval_seconds"`   // Delay between transcript status polls.
	MaxAudioMB           int64  `toml:"max_audio_mb"`            // Reject audio payloads above this size (MB).
	MaxRequestsPerMinute int    `toml:"max_requests_per_minute"` // Rate limit applied to outbound calls.
}

// Config represents the overall application configuration loaded from the
// TOML files. It is the root container for all other configuration structs.
type Config struct {
	Application   Application   `toml:"application"`
	Storage       Storage       `toml:"storage"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Transcription Transcription `toml:"transcription"`
}

// NewConfig creates a Config pre-populated with conservative defaults so a
// missing override file still yields a runnable local configuration.
func NewConfig() *Config {
	return &Config{
		Application: Application{
			Name:           "cleancut",
			Port:           8080,
			ThreadPoolSize: 4,
		},
		Storage: Storage{
			Root:           "data",
			MaxUploadBytes: 50 << 30,
		},
		FFmpeg: FFmpeg{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Transcription: Transcription{
			BaseURL:              "https://api.assemblyai.com",
			SpeechModel:          "universal",
			PollIntervalSeconds:  3,
			MaxAudioMB:           200,
			MaxRequestsPerMinute: 30,
		},
	}
}
