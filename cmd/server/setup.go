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
	"log"
	"os"
	"time"

	"github.com/cleancut/cleancut/internal/config"
	"github.com/cleancut/cleancut/internal/core/files"
	"github.com/cleancut/cleancut/internal/core/profanity"
	"github.com/cleancut/cleancut/internal/core/session"
	"github.com/cleancut/cleancut/internal/core/workflow"
	"github.com/cleancut/cleancut/internal/media"
	"github.com/cleancut/cleancut/internal/transcribe"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config                *config.Config
	files                 *files.Manager
	transformer           media.Transformer
	transcriber           transcribe.Transcriber
	engine                *session.Engine
	customWords           *profanity.CustomList
	uploadWorkflow        *workflow.UploadWorkflow
	transcriptionWorkflow *workflow.TranscriptionWorkflow
}

var state = &StateManager{}

// SetupOS points the config loader at the configs directory with the
// "local" runtime overlay unless the environment already says otherwise.
func SetupOS() (err error) {
	if os.Getenv(config.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(config.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(config.EnvConfigRuntime) == "" {
		err = os.Setenv(config.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the application configuration once.
func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment: %v\n", err)
		}
		cfg := config.NewConfig()
		config.LoadConfig(cfg)
		state.config = cfg
	}
	return state.config
}

// InitState wires the application dependencies: storage areas, the ffmpeg
// transformer, the rate-limited transcription gateway, the two pipelines,
// and the editing engine.
func InitState() {
	cfg := GetConfig()

	fileManager, err := files.NewManager(cfg.Storage.Root)
	if err != nil {
		panic(err)
	}
	state.files = fileManager

	state.transformer = media.NewFFmpeg(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)

	client := transcribe.NewAssemblyAI(
		cfg.Transcription.BaseURL,
		cfg.Transcription.APIKey,
		cfg.Transcription.SpeechModel,
		time.Duration(cfg.Transcription.PollIntervalSeconds)*time.Second)
	state.transcriber = transcribe.NewRateLimited(client, cfg.Transcription.MaxRequestsPerMinute)

	state.customWords = profanity.NewCustomList()
	state.engine = session.NewEngine(session.NewMemoryStore(), fileManager, state.transformer, cfg.Application.ThreadPoolSize)
	state.uploadWorkflow = workflow.NewUploadWorkflow(state.transformer, fileManager)
	state.transcriptionWorkflow = workflow.NewTranscriptionWorkflow(
		state.transformer, fileManager, state.transcriber, cfg.Transcription.MaxAudioMB<<20)
}
