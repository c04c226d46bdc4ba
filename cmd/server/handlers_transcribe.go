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
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleancut/cleancut/internal/core/model"
	"github.com/cleancut/cleancut/internal/core/profanity"
)

type transcribeRequest struct {
	SessionID     string   `json:"sessionId"`
	FileID        string   `json:"fileId"`
	SourceVersion string   `json:"sourceVersion"`
	CustomWords   []string `json:"customWords"`
}

type wordListRequest struct {
	Words []string `json:"words"`
}

// TranscriptionRouter wires speech-to-text and profanity detection. Both
// transcribe on demand; nothing is cached server-side, so edits never
// serve stale word timings.
func TranscriptionRouter(r *gin.RouterGroup) {
	r.POST("/transcribe", func(c *gin.Context) {
		_, tr, err := transcribeSource(c)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"transcription":      tr,
			"fullText":           tr.FullText,
			"detectedLanguage":   tr.DetectedLanguage,
			"languageConfidence": tr.LanguageConfidence,
		})
	})

	r.POST("/detect-profanity", func(c *gin.Context) {
		req, tr, err := transcribeSource(c)
		if err != nil {
			writeError(c, err)
			return
		}
		spans := profanity.Find(tr, profanity.ActiveSet(state.customWords.Words(), req.CustomWords))
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"profanitySegments": spans,
			"detectedLanguage":  tr.DetectedLanguage,
			"transcription":     tr,
		})
	})

	r.GET("/profanity/list", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "customProfanityList": state.customWords.Words()})
	})

	r.POST("/profanity/add", func(c *gin.Context) {
		var req wordListRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Words) == 0 {
			writeError(c, fmt.Errorf("%w: a non-empty \"words\" list is required", model.ErrInvalidInput))
			return
		}
		state.customWords.Add(req.Words)
		c.JSON(http.StatusOK, gin.H{"success": true, "customProfanityList": state.customWords.Words()})
	})

	r.POST("/profanity/remove", func(c *gin.Context) {
		var req wordListRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Words) == 0 {
			writeError(c, fmt.Errorf("%w: a non-empty \"words\" list is required", model.ErrInvalidInput))
			return
		}
		state.customWords.Remove(req.Words)
		c.JSON(http.StatusOK, gin.H{"success": true, "customProfanityList": state.customWords.Words()})
	})
}

// transcribeSource parses the request, resolves which stored file to read,
// and runs the transcription pipeline against it.
func transcribeSource(c *gin.Context) (*transcribeRequest, *model.Transcription, error) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	if req.SessionID == "" || req.FileID == "" {
		return nil, nil, fmt.Errorf("%w: sessionId and fileId are required", model.ErrInvalidInput)
	}

	sourcePath, _, err := state.engine.ResolveSource(req.SessionID, req.FileID, req.SourceVersion)
	if err != nil {
		return nil, nil, err
	}

	tr, err := state.transcriptionWorkflow.Run(c.Request.Context(), sourcePath)
	if err != nil {
		return nil, nil, err
	}
	return &req, tr, nil
}
