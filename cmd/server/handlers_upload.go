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
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/cleancut/cleancut/internal/core/model"
)

// UploadRouter wires the three ingest endpoints. Each one stages the
// multipart payload in the temp area and runs the upload pipeline; the
// pipeline decides the real media type from magic bytes, so the split
// between the video and audio endpoints is a UX contract, not a trust
// boundary.
func UploadRouter(r *gin.RouterGroup) {
	r.POST("/upload", func(c *gin.Context) {
		uploadSingle(c, "video", model.MediaKindVideo)
	})

	r.POST("/upload-audio", func(c *gin.Context) {
		uploadSingle(c, "audio", model.MediaKindAudio)
	})

	r.POST("/upload-multiple", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			writeError(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
			return
		}
		headers := form.File["videos"]
		if len(headers) == 0 {
			writeError(c, fmt.Errorf("%w: no files in field \"videos\"", model.ErrInvalidInput))
			return
		}

		sessionID, err := resolveSessionID(c)
		if err != nil {
			writeError(c, err)
			return
		}

		records := make([]*model.FileRecord, 0, len(headers))
		for _, header := range headers {
			record, err := ingestOne(c, header, sessionID, model.MediaKindVideo)
			if err != nil {
				writeError(c, err)
				return
			}
			records = append(records, record)
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"sessionId": sessionID,
			"files":     records,
		})
	})
}

func uploadSingle(c *gin.Context, field string, expected model.MediaKind) {
	header, err := c.FormFile(field)
	if err != nil {
		writeError(c, fmt.Errorf("%w: missing file in field %q", model.ErrInvalidInput, field))
		return
	}

	sessionID, err := resolveSessionID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	record, err := ingestOne(c, header, sessionID, expected)
	if err != nil {
		writeError(c, err)
		return
	}

	response := gin.H{"success": true, "sessionId": sessionID, "file": record}
	if record.MediaKind == model.MediaKindVideo {
		response["videoInfo"] = record.Probe
	} else {
		response["audioInfo"] = record.Probe
	}
	c.JSON(http.StatusOK, response)
}

// resolveSessionID returns the form's sessionId, creating a fresh session
// when the client has none yet.
func resolveSessionID(c *gin.Context) (string, error) {
	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		return state.engine.CreateSession().ID, nil
	}
	if _, _, _, err := state.engine.History(sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// ingestOne stages one multipart file, runs the upload pipeline, checks
// the detected media kind against the endpoint's contract, and attaches
// the record to the session.
func ingestOne(c *gin.Context, header *multipart.FileHeader, sessionID string, expected model.MediaKind) (*model.FileRecord, error) {
	maxBytes := state.config.Storage.MaxUploadBytes
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, fmt.Errorf("%w: upload is %d bytes, limit is %d",
			model.ErrSizeLimitExceeded, header.Size, maxBytes)
	}

	staging := state.files.TempPath("upload", filepath.Ext(header.Filename))
	if err := c.SaveUploadedFile(header, staging); err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}

	record, err := state.uploadWorkflow.Run(c.Request.Context(), staging, header.Filename)
	if err != nil {
		return nil, err
	}

	if record.MediaKind != expected {
		state.files.Remove(filepath.Join(state.files.UploadsDir(), record.StoredFilename))
		return nil, fmt.Errorf("%w: %s is %s, endpoint expects %s",
			model.ErrInvalidInput, header.Filename, record.MediaKind, expected)
	}

	if err := state.engine.AddFile(sessionID, record); err != nil {
		return nil, err
	}
	return record, nil
}
