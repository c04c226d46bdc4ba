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
	"github.com/cleancut/cleancut/internal/core/session"
)

type processRequest struct {
	SessionID     string          `json:"sessionId"`
	FileID        string          `json:"fileId"`
	Segments      []model.Segment `json:"segments"`
	JoinSegments  bool            `json:"joinSegments"`
	SourceVersion string          `json:"sourceVersion"`
}

type multiJoinRequest struct {
	SessionID     string                `json:"sessionId"`
	VideoSegments []model.VideoSegments `json:"videoSegments"`
	OutputName    string                `json:"outputName"`
}

type mergeRequest struct {
	SessionID  string   `json:"sessionId"`
	FileIDs    []string `json:"fileIds"`
	OutputName string   `json:"outputName"`
}

// ProcessRouter wires the edit operations. Each one produces a brand-new
// version in the processed area and appends an entry to the session's
// history; failures leave both untouched.
func ProcessRouter(r *gin.RouterGroup) {
	process := r.Group("/process")
	{
		process.POST("/audio-remove", func(c *gin.Context) {
			applyEdit(c, model.OpAudioRemoval)
		})

		process.POST("/trim", func(c *gin.Context) {
			applyEdit(c, model.OpTrim)
		})

		process.POST("/profanity", func(c *gin.Context) {
			applyEdit(c, model.OpProfanity)
		})

		process.POST("/multi-trim-join", func(c *gin.Context) {
			var req multiJoinRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
				return
			}
			result, err := state.engine.MultiJoin(c.Request.Context(), req.SessionID, req.VideoSegments, req.OutputName)
			if err != nil {
				writeError(c, err)
				return
			}
			writeEditResult(c, result)
		})
	}

	// Whole-file merge: entire uploads concatenated by stream copy, no
	// cutting and no re-encode.
	r.POST("/merge-multiple", func(c *gin.Context) {
		var req mergeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
			return
		}
		result, err := state.engine.MergeFiles(c.Request.Context(), req.SessionID, req.FileIDs, req.OutputName)
		if err != nil {
			writeError(c, err)
			return
		}
		writeEditResult(c, result)
	})
}

func applyEdit(c *gin.Context, op model.OperationType) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
		return
	}
	if req.SessionID == "" || req.FileID == "" {
		writeError(c, fmt.Errorf("%w: sessionId and fileId are required", model.ErrInvalidInput))
		return
	}

	result, err := state.engine.ApplyEdit(c.Request.Context(), session.EditRequest{
		SessionID:     req.SessionID,
		FileID:        req.FileID,
		Operation:     op,
		Segments:      req.Segments,
		JoinSegments:  req.JoinSegments,
		SourceVersion: req.SourceVersion,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeEditResult(c, result)
}

func writeEditResult(c *gin.Context, result *session.EditResult) {
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"outputFile":    result.OutputFilename,
		"downloadUrl":   downloadURL(result.OutputFilename),
		"version":       result.Version,
		"sourceVersion": result.Entry.SourceVersion,
	})
}
