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
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SessionRouter wires session lifecycle, history, maintenance, and the
// processed-file download endpoint.
func SessionRouter(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/session/create", func(c *gin.Context) {
		session := state.engine.CreateSession()
		c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": session.ID})
	})

	r.GET("/session/:sessionId/history", func(c *gin.Context) {
		session, entries, available, err := state.engine.History(c.Param("sessionId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"session":           session,
			"history":           entries,
			"availableVersions": available,
		})
	})

	r.DELETE("/session/:sessionId", func(c *gin.Context) {
		if err := state.engine.DeleteSession(c.Param("sessionId")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "session deleted"})
	})

	r.POST("/cleanup", func(c *gin.Context) {
		state.files.CleanupAll()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "storage areas cleared"})
	})

	r.GET("/download/:filename", func(c *gin.Context) {
		// filepath.Base strips any traversal attempt; only files directly
		// in the processed area are served.
		name := filepath.Base(c.Param("filename"))
		if name == "." || name == "/" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid filename"})
			return
		}
		c.FileAttachment(state.files.ProcessedPath(name), name)
	})
}
