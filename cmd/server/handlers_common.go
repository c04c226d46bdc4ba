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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleancut/cleancut/internal/core/model"
)

// writeError maps the core error taxonomy onto HTTP statuses. This is the
// only place that mapping lives; the core packages never see HTTP.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case model.IsInvalidInput(err), model.IsSizeLimit(err):
		status = http.StatusBadRequest
	case model.IsNotFound(err):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// downloadURL builds the client-facing link for a processed file.
func downloadURL(filename string) string {
	return "/api/download/" + filename
}
