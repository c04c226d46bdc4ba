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

// Package files manages the on-disk media areas: uploads/ for originals,
// processed/ for derived versions, and temp/ for transient intermediates.
//
// File identifiers are random tokens generated at upload time, independent
// of the original filename, which removes both collision and
// path-traversal concerns. Derived filenames combine the file id, target
// version, and operation name purely as a debugging aid; no component may
// parse them back.
package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Manager owns the three storage areas under a single root directory.
type Manager struct {
	root string
}

// NewManager creates (if needed) the uploads, processed, and temp areas
// under root and returns a manager for them.
func NewManager(root string) (*Manager, error) {
	m := &Manager{root: root}
	for _, dir := range m.areas() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage area %s: %w", dir, err)
		}
	}
	return m, nil
}

func (m *Manager) areas() []string {
	return []string{m.UploadsDir(), m.ProcessedDir(), m.TempDir()}
}

// UploadsDir returns the directory holding original uploads.
func (m *Manager) UploadsDir() string { return filepath.Join(m.root, "uploads") }

// ProcessedDir returns the directory holding derived edit outputs.
func (m *Manager) ProcessedDir() string { return filepath.Join(m.root, "processed") }

// TempDir returns the directory holding transient intermediates.
func (m *Manager) TempDir() string { return filepath.Join(m.root, "temp") }

// NewFileID generates a collision-free identifier for an upload.
func (m *Manager) NewFileID() string { return uuid.NewString() }

// UploadPath returns the canonical path of an original upload:
// uploads/<fileId><ext>. ext must include the leading dot.
func (m *Manager) UploadPath(fileID, ext string) string {
	return filepath.Join(m.UploadsDir(), fileID+ext)
}

// ProcessedName builds the filename for a derived version:
// <fileId>_v<version>_<opName><ext>.
func (m *Manager) ProcessedName(fileID string, version int, opName, ext string) string {
	return fmt.Sprintf("%s_v%d_%s%s", fileID, version, opName, ext)
}

// ProcessedPath returns the full path for a processed filename.
func (m *Manager) ProcessedPath(name string) string {
	return filepath.Join(m.ProcessedDir(), name)
}

// JoinOutputName builds the filename for a multi-video join. outputName is
// sanitized to its base name; empty input falls back to a default.
func (m *Manager) JoinOutputName(outputName string, version int, ext string) string {
	base := strings.TrimSpace(filepath.Base(outputName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "multi_video_joined"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_v%d%s", base, version, ext)
}

// TempPath returns a unique path in the temp area. The uuid token keeps
// concurrent multi-segment operations from colliding.
func (m *Manager) TempPath(prefix, ext string) string {
	return filepath.Join(m.TempDir(), fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext))
}

// Remove deletes a single file, best-effort. Missing files are fine.
func (m *Manager) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove file", "path", path, "error", err)
	}
}

// CleanupAll removes and recreates every storage area. Individual failures
// are swallowed so a cleanup request always completes.
func (m *Manager) CleanupAll() {
	for _, dir := range m.areas() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove storage area", "dir", dir, "error", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("failed to recreate storage area", "dir", dir, "error", err)
		}
	}
}

// CanonicalExt returns the storage extension for a media kind: uploads are
// normalized to mp4 (video) or mp3 (audio) by the upload pipeline.
func CanonicalExt(isVideo bool) string {
	if isVideo {
		return ".mp4"
	}
	return ".mp3"
}
