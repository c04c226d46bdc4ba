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

// Package session holds the editing sessions and the version-history
// engine that applies non-destructive edits to their media.
package session

import (
	"sync"

	"github.com/cleancut/cleancut/internal/core/model"
)

// State is one session plus its append-only edit history. The mutex
// serializes every edit against the session: version numbers are assigned
// in completion order and the counter increments only on success, so the
// whole resolve-transform-record sequence runs under the lock. Edits on
// different sessions proceed in parallel.
type State struct {
	mu      sync.Mutex
	Session *model.Session
	History []*model.EditEntry
}

// Store is the session registry. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(id string) (*State, bool)
	Put(state *State)
	Delete(id string)
}

// MemoryStore keeps all sessions in process memory; a restart discards
// every session, matching the persistence model of the rest of the system.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*State)}
}

func (s *MemoryStore) Get(id string) (*State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	return state, ok
}

func (s *MemoryStore) Put(state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.Session.ID] = state
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
