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

package profanity

import (
	"sort"
	"strings"
	"sync"
)

// CustomList is the server-wide custom profanity word list. Words are
// stored lowercased. The list itself is only ever read into an explicit
// set (see ActiveSet) before a detection runs; the matcher never touches
// it directly.
type CustomList struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// NewCustomList returns an empty custom word list.
func NewCustomList() *CustomList {
	return &CustomList{words: make(map[string]struct{})}
}

// Add inserts words (lowercased) into the list.
func (l *CustomList) Add(words []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			l.words[strings.ToLower(w)] = struct{}{}
		}
	}
}

// Remove deletes words (lowercased) from the list.
func (l *CustomList) Remove(words []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range words {
		delete(l.words, strings.ToLower(w))
	}
}

// Words returns the current list contents, sorted for stable responses.
func (l *CustomList) Words() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.words))
	for w := range l.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
