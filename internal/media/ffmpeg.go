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

package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cleancut/cleancut/internal/core/model"
)

// FFmpeg implements Transformer by shelling out to the ffmpeg and ffprobe
// binaries. All invocations honor the caller's context, so a cancelled
// request kills the child process.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg creates a transformer bound to the given binary paths.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ffprobeOutput mirrors the subset of `ffprobe -print_format json` that the
// system reads. Numeric fields arrive as strings and are parsed leniently:
// a malformed field degrades to zero rather than failing the probe.
type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		BitRate    string `json:"bit_rate"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

func (f *FFmpeg) Probe(ctx context.Context, inputPath string) (*model.ProbeInfo, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffprobe %s: %v: %s",
			model.ErrTransformFailure, filepath.Base(inputPath), err, strings.TrimSpace(stderr.String()))
	}

	var raw ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing ffprobe output: %v", model.ErrTransformFailure, err)
	}

	info := &model.ProbeInfo{
		DurationSeconds: parseFloat(raw.Format.Duration),
		Format:          raw.Format.FormatName,
		SizeBytes:       parseInt(raw.Format.Size),
	}
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if info.Video == nil {
				info.Video = &model.VideoStreamInfo{
					Codec:      s.CodecName,
					Resolution: fmt.Sprintf("%dx%d", s.Width, s.Height),
					FPS:        strconv.FormatFloat(parseFrameRate(s.RFrameRate), 'f', 2, 64),
					Bitrate:    s.BitRate,
				}
			}
		case "audio":
			if info.Audio == nil {
				info.Audio = &model.AudioStreamInfo{
					Codec:      s.CodecName,
					Channels:   s.Channels,
					SampleRate: s.SampleRate,
					Bitrate:    s.BitRate,
				}
			}
		}
	}
	return info, nil
}

func (f *FFmpeg) ConvertContainer(ctx context.Context, inputPath, outputPath string, toVideo bool) error {
	args := []string{"-y", "-i", inputPath}
	if toVideo {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", "23",
			"-c:a", "aac",
			"-movflags", "+faststart")
	} else {
		args = append(args,
			"-vn",
			"-c:a", "libmp3lame",
			"-b:a", "192k",
			"-ar", "44100",
			"-ac", "2")
	}
	args = append(args, outputPath)
	return f.run(ctx, args)
}

func (f *FFmpeg) ExtractAudioTrack(ctx context.Context, inputPath, outputPath string) error {
	return f.run(ctx, []string{
		"-y", "-i", inputPath,
		"-vn",
		"-c:a", "libmp3lame",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "128k",
		outputPath,
	})
}

func (f *FFmpeg) MuteSegments(ctx context.Context, inputPath, outputPath string, segs []model.Segment, hasVideo bool) error {
	args := []string{"-y", "-i", inputPath,
		"-filter_complex", muteFilter(segs)}
	if hasVideo {
		args = append(args,
			"-map", "0:v",
			"-map", "[outa]",
			"-c:v", "copy",
			"-c:a", "aac",
			"-movflags", "+faststart")
	} else {
		args = append(args,
			"-map", "[outa]",
			"-c:a", "libmp3lame",
			"-b:a", "192k")
	}
	args = append(args, outputPath)
	return f.run(ctx, args)
}

func (f *FFmpeg) Trim(ctx context.Context, inputPath, outputPath string, segs []model.Segment) error {
	if len(segs) == 0 {
		return fmt.Errorf("%w: trim requires at least one segment", model.ErrInvalidInput)
	}
	if len(segs) == 1 {
		seg := segs[0]
		return f.run(ctx, []string{
			"-y",
			"-ss", formatSeconds(seg.Start),
			"-i", inputPath,
			"-t", formatSeconds(seg.End - seg.Start),
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", "23",
			"-c:a", "aac",
			"-movflags", "+faststart",
			outputPath,
		})
	}
	return f.run(ctx, []string{
		"-y", "-i", inputPath,
		"-filter_complex", trimJoinFilter(segs),
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outputPath,
	})
}

func (f *FFmpeg) Concatenate(ctx context.Context, inputPaths []string, outputPath string, reencode bool) error {
	if len(inputPaths) == 0 {
		return fmt.Errorf("%w: concatenate requires at least one input", model.ErrInvalidInput)
	}

	listFile, err := os.CreateTemp(filepath.Dir(outputPath), "concat_*.txt")
	if err != nil {
		return fmt.Errorf("%w: creating concat list: %v", model.ErrTransformFailure, err)
	}
	listPath := listFile.Name()
	defer func() {
		if rmErr := os.Remove(listPath); rmErr != nil {
			slog.Warn("failed to remove concat list", "path", listPath, "error", rmErr)
		}
	}()
	if _, err := listFile.WriteString(concatListContent(inputPaths)); err != nil {
		listFile.Close()
		return fmt.Errorf("%w: writing concat list: %v", model.ErrTransformFailure, err)
	}
	if err := listFile.Close(); err != nil {
		return fmt.Errorf("%w: writing concat list: %v", model.ErrTransformFailure, err)
	}

	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath}
	if reencode {
		// Inputs from different sources rarely share codec parameters, so
		// everything is normalized to one format before joining.
		args = append(args,
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", "23",
			"-r", "30",
			"-c:a", "aac",
			"-ar", "48000",
			"-ac", "2",
			"-af", "aresample=async=1",
			"-movflags", "+faststart")
	} else {
		args = append(args, "-c", "copy", "-fflags", "+genpts")
	}
	args = append(args, outputPath)
	return f.run(ctx, args)
}

// run executes ffmpeg with the given arguments, surfacing the tail of
// stderr on failure since that is where ffmpeg reports the actual problem.
func (f *FFmpeg) run(ctx context.Context, args []string) error {
	slog.Debug("running ffmpeg", "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", model.ErrTransformFailure, err, tail(stderr.String(), 800))
	}
	return nil
}

// muteFilter builds the audio filter that zeroes the volume inside each
// segment: volume=enable='between(t,s,e)+between(t,s,e)...':volume=0.
func muteFilter(segs []model.Segment) string {
	conds := make([]string, 0, len(segs))
	for _, s := range segs {
		conds = append(conds, fmt.Sprintf("between(t,%s,%s)", formatSeconds(s.Start), formatSeconds(s.End)))
	}
	return fmt.Sprintf("[0:a]volume=enable='%s':volume=0[outa]", strings.Join(conds, "+"))
}

// trimJoinFilter builds the filter graph that cuts each segment from the
// input and concatenates them in the order given. setpts/asetpts reset the
// timestamps of every cut so the concat filter sees contiguous streams.
func trimJoinFilter(segs []model.Segment) string {
	var b strings.Builder
	for i, s := range segs {
		start := formatSeconds(s.Start)
		end := formatSeconds(s.End)
		fmt.Fprintf(&b, "[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d];", start, end, i)
		fmt.Fprintf(&b, "[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d];", start, end, i)
	}
	for i := range segs {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(segs))
	return b.String()
}

// concatListContent renders the concat demuxer list. Single quotes inside
// paths are escaped per the demuxer's quoting rules.
func concatListContent(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return b.String()
}

// formatSeconds renders a time offset with millisecond precision and no
// trailing zeros, keeping the filter strings readable in logs.
func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// parseFrameRate evaluates ffprobe's rational frame rate ("30000/1001").
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
