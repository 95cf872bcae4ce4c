package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoDuration is returned when ffprobe output carries no usable duration
var ErrNoDuration = errors.New("no duration in probe output")

// FFmpeg wraps the ffprobe and ffmpeg binaries
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg creates a new FFmpeg instance
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// VideoMetadata holds video metadata extracted from ffprobe
type VideoMetadata struct {
	Format  FormatInfo   `json:"format"`
	Streams []StreamInfo `json:"streams"`
}

// FormatInfo holds format information
type FormatInfo struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

// StreamInfo holds stream information
type StreamInfo struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// ProbeVideo extracts metadata from a video file
func (f *FFmpeg) ProbeVideo(ctx context.Context, inputPath string) (*VideoMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	return parseMetadata(stdout.Bytes())
}

func parseMetadata(data []byte) (*VideoMetadata, error) {
	var metadata VideoMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &metadata, nil
}

// Duration returns the length of the video in seconds, preferring the container
// duration and falling back to the first video stream
func (m *VideoMetadata) Duration() (float64, error) {
	if d, err := strconv.ParseFloat(m.Format.Duration, 64); err == nil && d > 0 {
		return d, nil
	}
	for _, stream := range m.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil && d > 0 {
			return d, nil
		}
	}
	return 0, ErrNoDuration
}

// Duration probes inputPath and returns its length in seconds
func (f *FFmpeg) Duration(ctx context.Context, inputPath string) (float64, error) {
	metadata, err := f.ProbeVideo(ctx, inputPath)
	if err != nil {
		return 0, err
	}
	return metadata.Duration()
}

func compressedPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "-compressed.mp4"
}

func compressArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vcodec", "libx264",
		"-crf", "28",
		"-preset", "veryfast",
		"-acodec", "aac",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}
}

// Compress re-encodes inputPath to H.264 next to it and returns the new path.
// On success the input file is removed; on failure the partial output is.
func (f *FFmpeg) Compress(ctx context.Context, inputPath string) (string, error) {
	outputPath := compressedPath(inputPath)
	cmd := exec.CommandContext(ctx, f.ffmpegPath, compressArgs(inputPath, outputPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to compress video: %w, stderr: %s", err, stderr.String())
	}

	os.Remove(inputPath)
	return outputPath, nil
}
