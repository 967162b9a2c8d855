package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/transcoder/transcodertest"
)

func setupWorkdir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DASHPREP_PIPELINE_OUTPUTDIR", filepath.Join(dir, "output_videos"))
	t.Setenv("DASHPREP_LOGGING_FORMAT", "json")
	return dir
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"two arguments", []string{"a.mp4", "b.mp4"}},
		{"three arguments", []string{"a.mp4", "b.mp4", "c.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := transcodertest.NewFakeRunner()
			var stdout, stderr bytes.Buffer

			code := run(context.Background(), tt.args, &stdout, &stderr, runner)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), "Usage:")
			assert.Empty(t, runner.Calls())
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := setupWorkdir(t)
	runner := transcodertest.NewFakeRunner()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"does_not_exist.mp4"}, &stdout, &stderr, runner)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "does_not_exist.mp4")
	assert.Empty(t, runner.Calls())

	_, err := os.Stat(filepath.Join(dir, "output_videos"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunSDRInput(t *testing.T) {
	dir := setupWorkdir(t)
	input := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(input, []byte("frames"), 0644))

	runner := transcodertest.NewFakeRunner()
	runner.Outputs["ffprobe"] = []byte("color_range=tv\n")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{input}, &stdout, &stderr, runner)
	assert.Equal(t, 0, code)
	assert.Equal(t, 4, runner.Count("ffmpeg"))
	assert.Equal(t, 4, runner.Count("mp4dash"))
	assert.Contains(t, stdout.String(), "Run finished")
}

func TestRunStepFailuresExitZero(t *testing.T) {
	dir := setupWorkdir(t)
	input := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(input, []byte("frames"), 0644))

	runner := transcodertest.NewFakeRunner()
	runner.Outputs["ffprobe"] = []byte("color_space=bt2020\n")
	runner.Errors["mp4dash"] = errors.New("exit status 1")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{input}, &stdout, &stderr, runner)
	assert.Equal(t, 0, code)
	assert.Equal(t, 8, runner.Count("ffmpeg"))
	assert.Equal(t, 8, runner.Count("mp4dash"))
}

func TestRunFailOnStepError(t *testing.T) {
	dir := setupWorkdir(t)
	t.Setenv("DASHPREP_PIPELINE_FAILONSTEPERROR", "true")
	input := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(input, []byte("frames"), 0644))

	runner := transcodertest.NewFakeRunner()
	runner.Errors["ffmpeg"] = errors.New("exit status 1")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{input}, &stdout, &stderr, runner)
	assert.Equal(t, 1, code)
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	dir := setupWorkdir(t)
	promFile := filepath.Join(dir, "dashprep.prom")
	t.Setenv("DASHPREP_METRICS_TEXTFILE", promFile)
	input := filepath.Join(dir, "clip.mkv")
	require.NoError(t, os.WriteFile(input, []byte("frames"), 0644))

	runner := transcodertest.NewFakeRunner()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{input}, &stdout, &stderr, runner)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dashprep_steps_total")
}

func TestRunInvalidConfig(t *testing.T) {
	dir := setupWorkdir(t)
	t.Setenv("DASHPREP_ENCODER_CRF", "99")
	input := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(input, []byte("frames"), 0644))

	runner := transcodertest.NewFakeRunner()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{input}, &stdout, &stderr, runner)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "crf")
	assert.Empty(t, runner.Calls())
}
