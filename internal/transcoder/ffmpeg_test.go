package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/logging"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/transcoder/transcodertest"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

func newTestFFmpeg(runner Runner) *FFmpeg {
	return NewFFmpeg(config.Default(), runner, logging.Nop())
}

func TestIsHDROutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"full range", "codec_name=hevc\ncolor_range=pc\ncolor_space=bt709\n", true},
		{"bt2020", "codec_name=hevc\ncolor_range=tv\ncolor_space=bt2020nc\n", true},
		{"both", "color_range=pc\ncolor_space=bt2020\n", true},
		{"sdr", "codec_name=h264\ncolor_range=tv\ncolor_space=bt709\n", false},
		{"bt2020 primaries only", "color_primaries=bt2020\ncolor_transfer=smpte2084\n", false},
		{"key-less values", "hevc\npc\nbt2020nc\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHDROutput(tt.output))
		})
	}
}

func TestDetectHDR(t *testing.T) {
	ctx := context.Background()

	t.Run("HDR", func(t *testing.T) {
		runner := transcodertest.NewFakeRunner()
		runner.Outputs["ffprobe"] = []byte("index=0\ncolor_space=bt2020nc\n")

		assert.True(t, newTestFFmpeg(runner).DetectHDR(ctx, "in.mp4"))

		calls := runner.CallsTo("ffprobe")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{
			"-show_streams",
			"-select_streams", "v:0",
			"-of", "default=noprint_wrappers=1",
			"-v", "error",
			"in.mp4",
		}, calls[0].Args)
	})

	t.Run("SDR", func(t *testing.T) {
		runner := transcodertest.NewFakeRunner()
		runner.Outputs["ffprobe"] = []byte("color_range=tv\ncolor_space=bt709\n")

		assert.False(t, newTestFFmpeg(runner).DetectHDR(ctx, "in.mp4"))
	})

	t.Run("ProbeFailureIsSDR", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.NewLogger(logging.Config{Level: "info", Format: "json", Writer: &buf})
		require.NoError(t, err)

		runner := transcodertest.NewFakeRunner()
		runner.Outputs["ffprobe"] = []byte("color_range=pc\n")
		runner.Errors["ffprobe"] = errors.New("exit status 1")

		f := NewFFmpeg(config.Default(), runner, logger)
		assert.False(t, f.DetectHDR(ctx, "broken.mp4"))
		assert.Contains(t, buf.String(), "HDR detection failed")
		assert.Contains(t, buf.String(), "broken.mp4")

		_, err = f.ProbeHDR(ctx, "broken.mp4")
		assert.Error(t, err)
	})
}

func TestOutputPath(t *testing.T) {
	for _, res := range models.DefaultLadder() {
		for _, prefix := range []string{"output_videos/output_hdr", "output_videos/output_sdr"} {
			got := OutputPath("/videos/in.mov", prefix, res)
			assert.Equal(t, fmt.Sprintf("%s_%dp.mov", prefix, res.Height), got)
		}
	}
}

func TestTranscode(t *testing.T) {
	ctx := context.Background()

	for _, hdr := range []bool{true, false} {
		for _, res := range models.DefaultLadder() {
			name := fmt.Sprintf("%s_%s", models.RangeFor(hdr), res.Name)
			t.Run(name, func(t *testing.T) {
				runner := transcodertest.NewFakeRunner()
				f := newTestFFmpeg(runner)

				out, err := f.Transcode(ctx, "in.mp4", "output_videos/output_x", res, hdr)
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("output_videos/output_x_%dp.mp4", res.Height), out)

				calls := runner.CallsTo("ffmpeg")
				require.Len(t, calls, 1)
				args := calls[0].Args

				assert.Equal(t, "-i", args[0])
				assert.Equal(t, "in.mp4", args[1])
				assert.Equal(t, "-vf", args[2])
				assert.True(t, strings.HasPrefix(args[3], fmt.Sprintf("scale=%d:%d,drawtext=", res.Width, res.Height)))
				assert.Equal(t, []string{"-c:v", "libx265", "-preset", "fast", "-crf", "28", "-y", out}, args[4:])

				style := models.NewOverlayStyle(res, hdr)
				assert.Contains(t, args[3], "fontcolor="+style.Color)
				assert.Contains(t, args[3], fmt.Sprintf("fontsize=%d", style.Radius*2))
			})
		}
	}
}

func TestTranscodeFailureReturnsPath(t *testing.T) {
	runner := transcodertest.NewFakeRunner()
	runner.Errors["ffmpeg"] = errors.New("exit status 1")

	out, err := newTestFFmpeg(runner).Transcode(context.Background(), "in.mkv", "out/output_sdr", models.Resolution480p, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "480p")
	assert.Equal(t, "out/output_sdr_480p.mkv", out)
}

func TestTranscodeUsesConfiguredEncoder(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpegPath = "/opt/bin/ffmpeg"
	cfg.Encoder.VideoCodec = "libx264"
	cfg.Encoder.Preset = "veryslow"
	cfg.Encoder.CRF = 18

	runner := transcodertest.NewFakeRunner()
	f := NewFFmpeg(cfg, runner, nil)

	_, err := f.Transcode(context.Background(), "in.mp4", "o", models.Resolution720p, false)
	require.NoError(t, err)

	calls := runner.CallsTo("ffmpeg")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-c:v", "libx264", "-preset", "veryslow", "-crf", "18", "-y", "o_720p.mp4"}, calls[0].Args[4:])
}
