package vspipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// sourceEnvVar is the agreed side channel handing the input path to the
// VapourSynth script.
const sourceEnvVar = "VS_SOURCE"

// Watermark describes the overlay applied during encode.
type Watermark struct {
	Enabled bool
	Text    string
	Opacity float64
}

// Runner drives the vspipe|ffmpeg pair. Exit-code contract: both processes
// must exit zero, otherwise the whole attempt fails.
type Runner struct {
	vspipeBinary string
	ffmpegBinary string
	script       string
	watermark    Watermark
}

// Option configures the Runner.
type Option func(*Runner)

// WithVSPipeBinary overrides the default vspipe binary name.
func WithVSPipeBinary(binary string) Option {
	return func(r *Runner) {
		if binary != "" {
			r.vspipeBinary = binary
		}
	}
}

// WithFFmpegBinary overrides the default ffmpeg binary name.
func WithFFmpegBinary(binary string) Option {
	return func(r *Runner) {
		if binary != "" {
			r.ffmpegBinary = binary
		}
	}
}

// NewRunner constructs a Runner for the given script and watermark settings.
func NewRunner(script string, watermark Watermark, opts ...Option) *Runner {
	runner := &Runner{
		vspipeBinary: "vspipe",
		ffmpegBinary: "ffmpeg",
		script:       script,
		watermark:    watermark,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Boost enhances inputPath into outputPath. The video stream comes from the
// vspipe y4m output; the audio track is mapped from the original file.
func (r *Runner) Boost(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	vs := commandContext(ctx, r.vspipeBinary, "-c", "y4m", r.script, "-")
	vs.Env = append(os.Environ(), sourceEnvVar+"="+inputPath)
	var vsErr bytes.Buffer
	vs.Stderr = &vsErr

	ff := commandContext(ctx, r.ffmpegBinary, ffmpegArgs(inputPath, outputPath, r.watermark)...) //nolint:gosec
	var ffErr bytes.Buffer
	ff.Stderr = &ffErr

	// The pipe is built by hand so the parent can drop both ends once the
	// children hold them. Keeping a read end open here would stop vspipe
	// from seeing EPIPE when ffmpeg dies mid-encode, leaving it blocked on
	// a full pipe forever.
	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create video pipe: %w", err)
	}
	vs.Stdout = pw
	ff.Stdin = pr

	if err := vs.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("start vspipe: %w", err)
	}
	if err := ff.Start(); err != nil {
		pr.Close()
		pw.Close()
		_ = vs.Process.Kill()
		_ = vs.Wait()
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	pr.Close()
	pw.Close()

	// ffmpeg finishes last in a healthy run, so wait on it first. When it
	// fails early, kill vspipe outright in case it is stalled on a write
	// that will never complete.
	ffWaitErr := ff.Wait()
	if ffWaitErr != nil {
		_ = vs.Process.Kill()
	}
	vsWaitErr := vs.Wait()

	if ffWaitErr != nil {
		return fmt.Errorf("ffmpeg encode failed: %w: %s", ffWaitErr, tail(ffErr.String()))
	}
	if vsWaitErr != nil {
		return fmt.Errorf("vspipe failed: %w: %s", vsWaitErr, tail(vsErr.String()))
	}
	return nil
}

// ffmpegArgs builds the encode invocation: video from the y4m pipe, audio
// copied from the original container, optional drawtext overlay.
func ffmpegArgs(inputPath, outputPath string, watermark Watermark) []string {
	args := []string{"-y", "-i", "pipe:", "-i", inputPath}
	if filter := watermark.Filter(); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", "hevc_nvenc",
		"-preset", "p6",
		"-cq", "20",
		"-map", "0:v:0",
		"-map", "1:a?",
		"-c:a", "copy",
		outputPath,
	)
	return args
}

// Filter renders the drawtext expression for the watermark, or an empty
// string when disabled.
func (w Watermark) Filter() string {
	if !w.Enabled || strings.TrimSpace(w.Text) == "" {
		return ""
	}
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white@%g:fontsize=h/60:x=w-tw-20:y=h-th-20",
		escapeDrawtext(w.Text), w.Opacity,
	)
}

// escapeDrawtext quotes the characters the drawtext filter treats specially.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}

func tail(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "(no stderr output)"
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
