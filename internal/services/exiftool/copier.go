// Package exiftool wraps the external tag-copy collaborator. It propagates
// all metadata tags plus the file-modify date from the source recording onto
// the boosted output, overwriting the output's own metadata in place.
package exiftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Copier invokes exiftool. Exit-code contract: zero is success.
type Copier struct {
	binary string
}

// Option configures the Copier.
type Option func(*Copier)

// WithBinary overrides the default exiftool binary name.
func WithBinary(binary string) Option {
	return func(c *Copier) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// NewCopier constructs a Copier using defaults.
func NewCopier(opts ...Option) *Copier {
	copier := &Copier{binary: "exiftool"}
	for _, opt := range opts {
		opt(copier)
	}
	return copier
}

// CopyTags copies every tag and the file-modify date from srcPath onto
// dstPath, replacing dstPath's metadata without leaving a backup file.
func (c *Copier) CopyTags(ctx context.Context, srcPath, dstPath string) error {
	if srcPath == "" || dstPath == "" {
		return errors.New("source and destination paths required")
	}

	cmd := commandContext(ctx, c.binary,
		"-TagsFromFile", srcPath,
		"-all:all",
		"-FileModifyDate",
		"-overwrite_original",
		dstPath,
	) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "(no stderr output)"
		}
		return fmt.Errorf("exiftool tag copy failed: %w: %s", err, detail)
	}
	return nil
}
