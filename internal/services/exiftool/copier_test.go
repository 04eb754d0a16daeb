package exiftool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyTagsArgumentOrder(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "args")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\nexit 0\n"
	stub := filepath.Join(binDir, "exiftool")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	copier := NewCopier(WithBinary(stub))
	if err := copier.CopyTags(context.Background(), "/tmp/in.mp4", "/tmp/out.mp4"); err != nil {
		t.Fatalf("CopyTags failed: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	want := "-TagsFromFile /tmp/in.mp4 -all:all -FileModifyDate -overwrite_original /tmp/out.mp4"
	if strings.TrimSpace(string(recorded)) != want {
		t.Fatalf("unexpected args: %q, want %q", strings.TrimSpace(string(recorded)), want)
	}
}

func TestCopyTagsNonZeroExit(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "exiftool")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'bad tag' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	copier := NewCopier(WithBinary(stub))
	err := copier.CopyTags(context.Background(), "in", "out")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "bad tag") {
		t.Fatalf("expected stderr detail in error: %v", err)
	}
}

func TestCopyTagsRequiresPaths(t *testing.T) {
	copier := NewCopier()
	if err := copier.CopyTags(context.Background(), "", "out"); err == nil {
		t.Fatal("expected error for empty source")
	}
	if err := copier.CopyTags(context.Background(), "in", ""); err == nil {
		t.Fatal("expected error for empty destination")
	}
}
