package logging

import (
	"os"
	"path/filepath"
	"testing"

	"xo-arena/internal/config"
)

func TestSizeLimitedWriterRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writer, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Fatalf("expected log <= 1MB after rotation, got %d", info.Size())
	}
	oldInfo, err := os.Stat(path + ".old")
	if err != nil {
		t.Fatalf("stat rotated log: %v", err)
	}
	if oldInfo.Size() == 0 {
		t.Fatal("rotated log is empty")
	}
}

func TestSizeLimitedWriterKeepsOneGeneration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writer, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 700*1024)
	for i := 0; i < 4; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected app.log and app.log.old only, got %d entries", len(entries))
	}
}

func TestInitWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	err := Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Writer() == os.Stdout {
		t.Fatal("Writer() still stdout with LOG_FILE set")
	}
}
