package drivers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalFS_PutOpenRemove(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "localfs-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewLocalFS(tempDir, "/api/attachments")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	key := "photo/abcdef123456.jpg"
	content := []byte("image bytes")

	if err := store.Put(ctx, key, bytes.NewReader(content), "image/jpeg"); err != nil {
		t.Errorf("Put failed: %v", err)
	}

	// The kind prefix becomes a directory.
	fullPath := filepath.Join(tempDir, "photo", "abcdef123456.jpg")
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		t.Errorf("file not found at %s", fullPath)
	}

	reader, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	got, _ := io.ReadAll(reader)
	if !bytes.Equal(got, content) {
		t.Error("read content does not match written content")
	}

	url, err := store.PublicURL(ctx, key, 0)
	if err != nil {
		t.Errorf("PublicURL failed: %v", err)
	}
	if !strings.HasSuffix(url, key) || !strings.Contains(url, "/api/attachments") {
		t.Errorf("unexpected URL: %s", url)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Errorf("Remove failed: %v", err)
	}
	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Error("file still exists after removal")
	}

	// Removing a missing key is not an error.
	if err := store.Remove(ctx, key); err != nil {
		t.Errorf("Remove of missing key failed: %v", err)
	}
}

func TestLocalFS_RejectsTraversalKeys(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "localfs-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewLocalFS(tempDir, "")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	for _, key := range []string{"../escape.txt", "photo/../../escape.txt", "/etc/passwd"} {
		if err := store.Put(ctx, key, bytes.NewReader([]byte("x")), "text/plain"); err == nil {
			t.Errorf("Put accepted traversal key %q", key)
		}
		if _, err := store.Open(ctx, key); err == nil {
			t.Errorf("Open accepted traversal key %q", key)
		}
	}
}
