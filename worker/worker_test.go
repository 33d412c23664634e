package worker

import (
	"context"
	"testing"

	"github.com/quayrun/sandexec/blobstore"
	"github.com/quayrun/sandexec/types"
)

func TestNewCreatesScratchRoot(t *testing.T) {
	w, err := New(t.TempDir(), blobstore.NewMemStore(), "/bin/true")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.fs.Root() == "" {
		t.Fatal("expected non-empty scratch root")
	}
	if !w.fs.Exists(".") {
		t.Fatal("expected scratch root to exist on disk")
	}
}

func TestWriteFileLocalStagesInlineContent(t *testing.T) {
	w, err := New(t.TempDir(), blobstore.NewMemStore(), "/bin/true")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	file := types.File{Kind: types.FileLocal, Name: "input.txt", Content: []byte("seed data")}
	if err := w.WriteFile(context.Background(), file); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := w.fs.ReadFile("input.txt", false)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "seed data" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteFileRemoteFetchesFromBlobStore(t *testing.T) {
	blob := blobstore.NewMemStore()
	ctx := context.Background()
	if err := blob.Put(ctx, "asset-1", []byte("remote bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	w, err := New(t.TempDir(), blob, "/bin/true")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	file := types.File{Kind: types.FileRemote, Name: "asset.bin", ID: "asset-1"}
	if err := w.WriteFile(ctx, file); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := w.fs.ReadFile("asset.bin", false)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "remote bytes" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanupRemovesScratchRoot(t *testing.T) {
	w, err := New(t.TempDir(), blobstore.NewMemStore(), "/bin/true")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	root := w.fs.Root()
	w.Cleanup()
	if w.fs.Exists(".") {
		t.Fatalf("expected scratch root %s to be removed", root)
	}
}

func TestOutcomeLabel(t *testing.T) {
	if outcomeLabel(0) != "success" {
		t.Fatalf("expected success for exit code 0")
	}
	if outcomeLabel(1) != "nonzero_exit" {
		t.Fatalf("expected nonzero_exit for non-zero exit code")
	}
}
