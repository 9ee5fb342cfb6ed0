package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// storeUnderTest exercises the Store contract shared by every backend.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Missing objects report ErrNotFound.
	if _, _, err := store.Get(ctx, "jobs/missing.pls"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}

	payload := "[HEADER]\nWAFERLAYOUT=DEFAULT.wlo\n"
	info, err := store.Put(ctx, "jobs/run-1.pls", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", info.Size, len(payload))
	}

	// Re-export under the same key overwrites.
	updated := payload + "GDSFILE=chip.gds\n"
	if _, err := store.Put(ctx, "jobs/run-1.pls", strings.NewReader(updated)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, rc, err := store.Get(ctx, "jobs/run-1.pls")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != updated {
		t.Fatalf("payload = %q, want %q", data, updated)
	}
	if got.Key != "jobs/run-1.pls" {
		t.Fatalf("key = %q", got.Key)
	}

	if _, err := store.Put(ctx, "other/run-2.pls", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("put: %v", err)
	}

	infos, err := store.List(ctx, "jobs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "jobs/run-1.pls" {
		t.Fatalf("list = %+v", infos)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list all = %+v", all)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("list not sorted: %+v", all)
		}
	}
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	storeUnderTest(t, store)
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemory())
}

func TestS3Store(t *testing.T) {
	storeUnderTest(t, newMockS3())
}

func TestSanitizeKey(t *testing.T) {
	for _, bad := range []string{"", "  ", "/abs.pls", "../escape.pls", "a/../../b.pls"} {
		if _, err := sanitizeKey(bad); err == nil {
			t.Errorf("sanitizeKey(%q) succeeded, want error", bad)
		}
	}
	got, err := sanitizeKey("jobs//run.pls")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "jobs/run.pls" {
		t.Fatalf("sanitized = %q", got)
	}
}
