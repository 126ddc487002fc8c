package transcripts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmaren/registra/internal/dialog"
)

func TestCreateAndGet(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	tr, err := fs.Create("conv_abc123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tr.Status != StatusActive {
		t.Fatalf("expected active status, got %q", tr.Status)
	}

	got, err := fs.Get("conv_abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "conv_abc123" {
		t.Fatalf("expected id round trip, got %q", got.ID)
	}
}

func TestGetMissing(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	if _, err := fs.Get("conv_nope"); err == nil {
		t.Fatal("expected error for missing transcript")
	}
}

func TestUpdateMetaPersistsQueryState(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	tr, err := fs.Create("conv_q")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tr.Query = dialog.QueryState{
		Terms: []string{"Fall 2024"},
		Level: "Undergraduate",
	}
	tr.AskingFor = dialog.AskMode
	if err := fs.UpdateMeta(tr); err != nil {
		t.Fatalf("update meta: %v", err)
	}

	got, err := fs.Get("conv_q")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Query.Level != "Undergraduate" || got.AskingFor != dialog.AskMode {
		t.Fatalf("expected query state round trip, got %+v", got)
	}
}

func TestAppendAndLoadMessages(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	if _, err := fs.Create("conv_m"); err != nil {
		t.Fatalf("create: %v", err)
	}
	msgs := []Message{
		{Role: "user", Content: "fall 2024", Ts: time.Now()},
		{Role: "assistant", Content: "Which level?", Ts: time.Now()},
	}
	for _, m := range msgs {
		if err := fs.AppendMessage("conv_m", m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	loaded, err := fs.LoadMessages("conv_m")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "fall 2024" || loaded[1].Role != "assistant" {
		t.Fatalf("unexpected messages %+v", loaded)
	}

	meta, err := fs.Get("conv_m")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if meta.MessageCount != 2 {
		t.Fatalf("expected message count 2, got %d", meta.MessageCount)
	}
}

func TestLoadMessagesSkipsCorruptedLines(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	if _, err := fs.Create("conv_c"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := fs.AppendMessage("conv_c", Message{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	path := filepath.Join(dir, "conv_c", "messages.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()
	if err := fs.AppendMessage("conv_c", Message{Role: "assistant", Content: "hello"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	loaded, err := fs.LoadMessages("conv_c")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected corrupted line skipped, got %d messages", len(loaded))
	}
}

func TestListSortedByUpdate(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	a, err := fs.Create("conv_a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fs.Create("conv_b"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Touch the older one so it sorts first.
	time.Sleep(10 * time.Millisecond)
	if err := fs.UpdateMeta(a); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := fs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 transcripts, got %d", len(list))
	}
	if list[0].ID != "conv_a" {
		t.Fatalf("expected conv_a first, got %q", list[0].ID)
	}
}

func TestDelete(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	if _, err := fs.Create("conv_d"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := fs.Delete("conv_d"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fs.Get("conv_d"); err == nil {
		t.Fatal("expected transcript gone")
	}
	if err := fs.Delete("conv_d"); err == nil {
		t.Fatal("expected error deleting missing transcript")
	}
}
