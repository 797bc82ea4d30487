package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"wordle-results/internal/types"
)

func openTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := Open(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestOpenCreatesEmptyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Path() != filepath.Join(dir, DefaultFileName) {
		t.Errorf("Path = %q, want default file name under %s", s.Path(), dir)
	}
	if got := strings.TrimSpace(readFile(t, s.Path())); got != "{}" {
		t.Errorf("new data file content = %q, want {}", got)
	}
}

func TestOpenFallsBackWhenDirUnusable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}
	fallback := filepath.Join(base, "fallback")

	s, err := Open(Config{Dir: filepath.Join(blocker, "data"), FallbackDir: fallback, FileName: "results.json"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Dir() != fallback {
		t.Errorf("Dir = %q, want fallback %q", s.Dir(), fallback)
	}
	if _, err := os.Stat(filepath.Join(fallback, "results.json")); err != nil {
		t.Errorf("expected results file in fallback dir: %v", err)
	}
}

func TestOpenFailsWhenNoDirUsable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}
	_, err := Open(Config{Dir: filepath.Join(blocker, "a"), FallbackDir: filepath.Join(blocker, "b")})
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Open error = %v, want ErrStorage", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	s := openTestStore(t)
	want := types.Results{
		"2024-01-01": types.DayBucket{
			"alice": {Guesses: []string{"crane", "light"}, States: [][]json.RawMessage{{json.RawMessage(`"absent"`)}, {json.RawMessage(`{"letter":"t","status":"correct"}`)}}, Success: true, Attempts: 2},
		},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got := s.Load()
	rec, ok := got["2024-01-01"]["alice"]
	if !ok {
		t.Fatalf("Load missing alice record: %+v", got)
	}
	if rec.Attempts != 2 || !rec.Success || len(rec.Guesses) != 2 || rec.Guesses[1] != "light" {
		t.Errorf("Load returned %+v", rec)
	}
	states, _ := json.Marshal(rec.States)
	if string(states) != `[["absent"],[{"letter":"t","status":"correct"}]]` {
		t.Errorf("Load states = %s", states)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(types.Results{"2024-01-01": types.DayBucket{}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadRecoversFromCorruptContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"garbage", "{not json"},
		{"empty", ""},
		{"whitespace", "   \n"},
		{"null", "null"},
		{"wrong shape", `["a","b"]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := openTestStore(t)
			if err := os.WriteFile(s.Path(), []byte(c.content), 0644); err != nil {
				t.Fatalf("Failed to write corrupt content: %v", err)
			}
			got := s.Load()
			if got == nil || len(got) != 0 {
				t.Errorf("Load = %v, want empty non-nil mapping", got)
			}
			var check map[string]any
			if err := json.Unmarshal([]byte(readFile(t, s.Path())), &check); err != nil {
				t.Errorf("file not repaired to valid JSON: %v", err)
			}
		})
	}
}

func TestLoadRecreatesDeletedFile(t *testing.T) {
	s := openTestStore(t)
	if err := os.Remove(s.Path()); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load after delete = %v, want empty", got)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("file not recreated: %v", err)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	_ = s.Save(types.Results{"2024-01-01": types.DayBucket{"bob": {Guesses: []string{"a"}, Attempts: 1}}})
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load after Reset = %v, want empty", got)
	}
}

func TestSaveReportsStorageError(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "data")
	s, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Replace the directory with a regular file so nothing can be written.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := s.Save(types.Results{}); !errors.Is(err, ErrStorage) {
		t.Errorf("Save error = %v, want ErrStorage", err)
	}
	if got := s.Load(); got == nil || len(got) != 0 {
		t.Errorf("Load on broken dir = %v, want empty mapping", got)
	}
}

func TestUpdateAbortsOnError(t *testing.T) {
	s := openTestStore(t)
	_ = s.Save(types.Results{"2024-01-01": types.DayBucket{}})
	boom := errors.New("boom")
	err := s.Update(func(r types.Results) error {
		r["2024-01-02"] = types.DayBucket{}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	if _, ok := s.Load()["2024-01-02"]; ok {
		t.Error("Update persisted changes despite error")
	}
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	s := openTestStore(t)
	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			player := fmt.Sprintf("player-%d", i)
			err := s.Update(func(r types.Results) error {
				bucket := r["2024-01-01"]
				if bucket == nil {
					bucket = types.DayBucket{}
				}
				bucket[player] = types.GameRecord{Guesses: []string{"crane"}, Attempts: 1}
				r["2024-01-01"] = bucket
				return nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(i)
	}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Load()
		}()
	}
	wg.Wait()

	if got := len(s.Load()["2024-01-01"]); got != writers {
		t.Errorf("bucket has %d players, want %d", got, writers)
	}
}

func TestInspect(t *testing.T) {
	s := openTestStore(t)
	snap := s.Inspect()
	if !snap.FileExists {
		t.Error("Inspect FileExists = false, want true")
	}
	if snap.DataFile != s.Path() || snap.DataDir != s.Dir() {
		t.Errorf("Inspect paths = %q/%q", snap.DataDir, snap.DataFile)
	}
	found := false
	for _, f := range snap.Files {
		if f == DefaultFileName {
			found = true
		}
	}
	if !found {
		t.Errorf("Inspect Files = %v, want %s listed", snap.Files, DefaultFileName)
	}
}

func TestLoadRestoresUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	s := openTestStore(t)
	want := types.Results{"2024-01-01": types.DayBucket{"alice": {Guesses: []string{"crane"}, Attempts: 1}}}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.Chmod(s.Path(), 0o000); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	got := s.Load()
	if _, ok := got["2024-01-01"]["alice"]; !ok {
		t.Errorf("Load on unreadable file = %v, want alice restored", got)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("file mode = %v, want 0644", perm)
	}
}
