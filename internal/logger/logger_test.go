package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSetupWritesJSONLines(t *testing.T) {
	dir := t.TempDir()

	cleanup, err := Setup(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	want := filepath.Join(dir, "logs", "nbody.log")
	if Path() != want {
		t.Errorf("path = %s, want %s", Path(), want)
	}

	L().Info("run.started", "steps", 1000)

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if Path() != "" {
		t.Errorf("path after cleanup = %q, want empty", Path())
	}

	f, err := os.Open(want)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var msgs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line is not JSON: %q", sc.Text())
		}
		msgs = append(msgs, rec["msg"].(string))
	}

	if len(msgs) != 2 || msgs[0] != "logger.initialized" || msgs[1] != "run.started" {
		t.Errorf("unexpected log messages: %v", msgs)
	}
}

func TestDebugAddsSource(t *testing.T) {
	dir := t.TempDir()

	cleanup, err := Setup(Config{DataDir: dir, Debug: true})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	L().Debug("advance.chunk")
	_ = cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "nbody.log"))
	if err != nil {
		t.Fatal(err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	found := false
	for sc.Scan() {
		var rec map[string]any
		_ = json.Unmarshal(sc.Bytes(), &rec)
		if rec["msg"] == "advance.chunk" {
			found = true
			if _, ok := rec["source"]; !ok {
				t.Error("debug records should include source")
			}
		}
	}
	if !found {
		t.Error("debug record not written")
	}
}
