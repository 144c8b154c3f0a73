package tokenizer

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoaderOfflineMissingCacheFailsFast(t *testing.T) {
	t.Setenv(envOffline, "1")
	t.Setenv(envCacheDir, t.TempDir())
	t.Setenv(envEncBase, "")

	_, err := LoadEncoding("o200k_base")
	if err == nil {
		t.Fatalf("expected error when offline cache is missing")
	}
	if !strings.Contains(err.Error(), "SPLINTR_OFFLINE") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoaderRejectsUnknownEncoding(t *testing.T) {
	if _, err := LoadEncoding("p50k_base"); err == nil {
		t.Fatalf("expected unknown encoding error")
	}
}

func TestLoaderReadsLocalEncodingDir(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	for i, tok := range []string{"a", "b", "ab"} {
		fmt.Fprintf(&sb, "%s %d\n", base64.StdEncoding.EncodeToString([]byte(tok)), i)
	}
	path := filepath.Join(dir, "cl100k_base.tiktoken")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	t.Setenv(envEncBase, dir)

	pairs, err := LoadEncoding("cl100k_base")
	if err != nil {
		t.Fatalf("LoadEncoding: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	if string(pairs[2].Bytes) != "ab" || pairs[2].Rank != 2 {
		t.Fatalf("unexpected pair: %+v", pairs[2])
	}
}

func TestLoaderRejectsMalformedVocabLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cl100k_base.tiktoken")
	if err := os.WriteFile(path, []byte("notbase64!! 0\n"), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	t.Setenv(envEncBase, dir)

	if _, err := LoadEncoding("cl100k_base"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoaderDownloadTimeout(t *testing.T) {
	t.Setenv(envHTTPTimeout, "1")

	dest := filepath.Join(t.TempDir(), "out")
	start := time.Now()
	if _, err := downloadToFile("http://10.255.255.1:81", dest); err == nil {
		t.Fatalf("expected timeout error")
	} else if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("download exceeded expected timeout: %v", elapsed)
	}
}
