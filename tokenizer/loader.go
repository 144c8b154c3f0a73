package tokenizer

import (
	"bufio"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Matches the upstream default base URL the tiktoken encodings are
	// published under.
	defaultBaseURL = "https://openaipublic.blob.core.windows.net/encodings/"
	envEncBase     = "TIKTOKEN_ENCODINGS_BASE"
	envCacheDir    = "SPLINTR_CACHE_DIR"
	envOffline     = "SPLINTR_OFFLINE"
	envHTTPTimeout = "SPLINTR_HTTP_TIMEOUT" // seconds
)

type encodingFile struct {
	file string
	sha  string
}

var encodingFiles = map[string]encodingFile{
	"cl100k_base": {"cl100k_base.tiktoken", "223921b76ee99bde995b7ff738513eef100fb51d18c93597a113bcffe865b2a7"},
	"o200k_base":  {"o200k_base.tiktoken", "446a9538cb6c348e3516120d7c08b09f57c36495e2acfffe59a5bf8b0cfb1a2d"},
}

// resolveCacheDir respects the cache override or falls back to a
// predictable temp directory.
func resolveCacheDir() (string, error) {
	if d := os.Getenv(envCacheDir); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", err
		}
		return d, nil
	}
	primary := filepath.Join(os.TempDir(), "splintr-go-cache")
	if err := os.MkdirAll(primary, 0o755); err != nil {
		return "", err
	}
	return primary, nil
}

func baseURL() string {
	base := os.Getenv(envEncBase)
	if base == "" {
		return defaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func downloadToFile(url, dest string) (string, error) {
	// Bounded HTTP client to avoid indefinite hangs in restricted environments.
	timeout := 30 * time.Second
	if v := os.Getenv(envHTTPTimeout); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			timeout = time.Duration(s) * time.Second
		}
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	mw := io.MultiWriter(f, h)
	if _, err := io.Copy(mw, resp.Body); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// LoadEncoding reads or downloads the named encoding's tiktoken file and
// returns its vocabulary pairs. Each line: base64_token + space + rank.
// Known encodings: "cl100k_base", "o200k_base".
func LoadEncoding(name string) ([]Pair, error) {
	ef, ok := encodingFiles[name]
	if !ok {
		return nil, fmt.Errorf("tokenizer: unknown encoding %q", name)
	}

	var path string
	if b := os.Getenv(envEncBase); b != "" {
		// treat as directory
		path = filepath.Join(b, ef.file)
	} else {
		cacheDir, err := resolveCacheDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(cacheDir, ef.file)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if os.Getenv(envOffline) == "1" {
				return nil, fmt.Errorf("%s missing and SPLINTR_OFFLINE=1; set %s to a local dir containing it or unset offline", ef.file, envEncBase)
			}
			url := baseURL() + ef.file
			slog.Debug("downloading encoding", "encoding", name, "url", url)
			sum, err := downloadToFile(url, path)
			if err != nil {
				return nil, err
			}
			if !strings.EqualFold(sum, ef.sha) {
				return nil, fmt.Errorf("hash mismatch for %s: got %s want %s", ef.file, sum, ef.sha)
			}
		}
	}

	return parseTiktokenFile(path)
}

func parseTiktokenFile(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var pairs []Pair
	r := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if line == "" && errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp <= 0 {
			return nil, fmt.Errorf("invalid vocab at line %d", lineNo)
		}
		tok, derr := base64.StdEncoding.DecodeString(line[:sp])
		if derr != nil {
			return nil, fmt.Errorf("b64 decode line %d: %w", lineNo, derr)
		}
		rank, serr := strconv.ParseUint(line[sp+1:], 10, 32)
		if serr != nil {
			return nil, fmt.Errorf("rank parse line %d: %w", lineNo, serr)
		}
		pairs = append(pairs, Pair{Bytes: tok, Rank: Rank(rank)})
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return pairs, nil
}
