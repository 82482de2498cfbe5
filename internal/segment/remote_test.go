// ABOUTME: Tests for the MinerU remote OCR client
// ABOUTME: Drives the batch protocol against a local fake server
package segment

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harper/paperplay/internal/models"
)

// minerUFake implements the MinerU batch protocol for tests
type minerUFake struct {
	t           *testing.T
	url         string
	markdown    map[string]string
	pollsToDone int

	mu         sync.Mutex
	uploaded   []byte
	authSeen   []string
	pollCount  int
	batchCount int
}

func (f *minerUFake) batchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batchCount
}

func buildResultZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create error = %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write error = %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close error = %v", err)
	}
	return buf.Bytes()
}

func newMinerUFake(t *testing.T, markdown map[string]string, pollsToDone int) (*minerUFake, *httptest.Server) {
	t.Helper()
	fake := &minerUFake{t: t, markdown: markdown, pollsToDone: pollsToDone}

	mux := http.NewServeMux()
	mux.HandleFunc("/file-urls/batch", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.authSeen = append(fake.authSeen, r.Header.Get("Authorization"))
		fake.batchCount++
		fake.mu.Unlock()

		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if len(req.Files) != 1 || !req.Files[0].IsOCR {
			http.Error(w, "unexpected files", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"code":0,"data":{"batch_id":"batch_1","file_urls":["%s/upload"]}}`, fake.url)
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		fake.mu.Lock()
		fake.uploaded = body
		fake.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/extract-results/batch/", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.pollCount++
		count := fake.pollCount
		fake.mu.Unlock()

		if count < fake.pollsToDone {
			fmt.Fprint(w, `{"code":0,"data":{"extract_result":[{"file_name":"doc.pdf","state":"running"}]}}`)
			return
		}
		fmt.Fprintf(w, `{"code":0,"data":{"extract_result":[{"file_name":"doc.pdf","state":"done","full_zip_url":"%s/result.zip"}]}}`, fake.url)
	})
	mux.HandleFunc("/result.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buildResultZip(t, fake.markdown))
	})

	server := httptest.NewServer(mux)
	fake.url = server.URL
	t.Cleanup(server.Close)
	return fake, server
}

func testDoc(t *testing.T) *models.Document {
	t.Helper()
	doc, err := models.NewDocument("doc.pdf", []byte("%PDF-fake-bytes"))
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	return doc
}

func TestMinerUClient_ExtractMarkdown(t *testing.T) {
	fake, server := newMinerUFake(t, map[string]string{
		"doc/full.md":     "# Chapter\ncontent from remote",
		"doc/layout.json": "{}",
	}, 3)

	client := NewMinerUClient(&MinerUConfig{
		APIKey:       "test-token",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	})

	markdown, err := client.ExtractMarkdown(context.Background(), testDoc(t))
	if err != nil {
		t.Fatalf("ExtractMarkdown() error = %v", err)
	}

	if markdown != "# Chapter\ncontent from remote" {
		t.Errorf("ExtractMarkdown() = %q, want the full.md contents", markdown)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if string(fake.uploaded) != "%PDF-fake-bytes" {
		t.Errorf("uploaded bytes = %q, want the document bytes", fake.uploaded)
	}
	if fake.pollCount < 3 {
		t.Errorf("pollCount = %d, want at least 3", fake.pollCount)
	}
	for _, auth := range fake.authSeen {
		if auth != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", auth)
		}
	}
}

func TestMinerUClient_LargestMarkdownFallback(t *testing.T) {
	_, server := newMinerUFake(t, map[string]string{
		"doc/small.md": "tiny",
		"doc/large.md": "this is the much larger markdown body",
	}, 1)

	client := NewMinerUClient(&MinerUConfig{
		APIKey:       "test-token",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	})

	markdown, err := client.ExtractMarkdown(context.Background(), testDoc(t))
	if err != nil {
		t.Fatalf("ExtractMarkdown() error = %v", err)
	}
	if markdown != "this is the much larger markdown body" {
		t.Errorf("ExtractMarkdown() = %q, want the largest .md entry", markdown)
	}
}

func TestMinerUClient_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewMinerUClient(&MinerUConfig{
		APIKey:       "bad-token",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	})

	_, err := client.ExtractMarkdown(context.Background(), testDoc(t))
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("ExtractMarkdown() error = %v, want AuthError", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", authErr.StatusCode)
	}
	if !IsPermanent(err) {
		t.Error("auth failure should classify as permanent")
	}
}

func TestMinerUClient_ExtractionFailed(t *testing.T) {
	var url string
	mux := http.NewServeMux()
	mux.HandleFunc("/file-urls/batch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":0,"data":{"batch_id":"b1","file_urls":["%s/upload"]}}`, url)
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/extract-results/batch/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"extract_result":[{"file_name":"doc.pdf","state":"failed","err_msg":"unsupported encoding"}]}}`)
	})
	server := httptest.NewServer(mux)
	url = server.URL
	t.Cleanup(server.Close)

	client := NewMinerUClient(&MinerUConfig{
		APIKey:       "test-token",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	})

	_, err := client.ExtractMarkdown(context.Background(), testDoc(t))
	if err == nil {
		t.Fatal("ExtractMarkdown() expected error for failed state")
	}
	if !strings.Contains(err.Error(), "unsupported encoding") {
		t.Errorf("error = %v, want the err_msg included", err)
	}
	if IsPermanent(err) {
		t.Error("a failed conversion should stay retryable for fallback purposes")
	}
}

func TestMinerUClient_PollTimeout(t *testing.T) {
	var url string
	mux := http.NewServeMux()
	mux.HandleFunc("/file-urls/batch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":0,"data":{"batch_id":"b1","file_urls":["%s/upload"]}}`, url)
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/extract-results/batch/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"extract_result":[{"file_name":"doc.pdf","state":"running"}]}}`)
	})
	server := httptest.NewServer(mux)
	url = server.URL
	t.Cleanup(server.Close)

	client := NewMinerUClient(&MinerUConfig{
		APIKey:       "test-token",
		BaseURL:      server.URL,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  30 * time.Millisecond,
	})

	_, err := client.ExtractMarkdown(context.Background(), testDoc(t))
	if err == nil {
		t.Fatal("ExtractMarkdown() expected timeout error")
	}
	if !strings.Contains(err.Error(), "did not finish") {
		t.Errorf("error = %v, want poll timeout", err)
	}
}

func TestMinerUClient_BatchRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-500,"msg":"param error","data":{}}`)
	}))
	t.Cleanup(server.Close)

	client := NewMinerUClient(&MinerUConfig{
		APIKey:       "test-token",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	})

	_, err := client.ExtractMarkdown(context.Background(), testDoc(t))
	if err == nil {
		t.Fatal("ExtractMarkdown() expected error for non-zero code")
	}
	if !strings.Contains(err.Error(), "param error") {
		t.Errorf("error = %v, want the rejection message", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status        int
		wantPermanent bool
		wantNil       bool
	}{
		{status: 200, wantNil: true},
		{status: 201, wantNil: true},
		{status: 401, wantPermanent: true},
		{status: 403, wantPermanent: true},
		{status: 429, wantPermanent: true},
		{status: 500, wantPermanent: false},
		{status: 502, wantPermanent: false},
	}

	for _, tt := range tests {
		err := classifyStatus(tt.status, []byte("body"))
		if tt.wantNil {
			if err != nil {
				t.Errorf("classifyStatus(%d) = %v, want nil", tt.status, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("classifyStatus(%d) = nil, want error", tt.status)
			continue
		}
		if IsPermanent(err) != tt.wantPermanent {
			t.Errorf("classifyStatus(%d) permanent = %v, want %v", tt.status, IsPermanent(err), tt.wantPermanent)
		}
	}
}
