package stt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yoockh/voiceeval/internal/utils"
)

// fakeAssemblyAI serves upload, transcript request and poll endpoints.
// The transcript reports "processing" for the first pending polls.
func fakeAssemblyAI(t *testing.T, pending int32, final map[string]any) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "RIFFdata" {
			t.Errorf("upload body = %q", b)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
	})
	mux.HandleFunc("/transcript", func(w http.ResponseWriter, r *http.Request) {
		var req aaiTranscriptReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.AudioURL != "https://cdn.example/audio" || req.LanguageCode != "en_us" || !req.Punctuate {
			t.Errorf("transcript request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "tx1", "status": "queued"})
	})
	mux.HandleFunc("/transcript/tx1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) <= pending {
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "tx1", "status": "processing"})
			return
		}
		_ = json.NewEncoder(w).Encode(final)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func fastClient(url string) *AssemblyAI {
	c := NewAssemblyAI("key").WithBaseURL(url)
	c.PollInitial = time.Millisecond
	c.PollMax = 5 * time.Millisecond
	c.PollTimeout = 2 * time.Second
	return c
}

func TestAssemblyAI_Transcribe_PollsUntilCompleted(t *testing.T) {
	srv, polls := fakeAssemblyAI(t, 2, map[string]any{
		"id":     "tx1",
		"status": "completed",
		"text":   "Hello world.",
		"words": []map[string]any{
			{"text": "Hello", "start": 100, "end": 480, "confidence": 0.97},
			{"text": "world.", "start": 520, "end": 900, "confidence": 0.81},
		},
	})

	got, err := fastClient(srv.URL).Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Hello world." {
		t.Errorf("text = %q", got.Text)
	}
	if len(got.Words) != 2 || got.Words[1].StartMS != 520 || got.Words[1].EndMS != 900 || got.Words[1].Confidence != 0.81 {
		t.Errorf("words = %+v", got.Words)
	}
	if n := atomic.LoadInt32(polls); n != 3 {
		t.Errorf("polls = %d, want 3", n)
	}
}

func TestAssemblyAI_Transcribe_ProviderErrorStopsPolling(t *testing.T) {
	srv, polls := fakeAssemblyAI(t, 0, map[string]any{"id": "tx1", "status": "error", "error": "bad audio"})

	_, err := fastClient(srv.URL).Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav", "en-US")
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("code = %v (%v), want UNAVAILABLE", utils.CodeOf(err), err)
	}
	if utils.SafeMessage(err) != "Transcription failed." {
		t.Errorf("message = %q", utils.SafeMessage(err))
	}
	if n := atomic.LoadInt32(polls); n != 1 {
		t.Errorf("polls = %d, want 1", n)
	}
}

func TestAssemblyAI_Transcribe_PollTimeout(t *testing.T) {
	srv, _ := fakeAssemblyAI(t, 1<<30, nil)

	c := fastClient(srv.URL)
	c.PollTimeout = 30 * time.Millisecond

	_, err := c.Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav", "en-US")
	if !utils.IsCode(err, utils.CodeTimeout) {
		t.Fatalf("code = %v (%v), want TIMEOUT", utils.CodeOf(err), err)
	}
}

func TestAssemblyAI_Transcribe_UploadRejected(t *testing.T) {
	srv, _ := fakeAssemblyAI(t, 0, nil)

	c := NewAssemblyAI("wrong").WithBaseURL(srv.URL)
	_, err := c.Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav", "en-US")
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("code = %v, want UNAVAILABLE", utils.CodeOf(err))
	}
	if utils.SafeMessage(err) != "Audio upload failed." {
		t.Errorf("message = %q", utils.SafeMessage(err))
	}
}
