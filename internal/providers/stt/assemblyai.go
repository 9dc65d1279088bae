package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/utils"
)

const assemblyAIBaseURL = "https://api.assemblyai.com/v2"

// AssemblyAI uploads audio, requests a transcript and polls until it completes.
type AssemblyAI struct {
	apiKey  string
	baseURL string
	hc      *http.Client

	PollInitial time.Duration
	PollMax     time.Duration
	PollTimeout time.Duration
}

func NewAssemblyAI(apiKey string) *AssemblyAI {
	return &AssemblyAI{
		apiKey:      apiKey,
		baseURL:     assemblyAIBaseURL,
		hc:          &http.Client{Timeout: 60 * time.Second},
		PollInitial: time.Second,
		PollMax:     10 * time.Second,
		PollTimeout: 5 * time.Minute,
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (a *AssemblyAI) WithBaseURL(u string) *AssemblyAI {
	a.baseURL = strings.TrimRight(u, "/")
	return a
}

func (a *AssemblyAI) Close() error {
	a.hc.CloseIdleConnections()
	return nil
}

type aaiUploadResp struct {
	UploadURL string `json:"upload_url"`
}

type aaiTranscriptReq struct {
	AudioURL     string `json:"audio_url"`
	Punctuate    bool   `json:"punctuate"`
	FormatText   bool   `json:"format_text"`
	LanguageCode string `json:"language_code"`
}

type aaiWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

type aaiTranscript struct {
	ID     string    `json:"id"`
	Status string    `json:"status"` // queued|processing|completed|error
	Text   string    `json:"text"`
	Words  []aaiWord `json:"words"`
	Error  string    `json:"error"`
}

var errNotReady = errors.New("transcript not ready")

// language example: "en-US" (sent as "en_us")
func (a *AssemblyAI) Transcribe(ctx context.Context, audio []byte, contentType, language string) (*analysis.RawTranscription, error) {
	const op = "AssemblyAI.Transcribe"

	if language == "" {
		language = DefaultLanguage
	}

	var up aaiUploadResp
	if err := a.do(ctx, http.MethodPost, "/upload", "application/octet-stream", bytes.NewReader(audio), &up); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "Audio upload failed.", err)
	}
	if up.UploadURL == "" {
		return nil, utils.E(utils.CodeUnavailable, op, "Audio upload failed.", errors.New("empty upload_url"))
	}

	body, err := json.Marshal(aaiTranscriptReq{
		AudioURL:     up.UploadURL,
		Punctuate:    true,
		FormatText:   true,
		LanguageCode: strings.ReplaceAll(strings.ToLower(language), "-", "_"),
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, failedMessage, err)
	}

	var job aaiTranscript
	if err := a.do(ctx, http.MethodPost, "/transcript", "application/json", bytes.NewReader(body), &job); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "Transcription request failed.", err)
	}

	done, err := a.poll(ctx, job.ID)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, utils.E(utils.CodeTimeout, op, failedMessage, err)
		default:
			return nil, utils.E(utils.CodeUnavailable, op, failedMessage, err)
		}
	}

	out := &analysis.RawTranscription{Text: done.Text, Words: make([]analysis.RawWord, 0, len(done.Words))}
	for _, w := range done.Words {
		out.Words = append(out.Words, analysis.RawWord{
			Text:       w.Text,
			StartMS:    w.Start,
			EndMS:      w.End,
			Confidence: w.Confidence,
		})
	}
	return out, nil
}

// poll waits for the transcript with exponential backoff, bounded by PollTimeout and ctx.
func (a *AssemblyAI) poll(ctx context.Context, id string) (*aaiTranscript, error) {
	if id == "" {
		return nil, errors.New("empty transcript id")
	}

	ctx, cancel := context.WithTimeout(ctx, a.PollTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.PollInitial
	b.MaxInterval = a.PollMax
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.RetryWithData(func() (*aaiTranscript, error) {
		var t aaiTranscript
		if err := a.do(ctx, http.MethodGet, "/transcript/"+id, "", nil, &t); err != nil {
			return nil, err
		}
		switch t.Status {
		case "completed":
			return &t, nil
		case "error":
			return nil, backoff.Permanent(fmt.Errorf("transcript %s failed: %s", id, t.Error))
		default:
			return nil, errNotReady
		}
	}, backoff.WithContext(b, ctx))
}

func (a *AssemblyAI) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", a.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("assemblyai %s %s: %s: %s", method, path, resp.Status, string(b))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
