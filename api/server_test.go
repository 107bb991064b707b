package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aqlanhadi/baldigest/extractor/common"
	"github.com/aqlanhadi/baldigest/summarize"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementText = `Statement of account
01/03/2024 Opening 100.00
05/03/2024 Deposit 150.00
20/03/2024 Rent 50.00
02/04/2024 Salary 900.00
`

type upload struct {
	field, name, body string
}

type stubSummarizer struct {
	calls int
	got   summarize.Request
	out   string
	err   error
}

func (s *stubSummarizer) Summarize(ctx context.Context, req summarize.Request) (string, error) {
	s.calls++
	s.got = req
	return s.out, s.err
}

func newTestServer(s summarize.Summarizer) *Server {
	return New(DefaultConfig(), s, zerolog.New(io.Discard))
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.body)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeDigest(t *testing.T, w *httptest.ResponseRecorder) common.Digest {
	t.Helper()
	var d common.Digest
	require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
	return d
}

func TestNew(t *testing.T) {
	server := newTestServer(nil)

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
	if _, ok := server.summarizer.(summarize.Noop); !ok {
		t.Errorf("Expected nil summarizer to become Noop, got %T", server.summarizer)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
	if cfg.Settings.TargetDayDefault != 5 || cfg.Settings.MaxMonthsDefault != 6 {
		t.Errorf("Unexpected digest defaults: %+v", cfg.Settings)
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(newTestServer(nil), httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestRequestID(t *testing.T) {
	server := newTestServer(nil)

	w := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(server, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestDigestEndpoint_MethodNotAllowed(t *testing.T) {
	for _, path := range []string{"/digest", "/filter", "/text"} {
		w := serve(newTestServer(nil), httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected status 405, got %d", path, w.Code)
		}
	}
}

func TestDigestEndpoint_NoFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/digest", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := serve(newTestServer(nil), req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	req = multipartRequest(t, "/digest", map[string]string{"target_day": "5"})
	w = serve(newTestServer(nil), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file part")
}

func TestDigestEndpoint_InvalidPDF(t *testing.T) {
	req := multipartRequest(t, "/digest", nil, upload{"pdf_file", "statement.pdf", "not a pdf"})
	w := serve(newTestServer(nil), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not extract text from file")
}

func TestDigestEndpoint_TextUpload(t *testing.T) {
	req := multipartRequest(t, "/digest", nil, upload{"pdf_file", "statement.txt", statementText})
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	d := decodeDigest(t, w)
	assert.Equal(t, "statement.txt", d.Source)
	assert.Equal(t, 5, d.TargetDay)
	assert.Equal(t, 6, d.MaxMonths)
	assert.False(t, d.NoCandidates)
	assert.Len(t, d.Candidates, 4)
	assert.Equal(t, []string{"05/03/2024 Deposit 150.00", "02/04/2024 Salary 900.00"}, d.Selected)
	assert.Empty(t, d.Summary)
}

func TestDigestEndpoint_TargetDay(t *testing.T) {
	tests := []struct {
		name     string
		day      string
		wantDay  int
		selected []string
	}{
		{"first of month", "1", 1, []string{"01/03/2024 Opening 100.00"}},
		{"out of range falls back", "42", 5, []string{"05/03/2024 Deposit 150.00", "02/04/2024 Salary 900.00"}},
		{"not a number falls back", "fifth", 5, []string{"05/03/2024 Deposit 150.00", "02/04/2024 Salary 900.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, "/digest", map[string]string{"target_day": tt.day},
				upload{"file", "statement.txt", statementText})
			w := serve(newTestServer(nil), req)
			require.Equal(t, http.StatusOK, w.Code)

			d := decodeDigest(t, w)
			assert.Equal(t, tt.wantDay, d.TargetDay)
			assert.Equal(t, tt.selected, d.Selected)
		})
	}
}

func TestDigestEndpoint_QueryOptions(t *testing.T) {
	req := multipartRequest(t, "/digest?max_months=1&selected_only=true", nil,
		upload{"pdf_file", "statement.txt", statementText})
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code)

	var selected []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&selected))
	assert.Equal(t, []string{"05/03/2024 Deposit 150.00"}, selected)
}

func TestDigestEndpoint_BodyOverridesQuery(t *testing.T) {
	req := multipartRequest(t, "/digest?target_day=20&max_months=1", map[string]string{"target_day": "1"},
		upload{"pdf_file", "statement.txt", statementText})
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code)

	d := decodeDigest(t, w)
	assert.Equal(t, 1, d.TargetDay)
	assert.Equal(t, 1, d.MaxMonths)
	assert.Equal(t, []string{"01/03/2024 Opening 100.00"}, d.Selected)
}

func TestDigestEndpoint_MultipleFiles(t *testing.T) {
	req := multipartRequest(t, "/digest", nil,
		upload{"pdf_file", "march.txt", "05/03/2024 Deposit 150.00\n"},
		upload{"pdf_file", "april.txt", "04/04/2024 Withdrawal 90.00\n"},
	)
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code)

	d := decodeDigest(t, w)
	assert.Equal(t, "march.txt, april.txt", d.Source)
	assert.Equal(t, []string{"05/03/2024 Deposit 150.00", "04/04/2024 Withdrawal 90.00"}, d.Selected)
}

func TestDigestEndpoint_NoCandidatesFallsBack(t *testing.T) {
	req := multipartRequest(t, "/digest", nil,
		upload{"pdf_file", "letter.txt", "Dear customer\nYour balance as of 03/03/2024 was 150.00\n"})
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code)

	d := decodeDigest(t, w)
	assert.True(t, d.NoCandidates)
	assert.Empty(t, d.Candidates)
	assert.Equal(t, []string{"Your balance as of 03/03/2024 was 150.00"}, d.Selected)
}

func TestDigestEndpoint_Summarize(t *testing.T) {
	stub := &stubSummarizer{out: "average_balance = ₹525.00\n"}
	server := newTestServer(stub)

	req := multipartRequest(t, "/digest", map[string]string{"summarize": "true"},
		upload{"pdf_file", "statement.txt", statementText})
	w := serve(server, req)
	require.Equal(t, http.StatusOK, w.Code)

	d := decodeDigest(t, w)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 5, stub.got.TargetDay)
	assert.Equal(t, d.Selected, stub.got.Lines)
	assert.Equal(t, "average_balance = ₹525.00", d.Summary)

	// Summaries are opt-in per request.
	req = multipartRequest(t, "/digest", nil, upload{"pdf_file", "statement.txt", statementText})
	serve(server, req)
	assert.Equal(t, 1, stub.calls)
}

func TestDigestEndpoint_SummarizerError(t *testing.T) {
	stub := &stubSummarizer{err: errors.New("quota exceeded")}

	req := multipartRequest(t, "/digest?summarize=true", nil,
		upload{"pdf_file", "statement.txt", statementText})
	w := serve(newTestServer(stub), req)
	require.Equal(t, http.StatusOK, w.Code)

	d := decodeDigest(t, w)
	assert.Equal(t, "quota exceeded", d.SummaryError)
	assert.Len(t, d.Selected, 2)
}

func TestFilterEndpoint(t *testing.T) {
	req := multipartRequest(t, "/filter", nil, upload{"pdf_file", "statement.txt", statementText})
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Source       string   `json:"source"`
		NoCandidates bool     `json:"no_candidates"`
		Candidates   []string `json:"candidates"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "statement.txt", out.Source)
	assert.False(t, out.NoCandidates)
	assert.Equal(t, []string{
		"01/03/2024 Opening 100.00",
		"05/03/2024 Deposit 150.00",
		"20/03/2024 Rent 50.00",
		"02/04/2024 Salary 900.00",
	}, out.Candidates)
}

func TestTextEndpoint(t *testing.T) {
	req := multipartRequest(t, "/text", nil, upload{"file", "statement.txt", "05/03/2024 Deposit 150.00\n"})
	w := serve(newTestServer(nil), req)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "--- statement.txt | Page 1 ---\n05/03/2024 Deposit 150.00\n\n", out["text"])
}

func TestRecovery(t *testing.T) {
	h := RequestLogger(zerolog.New(io.Discard))(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/digest", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
