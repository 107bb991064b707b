// Package api exposes the digest pipeline over HTTP.
// Uploaded statements are digested per request; nothing is stored.
package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aqlanhadi/baldigest/config"
	"github.com/aqlanhadi/baldigest/extractor"
	"github.com/aqlanhadi/baldigest/extractor/common"
	"github.com/aqlanhadi/baldigest/logger"
	"github.com/aqlanhadi/baldigest/summarize"
	"github.com/rs/zerolog"
)

// Upload field names, pdf_file first.
var fileFields = []string{"pdf_file", "file"}

// Config holds the API server configuration
type Config struct {
	Port        string
	MaxUploadMB int64
	Settings    config.Config
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:        ":8080",
		MaxUploadMB: 32,
		Settings: config.Config{
			TargetDayDefault: 5,
			MaxMonthsDefault: 6,
		},
	}
}

// Server represents the HTTP API server
type Server struct {
	config     Config
	mux        *http.ServeMux
	summarizer summarize.Summarizer
	log        zerolog.Logger
}

// New creates a new API server. A nil summarizer disables summaries.
func New(cfg Config, s summarize.Summarizer, log zerolog.Logger) *Server {
	if s == nil {
		s = summarize.Noop{}
	}
	srv := &Server{
		config:     cfg,
		mux:        http.NewServeMux(),
		summarizer: s,
		log:        log,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/digest", s.handleDigest)
	s.mux.HandleFunc("/filter", s.handleFilter)
	s.mux.HandleFunc("/text", s.handleText)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server, wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return RequestLogger(s.log)(Recovery(s.mux))
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.log.Info().Str("port", s.config.Port).Msg("starting server")
	return http.ListenAndServe(s.config.Port, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DigestOptions holds the per-request options
type DigestOptions struct {
	TargetDay      int
	MaxMonths      int
	Summarize      bool
	SelectedOnly   bool
	CandidatesOnly bool
}

func (s *Server) parseDigestOptions(r *http.Request) DigestOptions {
	settings := s.config.Settings
	return DigestOptions{
		TargetDay:      settings.ParseTargetDay(formOrQuery(r, "target_day")),
		MaxMonths:      settings.ParseMaxMonths(formOrQuery(r, "max_months")),
		Summarize:      settings.SummarizeEnabled || formOrQuery(r, "summarize") == "true",
		SelectedOnly:   formOrQuery(r, "selected_only") == "true",
		CandidatesOnly: formOrQuery(r, "candidates_only") == "true",
	}
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	opts := s.parseDigestOptions(r)
	d, err := extractor.Digest(doc, extractor.Options{TargetDay: opts.TargetDay, MaxMonths: opts.MaxMonths})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if opts.Summarize {
		summarize.Apply(r.Context(), s.summarizer, &d, s.config.Settings.SummarizeTimeout)
	}

	writeJSON(w, http.StatusOK, extractor.CreateFinalOutput(d, opts.SelectedOnly, opts.CandidatesOnly))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	d, err := extractor.Digest(doc, extractor.DefaultOptions())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, extractor.CreateFinalOutput(d, false, true))
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": doc.Text()})
}

// readUpload parses the multipart form and assembles every uploaded file
// into one document. It writes the error response itself when it fails.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*common.Document, bool) {
	log := logger.FromContext(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	if err := r.ParseMultipartForm(s.config.MaxUploadMB << 20); err != nil {
		log.Warn().Err(err).Msg("could not parse multipart form")
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	headers := uploadedFiles(r.MultipartForm)
	if len(headers) == 0 {
		http.Error(w, "No file part", http.StatusBadRequest)
		return nil, false
	}

	doc := &common.Document{}
	for _, fh := range headers {
		part, err := readPart(fh)
		if err != nil {
			log.Warn().Err(err).Str("filename", fh.Filename).Msg("could not read upload")
			http.Error(w, "Could not extract text from file: "+err.Error(), http.StatusBadRequest)
			return nil, false
		}
		doc.Append(part)
	}

	log.Debug().Int("files", len(headers)).Int("pages", len(doc.Pages)).Msg("upload assembled")
	return doc, true
}

func uploadedFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var headers []*multipart.FileHeader
	for _, field := range fileFields {
		for _, fh := range form.File[field] {
			if fh.Filename != "" {
				headers = append(headers, fh)
			}
		}
	}
	return headers
}

func readPart(fh *multipart.FileHeader) (*common.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := common.ReadDocument(f, fh.Filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// formOrQuery returns the multipart body value, falling back to the query
// string. The body wins when both are set.
func formOrQuery(r *http.Request, key string) string {
	if v := strings.TrimSpace(r.PostFormValue(key)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get(key))
}
