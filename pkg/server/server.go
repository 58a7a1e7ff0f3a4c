// Package server exposes the verification pipeline over HTTP. The
// contract: given an image and a reference descriptor, respond
// {"success":true,"score":s} on match and HTTP 400 with
// {"success":false,"score":s} on mismatch.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/recognition"
)

// Extractor produces a descriptor from a still image.
type Extractor interface {
	Extract(image []byte) (recognition.Descriptor, error)
}

// VerifyRequest is the verification payload. Image is base64-encoded by
// the standard JSON encoding of byte slices.
type VerifyRequest struct {
	Image      []byte    `json:"image"`
	Descriptor []float32 `json:"descriptor"`
}

// VerifyResponse is the verification outcome.
type VerifyResponse struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
	Error   string  `json:"error,omitempty"`
}

// Server handles verification requests.
type Server struct {
	extractor   Extractor
	threshold   float64
	maxDistance float64
	log         *logrus.Entry
}

// New creates a verification server around the extractor with the default
// matcher bounds.
func New(extractor Extractor) *Server {
	return &Server{
		extractor:   extractor,
		threshold:   recognition.MatchThreshold,
		maxDistance: recognition.MaxDistance,
		log:         logging.Component("server"),
	}
}

// SetMatcher overrides the match threshold and score distance bound.
func (s *Server) SetMatcher(threshold, maxDistance float64) {
	s.threshold = threshold
	s.maxDistance = maxDistance
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/verify", s.handleVerify)

	return r
}

// ListenAndServe runs the server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Infof("verification API listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, VerifyResponse{Error: "invalid request body"})
		return
	}

	if len(req.Image) == 0 {
		s.writeJSON(w, http.StatusBadRequest, VerifyResponse{Error: "image is required"})
		return
	}
	if len(req.Descriptor) != recognition.DescriptorLen {
		s.writeJSON(w, http.StatusBadRequest, VerifyResponse{Error: "descriptor must have 128 elements"})
		return
	}

	var reference recognition.Descriptor
	copy(reference[:], req.Descriptor)

	candidate, err := s.extractor.Extract(req.Image)
	if err != nil {
		switch {
		case errors.Is(err, recognition.ErrNoFaceDetected):
			s.writeJSON(w, http.StatusBadRequest, VerifyResponse{Error: "no face detected"})
		case errors.Is(err, recognition.ErrMultipleFaces):
			s.writeJSON(w, http.StatusBadRequest, VerifyResponse{Error: "multiple faces detected"})
		default:
			s.log.WithError(err).Error("descriptor extraction failed")
			s.writeJSON(w, http.StatusInternalServerError, VerifyResponse{Error: "extraction failed"})
		}
		return
	}

	result := recognition.MatchWith(reference, candidate, s.threshold, s.maxDistance)
	s.log.Debugf("verification result: distance=%.4f score=%s match=%t",
		result.Distance, result.Percent(), result.IsMatch)

	if !result.IsMatch {
		s.writeJSON(w, http.StatusBadRequest, VerifyResponse{Success: false, Score: result.Score})
		return
	}

	s.writeJSON(w, http.StatusOK, VerifyResponse{Success: true, Score: result.Score})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body VerifyResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("failed to write response")
	}
}
