package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/config"
	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/geometry"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/pages"
)

const maxBodySize = 32 << 20

type ApiServer struct {
	scan   pages.Config
	secret []byte
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// StrokeRequest is the body of /api/finalize and /api/recognize.
type StrokeRequest struct {
	Points []geometry.Point `json:"points"`
}

type GestureResponse struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Match bool    `json:"match"`
}

func NewApiServer(cfg config.Config) (*ApiServer, error) {
	scan, err := cfg.Pages()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load templates")
	}
	return &ApiServer{scan: scan, secret: []byte(cfg.Server.Secret)}, nil
}

func (s *ApiServer) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func (s *ApiServer) writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuccessResponse{Data: data})
}

// IssueToken signs a bearer token for the API.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *ApiServer) checkToken(r *http.Request) error {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return errors.New("missing bearer token")
	}

	var claims jwt.StandardClaims
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return errors.Wrap(err, "invalid token")
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// authorize requires a valid bearer token when a secret is configured.
func (s *ApiServer) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.secret) > 0 {
			if err := s.checkToken(r); err != nil {
				log.Trace.Printf("%s %s: %v", r.Method, r.URL.Path, err)
				s.writeError(w, http.StatusUnauthorized, err)
				return
			}
		}
		next(w, r)
	}
}

func (s *ApiServer) readStroke(w http.ResponseWriter, r *http.Request) ([]geometry.Point, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req StrokeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return nil, false
	}
	return req.Points, true
}

// POST /api/finalize {"points": [{"x": 0, "y": 0}, ...]}
func (s *ApiServer) handleFinalize(w http.ResponseWriter, r *http.Request) {
	points, ok := s.readStroke(w, r)
	if !ok {
		return
	}

	sh, err := s.scan.Finalizer.Finalize(points)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, errors.Cause(err))
		return
	}
	s.writeSuccess(w, sh)
}

// POST /api/recognize {"points": [{"x": 0, "y": 0}, ...]}
func (s *ApiServer) handleRecognize(w http.ResponseWriter, r *http.Request) {
	points, ok := s.readStroke(w, r)
	if !ok {
		return
	}

	res := s.scan.Recognizer.Recognize(points)
	s.writeSuccess(w, GestureResponse{
		Name:  res.Name,
		Score: res.Score,
		Match: res.Name != "" && res.Score >= s.scan.MinScore,
	})
}

// POST /api/scan with a .rm page as body
func (s *ApiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %v", err))
		return
	}

	var page rm.Rm
	if err := page.UnmarshalBinary(data); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid page: %v", err))
		return
	}

	reports, err := pages.Process(r.Context(), &page, s.scan)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	log.Trace.Printf("scan: %d pen lines, %d shapes", len(reports), len(pages.Shapes(reports)))
	s.writeSuccess(w, reports)
}

// GET /api/templates
func (s *ApiServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeSuccess(w, map[string]interface{}{
		"templates": s.scan.Recognizer.Library().Names(),
		"minScore":  s.scan.MinScore,
	})
}

// Handler routes the API.
func (s *ApiServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/finalize", s.authorize(s.handleFinalize))
	mux.HandleFunc("/api/recognize", s.authorize(s.handleRecognize))
	mux.HandleFunc("/api/scan", s.authorize(s.handleScan))
	mux.HandleFunc("/api/templates", s.authorize(s.handleTemplates))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Root endpoint with API documentation
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
	<title>rmshapes REST API</title>
</head>
<body>
	<h1>rmshapes REST API</h1>
	<h2>Endpoints:</h2>
	<ul>
		<li>POST /api/finalize - Finalize a stroke into a circle, polygon or polyline</li>
		<li>POST /api/recognize - Match a stroke against the gesture templates</li>
		<li>POST /api/scan - Scan every pen line of a .rm page</li>
		<li>GET /api/templates - List gesture templates</li>
	</ul>
</body>
</html>
		`)
	})

	return mux
}

func runServerMode(cfg config.Config) {
	server, err := NewApiServer(cfg)
	if err != nil {
		log.Error.Fatalf("Failed to initialize API server: %v", err)
	}
	if len(server.secret) == 0 {
		log.Warning.Println("no server secret configured, the API is open")
	}

	log.Info.Printf("Starting HTTP server on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, server.Handler()); err != nil {
		log.Error.Fatalf("Server failed: %v", err)
	}
}
