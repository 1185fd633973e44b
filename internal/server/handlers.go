package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/licensetower/pkg/buildinfo"
	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/export"
	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/manifest"
)

type analyzeRequest struct {
	Dependencies []dependencyRequest `json:"dependencies"`
}

type dependencyRequest struct {
	Ecosystem string `json:"ecosystem"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
}

type licensesRequest struct {
	Licenses []string `json:"licenses"`
}

type licensesResponse struct {
	Compatibility   compat.Analysis `json:"compatibility"`
	Risk            compat.Risk     `json:"risk"`
	Recommendations []string        `json:"recommendations"`
}

type licenseResponse struct {
	Name              string   `json:"name"`
	Normalized        string   `json:"normalized"`
	Known             bool     `json:"known"`
	CompatibleWith    []string `json:"compatibleWith"`
	CommerciallyRisky bool     `json:"commerciallyRisky"`
}

type textResponse struct {
	License string `json:"license"`
	Text    string `json:"text"`
	Source  string `json:"source,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	deps, err := s.dependencies(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.analyze(w, r, deps, format)
}

// handleScan analyzes the manifests under a directory of the workspace.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rel := r.URL.Query().Get("path")
	if rel == "" {
		rel = "."
	}
	if err := errors.ValidatePath(rel); err != nil {
		writeError(w, r, err)
		return
	}

	deps, err := manifest.Scan(filepath.Join(s.cfg.Workspace, filepath.FromSlash(rel)), manifest.Options{Logger: s.logger})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(deps) > s.cfg.MaxDependencies {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput,
			"too many dependencies: %d (max %d)", len(deps), s.cfg.MaxDependencies))
		return
	}
	s.analyze(w, r, deps, format)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, deps []manifest.Dependency, format export.Format) {
	report, err := s.cfg.Analyzer.Analyze(r.Context(), deps)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "analysis timed out")
		}
		writeError(w, r, err)
		return
	}

	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, report)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(r.Context(), &buf, report, format); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}

// requestFormat reads the optional ?format= parameter.
func requestFormat(r *http.Request) (export.Format, error) {
	q := r.URL.Query().Get("format")
	if q == "" {
		return export.FormatJSON, nil
	}
	return export.ParseFormat(q)
}

func (s *Server) dependencies(req analyzeRequest) ([]manifest.Dependency, error) {
	if len(req.Dependencies) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dependencies is empty")
	}
	if len(req.Dependencies) > s.cfg.MaxDependencies {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"too many dependencies: %d (max %d)", len(req.Dependencies), s.cfg.MaxDependencies)
	}

	deps := make([]manifest.Dependency, 0, len(req.Dependencies))
	for i, d := range req.Dependencies {
		eco, err := license.ParseEcosystem(d.Ecosystem)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidEcosystem, err, "dependencies[%d]: unknown ecosystem %q", i, d.Ecosystem)
		}
		if err := errors.ValidatePackageName(d.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "dependencies[%d]: %s", i, errors.UserMessage(err))
		}
		if err := errors.ValidateVersion(d.Version); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "dependencies[%d]: %s", i, errors.UserMessage(err))
		}
		deps = append(deps, manifest.Dependency{Ecosystem: eco, Name: d.Name, Version: d.Version})
	}
	return deps, nil
}

func (s *Server) handleCompat(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	for _, name := range []string{a, b} {
		if err := errors.ValidateLicenseName(name); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.cfg.Analyzer.Engine().Check(a, b))
}

func (s *Server) handleLicensesAnalyze(w http.ResponseWriter, r *http.Request) {
	var req licensesRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Licenses) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "licenses is empty"))
		return
	}
	for _, l := range req.Licenses {
		if err := errors.ValidateLicenseName(l); err != nil {
			writeError(w, r, err)
			return
		}
	}

	engine := s.cfg.Analyzer.Engine()
	writeJSON(w, http.StatusOK, licensesResponse{
		Compatibility:   engine.Analyze(req.Licenses),
		Risk:            engine.RiskLevel(req.Licenses),
		Recommendations: engine.Recommendations(req.Licenses),
	})
}

func (s *Server) handleLicense(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateLicenseName(name); err != nil {
		writeError(w, r, err)
		return
	}

	engine := s.cfg.Analyzer.Engine()
	normalized := engine.Normalize(name)
	list, known := engine.KnowledgeBase().CompatibleWith(normalized)
	if list == nil {
		list = []string{}
	}
	writeJSON(w, http.StatusOK, licenseResponse{
		Name:              name,
		Normalized:        normalized,
		Known:             known,
		CompatibleWith:    list,
		CommerciallyRisky: engine.CommerciallyRisky(normalized),
	})
}

func (s *Server) handleLicenseText(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	text, source, err := s.cfg.Analyzer.LicenseText(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{License: name, Text: text, Source: source})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Cache.Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Cache.ClearAll(r.Context()); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "clear cache"))
		return
	}
	s.logger.Info("cache cleared", "id", RequestID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body of at most DefaultMaxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New(errors.ErrCodeInvalidInput, "content type %q is not application/json", ct)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, DefaultMaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request: %v", err)
	}
	return nil
}
