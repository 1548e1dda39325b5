package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/programmers-nightmare/research-helper/internal/domain"
)

// uploadFormField is the multipart form field carrying the CSV files.
const uploadFormField = "csv_files"

// uploadHandler handles POST /upload. It saves the uploaded CSV files into
// the input directory and runs the pipeline synchronously, returning the run
// report when it completes.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File[uploadFormField]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided under csv_files")
		return
	}

	var saved, rejected []string
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			s.logger.Warn().Str("file", name).Msg("rejecting non-CSV upload")
			rejected = append(rejected, name)
			continue
		}
		if err := s.saveUpload(fh, name); err != nil {
			s.logger.Error().Err(err).Str("file", name).Msg("failed to persist upload")
			writeError(w, http.StatusInternalServerError, "failed to persist upload")
			return
		}
		s.metrics.UploadsReceived.Inc()
		saved = append(saved, name)
	}
	if len(saved) == 0 {
		writeError(w, http.StatusBadRequest, "no CSV files in upload")
		return
	}

	result, err := s.pipeline.Run(r.Context(), s.paths.InputDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Saved:    saved,
		Rejected: rejected,
		Run:      result,
	})
}

func (s *Server) saveUpload(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.paths.InputDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// artifactHandler handles GET /artifacts/{kind}/{name}. Kind selects the
// artifact directory: csv and xlsx live in the table directory, png in the
// chart directory. The name is reduced to its base to keep the lookup inside
// the artifact directory.
func (s *Server) artifactHandler(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := filepath.Base(chi.URLParam(r, "name"))

	var dir string
	switch kind {
	case "csv", "xlsx":
		dir = s.paths.TableDir
	case "png":
		dir = s.paths.ChartDir
	default:
		writeError(w, http.StatusBadRequest, "unknown artifact kind")
		return
	}
	if !strings.EqualFold(filepath.Ext(name), "."+kind) {
		writeError(w, http.StatusBadRequest, "artifact name does not match kind")
		return
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	http.ServeFile(w, r, path)
}

// filterRequest is the JSON request body for filtering the processed table.
type filterRequest struct {
	Field    string   `json:"field" validate:"required"`
	Keywords []string `json:"keywords" validate:"required,min=1,dive,required"`
	Contains *bool    `json:"contains"`
}

// filterHandler handles POST /filter. It selects rows of the deduplicated
// table whose field does (or does not) contain any of the keywords and
// persists the subset as a new CSV artifact.
func (s *Server) filterHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req filterRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "field and at least one keyword are required")
		return
	}

	contains := true
	if req.Contains != nil {
		contains = *req.Contains
	}

	subset, artifact, err := s.filter.Run(req.Field, req.Keywords, contains)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "no processed table found, upload data first")
		case errors.Is(err, domain.ErrSchema):
			writeError(w, http.StatusBadRequest, "unknown field: "+req.Field)
		default:
			writeError(w, http.StatusInternalServerError, "filtering failed")
		}
		return
	}

	condition := "contains"
	if !contains {
		condition = "does_not_contain"
	}
	s.metrics.FilterRuns.WithLabelValues(condition).Inc()

	writeJSON(w, http.StatusOK, filterResponse{
		Artifact: artifact,
		Rows:     subset.Len(),
	})
}
