package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dgallion1/docsense/internal/parser"
	"github.com/dgallion1/docsense/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleUpload accepts one or more files ("files" or "file" fields) with
// optional persona and job_to_be_done tags and queues one job per file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	files = append(files, r.MultipartForm.File["file"]...)
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	persona := r.FormValue("persona")
	jobToBeDone := r.FormValue("job_to_be_done")

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.writeError(w, r, fmt.Errorf("create upload dir: %w", err))
		return
	}

	results := make([]map[string]any, 0, len(files))
	accepted := 0
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		docID := uuid.NewString()
		path := filepath.Join(s.cfg.UploadDir, docID+"_"+filename)
		if err := s.saveUpload(fh, path); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(uuid.NewString(), docID, filename, path, nil, persona, jobToBeDone)
		if err := s.orchestrator.Submit(job); err != nil {
			os.Remove(path)
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		accepted++
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"doc_id":   job.DocID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	code := http.StatusAccepted
	if accepted == 0 {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]any{"jobs": results})
}

// saveUpload copies an uploaded file to path, enforcing the size limit.
func (s *Server) saveUpload(fh *multipart.FileHeader, path string) error {
	if fh.Size > s.cfg.MaxUploadBytes {
		return fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open file")
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to store file")
	}
	n, err := io.Copy(dst, io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil || n > s.cfg.MaxUploadBytes {
		os.Remove(path)
		if err != nil {
			return fmt.Errorf("failed to store file")
		}
		return fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return nil
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
