package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"question-bank/internal/domain"
	apperrors "question-bank/pkg/errors"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

const pdfContentType = "application/pdf"

// LocalArtifactStore keeps generated PDFs under OUTPUT_PATH.
type LocalArtifactStore struct {
	dir string
}

func NewLocalArtifactStore(dir string) (*LocalArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &LocalArtifactStore{dir: dir}, nil
}

func (s *LocalArtifactStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

func (s *LocalArtifactStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("Generated PDF file is missing", domain.ErrGeneratedPDFNotFound)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	return f, nil
}

// SupabaseArtifactStore keeps generated PDFs in a Supabase Storage bucket.
// Returned paths have the form "<bucket>/<object>".
type SupabaseArtifactStore struct {
	supabaseClient domain.SupabaseClient
	bucket         string
}

func NewSupabaseArtifactStore(supabaseClient domain.SupabaseClient, bucket string) *SupabaseArtifactStore {
	return &SupabaseArtifactStore{supabaseClient: supabaseClient, bucket: bucket}
}

func (s *SupabaseArtifactStore) storage() (*storage_go.Client, error) {
	client := s.supabaseClient.DB()
	if client == nil || client.Storage == nil {
		return nil, apperrors.NewInternalError("supabase client not initialized", nil)
	}
	return client.Storage, nil
}

func (s *SupabaseArtifactStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	st, err := s.storage()
	if err != nil {
		return "", err
	}

	contentType := pdfContentType
	upsert := true
	object := "generated/" + filepath.Base(name)
	_, err = st.UploadFile(s.bucket, object, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", apperrors.NewUpstreamError("Storage upload failed", err)
	}
	return s.bucket + "/" + object, nil
}

func (s *SupabaseArtifactStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	st, err := s.storage()
	if err != nil {
		return nil, err
	}

	object := strings.TrimPrefix(path, s.bucket+"/")
	data, err := st.DownloadFile(s.bucket, object)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Storage download failed", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// UploadStore writes incoming multipart files into UPLOAD_PATH.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Save copies r into a uniquely named file and describes it.
func (s *UploadStore) Save(originalName string, r io.Reader) (domain.UploadedFile, error) {
	base := filepath.Base(originalName)
	path := filepath.Join(s.dir, uuid.New().String()+"_"+base)

	f, err := os.Create(path)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("failed to create upload file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return domain.UploadedFile{}, fmt.Errorf("failed to write upload file: %w", err)
	}

	return domain.UploadedFile{
		OriginalName: base,
		Path:         path,
		Size:         n,
		MimeType:     pdfContentType,
	}, nil
}

// Dir is the upload directory.
func (s *UploadStore) Dir() string {
	return s.dir
}
