package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/statement-parser/config"
	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/pdfsource"
	"github.com/Aashish23092/statement-parser/storage"
)

// StatementService runs the upload-to-record pipeline: save the PDF, decrypt
// it when a password came along, dispatch to an extractor, normalize, persist.
type StatementService struct {
	cfg        *config.Config
	log        zerolog.Logger
	dispatcher *Dispatcher
	store      storage.Store
}

func NewStatementService(cfg *config.Config, log zerolog.Logger, dispatcher *Dispatcher, store storage.Store) *StatementService {
	return &StatementService{cfg: cfg, log: log, dispatcher: dispatcher, store: store}
}

// ParseUpload handles one uploaded statement end to end. The returned error
// may be a *dto.ExtractionFailure, which the handler maps to a status code.
func (s *StatementService) ParseUpload(ctx context.Context, userID uuid.UUID, req *dto.UploadStatementRequest) (*storage.Statement, error) {
	pdfPath, err := s.saveUpload(req.File)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	parsePath := pdfPath
	if req.Password != "" {
		decrypted, err := pdfsource.Decrypt(pdfPath, req.Password)
		if err != nil {
			return nil, &dto.ExtractionFailure{
				Kind:    dto.FailureSourceRead,
				Message: fmt.Sprintf("could not decrypt statement: %v", err),
			}
		}
		defer os.Remove(decrypted)
		parsePath = decrypted
	}

	hint := req.IssuerHint()
	res := s.dispatcher.Parse(parsePath, hint)
	if res.Failed() {
		s.log.Warn().
			Str("kind", string(res.Failure.Kind)).
			Str("reason", res.Failure.Message).
			Msg("statement extraction failed")
		return nil, res.Failure
	}

	rec := Normalize(res, hint)
	s.log.Info().
		Str("issuer", rec.Issuer).
		Int("transactions", len(rec.Transactions)).
		Msg("statement parsed")

	stmt := &storage.Statement{
		UserID:  userID,
		PDFPath: pdfPath,
		Record:  rec,
	}
	if s.store != nil {
		if err := s.store.SaveStatement(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to persist statement: %w", err)
		}
	}
	return stmt, nil
}

// List returns a user's statements, newest first.
func (s *StatementService) List(ctx context.Context, userID uuid.UUID) ([]*storage.Statement, error) {
	return s.store.ListStatements(ctx, userID)
}

// Get loads one statement with its transactions.
func (s *StatementService) Get(ctx context.Context, userID uuid.UUID, id int64) (*storage.Statement, error) {
	return s.store.GetStatement(ctx, userID, id)
}

// saveUpload copies the upload into the uploads directory under a
// collision-free name and returns its path.
func (s *StatementService) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadsDir, 0o755); err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d_%s.pdf", time.Now().UnixNano(), uuid.NewString())
	path := filepath.Join(s.cfg.UploadsDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
