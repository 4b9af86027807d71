package dto

import (
	"errors"
	"mime/multipart"
	"strings"
)

// UploadStatementRequest represents the incoming statement upload
type UploadStatementRequest struct {
	File     *multipart.FileHeader `form:"file" binding:"required"`
	Issuer   string                `form:"issuer"`
	Password string                `form:"password"`
}

// Validate performs basic validation on the request
func (r *UploadStatementRequest) Validate() error {
	if r.File == nil {
		return ErrNoFileProvided
	}
	if !strings.HasSuffix(strings.ToLower(r.File.Filename), ".pdf") {
		return ErrUnsupportedFileType
	}
	return nil
}

// IssuerHint returns the issuer override, or "" when auto-detection is wanted.
func (r *UploadStatementRequest) IssuerHint() string {
	hint := strings.TrimSpace(r.Issuer)
	if hint == "" || strings.EqualFold(hint, "auto") {
		return ""
	}
	return strings.ToUpper(hint)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Custom errors
var (
	ErrNoFileProvided      = errors.New("no statement file provided")
	ErrUnsupportedFileType = errors.New("only PDF files are supported")
)
