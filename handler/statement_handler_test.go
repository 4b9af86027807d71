package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/statement-parser/config"
	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/extractor/hdfc"
	"github.com/Aashish23092/statement-parser/pdfsource"
	"github.com/Aashish23092/statement-parser/service"
)

type fakeDocument struct {
	pages []pdfsource.RawPage
}

func (d *fakeDocument) NumPages() int                { return len(d.pages) }
func (d *fakeDocument) Page(n int) pdfsource.RawPage { return d.pages[n-1] }
func (d *fakeDocument) Close() error                 { return nil }

func statementRouter(t *testing.T, text string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	opener := func(string) (pdfsource.Document, error) {
		return &fakeDocument{pages: []pdfsource.RawPage{{Text: text}}}, nil
	}
	dispatcher := service.NewDispatcherWithOpener(zerolog.Nop(), opener, hdfc.NewWithOpener(opener))

	cfg := &config.Config{UploadsDir: t.TempDir()}
	statementService := service.NewStatementService(cfg, zerolog.Nop(), dispatcher, nil)
	h := NewStatementHandler(statementService, zerolog.Nop())

	router := gin.New()
	router.POST("/statements", func(c *gin.Context) {
		c.Set(userIDKey, uuid.New())
		c.Next()
	}, h.Upload)
	return router
}

func uploadRequest(t *testing.T, filename, field string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/statements", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadParsesStatement(t *testing.T) {
	router := statementRouter(t, `HDFC Bank Credit Card
Card No: 4695 25XX XXXX 3458
Total Amount Due: ₹12,345.67
Payment Due Date: 05-Feb-2024`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.pdf", "file"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "HDFC", resp.Statement.Issuer)
	assert.Equal(t, "3458", resp.Statement.CardLast4)
	require.NotNil(t, resp.Statement.TotalAmountDue)
	assert.Equal(t, 12345.67, *resp.Statement.TotalAmountDue)
	assert.Equal(t, "05-02-2024", resp.Statement.PaymentDueDate)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	router := statementRouter(t, "whatever")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.txt", "file"))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadRequiresFile(t *testing.T) {
	router := statementRouter(t, "whatever")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.pdf", "not-the-file-field"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadUnresolvableIssuer(t *testing.T) {
	router := statementRouter(t, "some unbranded document with no signatures")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.pdf", "file"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Could not identify issuer")
}
