package pdfsource

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Decrypt writes a decrypted copy of a password-protected PDF to a temp file
// and returns its path. Card statements are commonly protected with a
// card-number or DOB derived password. The caller removes the file when done.
func Decrypt(path, password string) (string, error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp.Close()

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.DecryptFile(path, tmp.Name(), conf); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to decrypt pdf: %w", err)
	}
	return tmp.Name(), nil
}
