package profile

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF extracts the plain text of a resume PDF into a Candidate's
// experience narrative. Skills and interests still come from flags or a
// profile file; PDFs carry no reliable structure to pull them from.
func FromPDF(path string) (Candidate, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("opening resume pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return Candidate{}, fmt.Errorf("extracting pdf text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return Candidate{}, fmt.Errorf("reading pdf text: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Candidate{}, fmt.Errorf("resume pdf %s contains no extractable text", path)
	}

	return Candidate{Experience: text}, nil
}
