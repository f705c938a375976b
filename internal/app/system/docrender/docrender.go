// Package docrender fills .docx templates with record data. Templates use
// {placeholder} markers and live in a directory configured at startup; the
// rendered document is returned as bytes so handlers can ship it base64
// encoded in a JSON response or hand it to storage.
package docrender

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	docx "github.com/lukasjarosch/go-docx"
)

// Form identifies which template a render call should use.
type Form string

const (
	FormProjectSanction   Form = "project_sanction"
	FormProjectCompletion Form = "project_completion"
	FormIncentiveApproval Form = "incentive_approval"
	FormRecruitmentOffer  Form = "recruitment_offer"
)

var templateFiles = map[Form]string{
	FormProjectSanction:   "project_sanction.docx",
	FormProjectCompletion: "project_completion.docx",
	FormIncentiveApproval: "incentive_approval.docx",
	FormRecruitmentOffer:  "recruitment_offer.docx",
}

// Renderer renders docx templates from a directory on disk.
type Renderer struct {
	dir string
}

// New returns a Renderer rooted at dir. The directory must exist; individual
// templates are checked at render time so a missing file surfaces as a
// per-request error rather than a startup failure.
func New(dir string) (*Renderer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("docrender: template dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docrender: %q is not a directory", dir)
	}
	return &Renderer{dir: dir}, nil
}

// Render fills the template for form with values and returns the document
// bytes. Empty values are written as "N/A" so generated letters never carry
// a bare placeholder gap.
func (r *Renderer) Render(form Form, values map[string]string) ([]byte, error) {
	name, ok := templateFiles[form]
	if !ok {
		return nil, fmt.Errorf("docrender: unknown form %q", form)
	}

	doc, err := docx.Open(filepath.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("docrender: open template %s: %w", name, err)
	}

	placeholders := make(docx.PlaceholderMap, len(values))
	for key, val := range values {
		placeholders[key] = FillBlank(val)
	}

	if err := doc.ReplaceAll(placeholders); err != nil {
		return nil, fmt.Errorf("docrender: replace placeholders in %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("docrender: write %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// FillBlank substitutes "N/A" for empty or whitespace-only values.
func FillBlank(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

// FileName builds the download name for a rendered form, e.g.
// "project_sanction_IMR2024012.docx".
func FileName(form Form, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return string(form) + ".docx"
	}
	return fmt.Sprintf("%s_%s.docx", form, ref)
}
