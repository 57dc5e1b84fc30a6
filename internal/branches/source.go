package branches

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"bankinfo/internal/util"
)

// LoadNumbers reads the list of branch numbers to scrape. Text and JSON
// entries are passed through as written so malformed numbers surface as
// per-branch failures; xlsx, pdf and eml sources only yield 8-digit tokens.
func LoadNumbers(inputType, path string) ([]string, error) {
	if inputType == "" || inputType == "auto" {
		inputType = DetectInputType(path)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var numbers []string
	switch inputType {
	case "text":
		numbers = numbersFromText(string(blob))
	case "json":
		numbers, err = numbersFromJSON(blob)
	case "xlsx":
		numbers, err = numbersFromXLSX(blob)
	case "pdf":
		numbers, err = numbersFromPDF(blob)
	case "eml":
		numbers, err = numbersFromEmail(blob)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s numbers from %s: %w", inputType, path, err)
	}
	return dedupeNumbers(numbers), nil
}

func DetectInputType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".pdf":
		return "pdf"
	case ".eml":
		return "eml"
	default:
		return "text"
	}
}

func numbersFromText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Tolerate list literals copied from source code: '00109980',
		line = strings.Trim(line, `'",; `)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func numbersFromJSON(blob []byte) ([]string, error) {
	var plain []string
	if err := json.Unmarshal(blob, &plain); err == nil {
		return plain, nil
	}
	records, err := DecodeRecords(blob)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key())
	}
	return out, nil
}

func numbersFromXLSX(content []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []string{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, cell := range row {
				out = append(out, util.FindBranchNumbers(cell)...)
			}
		}
	}
	return out, nil
}

func numbersFromPDF(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		out = append(out, util.FindBranchNumbers(text)...)
	}
	return out, nil
}

func numbersFromEmail(raw []byte) ([]string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	out := util.FindBranchNumbers(env.Text)
	for _, att := range env.Attachments {
		lower := strings.ToLower(strings.TrimSpace(att.FileName))
		var extra []string
		switch {
		case strings.HasSuffix(lower, ".xlsx"):
			extra, err = numbersFromXLSX(att.Content)
		case strings.HasSuffix(lower, ".pdf"):
			extra, err = numbersFromPDF(att.Content)
		case strings.HasSuffix(lower, ".json"):
			extra, err = numbersFromJSON(att.Content)
		case strings.HasSuffix(lower, ".txt"), strings.HasSuffix(lower, ".csv"):
			extra = util.FindBranchNumbers(string(att.Content))
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", att.FileName, err)
		}
		out = append(out, extra...)
	}
	return out, nil
}

func dedupeNumbers(numbers []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if _, exists := seen[n]; exists {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
