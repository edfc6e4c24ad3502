package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// ContentReader supplies UTF-8 text for a path relative to its base
// directory. ok=false means unreadable or unsupported, which the
// orchestrator treats as a skip, never an abort.
type ContentReader interface {
	ReadText(relPath string) (text string, ok bool)
	SupportedExtensions() []string
}

var supportedTextExts = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	".pdf": true,
}

// LocalReader reads files under a single base directory. Any path that
// resolves outside the base directory is treated as unreadable - that is the
// path-traversal guard for webhook-supplied paths.
type LocalReader struct {
	baseDir string
}

func NewLocalReader(baseDir string) (*LocalReader, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	// resolve the base once so the per-read prefix check compares
	// like-for-like when the configured dir sits behind a symlink
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("base dir is not a directory")
	}
	return &LocalReader{baseDir: abs}, nil
}

func (r *LocalReader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".csv", ".pdf"}
}

func (r *LocalReader) ReadText(relPath string) (string, bool) {
	full, ok := r.resolve(relPath)
	if !ok {
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(full))
	if !supportedTextExts[ext] {
		return "", false
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}

	switch ext {
	case ".txt", ".md":
		return readPlain(full)
	case ".csv":
		return readCSV(full)
	case ".pdf":
		return readPDF(full)
	}
	return "", false
}

func (r *LocalReader) resolve(relPath string) (string, bool) {
	rel := filepath.FromSlash(relPath)
	// a path that still climbs after cleaning is rejected, not re-rooted,
	// so "../x" can never shadow a real in-base file
	if strings.HasPrefix(filepath.Clean(rel), "..") {
		return "", false
	}
	cleaned := filepath.Clean("/" + rel)
	full := filepath.Join(r.baseDir, cleaned)
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		// missing file still resolves to the joined path, symlink escapes fail here
		if !os.IsNotExist(err) {
			return "", false
		}
		resolved = full
	}
	if resolved != r.baseDir && !strings.HasPrefix(resolved, r.baseDir+string(os.PathSeparator)) {
		return "", false
	}
	return resolved, true
}

func readPlain(path string) (string, bool) {
	// cat handles plaintext alongside odt/docx/rtf
	text, err := cat.File(path)
	if err != nil {
		return "", false
	}
	return text, true
}

// readCSV joins the cells of each row with spaces and the rows with
// newlines, matching how CSV resumes were flattened for chunking.
func readCSV(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", false
		}
		var cells []string
		for _, c := range record {
			if c != "" {
				cells = append(cells, c)
			}
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n"), true
}

func readPDF(path string) (string, bool) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", false
	}

	var pages []string
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			continue
		}
		if content != "" {
			pages = append(pages, content)
		}
	}
	if len(pages) == 0 {
		return "", false
	}
	return strings.Join(pages, "\n"), true
}

// protectExtract bounds a single page extraction; malformed PDFs can hang
// the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("timeout")
	}
}

// GuessMime maps a path to a MIME type for the Document node, defaulting to
// text/plain.
func GuessMime(path string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" {
		return mt
	}
	return "text/plain"
}
