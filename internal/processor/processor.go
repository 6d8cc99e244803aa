package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"curio-queries/internal/models"
)

// ErrUnsupportedFormat is returned for files without a registered extractor
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ExtractFunc turns one file into flat text
type ExtractFunc func(filePath string) (string, error)

// DefaultExtensions lists the document formats scanned by default
var DefaultExtensions = []string{".docx", ".pdf", ".txt"}

// Processor lists, extracts and chunks documents
type Processor struct {
	ChunkSize    int
	ChunkOverlap int
	Extensions   []string

	extractors map[string]ExtractFunc
}

// NewProcessor creates a new document processor. An empty extension list
// selects DefaultExtensions.
func NewProcessor(chunkSize, chunkOverlap int, extensions []string) (*Processor, error) {
	if err := ValidateChunking(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	p := &Processor{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		extractors: map[string]ExtractFunc{
			".docx": extractDOCX,
			".pdf":  extractPDF,
			".txt":  extractPlainText,
		},
	}
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		if _, ok := p.extractors[ext]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
		p.Extensions = append(p.Extensions, ext)
	}

	return p, nil
}

// Register adds or replaces the extractor for an extension and enables it for listing.
func (p *Processor) Register(ext string, fn ExtractFunc) {
	ext = normalizeExt(ext)
	p.extractors[ext] = fn
	for _, e := range p.Extensions {
		if e == ext {
			return
		}
	}
	p.Extensions = append(p.Extensions, ext)
}

// ListDocuments returns the matching regular files directly inside dir, sorted by name.
// Symlinks are followed; broken links and links to directories are ignored.
func (p *Processor) ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !p.accepts(entry.Name()) {
			continue
		}
		if !entry.Type().IsRegular() {
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	return files, nil
}

// LoadDocument extracts the text of one file
func (p *Processor) LoadDocument(filePath string) (models.Document, error) {
	ext := normalizeExt(filepath.Ext(filePath))
	extract, ok := p.extractors[ext]
	if !ok {
		return models.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	text, err := extract(filePath)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to extract text: %w", err)
	}

	return models.Document{
		Name: filepath.Base(filePath),
		Path: filePath,
		Text: text,
	}, nil
}

// ProcessDocument extracts a file and splits it into chunks
func (p *Processor) ProcessDocument(filePath string) (models.Document, []models.Chunk, error) {
	doc, err := p.LoadDocument(filePath)
	if err != nil {
		return models.Document{}, nil, err
	}

	chunks, err := ChunkDocument(doc, p.ChunkSize, p.ChunkOverlap)
	if err != nil {
		return models.Document{}, nil, fmt.Errorf("failed to chunk document: %w", err)
	}

	return doc, chunks, nil
}

func (p *Processor) accepts(name string) bool {
	ext := normalizeExt(filepath.Ext(name))
	for _, e := range p.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func extractPlainText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8")
	}
	return string(data), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
