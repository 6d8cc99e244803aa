package processor

import (
	"errors"
	"fmt"

	"curio-queries/internal/models"
)

const (
	// DefaultChunkSize is the window length in characters
	DefaultChunkSize = 1024
	// DefaultChunkOverlap is the number of characters shared by consecutive windows
	DefaultChunkOverlap = 200
)

// ErrInvalidChunkConfig is returned when the chunk size and overlap
// would produce a non-positive stride.
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// ValidateChunking checks that maxLength > 0 and 0 <= overlap < maxLength.
func ValidateChunking(maxLength, overlap int) error {
	if maxLength <= 0 {
		return fmt.Errorf("%w: chunk size must be > 0, got %d", ErrInvalidChunkConfig, maxLength)
	}
	if overlap < 0 || overlap >= maxLength {
		return fmt.Errorf("%w: overlap must be >= 0 and < chunk size %d, got %d",
			ErrInvalidChunkConfig, maxLength, overlap)
	}
	return nil
}

// Chunk splits text into overlapping windows of at most maxLength characters.
// Windows advance by maxLength-overlap and stop once one reaches the end of the text.
func Chunk(text string, maxLength, overlap int) ([]string, error) {
	spans, err := windows(text, maxLength, overlap)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(spans))
	for _, s := range spans {
		chunks = append(chunks, string(runes[s[0]:s[1]]))
	}
	return chunks, nil
}

// ChunkDocument chunks a document's text and tags every window with its position.
func ChunkDocument(doc models.Document, maxLength, overlap int) ([]models.Chunk, error) {
	spans, err := windows(doc.Text, maxLength, overlap)
	if err != nil {
		return nil, err
	}

	runes := []rune(doc.Text)
	chunks := make([]models.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, models.Chunk{
			Document: doc.Name,
			Position: i + 1,
			Content:  string(runes[s[0]:s[1]]),
			Start:    s[0],
			End:      s[1],
		})
	}
	return chunks, nil
}

// windows returns the [start, end) rune ranges of every chunk.
func windows(text string, maxLength, overlap int) ([][2]int, error) {
	if err := ValidateChunking(maxLength, overlap); err != nil {
		return nil, err
	}

	length := len([]rune(text))
	if length == 0 {
		return nil, nil
	}

	step := maxLength - overlap
	var spans [][2]int
	for start := 0; start < length; start += step {
		end := min(start+maxLength, length)
		spans = append(spans, [2]int{start, end})
		if end == length {
			break
		}
	}
	return spans, nil
}
