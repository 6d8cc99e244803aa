package models

import "time"

// Document is one source file and the text extracted from it
type Document struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Text string `json:"-"`
}

// Chunk is a window of a document's text
type Chunk struct {
	Document string `json:"document"`
	Position int    `json:"position"` // 1-based, in creation order
	Content  string `json:"content"`
	Start    int    `json:"start"` // rune offset into the document text
	End      int    `json:"end"`
}

// Answer is a scored answer span produced for one chunk
type Answer struct {
	Text     string  `json:"answer"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
	Document string  `json:"document"`
}

// SkippedDocument records a document that could not be extracted
type SkippedDocument struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Response is the outcome of answering one question over a directory
type Response struct {
	Question  string            `json:"question"`
	Answers   []Answer          `json:"answers"`
	Skipped   []SkippedDocument `json:"skipped,omitempty"`
	Failed    int               `json:"failed_chunks"`
	Documents int               `json:"documents"`
	Chunks    int               `json:"chunks"`
	Elapsed   time.Duration     `json:"elapsed"`
	Timestamp string            `json:"timestamp"`
}
