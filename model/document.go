package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks how far a document got through ingestion.
type DocumentStatus string

const (
	DocumentStatusUploaded  DocumentStatus = "uploaded"
	DocumentStatusProcessed DocumentStatus = "processed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// Document is a file of the corpus. Text, summary, embedding and labels are
// filled in by ingestion steps and may each be missing.
type Document struct {
	ID         int64          `json:"id"`
	RID        uuid.UUID      `json:"rid"`
	Name       string         `json:"name"`
	Text       *string        `json:"extracted_text,omitempty"`
	Summary    *string        `json:"summary,omitempty"`
	Embedding  Embedding      `json:"embedding,omitempty"`
	Categories []string       `json:"categories,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Status     DocumentStatus `json:"status,omitempty"`
	Metadata   Metadata       `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewDocumentFromFile reads a file and creates a Document with the file content as text.
// The name defaults to the file name including its extension.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, err
	}

	text := string(content)
	if metadata == nil {
		metadata = Metadata{}
	}
	metadata["source"] = filePath

	return &Document{
		RID:      uuid.New(),
		Name:     filepath.Base(filePath),
		Text:     &text,
		Status:   DocumentStatusUploaded,
		Metadata: metadata,
	}, nil
}

func (d *Document) HasText() bool {
	return d.Text != nil && *d.Text != ""
}

func (d *Document) HasSummary() bool {
	return d.Summary != nil && *d.Summary != ""
}

func (d *Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// TextValue returns the extracted text or "" if there is none.
func (d *Document) TextValue() string {
	if d.Text == nil {
		return ""
	}
	return *d.Text
}

// SummaryValue returns the summary or "" if there is none.
func (d *Document) SummaryValue() string {
	if d.Summary == nil {
		return ""
	}
	return *d.Summary
}

// Clone returns a deep copy so the result can be handed to another goroutine.
func (d *Document) Clone() Document {
	c := *d
	if d.Text != nil {
		text := *d.Text
		c.Text = &text
	}
	if d.Summary != nil {
		summary := *d.Summary
		c.Summary = &summary
	}
	c.Embedding = d.Embedding.Clone()
	c.Categories = cloneStrings(d.Categories)
	c.Keywords = cloneStrings(d.Keywords)
	c.Metadata = d.Metadata.Clone()
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
