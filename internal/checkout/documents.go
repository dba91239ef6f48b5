package checkout

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"carrental-backend/internal/domain"
)

var (
	ErrUnknownDocumentType     = errors.New("unknown document type")
	ErrUnsupportedDocumentMIME = errors.New("document must be an image or a PDF")
	ErrEmptyDocument           = errors.New("document is empty")
)

// Document is one user-selected file held in memory until submission.
type Document struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// DocumentSet maps each required slot to at most one file.
type DocumentSet map[domain.DocumentType]Document

// AcceptedContentType reports whether contentType is an image or a PDF.
func AcceptedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// Attach stores doc under docType, replacing any earlier file for that slot.
func (s DocumentSet) Attach(docType domain.DocumentType, doc Document) error {
	if !docType.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownDocumentType, docType)
	}
	if !AcceptedContentType(doc.ContentType) {
		return ErrUnsupportedDocumentMIME
	}
	if len(doc.Data) == 0 {
		return ErrEmptyDocument
	}
	s[docType] = doc
	return nil
}

// Complete reports whether every required slot holds a file.
func (s DocumentSet) Complete() bool {
	for _, t := range domain.RequiredDocuments {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}

// Missing lists the required slots still empty, in display order.
func (s DocumentSet) Missing() []domain.DocumentType {
	var missing []domain.DocumentType
	for _, t := range domain.RequiredDocuments {
		if _, ok := s[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

func (s DocumentSet) clone() DocumentSet {
	out := make(DocumentSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
