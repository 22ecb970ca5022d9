package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist or is not visible
	// to the caller.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput indicates bad caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFormat indicates the uploaded file is not a PDF, DOC, or DOCX.
	ErrUnsupportedFormat = errors.New("unsupported file format, expected pdf, doc, or docx")
	// ErrExtraction indicates text extraction failed for a supported format.
	ErrExtraction = errors.New("failed to extract text from document")
)
