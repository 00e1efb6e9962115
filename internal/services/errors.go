package services

import "errors"

// Validation failures reported by Parser.Validate and Parser.HybridParse.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrNotPDF       = errors.New("only PDF files are supported")
	ErrInvalidPDF   = errors.New("invalid PDF structure")
)
