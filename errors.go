package manguide

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyHTML      = errors.New("HTML content cannot be empty")
	ErrParseHTML      = errors.New("HTML parsing failed")
	ErrRenderHTML     = errors.New("HTML rendering failed")
	ErrDocumentAccess = errors.New("document access failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrInvalidTarget  = errors.New("invalid page target")

	// Option validation errors.
	ErrInvalidTitle       = errors.New("invalid breadcrumb title")
	ErrInvalidContainerID = errors.New("invalid breadcrumb container id")
	ErrInvalidCodeTag     = errors.New("invalid code tag")
)
