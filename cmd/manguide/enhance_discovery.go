package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-manguide/internal/fileutil"
)

// Sentinel errors for page discovery.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrNoPages          = errors.New("no HTML pages found")
	ErrInvalidExtension = errors.New("file must have .html or .htm extension")
)

// PageToEnhance represents a single page to process.
type PageToEnhance struct {
	InputPath  string
	OutputPath string // equals InputPath for in-place enhancement
	PagePath   string // site path used to build the breadcrumb
}

// discoverPages finds all HTML pages under inputPath.
// Output paths mirror the input tree under outputDir, or point back at the
// input when outputDir is empty. Hidden directories and an outputDir nested
// inside inputPath are skipped.
func discoverPages(inputPath, outputDir, basePath string) ([]PageToEnhance, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !fileutil.IsHTMLFile(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		return []PageToEnhance{pageFor(filepath.Dir(inputPath), outputDir, basePath, inputPath)}, nil
	}

	skipDir := ""
	if outputDir != "" {
		skipDir, _ = filepath.Abs(outputDir)
	}

	var pages []PageToEnhance
	err = filepath.WalkDir(inputPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		if d.IsDir() {
			if p != inputPath && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			if abs, _ := filepath.Abs(p); skipDir != "" && abs == skipDir && p != inputPath {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !fileutil.IsHTMLFile(p) {
			return nil
		}
		pages = append(pages, pageFor(inputPath, outputDir, basePath, p))
		return nil
	})

	return pages, err
}

// pageFor maps a file under root to its output and site paths.
func pageFor(root, outputDir, basePath, file string) PageToEnhance {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = filepath.Base(file)
	}

	out := file
	if outputDir != "" {
		out = filepath.Join(outputDir, rel)
	}

	return PageToEnhance{
		InputPath:  file,
		OutputPath: out,
		PagePath:   sitePath(basePath, rel),
	}
}

// sitePath joins basePath and a relative file path into an absolute
// forward-slash URL path, percent-encoded the way a browser reports it.
func sitePath(basePath, rel string) string {
	u := url.URL{Path: path.Join("/", filepath.ToSlash(basePath), filepath.ToSlash(rel))}
	return u.EscapedPath()
}

// isHidden reports whether a file or directory name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
