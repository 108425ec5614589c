package redline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
)

// DocumentPartName is the main document body part of a word-processing
// package.
const DocumentPartName = "word/document.xml"

// NumberingPartName holds the numbering definitions of the package.
const NumberingPartName = "word/numbering.xml"

// PackageReader handles reading the parts of a DOCX package.
type PackageReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
	// Order preserves the original part sequence so write-back produces a
	// stable package layout.
	Order []string
}

// NewPackageReader creates a package reader over zip content.
func NewPackageReader(r io.ReaderAt, size int64) (*PackageReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	pr := &PackageReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}

	for _, file := range zipReader.File {
		if _, seen := pr.Parts[file.Name]; !seen {
			pr.Order = append(pr.Order, file.Name)
		}
		pr.Parts[file.Name] = file
	}

	if _, ok := pr.Parts[DocumentPartName]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", DocumentPartName)
	}

	return pr, nil
}

// PackageReaderFromFile creates a PackageReader from a file path.
func PackageReaderFromFile(path string) (*PackageReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return NewPackageReader(bytes.NewReader(content), int64(len(content)))
}

// GetPart retrieves the content of a specific part.
func (pr *PackageReader) GetPart(partName string) ([]byte, error) {
	file, ok := pr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// HasPart reports whether the package contains the named part.
func (pr *PackageReader) HasPart(partName string) bool {
	_, ok := pr.Parts[partName]
	return ok
}

// ListParts returns all part names in original package order.
func (pr *PackageReader) ListParts() []string {
	return append([]string(nil), pr.Order...)
}

// ReadAll extracts every part into memory.
func (pr *PackageReader) ReadAll() (map[string][]byte, error) {
	parts := make(map[string][]byte, len(pr.Parts))
	for _, name := range pr.Order {
		content, err := pr.GetPart(name)
		if err != nil {
			return nil, err
		}
		parts[name] = content
	}
	return parts, nil
}

// writePackage writes parts as a zip package. Names appear in the given
// order; names absent from parts are skipped (dropped parts), and names in
// parts but not in order are appended at the end.
func writePackage(w io.Writer, parts map[string][]byte, order []string) error {
	zw := zip.NewWriter(w)

	written := make(map[string]bool, len(parts))
	emit := func(name string) error {
		content, ok := parts[name]
		if !ok || written[name] {
			return nil
		}
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create part %s: %w", name, err)
		}
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to write part %s: %w", name, err)
		}
		written[name] = true
		return nil
	}

	for _, name := range order {
		if err := emit(name); err != nil {
			zw.Close()
			return err
		}
	}
	// new parts created during the session
	var extra []string
	for name := range parts {
		if !written[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		if err := emit(name); err != nil {
			zw.Close()
			return err
		}
	}

	return zw.Close()
}
