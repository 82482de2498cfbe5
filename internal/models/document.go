// ABOUTME: Document represents a loaded PDF with a stable content fingerprint
// ABOUTME: The fingerprint keys every cache namespace (chunks and scripts)
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Document is an immutable in-memory copy of a source file
type Document struct {
	Name        string `json:"name"`
	Data        []byte `json:"-"`
	Fingerprint string `json:"fingerprint"`
}

// NewDocument creates a Document with validation and fingerprint
func NewDocument(name string, data []byte) (*Document, error) {
	if name == "" {
		return nil, errors.New("document name cannot be empty")
	}
	if len(data) == 0 {
		return nil, errors.New("document data cannot be empty")
	}
	return &Document{
		Name:        name,
		Data:        data,
		Fingerprint: Fingerprint(name, data),
	}, nil
}

// LoadDocument reads a file from disk into a Document
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return NewDocument(filepath.Base(path), data)
}

// Fingerprint returns a stable 16-hex-char identity for name + content.
// The name participates so two files with identical bytes but different
// names cache separately, matching how exports label their source.
func Fingerprint(name string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
