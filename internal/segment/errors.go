// ABOUTME: Error taxonomy for document segmentation
// ABOUTME: Separates fatal document errors from transient and permanent remote failures
package segment

import (
	"errors"
	"fmt"
)

// ParseError reports an unreadable or corrupt document. Fatal, raised
// before any segmentation strategy runs.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse document %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyDocumentError reports a document with no extractable text. Fatal.
type EmptyDocumentError struct {
	Name string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("document %s contains no extractable text", e.Name)
}

// AuthError reports a permanent credential or quota failure from the
// remote OCR service. Never retried, triggers immediate local fallback.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("remote OCR rejected request (status %d): %s", e.StatusCode, e.Message)
}

// IsPermanent reports whether a remote failure must not be retried
func IsPermanent(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsFatal reports whether an error is a document-level failure that no
// segmentation strategy can recover from
func IsFatal(err error) bool {
	var parseErr *ParseError
	var emptyErr *EmptyDocumentError
	return errors.As(err, &parseErr) || errors.As(err, &emptyErr)
}
