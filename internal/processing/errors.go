package processing

import "fmt"

// Kind identifies which pipeline stage a processing failure came from.
type Kind string

const (
	// KindImageDecode means the uploaded bytes could not be decoded as
	// an image in any supported format.
	KindImageDecode Kind = "image_decode"

	// KindOCREngine means the OCR engine itself faulted. Empty or
	// garbled text is not a fault; it is a valid, if useless, result.
	KindOCREngine Kind = "ocr_engine"

	// KindEmptyText means OCR succeeded but produced zero lines, so no
	// store name could be determined.
	KindEmptyText Kind = "empty_text"
)

// Error is the single reportable failure type returned by Process.
// Message is safe to show to an end user; Err carries the original
// cause. Status-code mapping is the caller's policy.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
