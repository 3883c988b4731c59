package router

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetermined is returned when a detector cannot name a language.
var ErrUndetermined = errors.New("language could not be determined")

// Detector names the ISO 639-1 language of a text.
type Detector interface {
	Detect(text string) (string, error)
}

// DetectorFunc adapts an ordinary function to the Detector interface.
type DetectorFunc func(text string) (string, error)

// Detect calls f.
func (f DetectorFunc) Detect(text string) (string, error) {
	return f(text)
}

// WhatlangDetector detects languages with trigram statistics.
type WhatlangDetector struct {
	// MinConfidence rejects detections below this confidence (0 to 1).
	MinConfidence float64
}

// Detect implements Detector.
func (d WhatlangDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetermined
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || info.Confidence < d.MinConfidence {
		return "", ErrUndetermined
	}
	return code, nil
}
