// Package facematch abstracts the external face-recognition service the
// punch pipeline calls to identify and verify employees from a captured
// photo (spec.md §4.4).
package facematch

import "context"

// BoundingBox is a detected face's location within a source image, in pixel
// coordinates.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DetectedFace is one face found by Detect, before it has been matched to
// an enrolled identity.
type DetectedFace struct {
	Index int
	Box   BoundingBox
}

// Match is a single-candidate result from Search: the enrolled face id the
// probe image most closely resembles, and the similarity score.
type Match struct {
	FaceID     string
	Similarity float64
}

// Client is implemented by both the real HTTP-backed face service and the
// deterministic fake used in tests.
type Client interface {
	// Detect finds every face in an image, for group-mode punches.
	Detect(ctx context.Context, image []byte) ([]DetectedFace, error)
	// Index enrolls an image as a new reference face, returning its
	// service-assigned face id.
	Index(ctx context.Context, image []byte) (faceID string, confidence float64, err error)
	// Search finds the best-matching enrolled face for a probe image
	// against the whole enrolled collection.
	Search(ctx context.Context, image []byte) (*Match, error)
	// Compare scores a probe image directly against one enrolled face id,
	// used once Search (in single or group mode) narrows to a single
	// candidate employee.
	Compare(ctx context.Context, image []byte, faceID string) (similarity float64, err error)
}
