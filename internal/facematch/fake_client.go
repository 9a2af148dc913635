package facematch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
)

// FakeClient is a deterministic in-memory Client for tests: it never calls
// out to a network service. Index derives a stable face id from the image
// bytes; Search/Compare return a perfect match only against images that
// were previously Indexed under the same digest.
type FakeClient struct {
	mu    sync.Mutex
	faces map[string][]byte

	// DetectFaces, when set, is returned verbatim by Detect regardless of
	// the image passed in, so tests can force a specific face count for
	// group-mode scenarios.
	DetectFaces []DetectedFace
	// SimilarityFor overrides the similarity Compare/Search report for a
	// given face id; defaults to 100 for an exact digest match and 0
	// otherwise.
	SimilarityFor map[string]float64
}

// NewFakeClient creates an empty fake face-match client.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		faces:         make(map[string][]byte),
		SimilarityFor: make(map[string]float64),
	}
}

func digest(image []byte) string {
	sum := sha256.Sum256(image)
	return fmt.Sprintf("%x", sum[:8])
}

// Detect returns DetectFaces if set, otherwise a single face spanning the
// whole frame.
func (f *FakeClient) Detect(ctx context.Context, image []byte) ([]DetectedFace, error) {
	if f.DetectFaces != nil {
		return f.DetectFaces, nil
	}
	return []DetectedFace{{Index: 0, Box: BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}}}, nil
}

// Index stores the image under a digest-derived face id.
func (f *FakeClient) Index(ctx context.Context, image []byte) (string, float64, error) {
	id := digest(image)
	f.mu.Lock()
	f.faces[id] = image
	f.mu.Unlock()
	return id, 100, nil
}

// Search returns the enrolled face whose digest exactly matches image, if
// any.
func (f *FakeClient) Search(ctx context.Context, image []byte) (*Match, error) {
	id := digest(image)
	f.mu.Lock()
	_, ok := f.faces[id]
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &Match{FaceID: id, Similarity: f.similarityFor(id)}, nil
}

// Compare scores image against a specific enrolled face id: 100 if the
// digest matches, 0 otherwise (or the override in SimilarityFor).
func (f *FakeClient) Compare(ctx context.Context, image []byte, faceID string) (float64, error) {
	if override, ok := f.SimilarityFor[faceID]; ok {
		return override, nil
	}
	if digest(image) == faceID {
		return 100, nil
	}
	return 0, nil
}

func (f *FakeClient) similarityFor(faceID string) float64 {
	if override, ok := f.SimilarityFor[faceID]; ok {
		return override
	}
	return 100
}
