package facematch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClientIndexThenSearchFindsMatch(t *testing.T) {
	client := NewFakeClient()
	ctx := context.Background()

	faceID, confidence, err := client.Index(ctx, []byte("alice-face"))
	require.NoError(t, err)
	assert.NotEmpty(t, faceID)
	assert.Equal(t, float64(100), confidence)

	match, err := client.Search(ctx, []byte("alice-face"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, faceID, match.FaceID)
	assert.Equal(t, float64(100), match.Similarity)
}

func TestFakeClientSearchMissesUnenrolledImage(t *testing.T) {
	client := NewFakeClient()
	ctx := context.Background()

	_, _, err := client.Index(ctx, []byte("alice-face"))
	require.NoError(t, err)

	match, err := client.Search(ctx, []byte("bob-face"))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFakeClientCompareMatchesOnlySameDigest(t *testing.T) {
	client := NewFakeClient()
	ctx := context.Background()

	faceID, _, err := client.Index(ctx, []byte("alice-face"))
	require.NoError(t, err)

	same, err := client.Compare(ctx, []byte("alice-face"), faceID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), same)

	different, err := client.Compare(ctx, []byte("bob-face"), faceID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), different)
}

func TestFakeClientCompareHonorsSimilarityOverride(t *testing.T) {
	client := NewFakeClient()
	ctx := context.Background()

	faceID, _, err := client.Index(ctx, []byte("alice-face"))
	require.NoError(t, err)

	client.SimilarityFor[faceID] = 62.5

	score, err := client.Compare(ctx, []byte("anything"), faceID)
	require.NoError(t, err)
	assert.Equal(t, 62.5, score)
}

func TestFakeClientDetectDefaultsToSingleFace(t *testing.T) {
	client := NewFakeClient()
	faces, err := client.Detect(context.Background(), []byte("group-photo"))
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Equal(t, 0, faces[0].Index)
}

func TestFakeClientDetectReturnsOverride(t *testing.T) {
	client := NewFakeClient()
	client.DetectFaces = []DetectedFace{
		{Index: 0, Box: BoundingBox{X: 0, Y: 0, Width: 50, Height: 50}},
		{Index: 1, Box: BoundingBox{X: 60, Y: 0, Width: 50, Height: 50}},
	}

	faces, err := client.Detect(context.Background(), []byte("group-photo"))
	require.NoError(t, err)
	assert.Len(t, faces, 2)
}
