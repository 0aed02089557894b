package validate

import (
	"context"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/onboard-cli/pkg/jina"
)

// Similarity scores semantic agreement between two strings in [0,1]. It must
// be deterministic for identical inputs. Implementations may fail; the
// validator recovers by falling back to exact normalized equality.
type Similarity interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// EmbeddingSimilarity scores text pairs by cosine similarity of their
// embedding vectors. Determinism for repeated inputs comes from the
// embedding client's per-process vector cache.
type EmbeddingSimilarity struct {
	client jina.Client
}

// NewEmbeddingSimilarity creates a Similarity backed by an embeddings client.
func NewEmbeddingSimilarity(client jina.Client) *EmbeddingSimilarity {
	return &EmbeddingSimilarity{client: client}
}

// Score embeds both texts and returns their cosine similarity clamped to
// [0,1].
func (s *EmbeddingSimilarity) Score(ctx context.Context, a, b string) (float64, error) {
	vecs, err := s.client.Embed(ctx, []string{a, b})
	if err != nil {
		return 0, eris.Wrap(err, "validate: embed pair")
	}
	if len(vecs) != 2 {
		return 0, eris.Errorf("validate: expected 2 embeddings, got %d", len(vecs))
	}

	cos, err := cosine(vecs[0], vecs[1])
	if err != nil {
		return 0, err
	}
	return math.Min(1, math.Max(0, cos)), nil
}

// cosine computes the cosine similarity of two equal-length vectors.
func cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, eris.Errorf("validate: mismatched embedding dimensions %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, eris.New("validate: zero-magnitude embedding")
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
