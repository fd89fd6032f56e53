package embed

import (
	"context"
	"math/rand"
	"sync"

	"answergap/internal/llm"
	mylog "answergap/internal/log"
)

const maxInputChars = 8000

// Provider wraps an llm.Embedder with the batch-friendly contract the
// pipeline needs: inputs are truncated to the service's ceiling, and any
// failure yields a synthetic random vector instead of an error so one bad
// call cannot sink the batch. Fallback use is reported through the degraded
// flag rather than hidden.
type Provider struct {
	emb   llm.Embedder
	model string
	dim   int
	log   *mylog.Logger
}

func NewProvider(emb llm.Embedder, model string, dim int, log *mylog.Logger) *Provider {
	if dim <= 0 {
		dim = 1536
	}
	if log == nil {
		log = mylog.New()
	}
	return &Provider{emb: emb, model: model, dim: dim, log: log}
}

// Dim returns the expected vector dimensionality.
func (p *Provider) Dim() int { return p.dim }

// Embed returns a vector for text, degraded=true when the vector is a
// synthetic fallback.
func (p *Provider) Embed(ctx context.Context, text string) (vec []float32, degraded bool) {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}
	vecs, err := p.emb.Embeddings(ctx, p.model, []string{text})
	if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
		p.log.Warn("embedding failed, using synthetic vector", "model", p.model, "err", errString(err))
		return p.synthetic(), true
	}
	return vecs[0], false
}

// EmbedPair embeds two texts concurrently and joins both before returning.
func (p *Provider) EmbedPair(ctx context.Context, a, b string) (va, vb []float32, degraded bool) {
	var degA, degB bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		va, degA = p.Embed(ctx, a)
	}()
	go func() {
		defer wg.Done()
		vb, degB = p.Embed(ctx, b)
	}()
	wg.Wait()
	return va, vb, degA || degB
}

func (p *Provider) synthetic() []float32 {
	v := make([]float32, p.dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return v
}

func errString(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
