package repository

import "context"

// Renderer loads a URL in a scriptable browser and returns the rendered markup.
// Implementations are not safe for concurrent navigation; use one per worker.
type Renderer interface {
	// Fetch navigates to url, waits for the document body and returns the outer HTML
	// along with the main document's HTTP status (0 when unknown).
	// Failures are *entity.FetchError.
	Fetch(ctx context.Context, url string) (markup string, status int, err error)
	// Close releases the browser. It is safe to call more than once.
	Close() error
}

// RendererFactory starts a new Renderer. A failure here is fatal to the job.
type RendererFactory interface {
	Open(ctx context.Context) (Renderer, error)
}
