package crawler

import (
	"sync"

	"github.com/user/site-crawler/internal/entity"
)

// FetchFailure is a visited URL that produced no page.
type FetchFailure struct {
	URL   string
	Depth int
	Err   *entity.FetchError
}

// Result accumulates the output of one traversal. All methods are safe for
// concurrent use; slices returned are copies in discovery order.
type Result struct {
	mu        sync.Mutex
	visited   []string
	links     []string
	linkSet   map[string]struct{}
	pages     map[string]entity.PageRecord
	pageOrder []string
	failures  []FetchFailure
}

func newResult() *Result {
	return &Result{
		linkSet: make(map[string]struct{}),
		pages:   make(map[string]entity.PageRecord),
	}
}

func (r *Result) addVisited(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visited = append(r.visited, url)
}

func (r *Result) addLink(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.linkSet[url]; ok {
		return
	}
	r.linkSet[url] = struct{}{}
	r.links = append(r.links, url)
}

func (r *Result) addPage(p entity.PageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[p.URL]; !ok {
		r.pageOrder = append(r.pageOrder, p.URL)
	}
	r.pages[p.URL] = p
}

func (r *Result) addFailure(f FetchFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

func (r *Result) counts() (visited, pages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visited), len(r.pageOrder)
}

// Visited returns every URL dispatched for fetching, in dispatch order.
func (r *Result) Visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.visited...)
}

// Links returns the distinct in-scope links discovered, in discovery order.
func (r *Result) Links() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links...)
}

// HasLink reports whether url is in the discovered link set.
func (r *Result) HasLink(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.linkSet[url]
	return ok
}

// Pages returns the rendered pages in fetch order.
func (r *Result) Pages() []entity.PageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.PageRecord, 0, len(r.pageOrder))
	for _, u := range r.pageOrder {
		out = append(out, r.pages[u])
	}
	return out
}

// Page looks up the rendered page for url.
func (r *Result) Page(url string) (entity.PageRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[url]
	return p, ok
}

func (r *Result) Failures() []FetchFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FetchFailure(nil), r.failures...)
}
