package chromedp_renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/proxy"
	"github.com/user/site-crawler/internal/repository"
)

// DefaultTimeout bounds the wait for a page's body to appear.
const DefaultTimeout = 10 * time.Second

// Options configures the browsers started by a Factory.
type Options struct {
	Timeout  time.Duration
	Headless bool
	Identity *proxy.Manager
	Logger   *zap.Logger
}

// Factory starts one headless Chrome per Open call.
type Factory struct {
	opts Options
}

// NewFactory creates a renderer factory backed by chromedp.
func NewFactory(opts Options) *Factory {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Factory{opts: opts}
}

// Open launches a browser and waits until it is up, so that a missing or
// broken Chrome fails the job instead of its first page.
func (f *Factory) Open(ctx context.Context) (repository.Renderer, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if ua := f.opts.Identity.GetUserAgent(); ua != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(ua))
	}
	if p := f.opts.Identity.GetProxy(); p != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(p))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	sugar := f.opts.Logger.Sugar()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		// CDP event decoding errors are noisy and harmless.
		chromedp.WithErrorf(sugar.Debugf),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", repository.ErrRendererUnavailable, err)
	}

	f.opts.Logger.Debug("browser started", zap.Bool("headless", f.opts.Headless))
	return &Renderer{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       f.opts.Timeout,
	}, nil
}

// Renderer drives one browser. Fetch calls are serialized.
type Renderer struct {
	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	timeout       time.Duration
	closeOnce     sync.Once
}

// Fetch opens a tab, navigates to url, waits for <body> and returns the
// rendered outer HTML together with the main document's HTTP status.
func (r *Renderer) Fetch(ctx context.Context, url string) (string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.browserCtx.Err(); err != nil {
		return "", 0, &entity.FetchError{URL: url, Kind: entity.FetchCrash, Err: fmt.Errorf("%w: %v", repository.ErrRendererCrashed, err)}
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	runCtx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()

	var markup string
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return "", 0, classify(url, err, ctx, runCtx, r.browserCtx)
	}
	return markup, int(status.Load()), nil
}

// classify maps a failed run onto the FetchError taxonomy by looking at
// which of the nested contexts ended.
func classify(url string, err error, caller, run, browser context.Context) *entity.FetchError {
	switch {
	case caller.Err() != nil:
		return &entity.FetchError{URL: url, Kind: entity.FetchCancelled, Err: caller.Err()}
	case browser.Err() != nil:
		return &entity.FetchError{URL: url, Kind: entity.FetchCrash, Err: fmt.Errorf("%w: %v", repository.ErrRendererCrashed, err)}
	case errors.Is(run.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &entity.FetchError{URL: url, Kind: entity.FetchTimeout, Err: fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)}
	default:
		return &entity.FetchError{URL: url, Kind: entity.FetchNavigation, Err: fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)}
	}
}

// Close shuts the browser down. It is safe to call more than once.
func (r *Renderer) Close() error {
	r.closeOnce.Do(func() {
		r.browserCancel()
		r.allocCancel()
	})
	return nil
}
