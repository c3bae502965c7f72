package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/app"
	"github.com/user/site-crawler/internal/crawler"
	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/usecase"
	"github.com/user/site-crawler/pkg/config"
)

type crawlOptions struct {
	depth      int
	domains    string
	filters    string
	linksOut   string
	contentOut string
	workers    int
}

func crawlCommand() *cobra.Command {
	var opts crawlOptions

	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website in-process and write the links and content files",
		Long: `Crawl renders the seed URL in headless Chrome, follows in-scope links up to
--depth hops and writes two files: the discovered links and the extracted text
of every rendered page.

--domains restricts which hosts are followed (default: the seed's host).
--filters limits the extracted text to paragraphs (p), headings (h) and/or
lists (l), e.g. --filters p,h.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadDeps()
			if err != nil {
				return err
			}
			defer log.Sync()

			if !cmd.Flags().Changed("depth") {
				opts.depth = cfg.DefaultMaxDepth
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = cfg.CrawlWorkers
			}
			return runCrawl(cmd, cfg, log, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.depth, "depth", 3, "maximum number of link hops from the seed URL")
	cmd.Flags().StringVar(&opts.domains, "domains", "", "comma-separated allow-listed domains")
	cmd.Flags().StringVar(&opts.filters, "filters", "", "comma-separated tag categories: p, h, l")
	cmd.Flags().StringVar(&opts.linksOut, "links-out", "scraped_links.txt", "file to write the discovered links to")
	cmd.Flags().StringVar(&opts.contentOut, "content-out", "scraped_content.txt", "file to write the extracted text to")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "pages rendered at once; 1 keeps the depth-first visiting order")

	return cmd
}

func runCrawl(cmd *cobra.Command, cfg *config.Config, log *zap.Logger, seed string, opts crawlOptions) error {
	if opts.depth < 0 {
		return fmt.Errorf("--depth must not be negative")
	}

	job := entity.CrawlJob{
		SeedURL:        seed,
		MaxDepth:       opts.depth,
		AllowedDomains: config.SplitList(opts.domains),
		Filter:         entity.ParseTagFilter(opts.filters),
		CreatedAt:      time.Now(),
	}

	engine := crawler.NewEngine(app.NewRendererFactory(cfg, log),
		crawler.WithWorkers(opts.workers),
		crawler.WithLogger(log),
	)

	start := time.Now()
	res, err := engine.Traverse(cmd.Context(), "cli", job)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	links := res.Links()
	if err := os.WriteFile(opts.linksOut, []byte(usecase.FormatLinks(links)), 0o644); err != nil {
		return fmt.Errorf("write links file: %w", err)
	}

	pages := res.Pages()
	texts := crawler.ExtractAll(pages, job.Filter, log)
	if err := os.WriteFile(opts.contentOut, []byte(usecase.FormatContent(len(pages), texts)), 0o644); err != nil {
		return fmt.Errorf("write content file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Crawled %d pages (%d failed), found %d links in %s\nLinks: %s\nContent: %s\n",
		len(pages), len(res.Failures()), len(links), time.Since(start).Round(time.Millisecond),
		opts.linksOut, opts.contentOut)
	return nil
}
