package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/ppiankov/zuordnung/internal/pipeline"
	"github.com/ppiankov/zuordnung/internal/util"
	"github.com/ppiankov/zuordnung/internal/worker"
	"github.com/spf13/cobra"
)

var (
	fetchOut     string
	fetchTimeout time.Duration
	userAgent    string
	maxBytes     int64
	insecureTLS  bool
	httpProxy    string
	httpsProxy   string
	ignoreRobots bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a cross-reference document",
	Long: `Fetch downloads a published cross-reference document for later
parsing. Fetches respect robots.txt and per-host rate limits, and
retry transient failures.

Example:
  zuordnung fetch https://example.org/zuordnungstabelle.html
  zuordnung fetch https://example.org/c5.csv -o c5.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOut, "output", "o", "", "output path (default: derived from URL)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 2*time.Minute, "fetch timeout")
	fetchCmd.Flags().StringVar(&userAgent, "ua", "Zuordnung/0.1 (+https://github.com/ppiankov/zuordnung)", "HTTP User-Agent")
	fetchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 20_000_000, "max response bytes to read")
	fetchCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	fetchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	fetchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	fetchCmd.Flags().BoolVar(&ignoreRobots, "ignore-robots", false, "skip the robots.txt check")
}

func runFetch(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = fetchTimeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy

	if !ignoreRobots {
		checker := util.NewRobotsChecker(util.NormalizeUserAgent(userAgent), 10*time.Second)
		allowed, crawlDelay, err := checker.CanFetch(ctx, rawURL)
		if err != nil {
			return fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return fmt.Errorf("robots.txt disallows fetching %s", rawURL)
		}
		if crawlDelay > 0 {
			if verbose {
				fmt.Fprintf(os.Stderr, "Honoring crawl delay: %v\n", crawlDelay)
			}
			select {
			case <-time.After(crawlDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	if err := limiter.Wait(ctx, rawURL); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	fetcher := pipeline.NewFetcher(
		cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	result, err := fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	out := fetchOut
	if out == "" {
		out = outputNameFromURL(result.FinalURL)
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("✓ Wrote %d bytes to %s (%s)\n", len(result.Data), out, result.ContentType)
	return nil
}

// outputNameFromURL derives a local filename from the final URL
func outputNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return "document.html"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." {
		return "document.html"
	}
	return name
}
