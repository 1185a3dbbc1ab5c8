package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"
)

const userAgent = "refdocs-link-checker/1.0"

// CheckOptions tunes the checking pass.
type CheckOptions struct {
	// Timeout bounds each HTTP request. Defaults to 10s.
	Timeout time.Duration

	// Ignore patterns are matched against each URL. Invalid regular
	// expressions are treated as literal substrings.
	Ignore []string

	// Workers bounds concurrent requests. Defaults to 8.
	Workers int

	// Offline skips the network entirely; every URL reports as skipped.
	Offline bool
}

// Checker verifies harvested URLs over HTTP.
type Checker struct {
	client  *http.Client
	workers int
	ignore  []*regexp.Regexp
	offline bool
}

// NewChecker builds a Checker. Redirects are never followed; a 3xx is a
// classification, not a hop.
func NewChecker(opts CheckOptions) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}

	ignore := make([]*regexp.Regexp, 0, len(opts.Ignore))
	for _, pat := range opts.Ignore {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pat))
		}
		ignore = append(ignore, re)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Checker{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		workers: opts.Workers,
		ignore:  ignore,
		offline: opts.Offline,
	}
}

// Run checks every harvested URL once and returns the full report. A
// canceled context marks the remaining URLs skipped instead of broken.
func (c *Checker) Run(ctx context.Context, h *Harvest) *Report {
	urls := h.Sorted()
	report := &Report{
		CheckedAt: time.Now(),
		Total:     len(urls),
		Results:   make([]LinkResult, len(urls)),
		ByFile:    h.ByFile,
	}

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	for i, u := range urls {
		files := h.URLs[u]
		if c.ignored(u) {
			report.Results[i] = LinkResult{URL: u, Status: StatusSkipped, Error: "ignored", Files: files}
			continue
		}
		if c.offline {
			report.Results[i] = LinkResult{URL: u, Status: StatusSkipped, Error: "offline", Files: files}
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			report.Results[i] = LinkResult{URL: u, Status: StatusSkipped, Error: "canceled", Files: files}
			continue
		}
		wg.Add(1)
		go func(i int, u string, files []string) {
			defer wg.Done()
			defer func() { <-sem }()
			res := c.checkOne(ctx, u)
			res.Files = files
			report.Results[i] = res
		}(i, u, files)
	}
	wg.Wait()
	return report
}

func (c *Checker) ignored(u string) bool {
	for _, re := range c.ignore {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

// checkOne issues a HEAD request, retrying as GET when the server rejects
// HEAD with a 405.
func (c *Checker) checkOne(ctx context.Context, u string) LinkResult {
	resp, err := c.request(ctx, http.MethodHead, u)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		_ = resp.Body.Close()
		resp, err = c.request(ctx, http.MethodGet, u)
	}
	if err != nil {
		if ctx.Err() != nil {
			return LinkResult{URL: u, Status: StatusSkipped, Error: "canceled"}
		}
		return LinkResult{URL: u, Status: StatusBroken, Error: errText(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return LinkResult{URL: u, Status: StatusOK, Code: resp.StatusCode}
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return LinkResult{
			URL:      u,
			Status:   StatusRedirect,
			Code:     resp.StatusCode,
			Location: resp.Header.Get("Location"),
		}
	default:
		return LinkResult{
			URL:    u,
			Status: StatusBroken,
			Code:   resp.StatusCode,
			Error:  fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
}

func (c *Checker) request(ctx context.Context, method, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return c.client.Do(req)
}

// errText condenses transport errors into the short forms the report
// prints.
func errText(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
