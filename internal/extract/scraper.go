// Package extract turns a company website or a free-text description into
// editable brand details.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	// PageTimeout bounds each page fetch.
	PageTimeout = 10 * time.Second
	// MaxSubpages is how many same-host pages are read after the landing page.
	MaxSubpages = 3

	userAgent = "AIStyleGuideBot/1.0 (+https://aistyleguide.com)"
)

// subpageHints pick links worth following, in priority order.
var subpageHints = []string{"about", "product", "service", "solution", "what-we-do", "company"}

// ErrPrivateAddress is returned when a page resolves to a loopback,
// private, link-local or otherwise non-public address.
var ErrPrivateAddress = errors.New("refusing to fetch a non-public address")

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Page is the text gathered from a site.
type Page struct {
	URL         string
	Title       string
	Description string
	Text        string
	Subpages    []string
}

// Scraper fetches a landing page and a few subpages with colly.
type Scraper struct {
	Timeout     time.Duration
	MaxSubpages int
	// AllowPrivate skips the public-address check on every dial.
	AllowPrivate bool
}

// NewScraper returns a scraper with the default limits.
func NewScraper() *Scraper {
	return &Scraper{Timeout: PageTimeout, MaxSubpages: MaxSubpages}
}

// NormalizeURL adds a scheme when missing and rejects anything that is
// not http or https.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	return u, nil
}

// Scrape reads the landing page at target, then up to MaxSubpages
// same-host pages whose links look like about/products/services pages.
// Subpage failures are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, target *url.URL) (*Page, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	if !s.AllowPrivate {
		c.WithTransport(publicOnlyTransport())
	}
	c.SetRequestTimeout(s.Timeout)

	var (
		texts       = map[string]*strings.Builder{}
		current     = target.String()
		page        = &Page{URL: target.String()}
		candidates  []string
		seen        = map[string]bool{}
		landing     = target
		onLanding   = true
		landingErr  error
		landingDone bool
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	// Redirects may move the landing page to another host; subpages are
	// matched against where it ended up.
	c.OnResponse(func(r *colly.Response) {
		if onLanding {
			landing = r.Request.URL
		}
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		sb, ok := texts[current]
		if !ok {
			sb = &strings.Builder{}
			texts[current] = sb
		}
		if onLanding {
			page.Title = strings.TrimSpace(e.ChildText("title"))
			page.Description = strings.TrimSpace(e.ChildAttr(`meta[name="description"]`, "content"))
		}
		e.ForEach("h1, h2, h3, p, li", func(_ int, el *colly.HTMLElement) {
			if t := strings.Join(strings.Fields(el.Text), " "); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		})
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if !onLanding {
			return
		}
		link, err := url.Parse(e.Request.AbsoluteURL(e.Attr("href")))
		if err != nil || link.Host != landing.Host {
			return
		}
		link.Fragment = ""
		link.RawQuery = ""
		href := link.String()
		if seen[href] || href == target.String() || href == landing.String() || !looksLikeSubpage(link.Path) {
			return
		}
		seen[href] = true
		candidates = append(candidates, href)
	})

	c.OnError(func(r *colly.Response, err error) {
		if onLanding {
			landingErr = err
			return
		}
		slog.Warn("subpage scrape failed", "url", r.Request.URL.String(), "error", err)
	})

	c.OnScraped(func(r *colly.Response) {
		if onLanding {
			landingDone = true
		}
	})

	if err := c.Visit(target.String()); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", target, err)
	}
	if landingErr != nil {
		return nil, fmt.Errorf("scrape %s: %w", target, landingErr)
	}
	if !landingDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("scrape %s: no content", target)
	}

	onLanding = false
	for _, href := range rankSubpages(candidates, s.MaxSubpages) {
		if ctx.Err() != nil {
			break
		}
		current = href
		if err := c.Visit(href); err != nil {
			slog.Warn("subpage visit skipped", "url", href, "error", err)
			continue
		}
		page.Subpages = append(page.Subpages, href)
	}

	var all strings.Builder
	if sb, ok := texts[target.String()]; ok {
		all.WriteString(sb.String())
	}
	for _, href := range page.Subpages {
		if sb, ok := texts[href]; ok && sb.Len() > 0 {
			all.WriteString("\n")
			all.WriteString(sb.String())
		}
	}
	page.Text = strings.TrimSpace(all.String())

	return page, nil
}

// publicOnlyTransport refuses connections to non-public addresses. The
// check runs on the resolved address of every dial.
func publicOnlyTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   PageTimeout,
		KeepAlive: 30 * time.Second,
		Control:   refuseNonPublic,
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = dialer.DialContext
	return t
}

func refuseNonPublic(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, ip)
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

func looksLikeSubpage(path string) bool {
	p := strings.ToLower(path)
	for _, h := range subpageHints {
		if strings.Contains(p, h) {
			return true
		}
	}
	return false
}

// rankSubpages orders candidates by hint priority, keeping discovery
// order within a hint, and returns at most max links.
func rankSubpages(candidates []string, max int) []string {
	var out []string
	used := map[string]bool{}
	for _, h := range subpageHints {
		for _, c := range candidates {
			if len(out) == max {
				return out
			}
			u, err := url.Parse(c)
			if err != nil || used[c] {
				continue
			}
			if strings.Contains(strings.ToLower(u.Path), h) {
				used[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
