package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	mylog "answergap/internal/log"
)

const maxPageChars = 8000

// Fetcher retrieves the visible text of a rendered page through a
// fetch-and-render proxy. Failures never propagate: the caller always gets
// text, possibly a placeholder.
type Fetcher struct {
	proxyURL  string
	client    *http.Client
	converter *md.Converter
	log       *mylog.Logger
}

// New builds a Fetcher. proxyURL is a prefix the escaped target URL is
// appended to (e.g. "https://proxy.example/render?url="); when empty the
// target is fetched directly.
func New(proxyURL string, log *mylog.Logger) *Fetcher {
	if log == nil {
		log = mylog.New()
	}
	return &Fetcher{
		proxyURL:  proxyURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		converter: md.NewConverter("", true, nil),
		log:       log,
	}
}

// Placeholder is the text substituted when a page cannot be retrieved.
func Placeholder(target string) string {
	return fmt.Sprintf("[SCRAPE FAILED] Could not retrieve content for %s", target)
}

// PageText returns the page's extracted text with script/style/nav chrome
// removed, capped at a fixed size. On any network or parse failure it logs a
// warning and returns Placeholder(target).
func (f *Fetcher) PageText(ctx context.Context, target string) string {
	text, err := f.fetch(ctx, target)
	if err != nil {
		f.log.Warn("scrape failed", "url", target, "err", err.Error())
		return Placeholder(target)
	}
	return text
}

func (f *Fetcher) fetch(ctx context.Context, target string) (string, error) {
	reqURL := target
	if f.proxyURL != "" {
		reqURL = f.proxyURL + url.QueryEscape(target)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("proxy status %s", resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	text, err := f.converter.ConvertString(body)
	if err != nil {
		return "", err
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", fmt.Errorf("no visible text")
	}
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text, nil
}
