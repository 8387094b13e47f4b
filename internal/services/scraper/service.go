// Package scraper resolves a product URL into current price and metadata
// by rendering the page with chromedp and extracting fields with goquery.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/common"
	"github.com/ternarybob/pricewatch/internal/interfaces"
)

const maxTitleLength = 200

var priceRe = regexp.MustCompile(`[\d,]+\.?\d*`)
var rupeePriceRe = regexp.MustCompile(`₹\s*(\d+(?:,\d+)*(?:\.\d+)?)`)

// Service implements the Resolver interface with a rendered-page scrape.
// Product pages are JavaScript-heavy, so the page is loaded in headless
// Chrome and parsed after a render wait.
type Service struct {
	config *common.ScraperConfig
	logger arbor.ILogger
}

// NewService creates a new scraper service
func NewService(config *common.ScraperConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Resolve fetches the product page and extracts title, price, currency,
// image URL, and platform. Any missing title or price yields
// ErrResolutionFailed.
func (s *Service) Resolve(ctx context.Context, productURL string) (*interfaces.ResolvedProduct, error) {
	platform := detectPlatform(productURL)

	s.logger.Info().
		Str("url", productURL).
		Str("platform", platform).
		Msg("Resolving product")

	html, err := s.fetchRenderedHTML(ctx, productURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", productURL).Msg("Page fetch failed")
		return nil, fmt.Errorf("%w: %s", interfaces.ErrResolutionFailed, err.Error())
	}

	resolved, err := parseProductHTML(html, platform)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", productURL).Msg("Product extraction failed")
		return nil, err
	}

	s.logger.Info().
		Str("title", resolved.Title).
		Float64("price", resolved.Price).
		Str("platform", resolved.Platform).
		Msg("Product resolved")

	return resolved, nil
}

// fetchRenderedHTML loads the page in headless Chrome and returns the
// rendered document.
func (s *Service) fetchRenderedHTML(ctx context.Context, productURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.config.PageTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(s.config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(timeoutCtx, opts...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		// Indian storefronts localize prices by request language
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-IN,en;q=0.9"}),
		chromedp.Navigate(productURL),
		chromedp.Sleep(s.config.RenderWaitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}

	return html, nil
}

// parseProductHTML extracts product fields from a rendered document using
// per-platform selectors with generic fallbacks.
func parseProductHTML(html, platform string) (*interfaces.ResolvedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrResolutionFailed, err.Error())
	}

	var title string
	var price float64
	var image string

	switch platform {
	case "Amazon":
		title = firstText(doc, "span#productTitle", "h1")
		price = extractPrice(firstText(doc, "span.a-price-whole", "span#priceblock_ourprice"))
		image = firstAttr(doc, "src", "img#landingImage", "img.a-dynamic-image")
	case "Flipkart":
		title = firstText(doc, "span.B_NuCI", "h1")
		price = extractPrice(firstText(doc, "div._30jeq3", "div._16Jk6d"))
		image = firstAttr(doc, "src", "img._396cs4")
	default:
		title = firstText(doc, "h1")
		if m := rupeePriceRe.FindStringSubmatch(doc.Text()); len(m) > 1 {
			price = extractPrice(m[1])
		}
		image = firstAttr(doc, "src", "img")
	}

	// Meta-tag fallbacks for titles and images
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}
	if image == "" {
		image, _ = doc.Find(`meta[property="og:image"]`).Attr("content")
	}

	if title == "" || price <= 0 {
		return nil, fmt.Errorf("%w: no usable title or price found", interfaces.ErrResolutionFailed)
	}

	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	return &interfaces.ResolvedProduct{
		Title:    strings.TrimSpace(title),
		Price:    price,
		Currency: "INR",
		ImageURL: image,
		Platform: platform,
	}, nil
}

// detectPlatform classifies a product URL by host.
func detectPlatform(productURL string) string {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return "Generic"
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.Contains(host, "amazon"):
		return "Amazon"
	case strings.Contains(host, "flipkart"):
		return "Flipkart"
	case strings.Contains(host, "myntra"):
		return "Myntra"
	default:
		return "Generic"
	}
}

// extractPrice pulls the first numeric price out of a text fragment.
func extractPrice(text string) float64 {
	if text == "" {
		return 0
	}

	match := priceRe.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := strings.TrimSpace(node.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if value, ok := doc.Find(sel).First().Attr(attr); ok && value != "" {
			return value
		}
	}
	return ""
}
