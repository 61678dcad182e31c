// Package news fetches recent headlines for a ticker from Google News RSS.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/resolver"
)

// GoogleNewsURL is the RSS search endpoint.
const GoogleNewsURL = "https://news.google.com/rss/search"

// DefaultLimit is how many headlines the dashboard shows.
const DefaultLimit = 5

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Client searches Google News for stock headlines.
type Client struct {
	BaseURL  string
	Language string // hl, e.g. "it"
	Country  string // gl, e.g. "IT"
	Limit    int
	HTTP     *http.Client
}

// NewClient returns a client with a 4 second timeout.
func NewClient(language, country string) *Client {
	if language == "" {
		language = "it"
	}
	if country == "" {
		country = strings.ToUpper(language)
	}
	return &Client{
		BaseURL:  GoogleNewsURL,
		Language: language,
		Country:  country,
		Limit:    DefaultLimit,
		HTTP:     &http.Client{Timeout: 4 * time.Second},
	}
}

// searchURL builds the query for the last seven days of stock news.
func (c *Client) searchURL(symbol string) string {
	q := resolver.Base(symbol) + " stock news when:7d"
	v := url.Values{}
	v.Set("q", q)
	v.Set("hl", c.Language)
	v.Set("gl", c.Country)
	v.Set("ceid", c.Country+":"+c.Language)
	return c.BaseURL + "?" + v.Encode()
}

// Fetch returns up to Limit headlines for symbol, newest feed order.
func (c *Client) Fetch(ctx context.Context, symbol string) ([]model.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(symbol), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news fetch: status %d", resp.StatusCode)
	}

	var rss rssResponse
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, fmt.Errorf("news decode: %w", err)
	}

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	items := make([]model.NewsItem, 0, limit)
	for _, it := range rss.Channel.Items {
		if len(items) == limit {
			break
		}
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		item := model.NewsItem{Title: title, Link: strings.TrimSpace(it.Link)}
		if t, err := parsePubDate(it.PubDate); err == nil {
			item.Published = t
		}
		items = append(items, item)
	}
	return items, nil
}

func parsePubDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		t, err = time.Parse(time.RFC1123, s)
	}
	return t, err
}
