package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/cinerag/internal/utils"
)

// ErrPosterNotFound 页面中没有可用的海报地址
var ErrPosterNotFound = errors.New("poster not found")

// PosterResolver 从电影详情页解析海报地址
type PosterResolver struct {
	client *utils.HTTPClient
}

// NewPosterResolver 默认只抓取公网地址；allowPrivate 为 true 时允许内网与回环地址
func NewPosterResolver(timeout time.Duration, allowPrivate bool) *PosterResolver {
	if allowPrivate {
		return &PosterResolver{client: utils.NewHTTPClient(timeout)}
	}
	return &PosterResolver{client: utils.NewPublicHTTPClient(timeout)}
}

// Resolve 依次尝试 og:image、twitter:image、第一张图片
func (p *PosterResolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", fmt.Errorf("invalid page url %q", pageURL)
	}

	resp, err := p.client.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch page failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page failed, status code: %d", resp.StatusCode)
	}

	body, err := utils.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("read page failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse page failed: %w", err)
	}

	candidates := []string{
		attr(doc, `meta[property="og:image"]`, "content"),
		attr(doc, `meta[name="twitter:image"]`, "content"),
		attr(doc, "img[src]", "src"),
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		ref, err := url.Parse(c)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", ErrPosterNotFound
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}
