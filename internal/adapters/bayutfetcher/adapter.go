package bayutfetcher

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config - настройки сетевого доступа к сайту
type Config struct {
	BaseURL  string
	MinDelay time.Duration
	MaxDelay time.Duration
	Timeout  time.Duration
}

// BayutFetcherAdapter загружает страницы выдачи и объявлений
type BayutFetcherAdapter struct {
	// родительский коллектор, клоны делят с ним http-клиент и cookies
	collector *colly.Collector
	minDelay  time.Duration
	maxDelay  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewBayutFetcherAdapter - конструктор
func NewBayutFetcherAdapter(cfg Config) (*BayutFetcherAdapter, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Hostname() == "" {
		return nil, fmt.Errorf("BayutFetcherAdapter: invalid base url %q", cfg.BaseURL)
	}
	if cfg.MinDelay < 0 || cfg.MaxDelay < cfg.MinDelay {
		return nil, fmt.Errorf("BayutFetcherAdapter: invalid delay range [%s, %s]", cfg.MinDelay, cfg.MaxDelay)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(allowedDomains(base.Hostname())...),
		colly.AllowURLRevisit(),
	)

	// Параллелизм на уровне HTTP-запросов, паузы выдерживаем сами перед запросом
	err = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("BayutFetcherAdapter: failed to set limit rule: %w", err)
	}

	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	return &BayutFetcherAdapter{
		collector: c,
		minDelay:  cfg.MinDelay,
		maxDelay:  cfg.MaxDelay,
		sleep:     sleepContext,
	}, nil
}

// allowedDomains добавляет к хосту его вариант без "www." и наоборот
func allowedDomains(host string) []string {
	if len(host) > 4 && host[:4] == "www." {
		return []string{host, host[4:]}
	}
	return []string{host, "www." + host}
}

func (a *BayutFetcherAdapter) delay() time.Duration {
	span := a.maxDelay - a.minDelay
	if span <= 0 {
		return a.minDelay
	}
	return a.minDelay + rand.N(span+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
