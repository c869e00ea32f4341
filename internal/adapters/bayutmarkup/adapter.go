package bayutmarkup

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"bayut-parser-service/internal/adapters/pageschema"
	"bayut-parser-service/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
)

// MarkupAdapter извлекает поля объявлений из HTML по схеме страницы
type MarkupAdapter struct {
	schema  *pageschema.PageSchema
	baseURL *url.URL
}

// NewMarkupAdapter - конструктор. baseURL нужен для относительных ссылок карточек.
func NewMarkupAdapter(schema *pageschema.PageSchema, baseURL string) (*MarkupAdapter, error) {
	if schema == nil {
		return nil, fmt.Errorf("MarkupAdapter: page schema cannot be nil")
	}
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("MarkupAdapter: base url %q must be absolute", baseURL)
	}
	return &MarkupAdapter{schema: schema, baseURL: base}, nil
}

// SplitFragments делит страницу выдачи на карточки
func (a *MarkupAdapter) SplitFragments(page []byte) ([]domain.ListingFragment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("MarkupAdapter: failed to parse search page: %w", err)
	}

	var fragments []domain.ListingFragment
	var firstErr error
	doc.Find(a.schema.Listing.Fragment).Each(func(i int, s *goquery.Selection) {
		html, err := goquery.OuterHtml(s)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("MarkupAdapter: failed to render fragment %d: %w", i, err)
			}
			return
		}
		fragments = append(fragments, domain.ListingFragment{Index: len(fragments), HTML: html})
	})

	return fragments, firstErr
}

// ParseFragment достает поля карточки. Отсутствующие поля остаются пустыми.
func (a *MarkupAdapter) ParseFragment(fragment domain.ListingFragment) (*domain.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment.HTML))
	if err != nil {
		return nil, fmt.Errorf("MarkupAdapter: failed to parse fragment %d: %w", fragment.Index, err)
	}

	sel := a.schema.Listing
	record := &domain.ListingRecord{}

	link := doc.Find(sel.Link).First()
	if href, ok := link.Attr(sel.LinkAttr); ok && strings.TrimSpace(href) != "" {
		resolved, err := a.resolve(href)
		if err != nil {
			return nil, fmt.Errorf("MarkupAdapter: bad link in fragment %d: %w", fragment.Index, err)
		}
		record.URL = resolved
		record.Title = strings.TrimSpace(link.AttrOr(sel.TitleAttr, ""))
	}

	if sel.Image != "" {
		if src, ok := doc.Find(sel.Image).First().Attr(sel.ImageAttr); ok {
			record.ImageURL = strings.TrimSpace(src)
		}
	}

	if sel.Location != "" {
		record.Location = cleanText(doc.Find(sel.Location).First().Text())
	}

	record.PriceText = cleanText(doc.Find(sel.Price).First().Text())

	return record, nil
}

// ExtractDescription достает описание со страницы объявления.
// Если блока описания нет, возвращается пустая строка.
func (a *MarkupAdapter) ExtractDescription(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("MarkupAdapter: failed to parse listing page: %w", err)
	}
	return cleanText(doc.Find(a.schema.Detail.Description).First().Text()), nil
}

func (a *MarkupAdapter) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return a.baseURL.ResolveReference(ref).String(), nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
