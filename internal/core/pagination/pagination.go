package pagination

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"bayut-parser-service/internal/core/domain"
)

var pageSegmentRe = regexp.MustCompile(`^page-(\d+)$`)

// NextURL возвращает URL следующей страницы выдачи.
// Если в пути нет сегмента page-N, перед последним сегментом вставляется page-2,
// иначе первый найденный page-N заменяется на page-(N+1). Query-строка не трогается.
func NextURL(currentURL string) (string, error) {
	// query отрезаем вручную: у сайта встречается цепочка вида ?a=1?b=2
	base, query, hasQuery := strings.Cut(currentURL, "?")

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("pagination: failed to parse url %q: %w", currentURL, err)
	}

	trailingSlash := strings.HasSuffix(u.Path, "/")
	segments := make([]string, 0)
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("pagination: url %q has no path segments", currentURL)
	}

	pageIdx := -1
	for i, s := range segments {
		if pageSegmentRe.MatchString(s) {
			pageIdx = i
			break
		}
	}

	if pageIdx >= 0 {
		n, err := strconv.Atoi(pageSegmentRe.FindStringSubmatch(segments[pageIdx])[1])
		if err != nil {
			return "", fmt.Errorf("pagination: bad page index in %q: %w", segments[pageIdx], err)
		}
		segments[pageIdx] = fmt.Sprintf("page-%d", n+1)
	} else {
		final := segments[len(segments)-1]
		segments = append(segments[:len(segments)-1], "page-2", final)
	}

	path := "/" + strings.Join(segments, "/")
	if trailingSlash {
		path += "/"
	}
	u.Path = path
	u.RawPath = ""

	next := u.String()
	if hasQuery {
		next += "?" + query
	}
	return next, nil
}

// Advance сдвигает курсор на следующую страницу
func Advance(cursor domain.PageCursor) (domain.PageCursor, error) {
	next, err := NextURL(cursor.URL)
	if err != nil {
		return cursor, err
	}
	return domain.PageCursor{URL: next, Page: cursor.Page + 1}, nil
}
