package postgres_adapter

import (
	"encoding/json"
	"fmt"

	"bayut-parser-service/internal/core/domain"
)

// filtersRow и reportRow - JSONB-представление фильтров и отчета.
// Теги фиксируют формат хранения независимо от доменных структур.
type filtersRow struct {
	Emirate                  string `json:"emirate"`
	Area                     string `json:"area"`
	MinPrice                 int    `json:"min_price"`
	MaxPrice                 int    `json:"max_price"`
	Bedrooms                 string `json:"bedrooms"`
	Bathrooms                int    `json:"bathrooms"`
	RequireUtilitiesIncluded bool   `json:"require_utilities_included"`
	MaxPages                 int    `json:"max_pages"`
}

type reportRow struct {
	PagesFetched        int    `json:"pages_fetched"`
	FragmentsSeen       int    `json:"fragments_seen"`
	ParseFailures       int    `json:"parse_failures"`
	RejectedByPrice     int    `json:"rejected_by_price"`
	RejectedByUtilities int    `json:"rejected_by_utilities"`
	DetailFetchFailures int    `json:"detail_fetch_failures"`
	Aborted             bool   `json:"aborted"`
	AbortReason         string `json:"abort_reason,omitempty"`
	StopReason          string `json:"stop_reason"`
}

func encodeFilters(f domain.SearchFilters) ([]byte, error) {
	return json.Marshal(filtersRow(f))
}

func decodeFilters(data []byte) (domain.SearchFilters, error) {
	var row filtersRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domain.SearchFilters{}, fmt.Errorf("failed to decode filters: %w", err)
	}
	return domain.SearchFilters(row), nil
}

func encodeReport(r domain.SearchReport) ([]byte, error) {
	return json.Marshal(reportRow{
		PagesFetched:        r.PagesFetched,
		FragmentsSeen:       r.FragmentsSeen,
		ParseFailures:       r.ParseFailures,
		RejectedByPrice:     r.RejectedByPrice,
		RejectedByUtilities: r.RejectedByUtilities,
		DetailFetchFailures: r.DetailFetchFailures,
		Aborted:             r.Aborted,
		AbortReason:         r.AbortReason,
		StopReason:          string(r.StopReason),
	})
}

func decodeReport(data []byte) (domain.SearchReport, error) {
	var row reportRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domain.SearchReport{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return domain.SearchReport{
		PagesFetched:        row.PagesFetched,
		FragmentsSeen:       row.FragmentsSeen,
		ParseFailures:       row.ParseFailures,
		RejectedByPrice:     row.RejectedByPrice,
		RejectedByUtilities: row.RejectedByUtilities,
		DetailFetchFailures: row.DetailFetchFailures,
		Aborted:             row.Aborted,
		AbortReason:         row.AbortReason,
		StopReason:          domain.StopReason(row.StopReason),
	}, nil
}

var listingColumns = []string{
	"search_id", "position", "url", "title", "image_url", "location",
	"price", "price_text", "utilities_included", "utilities_match",
}

func listingRows(result *domain.SearchResult) [][]interface{} {
	rows := make([][]interface{}, 0, len(result.Listings))
	for i, l := range result.Listings {
		match := l.UtilitiesMatch
		if match == "" {
			match = domain.StrategyNone
		}
		rows = append(rows, []interface{}{
			result.ID, i, l.URL, l.Title, l.ImageURL, l.Location,
			l.Price, l.PriceText, l.UtilitiesIncluded, string(match),
		})
	}
	return rows
}
