package rest

import (
	"time"

	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// SearchRequestDTO - тело POST /api/v1/searches
type SearchRequestDTO struct {
	Location           string `json:"location"` // "Emirate, Area"
	MinPrice           int    `json:"min_price"`
	MaxPrice           int    `json:"max_price"`
	Rooms              string `json:"rooms"`
	Baths              int    `json:"baths"`
	CheckBillsIncluded bool   `json:"check_bills_included"`
	MaxPages           int    `json:"max_pages"`
}

type ClassifyRequestDTO struct {
	Text string `json:"text"`
}

type ClassifyResponseDTO struct {
	Matched  bool   `json:"matched"`
	Strategy string `json:"strategy"`
	Score    int    `json:"score"`
	Phrase   string `json:"phrase,omitempty"`
}

type ListingDTO struct {
	URL               string `json:"url"`
	Title             string `json:"title"`
	ImageURL          string `json:"image_url"`
	Location          string `json:"location"`
	Price             int    `json:"price"`
	PriceText         string `json:"price_text"`
	UtilitiesIncluded bool   `json:"utilities_included"`
	UtilitiesMatch    string `json:"utilities_match"`
}

type FiltersDTO struct {
	Emirate                  string `json:"emirate"`
	Area                     string `json:"area"`
	MinPrice                 int    `json:"min_price"`
	MaxPrice                 int    `json:"max_price"`
	Bedrooms                 string `json:"rooms"`
	Bathrooms                int    `json:"baths"`
	RequireUtilitiesIncluded bool   `json:"check_bills_included"`
	MaxPages                 int    `json:"max_pages"`
}

type ReportDTO struct {
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

type SearchResponseDTO struct {
	ID         uuid.UUID    `json:"id"`
	Filters    FiltersDTO   `json:"filters"`
	Listings   []ListingDTO `json:"listings"`
	Report     ReportDTO    `json:"report"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// ToSearchResponse переводит результат поиска в JSON-представление API
func ToSearchResponse(result *domain.SearchResult) SearchResponseDTO {
	resp := SearchResponseDTO{
		ID:         result.ID,
		Filters:    FiltersDTO(result.Filters),
		Listings:   make([]ListingDTO, 0, len(result.Listings)),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Report: ReportDTO{
			PagesFetched:        result.Report.PagesFetched,
			FragmentsSeen:       result.Report.FragmentsSeen,
			ParseFailures:       result.Report.ParseFailures,
			RejectedByPrice:     result.Report.RejectedByPrice,
			RejectedByUtilities: result.Report.RejectedByUtilities,
			DetailFetchFailures: result.Report.DetailFetchFailures,
			Aborted:             result.Report.Aborted,
			AbortReason:         result.Report.AbortReason,
			StopReason:          string(result.Report.StopReason),
		},
	}
	for _, l := range result.Listings {
		match := l.UtilitiesMatch
		if match == "" {
			match = domain.StrategyNone
		}
		resp.Listings = append(resp.Listings, ListingDTO{
			URL:               l.URL,
			Title:             l.Title,
			ImageURL:          l.ImageURL,
			Location:          l.Location,
			Price:             l.Price,
			PriceText:         l.PriceText,
			UtilitiesIncluded: l.UtilitiesIncluded,
			UtilitiesMatch:    string(match),
		})
	}
	return resp
}
