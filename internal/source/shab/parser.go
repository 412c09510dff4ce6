package shab

import (
	"encoding/xml"
	"strings"

	"gazette_fetcher/internal/domain"
)

// ParsePublicationXML parses one publication document into its auction
// content. A publication without an auction element yields an empty auction
// list. The whole lot-description blob becomes a single object fragment;
// splitting it into individual lots is a downstream concern.
func (c *Client) ParsePublicationXML(xmlContent string) (*domain.ParsedPublication, error) {
	var doc xmlPublication
	if err := xml.Unmarshal([]byte(xmlContent), &doc); err != nil {
		return nil, &ParseError{Message: "unmarshal publication xml", Err: err}
	}

	parsed := &domain.ParsedPublication{
		Language: DetectLanguage(xmlContent),
	}

	if doc.Content.Auction == nil {
		return parsed, nil
	}

	auction := domain.ParsedAuction{
		Date:     strings.TrimSpace(doc.Content.Auction.Date),
		Time:     strings.TrimSpace(doc.Content.Auction.Time),
		Location: strings.TrimSpace(doc.Content.Auction.Location),
		Objects: []domain.ParsedObject{
			{Text: doc.Content.AuctionObjects, Order: 1},
		},
	}
	parsed.Auctions = append(parsed.Auctions, auction)

	return parsed, nil
}

// Keyword tables for language sniffing. The listing metadata always carries
// a language; this heuristic is the fallback for when only raw XML is at
// hand.
var (
	germanMarkers = []string{
		"betreibungsamt",
		"konkursamt",
		"versteigerung",
		"zwangsverwertung",
		"grundstück",
	}
	frenchMarkers = []string{
		"office des poursuites",
		"vente aux enchères",
		"enchères",
		"vente forcée",
	}
	italianMarkers = []string{
		"ufficio esecuzione",
		"incanto",
		"asta pubblica",
		"realizzazione forzata",
	}
)

// DetectLanguage scans raw publication text for language-specific legal
// vocabulary. Defaults to German, the gazette's dominant language.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)

	for _, marker := range germanMarkers {
		if strings.Contains(lower, marker) {
			return "de"
		}
	}
	for _, marker := range frenchMarkers {
		if strings.Contains(lower, marker) {
			return "fr"
		}
	}
	for _, marker := range italianMarkers {
		if strings.Contains(lower, marker) {
			return "it"
		}
	}

	return "de"
}
