package shab

import "encoding/xml"

// listResponse represents the gazette listing API response structure.
type listResponse struct {
	Content     []listItem  `json:"content"`
	PageRequest pageRequest `json:"pageRequest"`
	Total       int         `json:"total"`
}

type pageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

type listItem struct {
	Meta itemMeta `json:"meta"`
}

type itemMeta struct {
	ID                string   `json:"id"`
	PublicationNumber string   `json:"publicationNumber"`
	PublicationState  string   `json:"publicationState"`
	PublicationDate   string   `json:"publicationDate"`
	Rubric            string   `json:"rubric"`
	SubRubric         string   `json:"subRubric"`
	Language          string   `json:"language"`
	Cantons           []string `json:"cantons"`
}

// xmlPublication is the typed schema for the namespaced SB01 publication
// document. A nil Auction means the publication carries no auction element;
// that case is legal, not a parse failure.
type xmlPublication struct {
	XMLName xml.Name   `xml:"publication"`
	Content xmlContent `xml:"content"`
}

type xmlContent struct {
	Auction *xmlAuction `xml:"auction"`
	// AuctionObjects holds the raw (HTML-escaped) lot description blob.
	// Multi-lot splitting happens downstream, not here.
	AuctionObjects string `xml:"auctionObjects"`
}

type xmlAuction struct {
	Date     string `xml:"date"`
	Time     string `xml:"time"`
	Location string `xml:"location"`
}
