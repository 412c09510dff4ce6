package domain

import (
	"errors"
	"time"
)

// ProcessingStatus tracks how far a publication got through ingestion.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
)

// ErrAlreadyExists is returned by stores when an insert hits the
// publications unique constraint. Concurrent runs race on the existence
// check, so the constraint is the backstop and callers map this to a skip.
var ErrAlreadyExists = errors.New("publication already exists")

// Publication is one gazette entry as persisted. The ID is assigned by the
// gazette, not by us.
type Publication struct {
	ID               string           `db:"id"`
	PublicationDate  time.Time        `db:"publication_date"`
	XMLContent       string           `db:"xml_content"`
	Canton           string           `db:"canton"`
	Rubric           string           `db:"rubric"`
	SubRubric        string           `db:"sub_rubric"`
	Language         string           `db:"language"`
	ProcessingStatus ProcessingStatus `db:"processing_status"`
	CreatedAt        time.Time        `db:"created_at"`
	ProcessedAt      *time.Time       `db:"processed_at"`
}

// Auction is one foreclosure sale extracted from a publication's XML.
// A publication owns its auctions; deleting it cascades.
type Auction struct {
	ID              int64     `db:"id"`
	PublicationID   string    `db:"publication_id"`
	AuctionDate     time.Time `db:"auction_date"`
	AuctionLocation string    `db:"auction_location"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// AuctionStatusPublished is the only lifecycle status ingestion assigns.
const AuctionStatusPublished = "published"

// AuctionObject is one lot description within an auction. The text is kept
// raw (HTML or plain) for downstream enrichment.
type AuctionObject struct {
	ID          int64     `db:"id"`
	AuctionID   int64     `db:"auction_id"`
	RawText     string    `db:"raw_text"`
	ObjectOrder int       `db:"object_order"`
	CreatedAt   time.Time `db:"created_at"`
}

// PublicationData is the fetched, not-yet-persisted shape returned by the
// source client: listing metadata plus the resolved raw XML.
type PublicationData struct {
	ID                string
	PublicationNumber string
	PublicationDate   time.Time
	XMLContent        string
	Canton            string
	Rubric            string
	SubRubric         string
	Language          string
}

// ParsedPublication is the transient result of parsing a publication's XML.
// An empty Auctions slice means the publication carries no auction element.
type ParsedPublication struct {
	Auctions []ParsedAuction
	Language string
}

// ParsedAuction holds the auction fields as they appear in the XML, still
// unparsed strings. Date and time interpretation happens in the processor.
type ParsedAuction struct {
	Date     string
	Time     string
	Location string
	Objects  []ParsedObject
}

// ParsedObject is one lot fragment with its 1-based position.
type ParsedObject struct {
	Text  string
	Order int
}
