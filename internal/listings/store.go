package listings

import (
	"github.com/cardboardcollective/mechabot/internal/jsonstore"
)

// Listing is one persisted sell/trade card.
type Listing struct {
	ID               string   `json:"id"`
	ChannelID        string   `json:"channelId"`
	MessageID        string   `json:"messageId"`
	SellerID         string   `json:"sellerId"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            string   `json:"price,omitempty"`
	OBO              bool     `json:"obo,omitempty"`
	TradeWants       string   `json:"tradeWants,omitempty"`
	ShippingIncluded bool     `json:"shippingIncluded"`
	ShippingMethod   string   `json:"shippingMethod"`
	Payment          string   `json:"payment"`
	Location         string   `json:"location,omitempty"`
	Photos           []string `json:"photos"`
	Status           string   `json:"status"`
	CreatedUTC       string   `json:"createdUtc"`
}

// Listing statuses that count against a seller's active limit.
const (
	StatusOpen    = "OPEN"
	StatusClaimed = "CLAIMED"
)

// Document is the listings.json envelope.
type Document struct {
	Listings []*Listing `json:"listings"`
}

const listingsFile = "listings.json"

type Store struct {
	files *jsonstore.Store
}

func NewStore(files *jsonstore.Store) *Store {
	return &Store{files: files}
}

func (s *Store) Load() Document {
	var doc Document
	_ = s.files.Load(listingsFile, &doc)
	return doc
}

func (s *Store) Save(doc Document) error {
	return s.files.Save(listingsFile, doc)
}

// ActiveCount counts the seller's open or claimed listings.
func ActiveCount(doc Document, sellerID string) int {
	n := 0
	for _, l := range doc.Listings {
		if l.SellerID == sellerID && (l.Status == StatusOpen || l.Status == StatusClaimed) {
			n++
		}
	}
	return n
}
