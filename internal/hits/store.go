package hits

import (
	"github.com/cardboardcollective/mechabot/internal/jsonstore"
)

// Hit is one posted card in the hits feed.
type Hit struct {
	ID         string `json:"id"`
	ChannelID  string `json:"channelId"`
	MessageID  string `json:"messageId"`
	UserID     string `json:"userId"`
	Title      string `json:"title"`
	ImageURL   string `json:"imageUrl"`
	CreatedUTC string `json:"createdUtc"`
}

// Document is the hits.json envelope.
type Document struct {
	Hits []*Hit `json:"hits"`
}

const hitsFile = "hits.json"

type Store struct {
	files *jsonstore.Store
}

func NewStore(files *jsonstore.Store) *Store {
	return &Store{files: files}
}

func (s *Store) Load() Document {
	var doc Document
	_ = s.files.Load(hitsFile, &doc)
	return doc
}

func (s *Store) Save(doc Document) error {
	return s.files.Save(hitsFile, doc)
}
