package showboard

import (
	"github.com/cardboardcollective/mechabot/internal/jsonstore"
)

// Record is one persisted show card. At most one open show exists per user
// per guild, enforced by lookup-then-create/update.
type Record struct {
	OwnerID        string `json:"ownerId"`
	ThreadID       string `json:"threadId"`
	FirstMessageID string `json:"firstMessageId"`
	WhatnotName    string `json:"whatnotName"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Description    string `json:"description"`
	Link           string `json:"link,omitempty"`
	UpdatedUTC     string `json:"updatedUtc"`
}

// Document maps guild ID to that guild's show cards.
type Document map[string][]*Record

const showsFile = "shows.json"

// Store persists show cards as one flat JSON document.
type Store struct {
	files *jsonstore.Store
}

func NewStore(files *jsonstore.Store) *Store {
	return &Store{files: files}
}

// Load returns the full document; a missing or unreadable file yields an
// empty one.
func (s *Store) Load() Document {
	doc := make(Document)
	_ = s.files.Load(showsFile, &doc)
	return doc
}

func (s *Store) Save(doc Document) error {
	return s.files.Save(showsFile, doc)
}

// FindUserShow returns the guild's show owned by ownerID, or nil.
func FindUserShow(doc Document, guildID, ownerID string) *Record {
	for _, rec := range doc[guildID] {
		if rec.OwnerID == ownerID {
			return rec
		}
	}
	return nil
}
