// Package tasks defines the background job types and their payloads.
package tasks

import (
	"encoding/json"
	"errors"
)

const (
	// TypeResultArchive copies a finished debate into the document archive.
	TypeResultArchive = "debate:archive_result"
	// TypeStandingsAudit rebuilds the standings of rooms with live sessions.
	TypeStandingsAudit = "standings:audit"
)

// ResultArchivePayload names the room whose stored result should be archived.
type ResultArchivePayload struct {
	RoomID string `json:"roomId"`
}

// NewResultArchiveTask returns the serialized payload for TypeResultArchive.
func NewResultArchiveTask(roomID string) ([]byte, error) {
	if roomID == "" {
		return nil, errors.New("room id is required")
	}
	return json.Marshal(ResultArchivePayload{RoomID: roomID})
}

// ParseResultArchivePayload decodes a TypeResultArchive payload.
func ParseResultArchivePayload(b []byte) (ResultArchivePayload, error) {
	var p ResultArchivePayload
	if err := json.Unmarshal(b, &p); err != nil {
		return p, err
	}
	if p.RoomID == "" {
		return p, errors.New("payload has no room id")
	}
	return p, nil
}

// NewStandingsAuditTask returns the payload for the periodic audit, which
// carries no data.
func NewStandingsAuditTask() ([]byte, error) {
	return []byte("{}"), nil
}
