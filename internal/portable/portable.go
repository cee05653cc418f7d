// internal/portable/portable.go
package portable

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tamzrod/ff7-replicator/internal/savestate"
)

// FileExtension is the conventional suffix for exported documents.
const FileExtension = ".ff7states"

// Document is the portable JSON form. Every binary payload is a base64
// string; everything else passes through unchanged.
type Document struct {
	FieldStates     []FieldState     `json:"fieldStates"`
	SnowboardStates []SnowboardState `json:"snowboardStates"`
}

type FieldState struct {
	ID            string                 `json:"id,omitempty"`
	Timestamp     int64                  `json:"timestamp"`
	Title         string                 `json:"title,omitempty"`
	Category      string                 `json:"category,omitempty"`
	Regions       []string               `json:"regions"`
	RegionOffsets []savestate.Region     `json:"regionOffsets,omitempty"`
	Savemap       *string                `json:"savemap"`
	FieldID       uint16                 `json:"fieldId"`
	FieldName     string                 `json:"fieldName"`
	Destination   *savestate.Destination `json:"destination,omitempty"`
}

type SnowboardState struct {
	ID            string  `json:"id,omitempty"`
	Timestamp     int64   `json:"timestamp"`
	Title         string  `json:"title,omitempty"`
	GlobalObjData *string `json:"globalObjData"`
	EntitiesData  *string `json:"entitiesData"`
}

var b64 = base64.StdEncoding

// encodeBlob keeps nil distinct from empty: nil becomes JSON null.
func encodeBlob(b []byte) *string {
	if b == nil {
		return nil
	}
	s := b64.EncodeToString(b)
	return &s
}

func decodeBlob(s *string) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return b64.DecodeString(*s)
}

// Export encodes both collections.
func Export(doc savestate.Document) Document {
	out := Document{
		FieldStates:     make([]FieldState, 0, len(doc.FieldStates)),
		SnowboardStates: make([]SnowboardState, 0, len(doc.SnowboardStates)),
	}
	for _, s := range doc.FieldStates {
		var regions []string
		if s.Regions != nil {
			regions = make([]string, len(s.Regions))
		}
		for i, r := range s.Regions {
			regions[i] = b64.EncodeToString(r)
		}
		out.FieldStates = append(out.FieldStates, FieldState{
			ID:            s.ID,
			Timestamp:     s.Timestamp,
			Title:         s.Title,
			Category:      s.Category,
			Regions:       regions,
			RegionOffsets: s.RegionOffsets,
			Savemap:       encodeBlob(s.Savemap),
			FieldID:       s.FieldID,
			FieldName:     s.FieldName,
			Destination:   s.Destination,
		})
	}
	for _, s := range doc.SnowboardStates {
		out.SnowboardStates = append(out.SnowboardStates, SnowboardState{
			ID:            s.ID,
			Timestamp:     s.Timestamp,
			Title:         s.Title,
			GlobalObjData: encodeBlob(s.GlobalObjData),
			EntitiesData:  encodeBlob(s.EntitiesData),
		})
	}
	return out
}

// Decoder turns a portable document back into records.
type Decoder struct {
	// NewID generates replacement ids. Defaults to uuid.NewString.
	NewID func() string
}

// Taken holds the ids already present in each collection.
type Taken struct {
	Fields     map[string]bool
	Snowboards map[string]bool
}

// Decode converts doc to records. Any record whose id is blank, already
// taken in its own collection, or repeated within that collection in doc
// gets a fresh id. taken is not modified. A malformed payload fails the
// whole decode.
func (d Decoder) Decode(doc Document, taken Taken) (savestate.Document, error) {
	newID := d.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	claimField := d.claimer(newID, taken.Fields)
	claimSnowboard := d.claimer(newID, taken.Snowboards)

	out := savestate.Document{
		FieldStates:     make([]savestate.FieldState, 0, len(doc.FieldStates)),
		SnowboardStates: make([]savestate.SnowboardState, 0, len(doc.SnowboardStates)),
	}
	for i, s := range doc.FieldStates {
		var regions [][]byte
		if s.Regions != nil {
			regions = make([][]byte, len(s.Regions))
		}
		for j, r := range s.Regions {
			b, err := b64.DecodeString(r)
			if err != nil {
				return savestate.Document{}, fmt.Errorf("portable: field state %d region %d: %w", i, j, err)
			}
			regions[j] = b
		}
		savemap, err := decodeBlob(s.Savemap)
		if err != nil {
			return savestate.Document{}, fmt.Errorf("portable: field state %d savemap: %w", i, err)
		}
		out.FieldStates = append(out.FieldStates, savestate.FieldState{
			ID:            claimField(s.ID),
			Timestamp:     s.Timestamp,
			Title:         s.Title,
			Category:      s.Category,
			Regions:       regions,
			RegionOffsets: s.RegionOffsets,
			Savemap:       savemap,
			FieldID:       s.FieldID,
			FieldName:     s.FieldName,
			Destination:   s.Destination,
		})
	}
	for i, s := range doc.SnowboardStates {
		global, err := decodeBlob(s.GlobalObjData)
		if err != nil {
			return savestate.Document{}, fmt.Errorf("portable: snowboard state %d globals: %w", i, err)
		}
		entities, err := decodeBlob(s.EntitiesData)
		if err != nil {
			return savestate.Document{}, fmt.Errorf("portable: snowboard state %d entities: %w", i, err)
		}
		out.SnowboardStates = append(out.SnowboardStates, savestate.SnowboardState{
			ID:            claimSnowboard(s.ID),
			Timestamp:     s.Timestamp,
			Title:         s.Title,
			GlobalObjData: global,
			EntitiesData:  entities,
		})
	}
	return out, nil
}

// claimer hands out ids unique within one collection.
func (Decoder) claimer(newID func() string, taken map[string]bool) func(string) string {
	seen := make(map[string]bool, len(taken))
	for k := range taken {
		seen[k] = true
	}
	return func(id string) string {
		for id == "" || seen[id] {
			id = newID()
		}
		seen[id] = true
		return id
	}
}

// Import decodes doc and appends every record to lib. Existing records are
// never overwritten. Returns the number of field and snowboard states added.
func Import(doc Document, lib *savestate.Library) (fields, snowboards int, err error) {
	taken := Taken{Fields: lib.Fields.Keys(), Snowboards: lib.Snowboards.Keys()}
	dec, err := Decoder{}.Decode(doc, taken)
	if err != nil {
		return 0, 0, err
	}
	if len(dec.FieldStates) > 0 {
		lib.Fields.Append(dec.FieldStates...)
	}
	if len(dec.SnowboardStates) > 0 {
		lib.Snowboards.Append(dec.SnowboardStates...)
	}
	return len(dec.FieldStates), len(dec.SnowboardStates), nil
}

// Write serializes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("portable: write: %w", err)
	}
	return nil
}

func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("portable: read: %w", err)
	}
	return doc, nil
}
