// internal/savestate/record.go
package savestate

// Destination is where the party stands when the state is restored.
type Destination struct {
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Triangle  uint16 `json:"triangle"`
	Direction *uint8 `json:"direction,omitempty"`
}

// FieldState is one captured snapshot. Region bytes are never mutated in
// place; Title and Category change by copy.
type FieldState struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix ms
	Title     string `json:"title,omitempty"`
	Category  string `json:"category,omitempty"`

	Regions       [][]byte `json:"regions"`
	RegionOffsets []Region `json:"regionOffsets,omitempty"`
	Savemap       []byte   `json:"savemap"`

	FieldID     uint16       `json:"fieldId"`
	FieldName   string       `json:"fieldName"`
	Destination *Destination `json:"destination,omitempty"`
}

func (s FieldState) Key() string { return s.ID }

func (s FieldState) Renamed(title string) FieldState {
	s.Title = title
	return s
}

// SnowboardState is a snapshot of the snowboard minigame.
type SnowboardState struct {
	ID            string `json:"id"`
	Timestamp     int64  `json:"timestamp"`
	Title         string `json:"title,omitempty"`
	GlobalObjData []byte `json:"globalObjData"`
	EntitiesData  []byte `json:"entitiesData"`
}

func (s SnowboardState) Key() string { return s.ID }

func (s SnowboardState) Renamed(title string) SnowboardState {
	s.Title = title
	return s
}

// Metadata is supplied by the caller at capture time.
type Metadata struct {
	Title       string
	Category    string
	FieldID     uint16
	FieldName   string
	Destination *Destination
}
