package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Type is the category of a notification. It is a closed set: any value
// the service sends that is not recognised decodes to TypeOther.
type Type string

const (
	TypeAnimal  Type = "animal"
	TypePlant   Type = "plant"
	TypeWeather Type = "weather"
	TypeMedical Type = "medical"
	TypeOther   Type = "other"
)

// Types lists every notification type in display order.
var Types = []Type{TypeAnimal, TypePlant, TypeWeather, TypeMedical, TypeOther}

// ParseType maps a wire value to a Type, falling back to TypeOther.
func ParseType(s string) Type {
	switch t := Type(s); t {
	case TypeAnimal, TypePlant, TypeWeather, TypeMedical:
		return t
	default:
		return TypeOther
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	*t = ParseType(string(text))
	return nil
}

// ID is the opaque identifier of a notification. The service may send it
// as a JSON string or a JSON number; both decode to the same text.
type ID string

// UnmarshalJSON accepts a quoted string or a bare number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding notification id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding notification id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Notification is a single item of the feed as returned by the
// notifications service.
type Notification struct {
	// ID is unique within a roster.
	ID ID `json:"id"`

	// Type selects the presentation (icon, colour, heading) in the view.
	Type Type `json:"type"`

	// Title is the one-line summary.
	Title string `json:"title"`

	// Message is the full body text.
	Message string `json:"message"`

	// CreatedAt is when the service created the notification.
	CreatedAt time.Time `json:"createdAt"`

	// Read is true once the user has acknowledged the notification.
	Read bool `json:"read"`
}
