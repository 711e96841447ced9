package model

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidFilter is returned when a filter names a type that cannot be
// requested from the service.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterTypes are the type filters offered to the user, in cycle order.
// The empty Type means "all".
var FilterTypes = []Type{"", TypeAnimal, TypePlant, TypeWeather, TypeMedical}

// Filter is the pair of user choices that selects which roster is fetched.
// The zero value is the default: all types, read and unread.
type Filter struct {
	// Type restricts the roster to one type; empty means all types.
	Type Type

	// UnreadOnly restricts the roster to unread notifications.
	UnreadOnly bool
}

// Validate reports whether the filter can be sent to the service.
func (f Filter) Validate() error {
	switch f.Type {
	case "", TypeAnimal, TypePlant, TypeWeather, TypeMedical:
		return nil
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidFilter, f.Type)
	}
}

// NextType returns the filter with its type advanced to the next entry of
// FilterTypes, wrapping back to "all".
func (f Filter) NextType() Filter {
	idx := 0
	for i, t := range FilterTypes {
		if t == f.Type {
			idx = i
			break
		}
	}
	f.Type = FilterTypes[(idx+1)%len(FilterTypes)]
	return f
}

// Label is a short human-readable summary of the filter.
func (f Filter) Label() string {
	label := "all"
	if f.Type != "" {
		label = string(f.Type)
	}
	if f.UnreadOnly {
		label += ", unread"
	}
	return label
}

// TargetKind identifies one of the four collections the service exposes.
type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetUnread
	TargetType
	TargetTypeUnread
)

// String returns the collection name.
func (k TargetKind) String() string {
	switch k {
	case TargetAll:
		return "all"
	case TargetUnread:
		return "unread"
	case TargetType:
		return "type"
	case TargetTypeUnread:
		return "type-unread"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// QueryTarget is the resolved request for a filter.
type QueryTarget struct {
	Kind TargetKind
	Type Type
}

// Path returns the request path of the target relative to the service root.
func (q QueryTarget) Path() string {
	switch q.Kind {
	case TargetUnread:
		return "/notifications/unread"
	case TargetType:
		return "/notifications/type/" + url.PathEscape(string(q.Type))
	case TargetTypeUnread:
		return "/notifications/type/" + url.PathEscape(string(q.Type)) + "/unread"
	default:
		return "/notifications"
	}
}

// ResolveTarget maps a filter to the most specific collection that honours
// every active constraint.
func ResolveTarget(f Filter) QueryTarget {
	switch {
	case f.Type != "" && f.UnreadOnly:
		return QueryTarget{Kind: TargetTypeUnread, Type: f.Type}
	case f.Type != "":
		return QueryTarget{Kind: TargetType, Type: f.Type}
	case f.UnreadOnly:
		return QueryTarget{Kind: TargetUnread}
	default:
		return QueryTarget{Kind: TargetAll}
	}
}
