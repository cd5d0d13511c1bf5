package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResourceKind names one of the scheduling collections exposed over CRUD.
type ResourceKind string

const (
	KindResidents          ResourceKind = "residents"
	KindRotations          ResourceKind = "rotations"
	KindSchedules          ResourceKind = "schedules"
	KindPublishingSettings ResourceKind = "publishing-settings"
	KindShifts             ResourceKind = "shifts"
)

// ResourceKinds lists every mounted kind in registration order.
var ResourceKinds = []ResourceKind{
	KindResidents,
	KindRotations,
	KindSchedules,
	KindPublishingSettings,
	KindShifts,
}

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidID        = errors.New("invalid id")
	ErrUnknownResource  = errors.New("unknown resource kind")
	ErrEmptyDocument    = errors.New("document body is empty")
	ErrInvalidField     = errors.New("invalid field name")
)

// Collection returns the Mongo collection backing k.
func (k ResourceKind) Collection() string {
	switch k {
	case KindPublishingSettings:
		return "publishing_settings"
	default:
		return string(k)
	}
}

// Valid reports whether k is a mounted kind.
func (k ResourceKind) Valid() bool {
	for _, known := range ResourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// reservedFields are owned by the service and never taken from client input.
var reservedFields = []string{"_id", "id", "created_at", "updated_at"}

// Document is a schemaless scheduling record.
type Document map[string]any

// Resource is a stored document together with its service-managed fields.
type Resource struct {
	ID        string
	Kind      ResourceKind
	Fields    Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sanitize returns a copy of d without the reserved fields.
func (d Document) Sanitize() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range reservedFields {
		delete(out, k)
	}
	return out
}

// CheckFieldNames rejects keys that Mongo would treat as operators or paths:
// empty keys, keys starting with '$' and keys containing '.', at any depth.
func (d Document) CheckFieldNames() error {
	return checkKeys(map[string]any(d))
}

func checkKeys(v any) error {
	switch t := v.(type) {
	case Document:
		return checkKeys(map[string]any(t))
	case map[string]any:
		for k, child := range t {
			if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
				return fmt.Errorf("%w: %q", ErrInvalidField, k)
			}
			if err := checkKeys(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range t {
			if err := checkKeys(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// View flattens r into the JSON object returned to clients.
func (r *Resource) View() Document {
	out := make(Document, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	out["created_at"] = r.CreatedAt
	out["updated_at"] = r.UpdatedAt
	return out
}
