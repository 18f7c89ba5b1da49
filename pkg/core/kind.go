package core

import "fmt"

// Kind enumerates the entity types an ItemRef can point at.
type Kind string

const (
	KindNote           Kind = "note"
	KindNotebook       Kind = "notebook"
	KindTopic          Kind = "topic"
	KindTag            Kind = "tag"
	KindColor          Kind = "color"
	KindReminder       Kind = "reminder"
	KindAttachment     Kind = "attachment"
	KindRelation       Kind = "relation"
	KindTrash          Kind = "trash"
	KindContent        Kind = "content"
	KindSession        Kind = "session"
	KindSessionContent Kind = "sessioncontent"
	KindSettings       Kind = "settings"
)

var kinds = map[Kind]bool{
	KindNote: true, KindNotebook: true, KindTopic: true, KindTag: true,
	KindColor: true, KindReminder: true, KindAttachment: true, KindRelation: true,
	KindTrash: true, KindContent: true, KindSession: true, KindSessionContent: true,
	KindSettings: true,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool { return kinds[k] }

// ParseKind converts a raw type string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownItemType, s)
	}
	return k, nil
}

// ItemRef is a typed foreign key.
type ItemRef struct {
	ID   string `json:"id"`
	Type Kind   `json:"type"`
}

func (r ItemRef) String() string { return string(r.Type) + ":" + r.ID }

// Ref builds an ItemRef.
func Ref(kind Kind, id string) ItemRef { return ItemRef{ID: id, Type: kind} }
