package core

// Entity is implemented by every stored item through its embedded Base.
type Entity interface {
	Meta() Base
}

// Base carries the bookkeeping fields shared by all items.
type Base struct {
	ID           string `json:"id"`
	Type         Kind   `json:"type,omitempty"`
	DateCreated  int64  `json:"dateCreated,omitempty"`
	DateModified int64  `json:"dateModified,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
	LocalOnly    bool   `json:"localOnly,omitempty"`

	// Remote marks items that arrived through sync. It is never persisted.
	Remote bool `json:"-"`
}

// Meta implements Entity.
func (b Base) Meta() Base { return b }

// Tombstone reports whether the row is a sync deletion marker rather than an item.
func (b Base) Tombstone() bool { return b.Deleted && b.Type == "" }

// TrashInfo is set on notes and notebooks while they sit in the trash.
type TrashInfo struct {
	ItemType    Kind  `json:"itemType,omitempty"`
	DateDeleted int64 `json:"dateDeleted,omitempty"`
}

// InTrash reports whether the item has been moved to the trash.
func (t TrashInfo) InTrash() bool { return t.DateDeleted > 0 }

// NotebookRef is the cached notebook membership stored on a note.
type NotebookRef struct {
	ID     string   `json:"id"`
	Topics []string `json:"topics"`
}

type Note struct {
	Base
	TrashInfo
	ContentID  string        `json:"contentId,omitempty"`
	Title      string        `json:"title"`
	Headline   string        `json:"headline,omitempty"`
	Pinned     bool          `json:"pinned,omitempty"`
	Locked     bool          `json:"locked,omitempty"`
	Favorite   bool          `json:"favorite,omitempty"`
	Readonly   bool          `json:"readonly,omitempty"`
	Conflicted bool          `json:"conflicted,omitempty"`
	Color      string        `json:"color,omitempty"`
	Tags       []string      `json:"tags,omitempty"`
	Notebooks  []NotebookRef `json:"notebooks,omitempty"`
	DateEdited int64         `json:"dateEdited,omitempty"`

	// Migrated marks notes written by a storage migration. Never persisted.
	Migrated bool `json:"-"`
}

// Topic is a grouping of notes embedded in a notebook.
type Topic struct {
	ID           string   `json:"id"`
	Type         Kind     `json:"type"`
	NotebookID   string   `json:"notebookId"`
	Title        string   `json:"title"`
	Notes        []string `json:"notes"`
	DateCreated  int64    `json:"dateCreated,omitempty"`
	DateEdited   int64    `json:"dateEdited,omitempty"`
	DateModified int64    `json:"dateModified,omitempty"`
	TotalNotes   int      `json:"totalNotes"`
}

type Notebook struct {
	Base
	TrashInfo
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Pinned      bool    `json:"pinned,omitempty"`
	Favorite    bool    `json:"favorite,omitempty"`
	Topics      []Topic `json:"topics"`
	DateEdited  int64   `json:"dateEdited,omitempty"`
	TotalNotes  int     `json:"totalNotes"`
}

// Tag is also used for colors; Type tells them apart.
type Tag struct {
	Base
	Title   string   `json:"title"`
	Alias   string   `json:"alias,omitempty"`
	NoteIDs []string `json:"noteIds"`
}

type Relation struct {
	Base
	From ItemRef `json:"from"`
	To   ItemRef `json:"to"`
}

type ReminderMode string

const (
	ReminderRepeat    ReminderMode = "repeat"
	ReminderOnce      ReminderMode = "once"
	ReminderPermanent ReminderMode = "permanent"
)

type RecurringMode string

const (
	RecurringDay   RecurringMode = "day"
	RecurringWeek  RecurringMode = "week"
	RecurringMonth RecurringMode = "month"
)

type ReminderPriority string

const (
	PrioritySilent  ReminderPriority = "silent"
	PriorityVibrate ReminderPriority = "vibrate"
	PriorityUrgent  ReminderPriority = "urgent"
)

type Reminder struct {
	Base
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Date          int64            `json:"date"`
	Mode          ReminderMode     `json:"mode"`
	RecurringMode RecurringMode    `json:"recurringMode,omitempty"`
	SelectedDays  []int            `json:"selectedDays,omitempty"`
	Priority      ReminderPriority `json:"priority"`
	Disabled      bool             `json:"disabled,omitempty"`
	SnoozeUntil   int64            `json:"snoozeUntil,omitempty"`
}

// Encrypted is a ciphertext together with the parameters needed to open it.
type Encrypted struct {
	Alg    string `json:"alg"`
	Cipher string `json:"cipher"`
	IV     string `json:"iv"`
	Salt   string `json:"salt,omitempty"`
	Length int    `json:"length"`
}

type AttachmentMetadata struct {
	Hash     string `json:"hash"`
	HashType string `json:"hashType"`
	Filename string `json:"filename"`
	Type     string `json:"type,omitempty"`
}

type Attachment struct {
	Base
	NoteIDs      []string           `json:"noteIds"`
	IV           string             `json:"iv"`
	Salt         string             `json:"salt,omitempty"`
	Alg          string             `json:"alg"`
	Length       int64              `json:"length"`
	Key          *Encrypted         `json:"key,omitempty"`
	Metadata     AttachmentMetadata `json:"metadata"`
	DateUploaded int64              `json:"dateUploaded,omitempty"`
	DateDeleted  int64              `json:"dateDeleted,omitempty"`
}

// Content is the body of a note, stored apart from the note row.
type Content struct {
	Base
	NoteID       string `json:"noteId"`
	Format       string `json:"format"`
	Data         string `json:"data"`
	Locked       bool   `json:"locked,omitempty"`
	Conflicted   bool   `json:"conflicted,omitempty"`
	DateEdited   int64  `json:"dateEdited,omitempty"`
	DateResolved int64  `json:"dateResolved,omitempty"`
}

// Session is one snapshot in the history of a note.
type Session struct {
	Base
	SessionContentID string `json:"sessionContentId"`
	NoteID           string `json:"noteId"`
	DateEdited       int64  `json:"dateEdited"`
	Locked           bool   `json:"locked,omitempty"`
}

type SessionContent struct {
	Base
	Data        string `json:"data"`
	ContentType string `json:"contentType"`
	Compressed  bool   `json:"compressed,omitempty"`
	Locked      bool   `json:"locked,omitempty"`
}

// Settings holds the user preferences the collections depend on.
type Settings struct {
	Base
	Aliases    map[string]string `json:"aliases,omitempty"`
	Pins       []ItemRef         `json:"pins,omitempty"`
	DateEdited int64             `json:"dateEdited,omitempty"`
}
