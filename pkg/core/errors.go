package core

import "errors"

// Common errors.
var (
	ErrNotFound = errors.New("item not found")
	ErrReadOnly = errors.New("repository is in read-only mode")

	ErrNotebookTitleRequired = errors.New("notebook must contain at least a title")
	ErrTagTitleRequired      = errors.New("tag title cannot be empty")
	ErrDuplicateTag          = errors.New("a tag with this id already exists")
	ErrTagNotFound           = errors.New("no tag found with this id")
	ErrInvalidContentType    = errors.New("invalid content type")
	ErrInvalidTarget         = errors.New("the destination notebook must contain a notebook id and a topic")
	ErrTopicNotFound         = errors.New("no such topic exists")
	ErrUnknownItemType       = errors.New("unknown item type")
	ErrPinLimit              = errors.New("too many pinned notebooks")
	ErrReminderInvalid       = errors.New("reminder must contain a title and a date")
	ErrInvalidAttachment     = errors.New("attachment is missing required fields")
	ErrEncryptionKey         = errors.New("failed to get user encryption key")
)
