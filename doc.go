// Package notesnook is the entry point for the Notesnook data layer.
//
// It wires the database collections (package database) to a storage adapter
// chosen at open time. The collections only talk to the core.Repository port,
// so the same database runs over plain files, SQLite or memory.
//
// Features:
//
//   - **Soft delete**: removals leave tombstones so deletions can sync.
//   - **Trash**: notes and notebooks are restorable for a retention period.
//   - **Relation graph**: typed links between items with dangling-edge cleanup.
//   - **History**: compressed note sessions with a bounded version count.
//   - **Encrypted attachments**: per-file keys wrapped with the user key.
//   - **Search**: multi-term lookup over titles and plain-text content.
//
// Usage:
//
//	db, err := notesnook.Open(ctx, "./notes",
//		notesnook.WithAdapter("sqlite"),
//		notesnook.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer notesnook.Close(db)
//
//	id, err := db.Notes.Add(ctx, database.NoteInput{Title: &title})
package notesnook
