package notesnook_test

import (
	"context"
	"fmt"
	"log"
	"os"

	notesnook "github.com/streetwriters/notesnook-sub014"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

// Example_basic opens a database in a temporary directory, writes a note
// and finds it again by searching its content.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "notesnook-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	db, err := notesnook.Open(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	defer notesnook.Close(db)

	title := "Shopping"
	_, err = db.Notes.Add(ctx, database.NoteInput{
		Title:   &title,
		Content: &database.ContentData{Type: "tiptap", Data: "<p>Buy oat milk</p>"},
	})
	if err != nil {
		log.Fatal(err)
	}

	notes, err := db.Lookup.Notes(ctx, "milk")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Found %d note: %s\n", len(notes), notes[0].Title)
	// Output:
	// Found 1 note: Shopping
}

// Example_trash moves a notebook to the trash and restores it.
func Example_trash() {
	ctx := context.Background()
	db, err := notesnook.Open(ctx, "", notesnook.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}

	title := "Travel"
	id, err := db.Notebooks.Add(ctx, database.NotebookInput{Title: &title})
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Notebooks.Delete(ctx, id); err != nil {
		log.Fatal(err)
	}

	items, _ := db.Trash.All(ctx)
	fmt.Println("in trash:", len(items))

	if err := db.Trash.Restore(ctx, id); err != nil {
		log.Fatal(err)
	}
	fmt.Println("restored:", db.Notebooks.Notebook(ctx, id).Title())
	// Output:
	// in trash: 1
	// restored: Travel
}
