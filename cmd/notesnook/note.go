package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

var (
	noteTitle     string
	noteBody      string
	noteTags      []string
	noteColor     string
	notePinned    bool
	noteTag       string
	noteMatch     string
	noteGroupBy   string
	notePermanent bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Long: `Create a note from --body, or from stdin when --body is "-".
The body is stored as tiptap HTML; plain lines become paragraphs.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		body := noteBody
		if body == "-" {
			data, err := readAll(os.Stdin)
			if err != nil {
				fatal("Failed to read stdin", err)
			}
			body = data
		}

		in := database.NoteInput{Content: &database.ContentData{Type: "tiptap", Data: toHTML(body)}}
		if noteTitle != "" {
			in.Title = &noteTitle
		}
		if len(noteTags) > 0 {
			in.Tags = &noteTags
		}
		if noteColor != "" {
			in.Color = &noteColor
		}
		if notePinned {
			in.Pinned = &notePinned
		}

		id, err := db.Notes.Add(ctx, in)
		if err != nil {
			fatal("Failed to add note", err)
		}
		if id == "" {
			fatal("Failed to add note", fmt.Errorf("note is empty"))
		}
		fmt.Println(id)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if noteGroupBy != "" {
			groups, err := db.Notes.Group(ctx, database.SortOptions{GroupBy: database.GroupBy(noteGroupBy)})
			if err != nil {
				fatal("Failed to group notes", err)
			}
			if jsonOut {
				printJSON(groups)
				return
			}
			for _, g := range groups {
				fmt.Printf("# %s\n", g.Title)
				for _, n := range filterNotes(g.Notes) {
					printNote(n)
				}
			}
			return
		}

		var (
			notes []core.Note
			err   error
		)
		if noteTag != "" {
			notes, err = db.Notes.Tagged(ctx, noteTag)
		} else {
			notes, err = db.Notes.All(ctx)
		}
		if err != nil {
			fatal("Failed to list notes", err)
		}
		notes = filterNotes(notes)

		if jsonOut {
			printJSON(notes)
			return
		}
		for _, n := range notes {
			printNote(n)
		}
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a note and its content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		note := db.Notes.Note(ctx, args[0])
		if note == nil {
			fatal("Failed to read note", core.ErrNotFound)
		}
		content, err := note.Content(ctx)
		if jsonOut {
			printJSON(map[string]any{"note": note.Data(), "content": content})
			return
		}

		data := note.Data()
		fmt.Printf("%s\n%s\n\n", data.Title, strings.Repeat("=", len(data.Title)))
		if len(data.Tags) > 0 {
			fmt.Printf("tags: %s\n\n", strings.Join(data.Tags, ", "))
		}
		if err == nil {
			fmt.Println(content.Data)
		}
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Move notes to the trash",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		del := db.Notes.Delete
		if notePermanent {
			del = db.Notes.Remove
		}
		if err := del(ctx, args...); err != nil {
			fatal("Failed to delete notes", err)
		}
		fmt.Printf("Deleted %d note(s)\n", len(args))
	},
}

// filterNotes applies --match, a doublestar pattern over titles.
func filterNotes(notes []core.Note) []core.Note {
	if noteMatch == "" {
		return notes
	}
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		ok, err := doublestar.Match(noteMatch, n.Title)
		if err != nil {
			fatal("Invalid --match pattern", err)
		}
		if ok {
			out = append(out, n)
		}
	}
	return out
}

func printNote(n core.Note) {
	pin := " "
	if n.Pinned {
		pin = "*"
	}
	edited := time.UnixMilli(n.DateEdited).Format("2006-01-02 15:04")
	fmt.Printf("%s %s  %s  %s\n", pin, n.ID, edited, n.Title)
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteShowCmd, noteDeleteCmd)

	noteAddCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title (default: first line of the body)")
	noteAddCmd.Flags().StringVarP(&noteBody, "body", "b", "", `Note body, or "-" to read stdin`)
	noteAddCmd.Flags().StringSliceVar(&noteTags, "tag", nil, "Tags to apply")
	noteAddCmd.Flags().StringVar(&noteColor, "color", "", "Color to apply")
	noteAddCmd.Flags().BoolVar(&notePinned, "pin", false, "Pin the note")
	noteAddCmd.MarkFlagRequired("body")

	noteListCmd.Flags().StringVar(&noteTag, "tag", "", "Only notes with this tag")
	noteListCmd.Flags().StringVar(&noteMatch, "match", "", "Only notes whose title matches this glob")
	noteListCmd.Flags().StringVar(&noteGroupBy, "group", "", "Group by: default, abc, week, month or year")

	noteDeleteCmd.Flags().BoolVar(&notePermanent, "permanent", false, "Remove without going through the trash")
}
