package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	notesnook "github.com/streetwriters/notesnook-sub014"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	adapter := flag.String("adapter", "fs", "Storage adapter: fs or sqlite")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "notesnook_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []notesnook.Option{notesnook.WithAdapter(*adapter), notesnook.WithLogger(logger)}
	ctx := context.Background()

	db, err := notesnook.Open(ctx, benchDir, opts...)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Generating %d notes in %s (%s)...\n", *count, benchDir, *adapter)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		title := fmt.Sprintf("Note %d", i)
		tags := []string{"benchmark", fmt.Sprintf("batch-%d", i%10)}
		_, err := db.Notes.Add(ctx, database.NoteInput{
			Title:   &title,
			Tags:    &tags,
			Content: &database.ContentData{Type: "tiptap", Data: fmt.Sprintf("<p>Benchmark note %d with some searchable text.</p>", i)},
		})
		if err != nil {
			panic(err)
		}
	}
	genDuration := time.Since(startGen)
	if err := notesnook.Close(db); err != nil {
		panic(err)
	}

	// Reopen to measure a fresh process: the fs adapter reads its index cache.
	run := func(label string) (time.Duration, int) {
		start := time.Now()
		db, err := notesnook.Open(ctx, benchDir, opts...)
		if err != nil {
			panic(err)
		}
		defer notesnook.Close(db)
		found, err := db.Lookup.Notes(ctx, "searchable benchmark")
		if err != nil {
			panic(err)
		}
		d := time.Since(start)
		fmt.Printf("%s: %v (Matches: %d)\n", label, d, len(found))
		return d, len(found)
	}
	cold, _ := run("Run 1 - Cold")
	warm, _ := run("Run 2 - Warm")

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes, %s):\n", *count, *adapter)
	fmt.Printf("  Write:       %v\n", genDuration)
	fmt.Printf("  Open+Search: %v cold, %v warm\n", cold, warm)
	fmt.Printf("--------------------------------------------------\n")
}
