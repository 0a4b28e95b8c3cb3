// Command audit lists the history entries persisted in the archive store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"payengine/internal/storage"
)

func main() {
	dbPath := flag.String("db", "", "path to the archive database")
	limit := flag.Int("limit", 0, "maximum rows to print (0 = all)")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -db archive.db [-limit n]\n", os.Args[0])
		os.Exit(2)
	}

	store, err := storage.NewArchiveStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open archive: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := store.ListEntries(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list entries: %v\n", err)
		os.Exit(1)
	}

	lastRun, err := store.GetMetadata(ctx, "last_run_unix")
	if err == nil && lastRun != "" {
		fmt.Printf("last run: %s\n", lastRun)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "tx\tclient\tamount\tstate\tarchived_at")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			e.Entry.Tx, e.Entry.Client, e.Entry.Amount, e.Entry.State,
			e.ArchivedAt.Format(time.RFC3339))
	}
	w.Flush()

	fmt.Printf("%d archived entries\n", len(entries))
}
