package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/oakmill/wheelwright/internal/history"
	"github.com/oakmill/wheelwright/internal/paths"
)

// Represents the 'wheelwright history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Maximum number of builds to list." default:"20"`
}

// Executes the history command.
//
// Reads the shared history database directly; the daemon and the CLI
// append to the same file, so no daemon needs to be running.
func (c *HistoryCmd) Run(ctx context.Context) error {
	store, err := history.Open(paths.HistoryDB())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tRESOURCE\tSTATUS\tDURATION\tARTIFACTS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Resource,
			rec.Status,
			rec.Duration.Truncate(time.Millisecond),
			len(rec.Artifacts),
		)
	}
	return w.Flush()
}
