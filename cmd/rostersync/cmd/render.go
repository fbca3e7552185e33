package cmd

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/transaction"
)

// render writes a transaction in the configured output format.
func render(w io.Writer, tx *transaction.Transaction) error {
	if cfg.Output == "yaml" {
		data, err := yaml.Marshal(tx)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return renderTable(w, tx)
}

func renderTable(w io.Writer, tx *transaction.Transaction) error {
	fmt.Fprintf(w, "transaction %s (%s, %s)\n", tx.ID, tx.Term, tx.ImportType)
	fmt.Fprintf(w, "  %s\n", summaryLine(tx.Preview))
	if tx.Applied {
		fmt.Fprintf(w, "  applied at %s\n", tx.AppliedAt.Format("2006-01-02 15:04:05"))
	}

	if tx.Collisions.Total > 0 {
		fmt.Fprintf(w, "\n%d duplicate rows folded:\n", tx.Collisions.Total)
		for _, c := range tx.Collisions.Examples {
			fmt.Fprintf(w, "  %s (%d dropped)\n", c.Key, c.Dropped)
		}
	}

	changes := tx.AllChanges()
	if len(changes) > 0 {
		fmt.Fprintf(w, "\nchanges:\n")
		for _, ch := range changes {
			renderChange(w, tx, ch)
		}
	}

	if len(tx.Issues) > 0 {
		fmt.Fprintf(w, "\nunresolved people:\n")
		for _, issue := range tx.Issues {
			status := "unresolved"
			if issue.Resolved() {
				status = string(issue.Resolution.Action)
			}
			fmt.Fprintf(w, "  %s  %s (%s, %d dependent changes)\n",
				issue.ID, issue.Proposed.FullName(), status, len(issue.ScheduleChangeIDs))
			for _, cand := range issue.Candidates {
				fmt.Fprintf(w, "      %.2f  %s  %s  (%s)\n",
					cand.Score, cand.Person.ID, cand.Person.FullName(), cand.Reason)
			}
		}
	}

	for _, p := range tx.Validation.Errors {
		fmt.Fprintf(w, "error: [%s] %s\n", p.Code, p.Message)
	}
	for _, p := range tx.Validation.Warnings {
		fmt.Fprintf(w, "warning: [%s] %s\n", p.Code, p.Message)
	}
	return nil
}

func renderChange(w io.Writer, tx *transaction.Transaction, ch *differ.Change) {
	gate := ""
	if tx.GatedBy(ch.ID) != nil {
		gate = "  [blocked by unresolved person]"
	}
	fmt.Fprintf(w, "  %s  %-6s %-9s %s%s\n", ch.ID, ch.Action, ch.Collection, ch.Label(), gate)
	for _, edit := range ch.Summary() {
		fmt.Fprintf(w, "      %s: %q -> %q\n",
			edit.Key, differ.FormatValue(edit.From), differ.FormatValue(edit.To))
	}
}
