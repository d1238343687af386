package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/port"
)

func newQueueCommand() *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the render queue",
	}

	queueCmd.AddCommand(newQueueListCommand())
	queueCmd.AddCommand(newQueueShowCommand())
	queueCmd.AddCommand(newQueueRemoveCommand())

	return queueCmd
}

func withStore(fn func(store port.JobStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(store)
}

func newQueueListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store port.JobStore) error {
				jobs, err := store.List()
				if err != nil {
					return err
				}
				return printJobList(cmd.OutOrStdout(), jobs, domain.JobStatus(status))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show jobs with this status")
	return cmd
}

func printJobList(w io.Writer, jobs []*domain.Job, status domain.JobStatus) error {
	rows := make([][]string, 0, len(jobs))
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		if status != "" && j.Status != status {
			continue
		}
		rows = append(rows, []string{
			shortID(j.ID),
			string(j.Mode),
			string(j.Status),
			j.OutputName,
			j.CreatedAt.Local().Format(time.DateTime),
			formatCompleted(j.CompletedAt),
		})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Queue is empty")
		return err
	}
	_, err := fmt.Fprint(w, renderTable([]string{"ID", "Mode", "Status", "Output", "Created", "Completed"}, rows))
	return err
}

func newQueueShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a job as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store port.JobStore) error {
				job, err := findJob(store, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(job)
			})
		},
	}
}

func newQueueRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a job from the queue",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store port.JobStore) error {
				job, err := findJob(store, args[0])
				if err != nil {
					return err
				}
				if _, err := store.Remove(job.ID); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", job.ID)
				return err
			})
		},
	}
}

var errAmbiguousID = errors.New("job id prefix is ambiguous")

// findJob resolves a full id or a unique prefix of one.
func findJob(store port.JobStore, ref string) (*domain.Job, error) {
	if job, err := store.Get(ref); err == nil {
		return job, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	jobs, err := store.List()
	if err != nil {
		return nil, err
	}
	var match *domain.Job
	for _, j := range jobs {
		if len(ref) > 0 && len(j.ID) >= len(ref) && j.ID[:len(ref)] == ref {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", errAmbiguousID, ref)
			}
			match = j
		}
	}
	if match == nil {
		return nil, fmt.Errorf("job %s: %w", ref, domain.ErrNotFound)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatCompleted(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
