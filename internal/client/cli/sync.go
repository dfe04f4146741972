package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/spf13/cobra"
)

func (r *root) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes to the server once",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := a.queue.Process(cmd.Context(), sess.OwnerID)
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d, failed %d, rejected %d, skipped %d\n",
				rep.Synced, rep.Failed, rep.Rejected, rep.Skipped)
			return err
		}),
	}
}

func (r *root) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [type]...",
		Short: "Pull records from the server; all types without arguments",
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			wanted := map[models.EntityType]bool{}
			for _, arg := range args {
				t, err := parseType(arg)
				if err != nil {
					return err
				}
				wanted[t] = true
			}

			var errs []error
			for _, repo := range a.refreshables() {
				if len(wanted) > 0 && !wanted[repo.Type()] {
					continue
				}
				if err := repo.Refresh(cmd.Context(), sess, entities.Filter{}).Wait(); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", repo.Type(), err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: up to date\n", repo.Type())
			}
			return errors.Join(errs...)
		}),
	}
}

func (r *root) newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and resolve changes waiting for the server",
	}
	cmd.AddCommand(r.newQueueListCmd(), r.newQueueRetryCmd(), r.newQueueDiscardCmd())
	return cmd
}

func (r *root) newQueueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List pending and rejected changes",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			pending, err := a.queue.Pending(cmd.Context(), sess.OwnerID)
			if err != nil {
				return err
			}
			rejected, err := a.queue.Rejected(cmd.Context(), sess.OwnerID)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TYPE\tID\tKIND\tSTATUS\tATTEMPTS\tQUEUED\tERROR\t")
			for _, e := range append(pending, rejected...) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
					e.EntityType, e.EntityID, e.Kind, e.Status, e.Attempts, e.EnqueuedAt.Local().Format(time.DateTime), e.LastError)
			}
			return tw.Flush()
		}),
	}
}

func (r *root) newQueueRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <type> <id>",
		Short: "Queue a rejected change again",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			t, err := parseType(args[0])
			if err != nil {
				return err
			}
			if err := a.queue.Retry(cmd.Context(), t, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s queued again\n", t, args[1])
			return nil
		}),
	}
}

func (r *root) newQueueDiscardCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "discard <type> <id>",
		Short: "Give up a queued change and restore the server's version",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			t, err := parseType(args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := Confirm(a.reader, fmt.Sprintf("Discard the local change to %s %s?", t, args[1]), cmd.OutOrStdout())
				if err != nil || !ok {
					return err
				}
			}
			if err := a.queue.Discard(cmd.Context(), t, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s discarded\n", t, args[1])
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (r *root) newWatchCmd() *cobra.Command {
	var showDiary bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the foreground until interrupted",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching as %s, press Ctrl+C to stop\n", sess.Username)

			done := make(chan error, 1)
			go func() { done <- a.scheduler.Run(ctx) }()

			if showDiary {
				sub, err := a.diary.Subscribe(ctx, sess, entities.Filter{From: a.today(), To: a.today()})
				if err != nil {
					stop()
					<-done
					return err
				}
				for snap := range sub.C {
					list, err := a.diary.Decode(snap)
					if err != nil {
						a.logger.Warn(ctx, "cannot show diary", "error", err.Error())
						continue
					}
					printDiary(cmd, list)
				}
				if err := sub.Err(); err != nil {
					stop()
					<-done
					return err
				}
			}
			return <-done
		}),
	}
	cmd.Flags().BoolVar(&showDiary, "diary", false, "print today's diary whenever it changes")
	return cmd
}

func (r *root) newCleanupCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove deleted records the server has confirmed",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			if olderThan < 0 {
				return fmt.Errorf("invalid --older-than %s", olderThan)
			}
			cutoff := a.now().Add(-olderThan)
			var total int64
			for _, t := range models.Types {
				n, err := a.store.Records(t).PurgeDeletedBefore(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d deleted records\n", total)
			return nil
		}),
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the deletions to remove")
	return cmd
}
