package command

import (
	"context"
	"fmt"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const loadReservationsFailed = "Failed to load reservations"

func (c *cli) reservationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "reservations",
		Short:       "List your reservations",
		Args:        cobra.NoArgs,
		Annotations: access(guard.UserOnly),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.listReservations(cmd.Context(), c.Store.Identity())
		},
	}
}

func (c *cli) listReservations(ctx context.Context, identity *model.Identity) error {
	items, err := c.Lifecycle.Collection(ctx, identity)
	if err != nil {
		c.Log.Error("load reservations", zap.Error(err))
		return errors.New(errs.UserMessage(err, loadReservationsFailed))
	}
	return c.printReservations(items, false)
}

func (c *cli) printReservations(items []model.Reservation, withUser bool) error {
	if len(items) == 0 {
		c.printf("No reservations found.\n")
		return nil
	}
	now := c.Now()
	w := c.table()
	if withUser {
		fmt.Fprintln(w, "ID\tUSER\tBOOK\tRESERVED\tDUE\tSTATUS")
	} else {
		fmt.Fprintln(w, "ID\tBOOK\tRESERVED\tDUE\tSTATUS")
	}
	for _, r := range items {
		status := string(r.Status)
		if r.IsOverdue(now) {
			status += " (OVERDUE)"
		}
		if withUser {
			fmt.Fprintf(w, "%d\t%s\t", r.ID, r.UserEmail())
		} else {
			fmt.Fprintf(w, "%d\t", r.ID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.BookTitle(), day(r.ReservationDate), day(r.DueDate), status)
	}
	return w.Flush()
}

func day(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("2006-01-02")
}

func (c *cli) returnCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:         "return <reservationId>",
		Short:       "Return a reserved book",
		Args:        cobra.ExactArgs(1),
		Annotations: access(guard.Authenticated),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			identity := c.Store.Identity()

			rsv, err := c.Lifecycle.Find(ctx, identity, id)
			if err != nil {
				c.Log.Warn("find reservation", zap.Int64("id", id), zap.Error(err))
				return errors.New(errs.UserMessage(err, loadReservationsFailed))
			}
			if !rsv.CanReturn() {
				return errors.New(errs.UserMessage(errs.ErrAlreadyReturned, ""))
			}

			question := "Are you sure you want to return this book?"
			if identity.IsLibrarian() {
				question = "Mark this book as returned?"
			}
			if !yes {
				c.printf("%s (%s)\n", rsv.BookTitle(), day(rsv.DueDate))
				yes = c.confirm(question)
			}
			if !yes {
				c.printf("Cancelled.\n")
				return nil
			}

			out, err := c.Lifecycle.Return(ctx, identity, rsv, true)
			if err != nil {
				return errors.New(errs.UserMessage(err, ""))
			}
			c.printf("%s\n\n", out.Message)
			if out.Reservations == nil {
				return nil
			}
			if identity.IsLibrarian() {
				return c.printReservations(filter.Reservations(out.Reservations, filter.ReservationQuery{}), true)
			}
			return c.printReservations(out.Reservations, false)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *cli) allReservationsCmd() *cobra.Command {
	var q filter.ReservationQuery
	cmd := &cobra.Command{
		Use:         "all-reservations",
		Short:       "List the reservations of every reader",
		Args:        cobra.NoArgs,
		Annotations: access(guard.LibrarianOnly),
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := c.Lifecycle.Collection(cmd.Context(), c.Store.Identity())
			if err != nil {
				c.Log.Error("load reservations", zap.Error(err))
				return errors.New(errs.UserMessage(err, loadReservationsFailed))
			}
			readers := filter.Reservations(items, filter.ReservationQuery{})
			counts := filter.CountReservations(readers, c.Now())
			c.printf("Total %d  Active %d  Returned %d  Overdue %d\n\n",
				counts.Total, counts.Active, counts.Returned, counts.Overdue)
			return c.printReservations(filter.Reservations(readers, q), true)
		},
	}
	cmd.Flags().StringVar(&q.Status, "status", filter.StatusAll, "ALL, ACTIVE or RETURNED")
	cmd.Flags().StringVarP(&q.Search, "search", "q", "", "user email or book title")
	return cmd
}
