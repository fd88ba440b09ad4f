package command

import (
	"context"
	"fmt"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const loadDashboardFailed = "Failed to load dashboard"

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "dashboard",
		Short:       "Library statistics",
		Args:        cobra.NoArgs,
		Annotations: access(guard.LibrarianOnly),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.showDashboard(cmd.Context())
		},
	}
}

func (c *cli) showDashboard(ctx context.Context) error {
	d, err := c.Dashboard.Load(ctx)
	if err != nil {
		c.Log.Error("load dashboard", zap.Error(err))
		return errors.New(errs.UserMessage(err, loadDashboardFailed))
	}
	w := c.table()
	fmt.Fprintf(w, "Total books\t%d\n", d.Stats.TotalBooks)
	fmt.Fprintf(w, "Available\t%d\n", d.Stats.AvailableBooks)
	fmt.Fprintf(w, "Reserved\t%d\n", d.Stats.ReservedBooks)
	fmt.Fprintf(w, "Categories\t%d\n", d.Stats.TotalCategories)
	fmt.Fprintf(w, "Users\t%d\n", d.Stats.TotalUsers)
	fmt.Fprintf(w, "Active reservations\t%d\n", d.Stats.ActiveReservations)
	if err := w.Flush(); err != nil {
		return err
	}
	c.printf("\nQuick actions:\n")
	w = c.table()
	for _, l := range d.QuickActions {
		if name := commandOf[l.Path]; name != "" {
			fmt.Fprintf(w, "  %s\tlibctl %s\n", l.Title, name)
		}
	}
	return w.Flush()
}
