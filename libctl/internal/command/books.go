package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	loadBooksFailed = "Failed to load books"
	loadBookFailed  = "Failed to load book details"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (c *cli) booksCmd() *cobra.Command {
	var (
		f      model.BookFilter
		search string
	)
	cmd := &cobra.Command{
		Use:         "books",
		Short:       "Browse the catalogue",
		Args:        cobra.NoArgs,
		Annotations: access(guard.Authenticated),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.listBooks(cmd.Context(), f, search)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.Category, "category", "", "category name")
	flags.StringVar(&f.Author, "author", "", "author")
	flags.StringVar(&f.Genre, "genre", "", "genre")
	flags.StringVar(&f.Language, "language", "", "language")
	flags.StringVarP(&search, "search", "q", "", "free text over title, author, genre, language, isbn and category")
	return cmd
}

func (c *cli) listBooks(ctx context.Context, f model.BookFilter, search string) error {
	var (
		items []model.Book
		err   error
	)
	if f.IsEmpty() {
		items, err = c.Cache.Refresh(ctx, c.Books.List)
	} else {
		items, err = c.Books.Filter(ctx, f)
	}
	if err != nil {
		c.Log.Error("load books", zap.Error(err))
		return errors.New(errs.UserMessage(err, loadBooksFailed))
	}
	items = filter.Books(items, search)
	if len(items) == 0 {
		c.printf("No books found.\n")
		return nil
	}

	w := c.table()
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tSTATUS")
	for _, b := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.CategoryName(), b.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	counts := filter.CountBooks(items)
	c.printf("\n%d books, %d available, %d reserved\n", counts.Total, counts.Available, counts.Reserved)
	return nil
}

func (c *cli) bookCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "book <id>",
		Short:       "Show one book",
		Args:        cobra.ExactArgs(1),
		Annotations: access(guard.Authenticated),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := c.Cache.Fetch(cmd.Context(), id, c.Books.Get)
			if err != nil {
				c.Log.Error("load book", zap.Int64("id", id), zap.Error(err))
				return errors.New(errs.UserMessage(err, loadBookFailed))
			}
			c.printBook(b)

			identity := c.Store.Identity()
			switch {
			case identity.IsLibrarian():
			case b.Status == model.BookAvailable:
				c.printf("\nReserve it: libctl reserve %d --days 7|14|21\n", b.ID)
			default:
				c.printf("\n%s\n", errs.UserMessage(errs.ErrBookUnavailable, ""))
			}
			return nil
		},
	}
}

func (c *cli) printBook(b model.Book) {
	w := c.table()
	fmt.Fprintf(w, "Title\t%s\n", b.Title)
	fmt.Fprintf(w, "Author\t%s\n", b.Author)
	fmt.Fprintf(w, "Category\t%s\n", b.CategoryName())
	fmt.Fprintf(w, "Genre\t%s\n", b.Genre)
	fmt.Fprintf(w, "Language\t%s\n", b.Language)
	fmt.Fprintf(w, "ISBN\t%s\n", b.ISBN)
	fmt.Fprintf(w, "Status\t%s\n", b.Status)
	fmt.Fprintf(w, "Cover\t%s\n", model.CoverURL(c.ImageHost, b.ImageURL, model.PlaceholderCover))
	_ = w.Flush() //nolint:errcheck
}

func (c *cli) reserveCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:         "reserve <bookId>",
		Short:       "Reserve a book for 7, 14 or 21 days",
		Args:        cobra.ExactArgs(1),
		Annotations: access(guard.UserOnly),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !model.IsAllowedDuration(days) {
				return errors.New(errs.UserMessage(errs.ErrInvalidDuration, ""))
			}
			ctx := cmd.Context()
			b, err := c.Cache.Fetch(ctx, id, c.Books.Get)
			if err != nil {
				c.Log.Error("load book", zap.Int64("id", id), zap.Error(err))
				return errors.New(errs.UserMessage(err, loadBookFailed))
			}
			out, err := c.Lifecycle.Reserve(ctx, c.Store.Identity(), b, days)
			if err != nil {
				return errors.New(errs.UserMessage(err, ""))
			}
			c.printf("%s\n", out.Message)
			c.printf("%q is due on %s.\n\n", b.Title, out.Reservation.DueDate.Format("2006-01-02"))
			if out.Reservations == nil {
				return nil
			}
			return c.printReservations(out.Reservations, false)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "loan length in days: 7, 14 or 21")
	return cmd
}
