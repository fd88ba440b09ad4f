package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Astemirdum/library-frontend/internal/dashboard"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/Astemirdum/library-frontend/internal/view"
	"github.com/Astemirdum/library-frontend/pkg/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrRedirected is returned when the guard turned a command away. The
// redirect view has been printed already.
var ErrRedirected = errors.New("redirected")

const accessAnnotation = "access"

type BookService interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	Filter(ctx context.Context, f model.BookFilter) ([]model.Book, error)
}

type Deps struct {
	Store     *session.Store
	Books     BookService
	Cache     *view.BookCache
	Lifecycle *lifecycle.Controller
	Dashboard *dashboard.Loader
	ImageHost string
	Log       *zap.Logger

	In  io.Reader
	Out io.Writer
	// ReadPassword reads a secret without echo. Defaults to the terminal.
	ReadPassword func() (string, error)
	Now          func() time.Time
}

type cli struct {
	Deps
	validator *validate.CustomValidator
	lines     *lineReader
}

// NewRoot builds the libctl command tree over d.
func NewRoot(d Deps) *cobra.Command {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.ReadPassword == nil {
		d.ReadPassword = terminalPassword
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	c := &cli{Deps: d, validator: validate.NewCustomValidator(), lines: newLineReader(d.In)}

	root := &cobra.Command{
		Use:               "libctl",
		Short:             "Terminal client of the library",
		SilenceErrors:     true,
		SilenceUsage:      true,
		Annotations:       access(guard.Public),
		PersistentPreRunE: c.guard,
		RunE:              c.home,
	}
	root.SetIn(d.In)
	root.SetOut(d.Out)
	root.SetErr(d.Out)

	root.AddCommand(
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.booksCmd(),
		c.bookCmd(),
		c.reserveCmd(),
		c.reservationsCmd(),
		c.returnCmd(),
		c.dashboardCmd(),
		c.allReservationsCmd(),
	)
	return root
}

func access(a guard.Access) map[string]string {
	return map[string]string{accessAnnotation: a.String()}
}

// guard restores the session and re-runs the access decision before every
// command. Built-in commands without an annotation are public.
func (c *cli) guard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	identity, err := c.Store.Restore(ctx)
	if err != nil {
		return errors.Wrap(err, "restore session")
	}
	name, ok := cmd.Annotations[accessAnnotation]
	if !ok {
		return nil
	}
	decision := guard.Decide(identity, guard.ParseAccess(name))
	if decision.Allow {
		return nil
	}
	c.Log.Info("guard redirect",
		zap.String("command", cmd.Name()),
		zap.String("redirect", decision.Redirect))
	c.printf("Redirecting to %s\n\n", decision.Redirect)
	if err := c.redirect(ctx, identity, decision.Redirect); err != nil {
		return err
	}
	return ErrRedirected
}

// redirect runs the view a redirect path stands for.
func (c *cli) redirect(ctx context.Context, identity *model.Identity, path string) error {
	switch path {
	case guard.BooksPath:
		return c.listBooks(ctx, model.BookFilter{}, "")
	case guard.DashboardPath:
		return c.showDashboard(ctx)
	case guard.ReservationsPath:
		return c.listReservations(ctx, identity)
	default:
		c.printf("Please log in to continue: libctl login\n")
		return nil
	}
}

func (c *cli) home(cmd *cobra.Command, _ []string) error {
	c.printf("Library\nReserve books for 7, 14, or 21 days with just a few clicks.\n\n")
	c.printMenu(c.Store.Identity())
	return nil
}

var commandOf = map[string]string{
	guard.LoginPath:          "login",
	guard.SignupPath:         "signup",
	guard.BooksPath:          "books",
	guard.ReservationsPath:   "reservations",
	guard.ProfilePath:        "whoami",
	guard.DashboardPath:      "dashboard",
	guard.ViewReservations:   "all-reservations",
	guard.ManageBooksPath:    "books",
	guard.ManageCategoryPath: "",
	guard.ManageUsersPath:    "",
}

func (c *cli) printMenu(identity *model.Identity) {
	w := c.table()
	for _, l := range guard.Menu(identity) {
		name := commandOf[l.Path]
		if name == "" {
			continue
		}
		fmt.Fprintf(w, "  %s\tlibctl %s\n", l.Title, name)
	}
	_ = w.Flush() //nolint:errcheck
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
}

// confirm asks a yes/no question; anything but y/yes is a no.
func (c *cli) confirm(question string) bool {
	c.printf("%s [y/N]: ", question)
	answer, err := c.lines.next()
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (c *cli) prompt(label string) (string, error) {
	c.printf("%s: ", label)
	return c.lines.next()
}

func (c *cli) password(label string) (string, error) {
	c.printf("%s: ", label)
	pw, err := c.ReadPassword()
	c.printf("\n")
	return pw, err
}

func terminalPassword() (string, error) {
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
