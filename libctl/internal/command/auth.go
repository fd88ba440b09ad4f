package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/pkg/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupForm struct {
	Email           string     `json:"email" validate:"required,email"`
	Password        string     `json:"password" validate:"required,min=6"`
	ConfirmPassword string     `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            model.Role `json:"role" validate:"omitempty,oneof=USER LIBRARIAN"`
}

var fieldMessages = map[string]string{
	"email":           "Please enter a valid email address.",
	"password":        "Password must be at least 6 characters.",
	"confirmPassword": "Passwords do not match.",
	"role":            "Role must be USER or LIBRARIAN.",
}

// formError turns validator output into one line per field.
func formError(err error) error {
	fields := validate.FieldErrors(err)
	if fields == nil {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for field := range fields {
		msg, ok := fieldMessages[field]
		if !ok {
			msg = field + " is invalid."
		}
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "\n"))
}

func (c *cli) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Log in to the library",
		Args:        cobra.NoArgs,
		Annotations: access(guard.Public),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = c.prompt("Email"); err != nil {
					return err
				}
			}
			password, err := c.password("Password")
			if err != nil {
				return errors.Wrap(err, "read password")
			}
			form := loginForm{Email: strings.TrimSpace(email), Password: password}
			if err := c.validator.Validate(form); err != nil {
				if _, ok := validate.FieldErrors(err)["password"]; ok {
					return errors.New("Password is required.")
				}
				return formError(err)
			}
			identity, err := c.Store.Login(cmd.Context(), form.Email, form.Password)
			if err != nil {
				return err
			}
			c.printf("Logged in as %s (%s)\n", identity.Email, identity.Role)
			c.printf("Next: libctl %s\n", commandOf[guard.Landing(&identity)])
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

const signupSucceeded = "Account created successfully! Please log in."

func (c *cli) signupCmd() *cobra.Command {
	var (
		email string
		role  string
	)
	cmd := &cobra.Command{
		Use:         "signup",
		Short:       "Create an account",
		Args:        cobra.NoArgs,
		Annotations: access(guard.Public),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = c.prompt("Email"); err != nil {
					return err
				}
			}
			password, err := c.password("Password")
			if err != nil {
				return errors.Wrap(err, "read password")
			}
			confirm, err := c.password("Confirm password")
			if err != nil {
				return errors.Wrap(err, "read password")
			}
			form := signupForm{
				Email:           strings.TrimSpace(email),
				Password:        password,
				ConfirmPassword: confirm,
				Role:            model.Role(strings.ToUpper(role)),
			}
			if err := c.validator.Validate(form); err != nil {
				return formError(err)
			}
			if err := c.Store.Signup(cmd.Context(), form.Email, form.Password, form.Role); err != nil {
				return err
			}
			c.printf("%s\nNext: libctl login --email %s\n", signupSucceeded, form.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "USER or LIBRARIAN")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the stored identity",
		Args:        cobra.NoArgs,
		Annotations: access(guard.Public),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.Store.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("Logged out.\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the profile of the logged in account",
		Args:        cobra.NoArgs,
		Annotations: access(guard.Authenticated),
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity := c.Store.Identity()
			w := c.table()
			fmt.Fprintf(w, "Email\t%s\n", identity.Email)
			fmt.Fprintf(w, "Role\t%s\n", identity.Role)
			if identity.Resolved() {
				fmt.Fprintf(w, "User ID\t%d\n", identity.ID)
			} else {
				fmt.Fprintf(w, "User ID\t(not loaded, log in again)\n")
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !identity.IsLibrarian() {
				items, err := c.Lifecycle.Collection(cmd.Context(), identity)
				if err != nil {
					c.Log.Warn("load reservations", zap.Error(err))
				} else {
					counts := filter.CountReservations(items, c.Now())
					c.printf("\nReservations: %d total, %d active, %d overdue\n", counts.Total, counts.Active, counts.Overdue)
				}
			}
			c.printf("\n")
			c.printMenu(identity)
			return nil
		},
	}
}
