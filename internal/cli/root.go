// Package cli implements the storefront command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/internal/lists"
	"github.com/mesh-intelligence/storefront/internal/logging"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// classify wraps a service error with the exit code it maps to: bad input
// and missing entities are user errors, anything else a system error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	var ve *admin.ValidationError
	if errors.As(err, &ve) {
		return userError(err)
	}
	for _, target := range []error{
		types.ErrNotFound, types.ErrInvalidData, types.ErrInvalidID, types.ErrDuplicateName,
		types.ErrInvalidSection, types.ErrInvalidKind, types.ErrInvalidPrice,
		catalog.ErrInvalidRange, lists.ErrItemNotFound, lists.ErrUnknownList,
		admin.ErrUnknownForm, admin.ErrImageRequired,
	} {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// ExitCode returns the exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// command carries the flags of one root command tree, so tests can build
// independent trees.
type command struct {
	flags rootFlags
}

// NewRootCmd creates the top-level "storefront" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	c := &command{}
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Content and catalog service for a small storefront",
		Long: "Storefront stores the editable site content, image registry, product catalog\n" +
			"and FAQs of a small shop, and serves them over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&c.flags.dataDir, "data-dir", "", "data directory (default: .storefront-data)")
	root.PersistentFlags().BoolVar(&c.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		c.newInitCmd(),
		c.newServeCmd(),
		c.newExportCmd(),
		c.newContentCmd(),
		c.newImageCmd(),
		c.newProductCmd(),
		c.newCategoryCmd(),
		c.newFAQCmd(),
		c.newListCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitCode(err))
	}
}

func (c *command) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.flags.configDir, c.flags.dataDir)
	if err != nil {
		return nil, userError(fmt.Errorf("load config: %w", err))
	}
	return cfg, nil
}

// openApp loads the configuration and attaches the store. Commands other
// than serve log warnings only.
func (c *command) openApp(cmd *cobra.Command, serving bool) (*app.App, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if !serving {
		level = "warn"
	}
	logger := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, sysError(err)
	}
	return a, nil
}

// withApp runs fn against an attached App and closes it afterwards.
func (c *command) withApp(cmd *cobra.Command, fn func(a *app.App, out *printer) error) error {
	a, err := c.openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return classify(fn(a, c.printer(cmd.OutOrStdout())))
}

func (c *command) printer(w io.Writer) *printer {
	return &printer{w: w, json: c.flags.jsonMode}
}
