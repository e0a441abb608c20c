// Package cli implements targetctl, the terminal front end for the targets API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sebasr/target-manager/internal/client"
	"github.com/sebasr/target-manager/internal/listing"
	"github.com/sebasr/target-manager/internal/logging"
	"github.com/sebasr/target-manager/internal/mockbackend"
	"github.com/sebasr/target-manager/internal/ui"
	"github.com/sebasr/target-manager/internal/validation"
)

// Options injects dependencies into the command tree. Zero values use the
// terminal and a fresh mock backend when mocks are enabled.
type Options struct {
	Out      io.Writer
	Err      io.Writer
	Prompter Prompter
	Backend  *mockbackend.Backend
}

// app carries the state shared by every command of one invocation.
type app struct {
	opts     Options
	viper    *viper.Viper
	cfgFile  string
	settings settings
	log      *logrus.Logger
	store    client.Store
	sup      *ui.Supervisor
}

// NewRootCommand builds the targetctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Prompter == nil {
		opts.Prompter = huhPrompter{}
	}
	a := &app{opts: opts, viper: newViper()}

	root := &cobra.Command{
		Use:   "targetctl",
		Short: "Manage geolocated radio emitter targets",
		Long: `targetctl lists, creates, edits and deletes targets through the targets REST API.

Configuration is read from flags, TARGETS_* environment variables and
$HOME/.targetctl.yaml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.targetctl.yaml)")
	flags.String("api-url", client.DefaultBaseURL, "targets API base URL")
	flags.Bool("mock", false, "serve requests from an in-process mock backend")
	flags.StringP("output", "o", outputTable, "output format: table, json or yaml")
	flags.StringP("log-level", "l", "warn", "log level: debug, info, warn, error, fatal")
	flags.Duration("timeout", client.DefaultTimeout, "request timeout")

	_ = a.viper.BindPFlag(keyAPIURL, flags.Lookup("api-url"))
	_ = a.viper.BindPFlag(keyUseMocks, flags.Lookup("mock"))
	_ = a.viper.BindPFlag(keyOutput, flags.Lookup("output"))
	_ = a.viper.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.viper.BindPFlag(keyTimeout, flags.Lookup("timeout"))

	root.AddCommand(
		newListCommand(a),
		newGetCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newHealthCommand(a),
	)
	return root
}

func (a *app) setup() error {
	if err := readConfigFile(a.viper, a.cfgFile); err != nil {
		return err
	}
	s, err := loadSettings(a.viper)
	if err != nil {
		return err
	}
	a.settings = s

	log, err := logging.New(s.LogLevel, "text", a.opts.Err)
	if err != nil {
		return err
	}
	a.log = log
	a.sup = ui.NewSupervisor(log)

	storeOpts := client.Options{
		BaseURL:  s.APIURL,
		Timeout:  s.Timeout,
		RetryMax: s.RetryMax,
		Logger:   log,
	}
	if s.RetryMax == 0 {
		storeOpts.RetryMax = -1
	}

	if s.UseMocks {
		backend := a.opts.Backend
		if backend == nil {
			seedCount := s.MockSeedCount
			if seedCount == 0 {
				seedCount = -1
			}
			if backend, err = mockbackend.New(mockbackend.Options{SeedCount: seedCount}); err != nil {
				return err
			}
		}
		storeOpts.Transport = backend
		fmt.Fprintln(a.opts.Err, ui.Warning("Using mock data; changes are not persisted."))
	}

	a.store = client.New(storeOpts)
	log.WithFields(logrus.Fields{"api_url": s.APIURL, "mock": s.UseMocks}).Debug("client configured")
	return nil
}

// newPage creates and loads a list page.
func (a *app) newPage(ctx context.Context, variant validation.Variant) (*listing.Controller, error) {
	page := listing.New(a.store, listing.Options{Variant: variant})
	return page, page.Load(ctx)
}

// render prints view through the supervisor; on failure the fallback view is
// printed instead.
func (a *app) render(view func() (string, error)) error {
	err := a.sup.Run(func() error {
		out, err := view()
		if err != nil {
			return err
		}
		_, err = io.WriteString(a.opts.Out, out)
		return err
	})
	if err != nil {
		fmt.Fprint(a.opts.Err, a.sup.Fallback())
		a.sup.Reset()
	}
	return err
}

// Execute runs targetctl and returns the process exit code.
func Execute() int {
	return run(NewRootCommand(Options{}), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(stderr, "Error:", errorMessage(err))
		}
		return 1
	}
	return 0
}

// errReported marks failures whose message was already printed.
var errReported = errors.New("error already reported")

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return client.UserMessage(apiErr)
	}
	return err.Error()
}
