// Package cli implements botctl, the operator command line for the dashboard API.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"botdash/internal/client"
)

// Version information
const Version = "0.1.0"

const defaultAPIURL = "http://localhost:8080"

// App holds what every command needs
type App struct {
	APIURL  string
	Token   string
	JSON    bool
	Retries int
	Timeout time.Duration
}

// Client builds an API client from the global flags
func (a *App) Client() *client.Client {
	return client.New(a.APIURL,
		client.WithToken(a.Token),
		client.WithTimeout(a.Timeout),
		client.WithMaxRetries(a.Retries),
	)
}

// NewRootCmd creates the root command for the CLI
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:           "botctl",
		Short:         "Operate the trading bot dashboard",
		Long:          "botctl lists bots, accounts, signals and subscriptions through the dashboard REST API.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiURL := os.Getenv("BOTDASH_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.APIURL, "api", apiURL, "dashboard API base URL (env BOTDASH_API_URL)")
	flags.StringVar(&app.Token, "token", os.Getenv("BOTDASH_TOKEN"), "bearer token from the identity provider (env BOTDASH_TOKEN)")
	flags.BoolVar(&app.JSON, "json", false, "output in JSON format")
	flags.IntVar(&app.Retries, "retries", 3, "retries for failed read requests")
	flags.DurationVar(&app.Timeout, "timeout", 15*time.Second, "per-request timeout")

	addBotCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addSignalCommands(rootCmd, app)
	addSubscriptionCommands(rootCmd, app)

	return rootCmd
}

// Output writes either JSON or an aligned table
type Output struct {
	w    io.Writer
	json bool
}

// NewOutput binds output to the command's stdout
func NewOutput(cmd *cobra.Command, app *App) *Output {
	return &Output{w: cmd.OutOrStdout(), json: app.JSON}
}

// JSON reports whether raw JSON was requested
func (o *Output) JSON() bool {
	return o.json
}

// PrintJSON writes v as indented JSON
func (o *Output) PrintJSON(v interface{}) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes a header and rows separated by tabs
func (o *Output) Table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

// Printf writes a formatted line
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format+"\n", args...)
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
