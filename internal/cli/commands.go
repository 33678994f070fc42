package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"botdash/internal/accounttree"
	"botdash/internal/client"
	"botdash/internal/domain"
	"botdash/internal/service"
)

func addBotCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "bots",
		Short: "Bot management",
	}
	cmd.AddCommand(newBotsListCmd(app))
	rootCmd.AddCommand(cmd)
}

func newBotsListCmd(app *App) *cobra.Command {
	var status, tier, search string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible bots",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "status", status)
			setIf(q, "tier", tier)
			setIf(q, "q", search)
			setPage(q, page)

			bots := client.NewResource[domain.Bot](app.Client(), client.EndpointBots, client.EndpointBot)
			res, err := bots.List(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := NewOutput(cmd, app)
			if out.JSON() {
				return out.PrintJSON(res)
			}
			rows := make([][]string, 0, len(res.Items))
			for _, b := range res.Items {
				rows = append(rows, []string{
					b.ID.String(), b.Name, b.Tier, b.Status, b.RiskLevel,
					fmt.Sprintf("%.1f%%", b.Metrics.WinRate),
					fmt.Sprintf("%.2f", b.Metrics.TotalPnL),
				})
			}
			if err := out.Table([]string{"ID", "NAME", "TIER", "STATUS", "RISK", "WIN RATE", "PNL"}, rows); err != nil {
				return err
			}
			out.Printf("page %d/%d, %d bots", res.PageInfo.Page, res.PageInfo.TotalPages, res.PageInfo.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "comma separated statuses (active,inactive,maintenance,error,suspended)")
	cmd.Flags().StringVar(&tier, "tier", "", "tier (user, premium, prop)")
	cmd.Flags().StringVar(&search, "q", "", "search name and description")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func addAccountCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Trading account management",
	}
	cmd.AddCommand(newAccountsTreeCmd(app))
	rootCmd.AddCommand(cmd)
}

func newAccountsTreeCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show accounts grouped by user and CSP account",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := client.EndpointAccountTree
			if all {
				path = client.EndpointAdminAccountTree
			}
			tree, err := client.Get[accounttree.Result](cmd.Context(), app.Client(), path, nil)
			if err != nil {
				return err
			}

			out := NewOutput(cmd, app)
			if out.JSON() {
				return out.PrintJSON(tree)
			}
			for _, u := range tree.Users {
				out.Printf("%s", label(u.ID, u.Name))
				for _, csp := range u.CSPAccounts {
					out.Printf("  %s", label(csp.ID, csp.Name))
					for _, ta := range csp.TradingAccounts {
						out.Printf("    %s  %.2f  %s", label(ta.ID, ta.Name), ta.Balance, ta.ConnectionStatus)
					}
				}
			}
			out.Printf("%d users, %d CSP accounts, %d trading accounts",
				tree.Totals.Users, tree.Totals.CSPAccounts, tree.Totals.TradingAccounts)
			if n := len(tree.Skipped) + len(tree.Conflicts); n > 0 {
				out.Printf("%d rows skipped, %d conflicts", len(tree.Skipped), len(tree.Conflicts))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "all users (admin only)")
	return cmd
}

func addSignalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Signal log",
	}
	cmd.AddCommand(newSignalsListCmd(app))
	rootCmd.AddCommand(cmd)
}

// signalList mirrors the signals list payload, which adds a summary
type signalList struct {
	client.PaginatedResponse[domain.Signal]
	Summary service.SignalSummary `json:"summary"`
}

func newSignalsListCmd(app *App) *cobra.Command {
	var source, action, instrument string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "source", source)
			setIf(q, "action", action)
			setIf(q, "instrument", instrument)
			setPage(q, page)

			res, err := client.Get[signalList](cmd.Context(), app.Client(), client.EndpointSignals, q)
			if err != nil {
				return err
			}

			out := NewOutput(cmd, app)
			if out.JSON() {
				return out.PrintJSON(res)
			}
			rows := make([][]string, 0, len(res.Items))
			for _, s := range res.Items {
				processed, failed := s.Counts()
				rows = append(rows, []string{
					s.Timestamp.Format("2006-01-02 15:04:05"), s.Source, s.Action, s.Instrument,
					strconv.Itoa(processed), strconv.Itoa(failed),
				})
			}
			if err := out.Table([]string{"TIME", "SOURCE", "ACTION", "INSTRUMENT", "OK", "FAILED"}, rows); err != nil {
				return err
			}
			out.Printf("%d signals, %d processed, %d failed", res.Summary.Signals, res.Summary.Processed, res.Summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source (tradingview, coinstrat)")
	cmd.Flags().StringVar(&action, "action", "", "action (enter_long, exit_long, enter_short, exit_short)")
	cmd.Flags().StringVar(&instrument, "instrument", "", "instrument symbol")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func addSubscriptionCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Subscriptions",
	}
	cmd.AddCommand(newSubscriptionsMeCmd(app))
	rootCmd.AddCommand(cmd)
}

// subscriptionView mirrors GET /api/subscriptions/me
type subscriptionView struct {
	domain.Subscription
	DaysRemaining int `json:"days_remaining"`
}

func newSubscriptionsMeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := client.Get[subscriptionView](cmd.Context(), app.Client(), client.EndpointSubscriptionMe, nil)
			if err != nil {
				return err
			}

			out := NewOutput(cmd, app)
			if out.JSON() {
				return out.PrintJSON(sub)
			}
			out.Printf("Package:  %s", sub.PackageName)
			out.Printf("Status:   %s", sub.Status)
			out.Printf("Ends:     %s", sub.EndDate.Format("2006-01-02"))
			out.Printf("Days left: %d", sub.DaysRemaining)
			return nil
		},
	}
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setPage(q url.Values, page int) {
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
}

func label(id, name string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
