package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const pollInterval = time.Second

var (
	sessionID string
	vaultAddr string
	tokenFlag string
	amount    string
	shares    string
	flowName  string
	noWait    bool
)

var vaultsCmd = &cobra.Command{
	Use:   "vaults",
	Short: "List vaults known to the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var vaults []vaultView
		if err := call(cmd.Context(), http.MethodGet, "/vaults", nil, &vaults); err != nil {
			return err
		}
		if ok, err := render(os.Stdout, output, vaults); ok || err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ADDRESS\tNAME\tTVL\tAPR")
		for _, v := range vaults {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s%%\n", v.Address, v.Name, v.TVL, v.APR)
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show protocol stats",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var s statsView
		if err := call(cmd.Context(), http.MethodGet, "/vaults/stats", nil, &s); err != nil {
			return err
		}
		if ok, err := render(os.Stdout, output, s); ok || err != nil {
			return err
		}
		fmt.Printf("vaults: %d\ntotal tvl: %s\navg apr: %s%%\n", s.VaultCount, s.TotalTVL, s.AvgAPR)
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Open a new session and print its id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(s.ID)
		return nil
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Approve and deposit into a vault",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if amount == "" {
			return fmt.Errorf("--amount is required")
		}
		body := map[string]string{"vault": vaultAddr, "token": tokenFlag, "amount": amount}
		return startFlow(cmd.Context(), "deposit", "deposit", body)
	},
}

var redeemCmd = &cobra.Command{
	Use:   "redeem",
	Short: "Redeem vault shares, the full position when --shares is omitted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		body := map[string]string{"vault": vaultAddr, "shares": shares}
		return startFlow(cmd.Context(), "redeem", "withdraw", body)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a session flow",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sessionID == "" {
			return fmt.Errorf("--session is required")
		}
		var v flowView
		err := call(cmd.Context(), http.MethodGet, "/sessions/"+sessionID+"/"+flowName, nil, &v)
		if err != nil {
			return err
		}
		return printFlow(v)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Abandon a session flow and return it to idle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sessionID == "" {
			return fmt.Errorf("--session is required")
		}
		var v flowView
		err := call(cmd.Context(), http.MethodPost, "/sessions/"+sessionID+"/"+flowName+"/reset", nil, &v)
		if err != nil {
			return err
		}
		return printFlow(v)
	},
}

func init() {
	for _, c := range []*cobra.Command{depositCmd, redeemCmd, statusCmd, resetCmd} {
		c.Flags().StringVar(&sessionID, "session", "", "session id (a new session is opened when empty)")
	}
	for _, c := range []*cobra.Command{depositCmd, redeemCmd} {
		c.Flags().StringVar(&vaultAddr, "vault", "", "vault address (default: main vault)")
		c.Flags().BoolVar(&noWait, "no-wait", false, "return once the flow is started")
	}
	for _, c := range []*cobra.Command{statusCmd, resetCmd} {
		c.Flags().StringVar(&flowName, "flow", "deposit", "flow name: deposit or withdraw")
	}
	depositCmd.Flags().StringVar(&tokenFlag, "token", "", "token symbol or address (default: the vault asset)")
	depositCmd.Flags().StringVar(&amount, "amount", "", "amount in token units, e.g. 100.5")
	redeemCmd.Flags().StringVar(&shares, "shares", "", "shares in base units")
}

func newSession(ctx context.Context) (sessionView, error) {
	var s sessionView
	err := call(ctx, http.MethodPost, "/sessions", nil, &s)
	return s, err
}

func startFlow(ctx context.Context, action, flow string, body map[string]string) error {
	id := sessionID
	if id == "" {
		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		id = s.ID
		fmt.Println("session:", id)
	}

	var v flowView
	err := call(ctx, http.MethodPost, "/sessions/"+id+"/"+action, body, &v)
	if err != nil {
		return err
	}
	if noWait {
		return printFlow(v)
	}

	v, err = waitFlow(ctx, id, flow)
	if err != nil {
		return err
	}
	if err = printFlow(v); err != nil {
		return err
	}
	if v.Phase == "failed" {
		return fmt.Errorf("%s failed", action)
	}
	return nil
}

func waitFlow(ctx context.Context, id, flow string) (flowView, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastStep := ""
	for {
		var v flowView
		err := call(ctx, http.MethodGet, "/sessions/"+id+"/"+flow, nil, &v)
		if err != nil {
			return flowView{}, err
		}
		if v.terminal() {
			return v, nil
		}
		if v.Step != lastStep {
			fmt.Printf("waiting for %s...\n", v.Step)
			lastStep = v.Step
		}

		select {
		case <-ctx.Done():
			return flowView{}, fmt.Errorf("timed out waiting for %s flow: %w", flow, ctx.Err())
		case <-ticker.C:
		}
	}
}

func printFlow(v flowView) error {
	ok, err := render(os.Stdout, output, v)
	if ok || err != nil {
		return err
	}
	writeFlow(os.Stdout, v)
	return nil
}
