package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/spf13/cobra"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// credentials takes the username from the flag or a prompt, and the password
// from the terminal. The caller wipes the password.
func credentials(cmd *cobra.Command, a *App) (string, []byte, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		var err error
		username, err = getSimpleText(a.reader, "Enter username", cmd.OutOrStdout())
		if err != nil {
			return "", nil, err
		}
	}
	password, err := getPassword(cmd.OutOrStdout())
	if err != nil {
		return "", nil, err
	}
	return username, password, nil
}

func (r *root) newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the server and sign in",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			username, password, err := credentials(cmd, a)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			sess, err := a.auth.Register(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", sess.Username)
			return nil
		}),
	}
	cmd.Flags().StringP("username", "u", "", "account name")
	return cmd
}

func (r *root) newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; works offline for the last account used online",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			username, password, err := credentials(cmd, a)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			sess, online, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			mode := "online"
			if !online {
				mode = "offline"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.Username, mode)
			return nil
		}),
	}
	cmd.Flags().StringP("username", "u", "", "account name")
	return cmd
}

func (r *root) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session on this device; local records stay",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			counts, err := a.queue.Counts(cmd.Context(), sess.OwnerID)
			if err != nil {
				return err
			}
			if n := counts[queue.StatusPending] + counts[queue.StatusRejected]; n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d changes are not synced yet; they will sync after the next login.\n", n)
			}
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func (r *root) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in account, server reachability and queue size",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			sess, err := a.session(ctx)
			if err != nil {
				fmt.Fprintln(w, "Not signed in")
				return nil
			}
			server := "online"
			pctx, cancel := context.WithTimeout(ctx, a.config.RemoteTimeout)
			err = a.auth.Ping(pctx)
			cancel()
			if err != nil {
				server = "offline"
			}
			counts, err := a.queue.Counts(ctx, sess.OwnerID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "User:     %s\n", sess.Username)
			fmt.Fprintf(w, "Server:   %s (%s)\n", a.config.ServerEndpointAddr, server)
			fmt.Fprintf(w, "Pending:  %d\n", counts[queue.StatusPending])
			fmt.Fprintf(w, "Rejected: %d\n", counts[queue.StatusRejected])
			return nil
		}),
	}
}
