package cli

import (
	"github.com/dmitrijs2005/farmkeeper/internal/buildinfo"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree bound to a. Global flags are
// declared here for help output and parsing; their values are read by the
// config package before the tree runs.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "farmkeeper",
		Short:         "Command-line client for the farm management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.Start(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to JSON config file")
	pf.StringP("db", "d", a.config.DatabasePath, "path to the local database")
	pf.DurationP("timeout", "t", a.config.RequestTimeout, "per-request network timeout")
	pf.StringP("log-level", "l", a.config.LogLevel, "log level: debug, info, warn, error")

	root.AddGroup(
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "account", Title: "Account:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	root.AddCommand(
		newEndpointCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoAmICommand(a),
		newStatusCommand(a),
		newRegisterCommand(a),
		newPasswordCommand(a),
		newProfileCommand(a),
		newStatsCommand(a),
		newResetCommand(a),
		newShellCommand(a),
		newVersionCommand(),
	)
	root.SetHelpCommandGroupID("system")
	root.SetCompletionCommandGroupID("system")
	return root
}

func newEndpointCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "endpoint",
		Short:   "Show or change the server address",
		GroupID: "system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ShowEndpoint(cmd.Context())
		},
	}

	var strict bool
	set := &cobra.Command{
		Use:   "set <ip|url>",
		Short: "Set the server address (IP, host or http(s) URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.SetEndpoint(cmd.Context(), args[0], strict)
		},
	}
	set.Flags().BoolVar(&strict, "strict-ip", false, "accept only dotted IPv4 addresses")

	cmd.AddCommand(
		set,
		&cobra.Command{
			Use:   "show",
			Short: "Print the current server address",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ShowEndpoint(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the server address",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ClearEndpoint(cmd.Context())
			},
		},
	)
	return cmd
}

func newLoginCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "login [username|email]",
		Short:   "Log in; the password is prompted",
		GroupID: "session",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			return a.Login(cmd.Context(), identifier)
		},
	}
}

func newLogoutCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Log out and forget the stored session",
		GroupID: "session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Logout(cmd.Context())
		},
	}
}

func newWhoAmICommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Fetch and print the current user",
		GroupID: "session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.WhoAmI(cmd.Context())
		},
	}
}

func newStatusCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Print session state and endpoint",
		GroupID: "session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Status(cmd.Context())
		},
	}
}

func newRegisterCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "register",
		Short:   "Create an account",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Register(cmd.Context())
		},
	}
}

func newPasswordCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "password",
		Short:   "Reset a forgotten password",
		GroupID: "account",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "forgot <email>",
			Short: "Request a reset code by email",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ForgotPassword(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "verify <otp>",
			Short: "Verify the code received by email",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.VerifyReset(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "confirm",
			Short: "Set the new password",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ConfirmReset(cmd.Context())
			},
		},
	)
	return cmd
}

func newProfileCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Show or edit the farm profile",
		GroupID: "account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ShowProfile(cmd.Context())
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.UpdateProfile(cmd.Context(),
				changed(cmd, "bio"), changed(cmd, "location"), changed(cmd, "address"))
		},
	}
	update.Flags().String("bio", "", "short description")
	update.Flags().String("location", "", "farm location")
	update.Flags().String("address", "", "postal address")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ShowProfile(cmd.Context())
			},
		},
		update,
	)
	return cmd
}

// changed returns the flag value when it was given on the command line.
func changed(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func newStatsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Short:   "Print client request counters",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Stats(cmd.Context())
		},
	}
}

func newResetCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   "Log out and delete all locally stored data",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Reset(cmd.Context())
		},
	}
}

func newShellCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "shell",
		Short:   "Start an interactive session",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Shell(cmd.Context())
		},
	}
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print build information",
		GroupID: "system",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
	// no bootstrap: printing the version must not touch storage or network
	cmd.PersistentPreRun = func(*cobra.Command, []string) {}
	return cmd
}
