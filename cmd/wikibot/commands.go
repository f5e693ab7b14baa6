package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/mediawiki-api-client/wiki"
)

// app carries the session shared by every subcommand of one invocation
type app struct {
	logger     *slog.Logger
	loadConfig func() (*wiki.Config, error)
	options    []wiki.Option

	config  *wiki.Config
	session *wiki.Session
}

func newApp(logger *slog.Logger) *app {
	return &app{
		logger:     logger,
		loadConfig: wiki.LoadConfig,
	}
}

// open loads the configuration, creates the session and logs in when
// credentials are configured
func (a *app) open(ctx context.Context) error {
	config, err := a.loadConfig()
	if err != nil {
		return err
	}
	session, err := wiki.NewSession(config, a.logger, a.options...)
	if err != nil {
		return err
	}
	a.config = config
	a.session = session

	if !config.HasCredentials() {
		return nil
	}
	result, err := session.Login(ctx, config.Username, config.Password)
	if err != nil {
		return err
	}
	if result.Incomplete {
		a.logger.Warn("Login was not confirmed by the wiki, continuing anonymously")
	}
	return nil
}

// close logs out a logged-in session and releases connections. It runs
// after the command whether or not the command failed.
func (a *app) close() {
	if a.session == nil {
		return
	}
	if a.session.LoggedIn() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := a.session.Logout(ctx); err != nil {
			a.logger.Warn("Logout failed", "error", err)
		}
	}
	a.session.Close()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "wikibot",
		Short:        "Read and edit a MediaWiki site",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	root.AddCommand(
		newGetCmd(a),
		newEditCmd(a),
		newMembersCmd(a),
		newWhoamiCmd(a),
	)
	return root
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [title]",
		Short: "Print the wikitext of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _, err := a.session.GetArticleContents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if content == "" {
				return fmt.Errorf("page %q not found or empty", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var (
		opts   wiki.EditOptions
		pageID int
	)

	cmd := &cobra.Command{
		Use:   "edit [title]",
		Short: "Edit an existing page",
		Long: `Edit an existing page. Exactly one of --text, --append or --prepend
is usually given; --append and --prepend may be combined.
Escape sequences \n and \t in the text flags are expanded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := wiki.PageID(pageID)
			if len(args) == 1 {
				page = wiki.Title(args[0])
			}
			opts.Text = unescape(opts.Text)
			opts.AppendText = unescape(opts.AppendText)
			opts.PrependText = unescape(opts.PrependText)

			resp, err := a.session.Edit(cmd.Context(), page, opts)
			if err != nil {
				return err
			}

			edit, _ := resp.Data["edit"].(map[string]any)
			result, _ := edit["result"].(string)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", page, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&pageID, "page-id", 0, "Edit by page id instead of title")
	cmd.Flags().StringVar(&opts.Text, "text", "", "Replace the page text")
	cmd.Flags().StringVar(&opts.AppendText, "append", "", "Text to add at the end")
	cmd.Flags().StringVar(&opts.PrependText, "prepend", "", "Text to add at the start")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "Edit summary")
	cmd.Flags().StringVar(&opts.Section, "section", "", "Section to edit")
	cmd.Flags().BoolVar(&opts.Minor, "minor", false, "Mark as a minor edit")
	return cmd
}

func newMembersCmd(a *app) *cobra.Command {
	var opts wiki.CategoryMembersOptions

	cmd := &cobra.Command{
		Use:   "members [category]",
		Short: "List the pages in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.session.CategoryMembers(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range result.Members {
				fmt.Fprintln(out, m.Title)
			}
			if result.Continue != "" {
				fmt.Fprintf(out, "# more: --continue %q\n", result.Continue)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", wiki.DefaultCategoryLimit, "Maximum members to list")
	cmd.Flags().StringSliceVar(&opts.Type, "type", nil, "Member types: page, subcat, file")
	cmd.Flags().StringVar(&opts.Continue, "continue", "", "Continue a previous listing")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the site and login state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.session.Status()
			out := cmd.OutOrStdout()
			user := st.UserName
			if !st.LoggedIn {
				user = "(anonymous)"
			}
			fmt.Fprintf(out, "site:     %s\n", st.Site)
			fmt.Fprintf(out, "user:     %s\n", user)
			fmt.Fprintf(out, "bot:      %t\n", st.Bot)
			fmt.Fprintf(out, "session:  %s\n", st.SessionID)
			return nil
		},
	}
}

var escapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t")

func unescape(s string) string {
	return escapes.Replace(s)
}
