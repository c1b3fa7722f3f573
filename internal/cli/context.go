package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/internal/config"
)

func init() {
	contextCmd.AddCommand(contextListCmd, contextAddCmd, contextUseCmd, contextShowCmd)
	rootCmd.AddCommand(contextCmd)
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage named star contexts for `term`",
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		contexts, err := config.LoadContexts("")
		if err != nil {
			return ConfigError(err)
		}
		if len(contexts.Contexts) == 0 {
			fmt.Println("(no contexts defined — see `starlane context add`)")
			return nil
		}
		for _, c := range contexts.Contexts {
			marker := "  "
			if c.Name == contexts.Current {
				marker = "* "
			}
			fmt.Printf("%s%s\t%s\n", marker, c.Name, c.Address)
		}
		return nil
	},
}

var contextAddCmd = &cobra.Command{
	Use:   "add NAME ADDRESS",
	Short: "Add or update a named context",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		contexts, err := config.LoadContexts("")
		if err != nil {
			return ConfigError(err)
		}
		contexts.Upsert(config.StarContext{Name: args[0], Address: args[1]})
		if contexts.Current == "" {
			contexts.Current = args[0]
		}
		if err := config.SaveContexts(contexts, ""); err != nil {
			return fmt.Errorf("save contexts: %w", err)
		}
		fmt.Printf("added context %q (%s)\n", args[0], args[1])
		return nil
	},
}

var contextUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Select the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contexts, err := config.LoadContexts("")
		if err != nil {
			return ConfigError(err)
		}
		if _, ok := contexts.Find(args[0]); !ok {
			return ConfigError(fmt.Errorf("no such context %q", args[0]))
		}
		contexts.Current = args[0]
		if err := config.SaveContexts(contexts, ""); err != nil {
			return fmt.Errorf("save contexts: %w", err)
		}
		fmt.Printf("using context %q\n", args[0])
		return nil
	},
}

var contextShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		contexts, err := config.LoadContexts("")
		if err != nil {
			return ConfigError(err)
		}
		current, ok := contexts.CurrentContext()
		if !ok {
			fmt.Println("(no context selected)")
			return nil
		}
		fmt.Printf("%s\t%s\n", current.Name, current.Address)
		return nil
	},
}
