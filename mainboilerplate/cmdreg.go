package mainboilerplate

import "github.com/jessevdk/go-flags"

// AddCommandFunc registers a sub-command with its parent Command.
type AddCommandFunc func(*flags.Command) error

// CommandRegistry collects sub-command registrations, keyed on the dotted
// name of their parent Command (eg "groups" or "groups.list"). The root
// Command has the empty name.
type CommandRegistry map[string][]AddCommandFunc

// NewCommandRegistry returns an empty CommandRegistry.
func NewCommandRegistry() CommandRegistry {
	return make(CommandRegistry)
}

// AddCommand registers |command| under the Command named by |parentName|.
func (cr CommandRegistry) AddCommand(parentName, command, shortDescription, longDescription string, data interface{}) {
	cr[parentName] = append(cr[parentName], func(cmd *flags.Command) error {
		var _, err = cmd.AddCommand(command, shortDescription, longDescription, data)
		return err
	})
}

// AddCommands adds commands registered under |rootName| to |rootCmd|, and
// then recursively adds their registered sub-commands.
func (cr CommandRegistry) AddCommands(rootName string, rootCmd *flags.Command) error {
	for _, fn := range cr[rootName] {
		if err := fn(rootCmd); err != nil {
			return err
		}
	}
	for _, cmd := range rootCmd.Commands() {
		var name = cmd.Name
		if rootName != "" {
			name = rootName + "." + name
		}
		if err := cr.AddCommands(name, cmd); err != nil {
			return err
		}
	}
	return nil
}
