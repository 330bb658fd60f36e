package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// walkCommands calls fn on cmd and then on every descendant, parents first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichParentLong lists the visible subcommands of a parent such as
// "lexe payments" at the end of its Long text, padded to the longest name.
// Leaf commands are left alone.
func enrichParentLong(cmd *cobra.Command) {
	var subs []*cobra.Command
	width := 0
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		subs = append(subs, sub)
		width = max(width, len(sub.Name()))
	}
	if len(subs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(cmd.Long, "\n"))
	sb.WriteString("\n\nSubcommands:\n")
	for _, sub := range subs {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, sub.Name(), sub.Short)
	}
	cmd.Long = sb.String()
}
