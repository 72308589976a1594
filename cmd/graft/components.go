package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func componentsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the registered components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if p.reg.Len() == 0 {
				warn(cmd.ErrOrStderr(), "No components in %s", p.cfg.Path())
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tFLAGS\tTEMPLATE")
			for _, tag := range p.reg.Tags() {
				d, _ := p.reg.Lookup(tag)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", tag, d.Flags, p.cfg.Components[tag].Template)
			}
			return tw.Flush()
		},
	}
}
