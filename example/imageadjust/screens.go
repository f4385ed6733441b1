package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func screensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "List the available screens",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController()
			if err != nil {
				return err
			}
			for _, v := range c.Variants() {
				s, err := c.Lookup(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", v, s.Title())
			}
			return nil
		},
	}
}
