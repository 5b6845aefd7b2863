package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eternumwasd/api/pkg/starknet"
)

func newNormalizeCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "normalize <address>...",
		Short: "Print addresses in canonical 0x-prefixed, zero-stripped form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, addr := range args {
				out := starknet.NormalizeAddress(addr)
				if short {
					out = starknet.ShortAddress(out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "abbreviate as shown on the map legend")
	return cmd
}

func newSelectorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selector <entrypoint>",
		Short: "Print the Starknet entrypoint selector for a function name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), starknet.Selector(args[0]))
			return nil
		},
	}
}
