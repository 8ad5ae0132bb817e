package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// GetQueryCmd returns the cli query commands for the prizepool module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "prizepool",
		Short:                      "Querying commands for the prizepool module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryPool(),
		CmdQueryPosition(),
		CmdQueryDrawStatus(),
		CmdQueryDrawResults(),
	)

	return cmd
}

// CmdQueryPool returns the command to query a pool
func CmdQueryPool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Query a pool with its derived phase and share price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Pool query for id %d requires running node connection\n", poolID)
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryPosition returns the command to query a depositor's position
func CmdQueryPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position [pool-id] [owner]",
		Short: "Query a depositor's position with its current entries estimate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Position query for pool %d owner %s requires running node connection\n", poolID, args[1])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryDrawStatus returns the command to query an in-flight draw
func CmdQueryDrawStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw-status [pool-id]",
		Short: "Query batch progress for an in-flight draw",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Draw status query for pool %d requires running node connection\n", poolID)
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryDrawResults returns the command to query completed draws
func CmdQueryDrawResults() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draws [pool-id]",
		Short: "Query a pool's completed draw history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Draw history query for pool %d requires running node connection\n", poolID)
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
