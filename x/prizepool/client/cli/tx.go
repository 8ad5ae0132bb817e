package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// GetTxCmd returns the transaction commands for the prizepool module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "prizepool",
		Short:                      "Prizepool module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreatePool(),
		CmdDeposit(),
		CmdWithdraw(),
		CmdUpdateStrategy(),
		CmdUpdateDrawInterval(),
		CmdUpdateMinimumDeposit(),
		CmdRetargetRound(),
		CmdSetPoolState(),
		CmdProcessRewards(),
		CmdStartDraw(),
		CmdProcessDrawBatch(),
		CmdCompleteDraw(),
		CmdStartNextRound(),
		CmdSetFeeRecipient(),
		CmdClearFeeRecipient(),
		CmdWithdrawFee(),
	)

	return cmd
}

func parsePoolID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pool id: %v", err)
	}
	return id, nil
}

// CmdCreatePool returns the command to create a pool
func CmdCreatePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [denom] [min-deposit] [draw-interval-seconds] [rewards-frac] [prize-frac] [fee-frac]",
		Short: "Create a new prize savings pool",
		Long: `Create a new prize savings pool.

Examples:
  prizepoold tx prizepool create-pool usdc 100 604800 0.70 0.20 0.10 --from admin`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			interval, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid draw interval: %v", err)
			}

			msg := &types.MsgCreatePool{
				Authority:           clientCtx.GetFromAddress().String(),
				Denom:               args[0],
				MinimumDeposit:      args[1],
				DrawIntervalSeconds: interval,
				RewardsFraction:     args[3],
				PrizeFraction:       args[4],
				FeeFraction:         args[5],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdDeposit returns the command to deposit into a pool
func CmdDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit [pool-id] [amount]",
		Short: "Deposit into a pool and receive shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgDeposit{
				Depositor: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
				Amount:    args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdraw returns the command to withdraw from a pool
func CmdWithdraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [pool-id] [amount]",
		Short: "Withdraw an asset amount by burning shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgWithdraw{
				Withdrawer: clientCtx.GetFromAddress().String(),
				PoolID:     poolID,
				Amount:     args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUpdateStrategy returns the command to update a pool's yield split
func CmdUpdateStrategy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-strategy [pool-id] [rewards-frac] [prize-frac] [fee-frac]",
		Short: "Update a pool's yield distribution strategy",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgUpdateDistributionStrategy{
				Authority:       clientCtx.GetFromAddress().String(),
				PoolID:          poolID,
				RewardsFraction: args[1],
				PrizeFraction:   args[2],
				FeeFraction:     args[3],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUpdateDrawInterval returns the command to change a pool's round length
func CmdUpdateDrawInterval() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-draw-interval [pool-id] [interval-seconds]",
		Short: "Update a pool's draw interval",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			interval, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid interval: %v", err)
			}

			msg := &types.MsgUpdateDrawInterval{
				Authority:       clientCtx.GetFromAddress().String(),
				PoolID:          poolID,
				IntervalSeconds: interval,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUpdateMinimumDeposit returns the command to change a pool's entry minimum
func CmdUpdateMinimumDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-min-deposit [pool-id] [minimum]",
		Short: "Update a pool's minimum deposit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgUpdateMinimumDeposit{
				Authority:      clientCtx.GetFromAddress().String(),
				PoolID:         poolID,
				MinimumDeposit: args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRetargetRound returns the command to move the active round's end time
func CmdRetargetRound() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retarget-round [pool-id] [target-end-unix]",
		Short: "Move the active round's target end time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			target, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid target end time: %v", err)
			}

			msg := &types.MsgUpdateRoundTargetEndTime{
				Authority:     clientCtx.GetFromAddress().String(),
				PoolID:        poolID,
				TargetEndTime: target,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetPoolState returns the command to change a pool's lifecycle state
func CmdSetPoolState() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-state [pool-id] [state] [reason]",
		Short: "Set a pool's lifecycle state (normal|paused|emergency|partial)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			reason := ""
			if len(args) == 3 {
				reason = args[2]
			}

			msg := &types.MsgSetPoolState{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
				State:     args[1],
				Reason:    reason,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdProcessRewards returns the command to force a yield source sync
func CmdProcessRewards() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process-rewards [pool-id]",
		Short: "Force a yield source reconciliation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgProcessRewards{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdStartDraw returns the command to snapshot the ended round
func CmdStartDraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-draw [pool-id]",
		Short: "Freeze the ended round and request draw randomness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgStartDraw{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdProcessDrawBatch returns the command to finalize a batch of entries
func CmdProcessDrawBatch() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process-draw-batch [pool-id] [limit]",
		Short: "Finalize up to limit participants for the pending draw",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			limit, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid limit: %v", err)
			}

			msg := &types.MsgProcessDrawBatch{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
				Limit:     limit,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCompleteDraw returns the command to select the winner
func CmdCompleteDraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete-draw [pool-id]",
		Short: "Select the winner and credit the prize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgCompleteDraw{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdStartNextRound returns the command to end the intermission
func CmdStartNextRound() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-next-round [pool-id]",
		Short: "End the intermission and reopen draw scheduling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgStartNextRound{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetFeeRecipient returns the command to set the treasury address
func CmdSetFeeRecipient() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee-recipient [pool-id] [recipient]",
		Short: "Set the protocol fee treasury address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgSetProtocolFeeRecipient{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
				Recipient: args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClearFeeRecipient returns the command to clear the treasury address
func CmdClearFeeRecipient() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-fee-recipient [pool-id]",
		Short: "Clear the protocol fee treasury address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgClearProtocolFeeRecipient{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdrawFee returns the command to pay out accrued protocol fees
func CmdWithdrawFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw-fee [pool-id]",
		Short: "Pay out the claimable protocol fee to the treasury",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}

			msg := &types.MsgWithdrawProtocolFee{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    poolID,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
