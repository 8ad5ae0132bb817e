package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

type msgServer struct {
	Keeper *Keeper
}

// NewMsgServerImpl returns the module message server.
func NewMsgServerImpl(keeper *Keeper) msgServer {
	return msgServer{Keeper: keeper}
}

func (m msgServer) checkAuthority(authority string) error {
	if authority != m.Keeper.GetAuthority() {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", m.Keeper.GetAuthority(), authority)
	}
	return nil
}

func parseDec(s string) (math.LegacyDec, error) {
	d, err := math.LegacyNewDecFromStr(s)
	if err != nil {
		return math.LegacyZeroDec(), types.ErrInvalidAmount.Wrapf("%q: %v", s, err)
	}
	return d, nil
}

func (m msgServer) CreatePool(goCtx context.Context, msg *types.MsgCreatePool) (*types.MsgCreatePoolResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	minDeposit, err := parseDec(msg.MinimumDeposit)
	if err != nil {
		return nil, err
	}
	strategy, err := types.StrategyFromFractions(msg.RewardsFraction, msg.PrizeFraction, msg.FeeFraction)
	if err != nil {
		return nil, err
	}

	pool, err := m.Keeper.CreatePool(ctx, msg.Denom, minDeposit, msg.DrawIntervalSeconds, strategy)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreatePoolResponse{PoolID: pool.PoolID}, nil
}

func (m msgServer) Deposit(goCtx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	amount, err := parseDec(msg.Amount)
	if err != nil {
		return nil, err
	}

	shares, err := m.Keeper.Deposit(ctx, msg.Depositor, msg.PoolID, amount)
	if err != nil {
		return nil, err
	}
	pool := m.Keeper.GetPool(ctx, msg.PoolID)
	return &types.MsgDepositResponse{
		SharesMinted: shares.String(),
		SharePrice:   pool.SharePrice().String(),
	}, nil
}

func (m msgServer) Withdraw(goCtx context.Context, msg *types.MsgWithdraw) (*types.MsgWithdrawResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	amount, err := parseDec(msg.Amount)
	if err != nil {
		return nil, err
	}

	returned, burned, err := m.Keeper.Withdraw(ctx, msg.Withdrawer, msg.PoolID, amount)
	if err != nil {
		return nil, err
	}
	return &types.MsgWithdrawResponse{
		AmountReturned: returned.String(),
		SharesBurned:   burned.String(),
	}, nil
}

func (m msgServer) UpdateDistributionStrategy(goCtx context.Context, msg *types.MsgUpdateDistributionStrategy) (*types.MsgUpdateDistributionStrategyResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	strategy, err := types.StrategyFromFractions(msg.RewardsFraction, msg.PrizeFraction, msg.FeeFraction)
	if err != nil {
		return nil, err
	}
	if err := m.Keeper.UpdateDistributionStrategy(ctx, msg.PoolID, strategy); err != nil {
		return nil, err
	}
	return &types.MsgUpdateDistributionStrategyResponse{}, nil
}

func (m msgServer) UpdateDrawInterval(goCtx context.Context, msg *types.MsgUpdateDrawInterval) (*types.MsgUpdateDrawIntervalResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.Keeper.UpdateDrawInterval(ctx, msg.PoolID, msg.IntervalSeconds); err != nil {
		return nil, err
	}
	return &types.MsgUpdateDrawIntervalResponse{}, nil
}

func (m msgServer) UpdateMinimumDeposit(goCtx context.Context, msg *types.MsgUpdateMinimumDeposit) (*types.MsgUpdateMinimumDepositResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	minimum, err := parseDec(msg.MinimumDeposit)
	if err != nil {
		return nil, err
	}
	if err := m.Keeper.UpdateMinimumDeposit(ctx, msg.PoolID, minimum); err != nil {
		return nil, err
	}
	return &types.MsgUpdateMinimumDepositResponse{}, nil
}

func (m msgServer) UpdateRoundTargetEndTime(goCtx context.Context, msg *types.MsgUpdateRoundTargetEndTime) (*types.MsgUpdateRoundTargetEndTimeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.Keeper.UpdateRoundTargetEndTime(ctx, msg.PoolID, msg.TargetEndTime); err != nil {
		return nil, err
	}
	return &types.MsgUpdateRoundTargetEndTimeResponse{}, nil
}

func (m msgServer) SetPoolState(goCtx context.Context, msg *types.MsgSetPoolState) (*types.MsgSetPoolStateResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.Keeper.SetPoolState(ctx, msg.PoolID, msg.State, msg.Reason); err != nil {
		return nil, err
	}
	return &types.MsgSetPoolStateResponse{}, nil
}

func (m msgServer) ProcessRewards(goCtx context.Context, msg *types.MsgProcessRewards) (*types.MsgProcessRewardsResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	delta, err := m.Keeper.ProcessRewards(ctx, msg.PoolID)
	if err != nil {
		return nil, err
	}
	return &types.MsgProcessRewardsResponse{Delta: delta.String()}, nil
}

func (m msgServer) StartDraw(goCtx context.Context, msg *types.MsgStartDraw) (*types.MsgStartDrawResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	frozenID, err := m.Keeper.StartDraw(ctx, msg.PoolID)
	if err != nil {
		return nil, err
	}
	return &types.MsgStartDrawResponse{
		FrozenRoundID: frozenID,
		NewRoundID:    frozenID + 1,
	}, nil
}

func (m msgServer) ProcessDrawBatch(goCtx context.Context, msg *types.MsgProcessDrawBatch) (*types.MsgProcessDrawBatchResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	processed, complete, err := m.Keeper.ProcessDrawBatch(ctx, msg.PoolID, msg.Limit)
	if err != nil {
		return nil, err
	}
	return &types.MsgProcessDrawBatchResponse{
		Processed:     processed,
		BatchComplete: complete,
	}, nil
}

func (m msgServer) CompleteDraw(goCtx context.Context, msg *types.MsgCompleteDraw) (*types.MsgCompleteDrawResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	result, err := m.Keeper.CompleteDraw(ctx, msg.PoolID)
	if err != nil {
		return nil, err
	}
	return &types.MsgCompleteDrawResponse{
		ResultID:    result.ResultID,
		Winner:      result.Winner,
		PrizeAmount: result.PrizeAmount.String(),
	}, nil
}

func (m msgServer) StartNextRound(goCtx context.Context, msg *types.MsgStartNextRound) (*types.MsgStartNextRoundResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.Keeper.StartNextRound(ctx, msg.PoolID); err != nil {
		return nil, err
	}
	resp := &types.MsgStartNextRoundResponse{}
	if active := m.Keeper.GetActiveRound(ctx, msg.PoolID); active != nil {
		resp.RoundID = active.RoundID
	}
	return resp, nil
}

func (m msgServer) SetProtocolFeeRecipient(goCtx context.Context, msg *types.MsgSetProtocolFeeRecipient) (*types.MsgSetProtocolFeeRecipientResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.Keeper.SetProtocolFeeRecipient(ctx, msg.PoolID, msg.Recipient); err != nil {
		return nil, err
	}
	return &types.MsgSetProtocolFeeRecipientResponse{}, nil
}

func (m msgServer) ClearProtocolFeeRecipient(goCtx context.Context, msg *types.MsgClearProtocolFeeRecipient) (*types.MsgClearProtocolFeeRecipientResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.Keeper.ClearProtocolFeeRecipient(ctx, msg.PoolID); err != nil {
		return nil, err
	}
	return &types.MsgClearProtocolFeeRecipientResponse{}, nil
}

func (m msgServer) WithdrawProtocolFee(goCtx context.Context, msg *types.MsgWithdrawProtocolFee) (*types.MsgWithdrawProtocolFeeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.checkAuthority(msg.Authority); err != nil {
		return nil, err
	}

	paid, err := m.Keeper.WithdrawProtocolFee(ctx, msg.PoolID)
	if err != nil {
		return nil, err
	}
	resp := &types.MsgWithdrawProtocolFeeResponse{AmountPaid: paid.String()}
	if pool := m.Keeper.GetPool(ctx, msg.PoolID); pool != nil {
		resp.Recipient = pool.ProtocolFeeRecipient
	}
	return resp, nil
}
