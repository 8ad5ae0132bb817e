package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgCreatePool                 = "create_pool"
	TypeMsgDeposit                    = "deposit"
	TypeMsgWithdraw                   = "withdraw"
	TypeMsgUpdateDistributionStrategy = "update_distribution_strategy"
	TypeMsgUpdateDrawInterval         = "update_draw_interval"
	TypeMsgUpdateMinimumDeposit       = "update_minimum_deposit"
	TypeMsgUpdateRoundTargetEndTime   = "update_round_target_end_time"
	TypeMsgSetPoolState               = "set_pool_state"
	TypeMsgProcessRewards             = "process_rewards"
	TypeMsgStartDraw                  = "start_draw"
	TypeMsgProcessDrawBatch           = "process_draw_batch"
	TypeMsgCompleteDraw               = "complete_draw"
	TypeMsgStartNextRound             = "start_next_round"
	TypeMsgSetProtocolFeeRecipient    = "set_protocol_fee_recipient"
	TypeMsgClearProtocolFeeRecipient  = "clear_protocol_fee_recipient"
	TypeMsgWithdrawProtocolFee        = "withdraw_protocol_fee"
)

// MsgCreatePool creates a new pool (admin).
type MsgCreatePool struct {
	Authority           string `json:"authority"`
	Denom               string `json:"denom"`
	MinimumDeposit      string `json:"minimum_deposit"`
	DrawIntervalSeconds int64  `json:"draw_interval_seconds"`
	RewardsFraction     string `json:"rewards_fraction"`
	PrizeFraction       string `json:"prize_fraction"`
	FeeFraction         string `json:"fee_fraction"`
}

func (msg MsgCreatePool) Route() string { return ModuleName }
func (msg MsgCreatePool) Type() string  { return TypeMsgCreatePool }

func (msg MsgCreatePool) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.DrawIntervalSeconds <= 0 {
		return ErrInvalidTiming
	}
	if err := sdk.ValidateDenom(msg.Denom); err != nil {
		return err
	}
	return nil
}

func (msg MsgCreatePool) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgCreatePool) ProtoMessage()    {}
func (msg *MsgCreatePool) Reset()       { *msg = MsgCreatePool{} }
func (msg MsgCreatePool) String() string {
	return fmt.Sprintf("MsgCreatePool{Interval: %d}", msg.DrawIntervalSeconds)
}

// MsgCreatePoolResponse is the CreatePool response.
type MsgCreatePoolResponse struct {
	PoolID uint64 `json:"pool_id"`
}

// MsgDeposit deposits into a pool.
type MsgDeposit struct {
	Depositor string `json:"depositor"`
	PoolID    uint64 `json:"pool_id"`
	Amount    string `json:"amount"`
}

func (msg MsgDeposit) Route() string { return ModuleName }
func (msg MsgDeposit) Type() string  { return TypeMsgDeposit }

func (msg MsgDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Depositor); err != nil {
		return err
	}
	return nil
}

func (msg MsgDeposit) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Depositor)
	return []sdk.AccAddress{addr}
}

func (*MsgDeposit) ProtoMessage()    {}
func (msg *MsgDeposit) Reset()       { *msg = MsgDeposit{} }
func (msg MsgDeposit) String() string {
	return fmt.Sprintf("MsgDeposit{Depositor: %s, Pool: %d, Amount: %s}", msg.Depositor, msg.PoolID, msg.Amount)
}

// MsgDepositResponse is the Deposit response.
type MsgDepositResponse struct {
	SharesMinted string `json:"shares_minted"`
	SharePrice   string `json:"share_price"`
}

// MsgWithdraw withdraws from a pool.
type MsgWithdraw struct {
	Withdrawer string `json:"withdrawer"`
	PoolID     uint64 `json:"pool_id"`
	Amount     string `json:"amount"`
}

func (msg MsgWithdraw) Route() string { return ModuleName }
func (msg MsgWithdraw) Type() string  { return TypeMsgWithdraw }

func (msg MsgWithdraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Withdrawer); err != nil {
		return err
	}
	return nil
}

func (msg MsgWithdraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Withdrawer)
	return []sdk.AccAddress{addr}
}

func (*MsgWithdraw) ProtoMessage()    {}
func (msg *MsgWithdraw) Reset()       { *msg = MsgWithdraw{} }
func (msg MsgWithdraw) String() string {
	return fmt.Sprintf("MsgWithdraw{Withdrawer: %s, Pool: %d, Amount: %s}", msg.Withdrawer, msg.PoolID, msg.Amount)
}

// MsgWithdrawResponse is the Withdraw response. AmountReturned reflects what
// the yield source actually released, which can be less than requested.
type MsgWithdrawResponse struct {
	AmountReturned string `json:"amount_returned"`
	SharesBurned   string `json:"shares_burned"`
}

// MsgUpdateDistributionStrategy replaces a pool's yield split (admin).
type MsgUpdateDistributionStrategy struct {
	Authority       string `json:"authority"`
	PoolID          uint64 `json:"pool_id"`
	RewardsFraction string `json:"rewards_fraction"`
	PrizeFraction   string `json:"prize_fraction"`
	FeeFraction     string `json:"fee_fraction"`
}

func (msg MsgUpdateDistributionStrategy) Route() string { return ModuleName }
func (msg MsgUpdateDistributionStrategy) Type() string {
	return TypeMsgUpdateDistributionStrategy
}

func (msg MsgUpdateDistributionStrategy) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgUpdateDistributionStrategy) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgUpdateDistributionStrategy) ProtoMessage() {}
func (msg *MsgUpdateDistributionStrategy) Reset()    { *msg = MsgUpdateDistributionStrategy{} }
func (msg MsgUpdateDistributionStrategy) String() string {
	return fmt.Sprintf("MsgUpdateDistributionStrategy{Pool: %d}", msg.PoolID)
}

// MsgUpdateDistributionStrategyResponse is the empty response.
type MsgUpdateDistributionStrategyResponse struct{}

// MsgUpdateDrawInterval rewrites the pool's round-duration template (admin).
type MsgUpdateDrawInterval struct {
	Authority       string `json:"authority"`
	PoolID          uint64 `json:"pool_id"`
	IntervalSeconds int64  `json:"interval_seconds"`
}

func (msg MsgUpdateDrawInterval) Route() string { return ModuleName }
func (msg MsgUpdateDrawInterval) Type() string  { return TypeMsgUpdateDrawInterval }

func (msg MsgUpdateDrawInterval) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.IntervalSeconds <= 0 {
		return ErrInvalidTiming
	}
	return nil
}

func (msg MsgUpdateDrawInterval) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgUpdateDrawInterval) ProtoMessage() {}
func (msg *MsgUpdateDrawInterval) Reset()    { *msg = MsgUpdateDrawInterval{} }
func (msg MsgUpdateDrawInterval) String() string {
	return fmt.Sprintf("MsgUpdateDrawInterval{Pool: %d, Interval: %d}", msg.PoolID, msg.IntervalSeconds)
}

// MsgUpdateDrawIntervalResponse is the empty response.
type MsgUpdateDrawIntervalResponse struct{}

// MsgUpdateMinimumDeposit changes a pool's minimum deposit (admin).
type MsgUpdateMinimumDeposit struct {
	Authority      string `json:"authority"`
	PoolID         uint64 `json:"pool_id"`
	MinimumDeposit string `json:"minimum_deposit"`
}

func (msg MsgUpdateMinimumDeposit) Route() string { return ModuleName }
func (msg MsgUpdateMinimumDeposit) Type() string  { return TypeMsgUpdateMinimumDeposit }

func (msg MsgUpdateMinimumDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgUpdateMinimumDeposit) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgUpdateMinimumDeposit) ProtoMessage() {}
func (msg *MsgUpdateMinimumDeposit) Reset()    { *msg = MsgUpdateMinimumDeposit{} }
func (msg MsgUpdateMinimumDeposit) String() string {
	return fmt.Sprintf("MsgUpdateMinimumDeposit{Pool: %d, Min: %s}", msg.PoolID, msg.MinimumDeposit)
}

// MsgUpdateMinimumDepositResponse is the empty response.
type MsgUpdateMinimumDepositResponse struct{}

// MsgUpdateRoundTargetEndTime retargets the active round's end (admin).
type MsgUpdateRoundTargetEndTime struct {
	Authority     string `json:"authority"`
	PoolID        uint64 `json:"pool_id"`
	TargetEndTime int64  `json:"target_end_time"`
}

func (msg MsgUpdateRoundTargetEndTime) Route() string { return ModuleName }
func (msg MsgUpdateRoundTargetEndTime) Type() string  { return TypeMsgUpdateRoundTargetEndTime }

func (msg MsgUpdateRoundTargetEndTime) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgUpdateRoundTargetEndTime) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgUpdateRoundTargetEndTime) ProtoMessage() {}
func (msg *MsgUpdateRoundTargetEndTime) Reset()    { *msg = MsgUpdateRoundTargetEndTime{} }
func (msg MsgUpdateRoundTargetEndTime) String() string {
	return fmt.Sprintf("MsgUpdateRoundTargetEndTime{Pool: %d, Target: %d}", msg.PoolID, msg.TargetEndTime)
}

// MsgUpdateRoundTargetEndTimeResponse is the empty response.
type MsgUpdateRoundTargetEndTimeResponse struct{}

// MsgSetPoolState changes a pool's lifecycle state (admin).
type MsgSetPoolState struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
	State     string `json:"state"`
	Reason    string `json:"reason,omitempty"`
}

func (msg MsgSetPoolState) Route() string { return ModuleName }
func (msg MsgSetPoolState) Type() string  { return TypeMsgSetPoolState }

func (msg MsgSetPoolState) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if !ValidLifecycleState(msg.State) {
		return ErrNotOperational
	}
	return nil
}

func (msg MsgSetPoolState) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgSetPoolState) ProtoMessage() {}
func (msg *MsgSetPoolState) Reset()    { *msg = MsgSetPoolState{} }
func (msg MsgSetPoolState) String() string {
	return fmt.Sprintf("MsgSetPoolState{Pool: %d, State: %s}", msg.PoolID, msg.State)
}

// MsgSetPoolStateResponse is the empty response.
type MsgSetPoolStateResponse struct{}

// MsgProcessRewards forces a yield source sync (admin).
type MsgProcessRewards struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgProcessRewards) Route() string { return ModuleName }
func (msg MsgProcessRewards) Type() string  { return TypeMsgProcessRewards }

func (msg MsgProcessRewards) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgProcessRewards) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgProcessRewards) ProtoMessage() {}
func (msg *MsgProcessRewards) Reset()    { *msg = MsgProcessRewards{} }
func (msg MsgProcessRewards) String() string {
	return fmt.Sprintf("MsgProcessRewards{Pool: %d}", msg.PoolID)
}

// MsgProcessRewardsResponse reports the distributed delta (zero when the
// drift was below the distribution threshold).
type MsgProcessRewardsResponse struct {
	Delta string `json:"delta"`
}

// MsgStartDraw snapshots the ended round and requests randomness (admin).
type MsgStartDraw struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgStartDraw) Route() string { return ModuleName }
func (msg MsgStartDraw) Type() string  { return TypeMsgStartDraw }

func (msg MsgStartDraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgStartDraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgStartDraw) ProtoMessage() {}
func (msg *MsgStartDraw) Reset()    { *msg = MsgStartDraw{} }
func (msg MsgStartDraw) String() string {
	return fmt.Sprintf("MsgStartDraw{Pool: %d}", msg.PoolID)
}

// MsgStartDrawResponse is the StartDraw response.
type MsgStartDrawResponse struct {
	FrozenRoundID uint64 `json:"frozen_round_id"`
	NewRoundID    uint64 `json:"new_round_id"`
}

// MsgProcessDrawBatch finalizes up to Limit participants' weights (admin).
type MsgProcessDrawBatch struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
	Limit     uint64 `json:"limit"`
}

func (msg MsgProcessDrawBatch) Route() string { return ModuleName }
func (msg MsgProcessDrawBatch) Type() string  { return TypeMsgProcessDrawBatch }

func (msg MsgProcessDrawBatch) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgProcessDrawBatch) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgProcessDrawBatch) ProtoMessage() {}
func (msg *MsgProcessDrawBatch) Reset()    { *msg = MsgProcessDrawBatch{} }
func (msg MsgProcessDrawBatch) String() string {
	return fmt.Sprintf("MsgProcessDrawBatch{Pool: %d, Limit: %d}", msg.PoolID, msg.Limit)
}

// MsgProcessDrawBatchResponse reports batch progress.
type MsgProcessDrawBatchResponse struct {
	Processed     uint64 `json:"processed"`
	BatchComplete bool   `json:"batch_complete"`
}

// MsgCompleteDraw selects the winner and credits the prize (admin).
type MsgCompleteDraw struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgCompleteDraw) Route() string { return ModuleName }
func (msg MsgCompleteDraw) Type() string  { return TypeMsgCompleteDraw }

func (msg MsgCompleteDraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgCompleteDraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgCompleteDraw) ProtoMessage() {}
func (msg *MsgCompleteDraw) Reset()    { *msg = MsgCompleteDraw{} }
func (msg MsgCompleteDraw) String() string {
	return fmt.Sprintf("MsgCompleteDraw{Pool: %d}", msg.PoolID)
}

// MsgCompleteDrawResponse is the CompleteDraw response. Winner is empty when
// the round finished with zero entries.
type MsgCompleteDrawResponse struct {
	ResultID    string `json:"result_id"`
	Winner      string `json:"winner,omitempty"`
	PrizeAmount string `json:"prize_amount"`
}

// MsgStartNextRound transitions Intermission back to Active (admin).
type MsgStartNextRound struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgStartNextRound) Route() string { return ModuleName }
func (msg MsgStartNextRound) Type() string  { return TypeMsgStartNextRound }

func (msg MsgStartNextRound) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgStartNextRound) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgStartNextRound) ProtoMessage() {}
func (msg *MsgStartNextRound) Reset()    { *msg = MsgStartNextRound{} }
func (msg MsgStartNextRound) String() string {
	return fmt.Sprintf("MsgStartNextRound{Pool: %d}", msg.PoolID)
}

// MsgStartNextRoundResponse is the StartNextRound response.
type MsgStartNextRoundResponse struct {
	RoundID uint64 `json:"round_id"`
}

// MsgSetProtocolFeeRecipient configures the treasury forwarding target
// (admin).
type MsgSetProtocolFeeRecipient struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
	Recipient string `json:"recipient"`
}

func (msg MsgSetProtocolFeeRecipient) Route() string { return ModuleName }
func (msg MsgSetProtocolFeeRecipient) Type() string  { return TypeMsgSetProtocolFeeRecipient }

func (msg MsgSetProtocolFeeRecipient) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Recipient); err != nil {
		return err
	}
	return nil
}

func (msg MsgSetProtocolFeeRecipient) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgSetProtocolFeeRecipient) ProtoMessage() {}
func (msg *MsgSetProtocolFeeRecipient) Reset()    { *msg = MsgSetProtocolFeeRecipient{} }
func (msg MsgSetProtocolFeeRecipient) String() string {
	return fmt.Sprintf("MsgSetProtocolFeeRecipient{Pool: %d, Recipient: %s}", msg.PoolID, msg.Recipient)
}

// MsgSetProtocolFeeRecipientResponse is the empty response.
type MsgSetProtocolFeeRecipientResponse struct{}

// MsgClearProtocolFeeRecipient removes the treasury forwarding target
// (admin).
type MsgClearProtocolFeeRecipient struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgClearProtocolFeeRecipient) Route() string { return ModuleName }
func (msg MsgClearProtocolFeeRecipient) Type() string  { return TypeMsgClearProtocolFeeRecipient }

func (msg MsgClearProtocolFeeRecipient) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgClearProtocolFeeRecipient) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgClearProtocolFeeRecipient) ProtoMessage() {}
func (msg *MsgClearProtocolFeeRecipient) Reset()    { *msg = MsgClearProtocolFeeRecipient{} }
func (msg MsgClearProtocolFeeRecipient) String() string {
	return fmt.Sprintf("MsgClearProtocolFeeRecipient{Pool: %d}", msg.PoolID)
}

// MsgClearProtocolFeeRecipientResponse is the empty response.
type MsgClearProtocolFeeRecipientResponse struct{}

// MsgWithdrawProtocolFee pays accumulated protocol fee to the recipient
// (admin).
type MsgWithdrawProtocolFee struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgWithdrawProtocolFee) Route() string { return ModuleName }
func (msg MsgWithdrawProtocolFee) Type() string  { return TypeMsgWithdrawProtocolFee }

func (msg MsgWithdrawProtocolFee) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgWithdrawProtocolFee) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgWithdrawProtocolFee) ProtoMessage() {}
func (msg *MsgWithdrawProtocolFee) Reset()    { *msg = MsgWithdrawProtocolFee{} }
func (msg MsgWithdrawProtocolFee) String() string {
	return fmt.Sprintf("MsgWithdrawProtocolFee{Pool: %d}", msg.PoolID)
}

// MsgWithdrawProtocolFeeResponse is the WithdrawProtocolFee response.
type MsgWithdrawProtocolFeeResponse struct {
	AmountPaid string `json:"amount_paid"`
	Recipient  string `json:"recipient"`
}
