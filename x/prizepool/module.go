package prizepool

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/openalpha/prize-savings/x/prizepool/keeper"
	"github.com/openalpha/prize-savings/x/prizepool/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for prizepool
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgCreatePool{}, "prizepool/MsgCreatePool", nil)
	cdc.RegisterConcrete(&types.MsgDeposit{}, "prizepool/MsgDeposit", nil)
	cdc.RegisterConcrete(&types.MsgWithdraw{}, "prizepool/MsgWithdraw", nil)
	cdc.RegisterConcrete(&types.MsgUpdateDistributionStrategy{}, "prizepool/MsgUpdateDistributionStrategy", nil)
	cdc.RegisterConcrete(&types.MsgUpdateDrawInterval{}, "prizepool/MsgUpdateDrawInterval", nil)
	cdc.RegisterConcrete(&types.MsgUpdateMinimumDeposit{}, "prizepool/MsgUpdateMinimumDeposit", nil)
	cdc.RegisterConcrete(&types.MsgUpdateRoundTargetEndTime{}, "prizepool/MsgUpdateRoundTargetEndTime", nil)
	cdc.RegisterConcrete(&types.MsgSetPoolState{}, "prizepool/MsgSetPoolState", nil)
	cdc.RegisterConcrete(&types.MsgProcessRewards{}, "prizepool/MsgProcessRewards", nil)
	cdc.RegisterConcrete(&types.MsgStartDraw{}, "prizepool/MsgStartDraw", nil)
	cdc.RegisterConcrete(&types.MsgProcessDrawBatch{}, "prizepool/MsgProcessDrawBatch", nil)
	cdc.RegisterConcrete(&types.MsgCompleteDraw{}, "prizepool/MsgCompleteDraw", nil)
	cdc.RegisterConcrete(&types.MsgStartNextRound{}, "prizepool/MsgStartNextRound", nil)
	cdc.RegisterConcrete(&types.MsgSetProtocolFeeRecipient{}, "prizepool/MsgSetProtocolFeeRecipient", nil)
	cdc.RegisterConcrete(&types.MsgClearProtocolFeeRecipient{}, "prizepool/MsgClearProtocolFeeRecipient", nil)
	cdc.RegisterConcrete(&types.MsgWithdrawProtocolFee{}, "prizepool/MsgWithdrawProtocolFee", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgCreatePool{},
		&types.MsgDeposit{},
		&types.MsgWithdraw{},
		&types.MsgUpdateDistributionStrategy{},
		&types.MsgUpdateDrawInterval{},
		&types.MsgUpdateMinimumDeposit{},
		&types.MsgUpdateRoundTargetEndTime{},
		&types.MsgSetPoolState{},
		&types.MsgProcessRewards{},
		&types.MsgStartDraw{},
		&types.MsgProcessDrawBatch{},
		&types.MsgCompleteDraw{},
		&types.MsgStartNextRound{},
		&types.MsgSetProtocolFeeRecipient{},
		&types.MsgClearProtocolFeeRecipient{},
		&types.MsgWithdrawProtocolFee{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
	// TODO: Register gRPC gateway routes when proto generation is set up
}

// AppModule implements an application module for the prizepool module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	// Note: In a full implementation, you would register the proto-generated server
	// For now, we'll use the custom MsgServer
	_ = keeper.NewMsgServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}
