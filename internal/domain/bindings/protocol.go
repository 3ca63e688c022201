// Package bindings declares every protocol contract method the harness calls,
// as w3 functions built from Solidity signatures.
package bindings

import (
	"github.com/lmittmann/w3"
)

// ERC20 and the mock tokens.
var (
	FuncBalanceOf   = w3.MustNewFunc("balanceOf(address)", "uint256")
	FuncAllowance   = w3.MustNewFunc("allowance(address,address)", "uint256")
	FuncApprove     = w3.MustNewFunc("approve(address,uint256)", "bool")
	FuncDecimals    = w3.MustNewFunc("decimals()", "uint8")
	FuncSymbol      = w3.MustNewFunc("symbol()", "string")
	FuncTotalSupply = w3.MustNewFunc("totalSupply()", "uint256")
	FuncMint        = w3.MustNewFunc("mint(address,uint256)", "")
	FuncMintDegis   = w3.MustNewFunc("mintDegis(address,uint256)", "")
)

// OnboardProposal.
var (
	FuncPropose         = w3.MustNewFunc("propose(string,address,uint256,uint256)", "")
	FuncStartVoting     = w3.MustNewFunc("startVoting(uint256)", "")
	FuncSettle          = w3.MustNewFunc("settle(uint256)", "")
	FuncCloseProposal   = w3.MustNewFunc("closeProposal(uint256)", "")
	FuncProposalCounter = w3.MustNewFunc("proposalCounter()", "uint256")
)

// IncidentReport.
var (
	FuncReport               = w3.MustNewFunc("report(uint256,uint256)", "")
	FuncVote                 = w3.MustNewFunc("vote(uint256,uint256,uint256)", "")
	FuncCloseReport          = w3.MustNewFunc("closeReport(uint256)", "")
	FuncUnpausePools         = w3.MustNewFunc("unpausePools(uint256)", "")
	FuncSetQuorumRatio       = w3.MustNewFunc("setQuorumRatio(uint256)", "")
	FuncReported             = w3.MustNewFunc("reported(uint256)", "bool")
	FuncReportCounter        = w3.MustNewFunc("reportCounter()", "uint256")
	FuncIncidentVotingPeriod = w3.MustNewFunc("INCIDENT_VOTING_PERIOD()", "uint256")
)

// Executor.
var (
	FuncExecuteProposal = w3.MustNewFunc("executeProposal(uint256)", "")
	FuncExecuteReport   = w3.MustNewFunc("executeReport(uint256)", "")
	FuncReportExecuted  = w3.MustNewFunc("reportExecuted(uint256)", "bool")
)

// PriorityPoolFactory.
var (
	FuncDeployPool         = w3.MustNewFunc("deployPool(string,address,uint256,uint256)", "address")
	FuncPoolCounter        = w3.MustNewFunc("poolCounter()", "uint256")
	FuncDynamicPoolCounter = w3.MustNewFunc("dynamicPoolCounter()", "uint256")
	FuncGetPoolAddressList = w3.MustNewFunc("getPoolAddressList()", "address[]")
	FuncPools              = w3.MustNewFunc("pools(uint256)", "string,address,address,uint256,uint256")
)

// PriorityPool.
var (
	FuncLPTokenAddress      = w3.MustNewFunc("lpTokenAddress(uint256)", "address")
	FuncCurrentLPAddress    = w3.MustNewFunc("currentLPAddress()", "address")
	FuncPriceIndex          = w3.MustNewFunc("priceIndex(address)", "uint256")
	FuncActiveCovered       = w3.MustNewFunc("activeCovered()", "uint256")
	FuncDynamicPremiumRatio = w3.MustNewFunc("dynamicPremiumRatio(uint256)", "uint256")
	FuncCoverIndex          = w3.MustNewFunc("coverIndex()", "uint256")
	FuncCoverPrice          = w3.MustNewFunc("coverPrice(uint256,uint256)", "uint256,uint256")
	FuncMinAssetRequirement = w3.MustNewFunc("minAssetRequirement()", "uint256")
)

// ProtectionPool.
var (
	FuncGetTotalCovered       = w3.MustNewFunc("getTotalCovered()", "uint256")
	FuncGetTotalActiveCovered = w3.MustNewFunc("getTotalActiveCovered()", "uint256")
	FuncStakedSupply          = w3.MustNewFunc("stakedSupply()", "uint256")
	FuncUpdateIndexCut        = w3.MustNewFunc("updateIndexCut()", "")
)

// PolicyCenter.
var (
	FuncProvideLiquidity = w3.MustNewFunc("provideLiquidity(uint256)", "")
	FuncStakeLiquidity   = w3.MustNewFunc("stakeLiquidity(uint256,uint256)", "")
	FuncUnstakeLiquidity = w3.MustNewFunc("unstakeLiquidity(uint256,address,uint256)", "")
	FuncBuyCover         = w3.MustNewFunc("buyCover(uint256,uint256,uint256,uint256)", "")
	FuncClaimPayout      = w3.MustNewFunc("claimPayout(uint256,address,uint256)", "")
	FuncSetOracleType    = w3.MustNewFunc("setOracleType(address,uint256)", "")
	FuncOracleType       = w3.MustNewFunc("oracleType(address)", "uint256")
	FuncApprovePoolToken = w3.MustNewFunc("approvePoolToken(address)", "")
)

// WeightedFarmingPool.
var (
	FuncAddPool           = w3.MustNewFunc("addPool(address)", "")
	FuncAddToken          = w3.MustNewFunc("addToken(uint256,address,uint256)", "")
	FuncUpdatePool        = w3.MustNewFunc("updatePool(uint256)", "")
	FuncUpdateRewardSpeed = w3.MustNewFunc("updateRewardSpeed(uint256,uint256,uint256[],uint256[])", "")
	FuncHarvest           = w3.MustNewFunc("harvest(uint256,address)", "")
	FuncPendingReward     = w3.MustNewFunc("pendingReward(uint256,address)", "uint256")
	FuncFarmingCounter    = w3.MustNewFunc("counter()", "uint256")
	FuncGetUserLPAmount   = w3.MustNewFunc("getUserLPAmount(uint256,address)", "uint256[]")
)

// CoverRightTokenFactory.
var (
	FuncGetCRTokenAddress = w3.MustNewFunc("getCRTokenAddress(uint256,uint256,uint256)", "address")
)

// ProxyAdmin.
var (
	FuncUpgrade                = w3.MustNewFunc("upgrade(address,address)", "")
	FuncGetProxyImplementation = w3.MustNewFunc("getProxyImplementation(address)", "address")
)
