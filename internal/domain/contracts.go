package domain

// Registry keys of protocol contracts. A key is also the artifact name unless a unit says otherwise.
const (
	ContractMockDEG         = "MockDEG"
	ContractMockShield      = "MockShield"
	ContractMockVeDEG       = "MockVeDEG"
	ContractMockUSDC        = "MockUSDC"
	ContractMockExchange    = "MockExchange"
	ContractMockPriceGetter = "MockPriceGetter"
	ContractMockERC20       = "MockERC20"

	ContractUSDC = "USDC"

	// Production protocol tokens, recorded in the avax address book.
	ContractDegisToken        = "DegisToken"
	ContractVoteEscrowedDegis = "VoteEscrowedDegis"
	ContractShield            = "Shield"

	ContractProtectionPool            = "ProtectionPool"
	ContractPriorityPoolFactory       = "PriorityPoolFactory"
	ContractIncidentReport            = "IncidentReport"
	ContractOnboardProposal           = "OnboardProposal"
	ContractPolicyCenter              = "PolicyCenter"
	ContractExecutor                  = "Executor"
	ContractTreasury                  = "Treasury"
	ContractCoverRightTokenFactory    = "CoverRightTokenFactory"
	ContractPremiumRewardPool         = "PremiumRewardPool"
	ContractWeightedFarmingPool       = "WeightedFarmingPool"
	ContractPriceGetter               = "PriceGetter"
	ContractPayoutPool                = "PayoutPool"
	ContractPriorityPoolDeployer      = "PriorityPoolDeployer"
	ContractProtectionPoolMiningToken = "ProtectionPoolMiningToken"
	ContractDexPriceGetter            = "DexPriceGetter"
	ContractSwapHelper                = "SwapHelper"
	ContractDexPriceGetterV2          = "DexPriceGetterV2"

	// ContractProxyAdmin is the AddressBook key of the admin shared by every proxy on a network.
	ContractProxyAdmin = "DefaultProxyAdmin"
)
