package domain

import (
	"slices"
	"sort"
)

// Tags grouping catalog units.
const (
	TagMocks  = "Mocks"
	TagCore   = "Core"
	TagOracle = "Oracle"
)

var (
	avaxFamily       = []string{NetworkAvax, NetworkAvaxTest, NetworkAvaxNew}
	avaxFamilyAndArb = []string{NetworkAvax, NetworkAvaxTest, NetworkAvaxNew, NetworkArb}
	mainnetOnly      = []string{NetworkAvax}
)

// Catalog is an ordered list of deploy units.
type Catalog []Unit

// Find returns the unit with the given name.
func (c Catalog) Find(name string) (Unit, bool) {
	for _, u := range c {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// WithTag returns the units carrying tag, in catalog order.
func (c Catalog) WithTag(tag string) []Unit {
	var units []Unit
	for _, u := range c {
		if u.HasTag(tag) {
			units = append(units, u)
		}
	}
	return units
}

// Names returns the unit names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, u := range c {
		names = append(names, u.Name)
	}
	return names
}

// Tags returns every distinct tag, sorted.
func (c Catalog) Tags() []string {
	var tags []string
	for _, u := range c {
		for _, t := range u.Tags {
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// Index returns the catalog position of a unit, or -1.
func (c Catalog) Index(name string) int {
	return slices.IndexFunc(c, func(u Unit) bool { return u.Name == name })
}

// DefaultCatalog returns every deploy unit of the protocol in its canonical order.
func DefaultCatalog() Catalog {
	gov := Token(RoleGovernance)
	ve := Token(RoleVoteEscrowed)
	shield := Token(RoleSettlement)

	return Catalog{
		{
			Name:   ContractMockDEG,
			Mode:   ModeDirect,
			Args:   []Arg{Uint(0), Lit("DegisToken"), Lit(uint8(18)), Lit("DEG")},
			Tags:   []string{TagMocks, "MockTokens"},
			SkipOn: mainnetOnly,
		},
		{
			Name:     ContractMockShield,
			Artifact: "MockSHIELD",
			Mode:     ModeDirect,
			Args:     []Arg{Uint(0), Lit("Shield"), Lit(uint8(6)), Lit("SHD")},
			Tags:     []string{TagMocks, "MockTokens"},
			SkipOn:   mainnetOnly,
		},
		{
			Name:   ContractMockVeDEG,
			Mode:   ModeDirect,
			Args:   []Arg{Uint(0), Lit("VoteEscrowedDegis"), Lit(uint8(18)), Lit("VeDEG")},
			Tags:   []string{TagMocks, "MockTokens"},
			SkipOn: mainnetOnly,
		},
		{
			Name:   ContractMockUSDC,
			Mode:   ModeDirect,
			Args:   []Arg{Lit("MockUSDC"), Lit("MockUSDC"), Lit(uint8(6))},
			Tags:   []string{TagMocks},
			SkipOn: mainnetOnly,
		},
		{
			Name:   ContractMockExchange,
			Mode:   ModeDirect,
			Tags:   []string{TagMocks},
			SkipOn: mainnetOnly,
		},
		{
			Name:   ContractMockPriceGetter,
			Mode:   ModeDirect,
			Tags:   []string{TagMocks},
			SkipOn: mainnetOnly,
		},
		{
			Name: ContractProtectionPool,
			Mode: ModeProxied,
			Args: []Arg{gov, ve},
			Tags: []string{TagCore},
		},
		{
			Name: ContractPriorityPoolFactory,
			Mode: ModeProxied,
			Args: []Arg{gov, ve, shield, Ref(ContractProtectionPool)},
			Tags: []string{TagCore},
		},
		{
			Name: ContractIncidentReport,
			Mode: ModeProxied,
			Args: []Arg{gov, ve},
			Tags: []string{TagCore},
		},
		{
			Name: ContractOnboardProposal,
			Mode: ModeDirect,
			Args: []Arg{gov, ve, shield},
			Tags: []string{TagCore},
		},
		{
			Name: ContractPolicyCenter,
			Mode: ModeDirect,
			Args: []Arg{
				gov, ve, shield,
				Ref(ContractProtectionPool),
				// localhost has no recorded USDC, so it settles in the mock like the test networks.
				ByNetwork(map[string]Arg{
					NetworkFuji:         Ref(ContractMockUSDC),
					NetworkFujiInternal: Ref(ContractMockUSDC),
					NetworkLocalhost:    Ref(ContractMockUSDC),
				}, Ref(ContractUSDC)),
			},
			Tags: []string{TagCore},
		},
		{
			Name: ContractExecutor,
			Mode: ModeDirect,
			Tags: []string{TagCore},
		},
		{
			Name: ContractTreasury,
			Mode: ModeDirect,
			Args: []Arg{shield, Ref(ContractExecutor), Ref(ContractPolicyCenter)},
			Tags: []string{TagCore},
		},
		{
			Name: ContractCoverRightTokenFactory,
			Mode: ModeProxied,
			Args: []Arg{Ref(ContractPolicyCenter), Ref(ContractIncidentReport)},
			Tags: []string{TagCore},
		},
		{
			Name: ContractPremiumRewardPool,
			Mode: ModeDirect,
			Args: []Arg{shield, Ref(ContractPriorityPoolFactory), Ref(ContractProtectionPool)},
			Tags: []string{TagCore},
		},
		{
			Name: ContractWeightedFarmingPool,
			Mode: ModeDirect,
			Args: []Arg{Ref(ContractPolicyCenter), Ref(ContractPriorityPoolFactory)},
			Tags: []string{TagCore},
		},
		{
			Name:   ContractPriceGetter,
			Mode:   ModeDirect,
			Tags:   []string{TagOracle},
			OnlyOn: mainnetOnly,
		},
		{
			Name: ContractMockERC20,
			Mode: ModeDirect,
			Args: []Arg{Lit("TestToken1"), Lit("TT"), Lit(uint8(18))},
			Tags: []string{TagMocks},
		},
		{
			Name: ContractPayoutPool,
			Mode: ModeProxied,
			Args: []Arg{
				shield,
				Ref(ContractPolicyCenter),
				Ref(ContractCoverRightTokenFactory),
				Ref(ContractPriorityPoolFactory),
			},
			Tags: []string{TagCore},
		},
		{
			Name: ContractPriorityPoolDeployer,
			Mode: ModeProxied,
			Args: []Arg{
				Ref(ContractPriorityPoolFactory),
				Ref(ContractWeightedFarmingPool),
				Ref(ContractProtectionPool),
				Ref(ContractPolicyCenter),
				Ref(ContractPayoutPool),
			},
			Tags: []string{TagCore},
		},
		{
			Name: ContractProtectionPoolMiningToken,
			Mode: ModeProxied,
			Args: []Arg{Lit("ProtectionPoolMiningToken"), Lit("PMT"), Ref(ContractProtectionPool)},
			Tags: []string{TagCore},
		},
		{
			Name:   ContractDexPriceGetter,
			Mode:   ModeProxied,
			Args:   []Arg{Ref(ContractPriceGetter)},
			Tags:   []string{TagOracle},
			OnlyOn: avaxFamily,
		},
		{
			Name:   ContractSwapHelper,
			Mode:   ModeProxied,
			Tags:   []string{TagOracle},
			OnlyOn: avaxFamilyAndArb,
		},
		{
			Name:   ContractDexPriceGetterV2,
			Mode:   ModeProxied,
			Args:   []Arg{Ref(ContractPriceGetter)},
			Tags:   []string{TagOracle},
			OnlyOn: avaxFamilyAndArb,
		},
	}
}
