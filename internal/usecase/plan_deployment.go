package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/shieldworks/protect/internal/domain"
)

// PlanDeployment selects, orders and pre-flights deploy units for a network.
type PlanDeployment struct {
	store     RegistryStore
	tokens    *ResolveExternalTokens
	catalog   domain.Catalog
	suggester UnitSuggester
	log       *slog.Logger
}

// NewPlanDeployment creates a new deployment planner
func NewPlanDeployment(
	store RegistryStore,
	tokens *ResolveExternalTokens,
	catalog domain.Catalog,
	suggester UnitSuggester,
	log *slog.Logger,
) *PlanDeployment {
	return &PlanDeployment{
		store:     store,
		tokens:    tokens,
		catalog:   catalog,
		suggester: suggester,
		log:       log,
	}
}

// PlanParams contains parameters for planning
type PlanParams struct {
	Network string
	// Select holds unit names or tags. Empty selects the whole catalog.
	Select []string
	// Redeploy names units to run even when already recorded.
	Redeploy []string
	// Upgrade names proxied units whose logic is replaced behind the existing proxy.
	Upgrade []string
}

// PlanStep is one ordered unit of a deployment plan.
type PlanStep struct {
	Name         string            `json:"name"`
	Artifact     string            `json:"artifact"`
	Mode         domain.DeployMode `json:"mode"`
	Inputs       []string          `json:"inputs,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Recorded     bool              `json:"recorded"`
	Address      common.Address    `json:"address,omitempty"`
	Action       PlanAction        `json:"action"`
}

// PlanAction is what executing a step will do.
type PlanAction string

const (
	ActionDeploy   PlanAction = "deploy"
	ActionRedeploy PlanAction = "redeploy"
	ActionUpgrade  PlanAction = "upgrade"
	ActionSkip     PlanAction = "skip"
)

// DeploymentPlan is the ordered, pre-flighted list of units for one network.
type DeploymentPlan struct {
	Network string                `json:"network"`
	Tokens  domain.ExternalTokens `json:"tokens"`
	Steps   []PlanStep            `json:"steps"`
	Units   []domain.Unit         `json:"-"`
}

// Run plans a deployment. It fails with ErrUnknownUnit for a bad selection and with
// a MissingDependencyError when any input can't be satisfied, before any chain call.
func (p *PlanDeployment) Run(ctx context.Context, params PlanParams) (*DeploymentPlan, error) {
	network := domain.Normalize(params.Network)

	selected, err := p.selectUnits(params.Select)
	if err != nil {
		return nil, err
	}
	for _, name := range append(append([]string(nil), params.Redeploy...), params.Upgrade...) {
		if _, ok := p.catalog.Find(name); !ok {
			return nil, p.unknown(name)
		}
	}
	for _, name := range params.Upgrade {
		if u, _ := p.catalog.Find(name); u.Mode != domain.ModeProxied {
			return nil, fmt.Errorf("cannot upgrade %s: only proxied units can be upgraded", name)
		}
	}

	applicable := lo.Filter(selected, func(u domain.Unit, _ int) bool {
		return u.AppliesTo(network)
	})

	ordered, err := NewUnitGraph(applicable, p.catalog, network).TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to order units: %w", err)
	}

	book, err := addressBookOrEmpty(p.store)
	if err != nil {
		return nil, err
	}

	if err := p.Preflight(network, ordered, book); err != nil {
		return nil, err
	}
	tokens, err := p.tokensAfterPlan(ctx, network, ordered)
	if err != nil {
		return nil, err
	}

	graph := NewUnitGraph(ordered, p.catalog, network)
	plan := &DeploymentPlan{
		Network: network,
		Tokens:  tokens,
		Units:   ordered,
	}
	for _, u := range ordered {
		addr, recorded := book.Lookup(network, u.Name)
		step := PlanStep{
			Name:         u.Name,
			Artifact:     u.ArtifactName(),
			Mode:         u.Mode,
			Inputs:       u.Inputs(network),
			Dependencies: graph.Dependencies(u.Name),
			Recorded:     recorded,
			Address:      addr,
			Action:       ActionDeploy,
		}
		switch {
		case recorded && slices.Contains(params.Upgrade, u.Name):
			step.Action = ActionUpgrade
		case recorded && slices.Contains(params.Redeploy, u.Name):
			step.Action = ActionRedeploy
		case recorded:
			step.Action = ActionSkip
		}
		plan.Steps = append(plan.Steps, step)
	}

	p.log.Debug("deployment planned", "network", network, "units", len(plan.Steps))
	return plan, nil
}

// Preflight checks that every input of every unit is recorded in the book or produced
// by an earlier unit of the same plan. All missing keys are reported together.
func (p *PlanDeployment) Preflight(network string, ordered []domain.Unit, book domain.AddressBook) error {
	available := make(map[string]bool)
	for _, name := range book.Names(network) {
		available[name] = true
	}

	var missing []domain.MissingKey
	for _, u := range ordered {
		for _, key := range u.Inputs(network) {
			if !available[key] {
				missing = append(missing, domain.MissingKey{Consumer: u.Name, Key: key})
			}
		}
		for _, key := range u.Outputs() {
			available[key] = true
		}
	}

	if len(missing) > 0 {
		return &domain.MissingDependencyError{Network: network, Missing: missing}
	}
	return nil
}

// tokensAfterPlan resolves external tokens; mocks still to be deployed by the plan
// resolve to the zero address until they are recorded.
func (p *PlanDeployment) tokensAfterPlan(ctx context.Context, network string, ordered []domain.Unit) (domain.ExternalTokens, error) {
	tokens, err := p.tokens.Run(ctx, network)
	var mde *domain.MissingDependencyError
	if errors.As(err, &mde) {
		planned := lo.Map(ordered, func(u domain.Unit, _ int) string { return u.Name })
		for _, key := range mde.Keys() {
			if !slices.Contains(planned, key) {
				return domain.ExternalTokens{}, err
			}
		}
		return domain.ExternalTokens{}, nil
	}
	return tokens, err
}

func (p *PlanDeployment) selectUnits(selection []string) ([]domain.Unit, error) {
	if len(selection) == 0 {
		return append([]domain.Unit(nil), p.catalog...), nil
	}

	var units []domain.Unit
	seen := make(map[string]bool)
	add := func(u domain.Unit) {
		if !seen[u.Name] {
			seen[u.Name] = true
			units = append(units, u)
		}
	}

	for _, name := range selection {
		if u, ok := p.catalog.Find(name); ok {
			add(u)
			continue
		}
		tagged := p.catalog.WithTag(name)
		if len(tagged) == 0 {
			return nil, p.unknown(name)
		}
		for _, u := range tagged {
			add(u)
		}
	}
	return units, nil
}

func (p *PlanDeployment) unknown(name string) error {
	candidates := append(p.catalog.Names(), p.catalog.Tags()...)
	var suggestions []string
	if p.suggester != nil {
		suggestions = p.suggester.Suggest(name, candidates)
	}
	return domain.UnknownUnitErr{Name: name, Suggestions: suggestions}
}

// Catalog returns the units known to the planner.
func (p *PlanDeployment) Catalog() domain.Catalog {
	return p.catalog
}
