package service

import (
	"context"
	"sync"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

// OrganizationFactory creates projects for the repositories of an
// organization. Each project starts with a private copy of the prototype
// template and the organization's criteria.
type OrganizationFactory struct {
	projectService ProjectServicer

	mu        sync.RWMutex
	criteria  criteria.Criteria
	prototype *multibranch.Project
}

func NewOrganizationFactory(name string, ps ProjectServicer, registry *steps.Registry) *OrganizationFactory {
	return &OrganizationFactory{
		projectService: ps,
		criteria:       criteria.AlwaysInclude{},
		prototype:      multibranch.NewProject(name, registry, nil),
	}
}

// Prototype is the factory whose template new projects copy.
func (o *OrganizationFactory) Prototype() *multibranch.Factory {
	return o.prototype.NewProjectFactory()
}

func (o *OrganizationFactory) Criteria() criteria.Criteria {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.criteria
}

func (o *OrganizationFactory) SetCriteria(c criteria.Criteria) {
	if c == nil {
		c = criteria.AlwaysInclude{}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criteria = c
}

func (o *OrganizationFactory) CreateProject(ctx context.Context, name string) (*multibranch.Project, error) {
	p, err := multibranch.NewProjectFrom(name, o.Prototype(), nil)
	if err != nil {
		return nil, err
	}
	p.SetCriteria(o.Criteria())
	if err := o.projectService.AddProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
