package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
)

// Candidate is one discovered head offered to a project. Probe may be nil
// when the project accepts every head.
type Candidate struct {
	Branch scm.Branch
	Probe  scm.Probe
}

type ReconcileResult struct {
	Created  []string          `json:"created"`
	Updated  []string          `json:"updated"`
	Deleted  []string          `json:"deleted"`
	Excluded []string          `json:"excluded"`
	Skipped  []string          `json:"skipped"`
	Failed   map[string]string `json:"failed"`
	Log      string            `json:"log"`
}

// Reconcile brings the project's jobs in line with candidates: included
// heads get a job or are rebound, jobs whose head is gone or excluded are
// deleted. Heads whose criteria could not be evaluated keep their job.
func (s *ProjectService) Reconcile(
	ctx context.Context,
	project string,
	candidates []Candidate,
) (*ReconcileResult, error) {
	p, err := s.GetProject(ctx, project)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(project)
	defer unlock()

	var buf bytes.Buffer
	result := &ReconcileResult{
		Created:  []string{},
		Updated:  []string{},
		Deleted:  []string{},
		Excluded: []string{},
		Skipped:  []string{},
		Failed:   map[string]string{},
	}
	c := p.Criteria()
	f := p.NewProjectFactory()
	keep := make(map[string]bool, len(candidates))

	for _, cand := range candidates {
		name := cand.Branch.EncodedName()
		if _, seen := keep[name]; seen {
			fmt.Fprintf(&buf, "Skipping %s: %s is already taken\n", cand.Branch.Name, name)
			result.Skipped = append(result.Skipped, cand.Branch.Name)
			continue
		}

		include, err := isHead(c, cand, &buf)
		if err != nil {
			fmt.Fprintf(&buf, "Could not evaluate %s: %v\n", cand.Branch.Name, err)
			result.Failed[name] = err.Error()
			keep[name] = true
			continue
		}
		keep[name] = include
		if !include {
			result.Excluded = append(result.Excluded, name)
			continue
		}

		if job, ok := p.Item(name); ok {
			f.SetBranch(ctx, job, cand.Branch)
			result.Updated = append(result.Updated, name)
			continue
		}
		job, err := f.NewInstance(cand.Branch)
		if err != nil {
			result.Failed[name] = err.Error()
			continue
		}
		// an unsaved job stays out of the project so the next pass creates it again
		if err := job.Save(ctx); err != nil {
			log.Printf("err saving new job %s/%s: %+v\n", project, name, err)
			result.Failed[name] = err.Error()
			continue
		}
		if err := p.Put(job); err != nil {
			result.Failed[name] = err.Error()
			continue
		}
		result.Created = append(result.Created, name)
	}

	for _, job := range p.Items() {
		if keep[job.Name()] {
			continue
		}
		if err := s.branchJobStore.DeleteBranchJob(ctx, project, job.Name()); err != nil {
			log.Printf("err deleting job %s/%s: %+v\n", project, job.Name(), err)
			result.Failed[job.Name()] = err.Error()
			continue
		}
		p.Remove(job.Name())
		result.Deleted = append(result.Deleted, job.Name())
	}

	result.Log = buf.String()
	return result, nil
}

func isHead(c criteria.Criteria, cand Candidate, buf *bytes.Buffer) (bool, error) {
	if cand.Probe == nil {
		if !criteria.IsAcceptAll(c) {
			return false, ErrNoProbe
		}
		return true, nil
	}
	return c.IsHead(cand.Probe, buf)
}

// EvaluateCandidates reports which candidates c includes, keyed by encoded
// name, without touching any project.
func EvaluateCandidates(c criteria.Criteria, candidates []Candidate) (map[string]bool, string, error) {
	var buf bytes.Buffer
	out := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		include, err := isHead(c, cand, &buf)
		if err != nil {
			return nil, buf.String(), fmt.Errorf("evaluating %s: %w", cand.Branch.Name, err)
		}
		out[cand.Branch.EncodedName()] = include
	}
	return out, buf.String(), nil
}

var _ multibranch.Persister = (*ProjectService)(nil)
