package handler

import (
	"encoding/json"

	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

type ProjectParams struct {
	Project     string `param:"project"`
	Name        string `                json:"name"`
	Description string `                json:"description"`
}

type CriteriaParams struct {
	Project string            `param:"project"`
	Tag     string            `                json:"tag"`
	Form    map[string]string `                json:"form"`
}

type StepParams struct {
	Kind string          `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

type TemplateParams struct {
	Project    string       `param:"project"`
	Wrappers   []StepParams `                json:"wrappers"`
	Builders   []StepParams `                json:"builders"`
	Publishers []StepParams `                json:"publishers"`
}

type CandidateParams struct {
	scm.Branch
	Node     string `json:"node"`
	Checkout string `json:"checkout"`
}

type ReconcileParams struct {
	Project  string            `param:"project"`
	Branches []CandidateParams `                json:"branches"`
}

type JobParams struct {
	Project string `param:"project"`
	Job     string `param:"job"`
}

type BuildParams struct {
	Project string `param:"project"`
	Job     string `param:"job"`
	Node    string `                json:"node"`
}

type BuildIDParams struct {
	BuildID string `param:"build_id"`
	Passed  bool   `                 json:"passed"`
}

type NodeParams struct {
	Node          string `param:"node"`
	Name          string `             json:"name"`
	Hostname      string `             json:"hostname"`
	Workspace     string `             json:"workspace"`
	Username      string `             json:"username"`
	SSHPrivateKey string `             json:"ssh_private_key"`
	Description   string `             json:"description"`
	Online        *bool  `             json:"online"`
}

type StepListParams struct {
	Capability steps.Capability `query:"capability"`
}

type ConfigParams struct {
	CleanupHour       uint    `json:"cleanup_hour"`
	DefaultMarkerFile string  `json:"default_marker_file"`
	LeaseWaitSeconds  float64 `json:"lease_wait_seconds"`
	RateLimit         float64 `json:"rate_limit"`
}
