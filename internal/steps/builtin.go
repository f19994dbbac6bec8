package steps

const (
	KindEnv       = "env"
	KindTimeout   = "timeout"
	KindShell     = "shell"
	KindArtifacts = "artifacts"
	KindNotify    = "notify"
)

type EnvWrapper struct {
	Variables map[string]string `json:"variables" yaml:"variables"`
}

func (EnvWrapper) Kind() string { return KindEnv }

type TimeoutWrapper struct {
	Minutes    int64 `json:"minutes"     yaml:"minutes"`
	AbortBuild bool  `json:"abort_build" yaml:"abort_build"`
}

func (TimeoutWrapper) Kind() string { return KindTimeout }

type ShellBuilder struct {
	Script         string `json:"script"          yaml:"script"`
	TimeoutSeconds int64  `json:"timeout_seconds" yaml:"timeout_seconds"`
}

func (ShellBuilder) Kind() string { return KindShell }

type ArtifactPublisher struct {
	Pattern    string `json:"pattern"     yaml:"pattern"`
	AllowEmpty bool   `json:"allow_empty" yaml:"allow_empty"`
}

func (ArtifactPublisher) Kind() string { return KindArtifacts }

type NotifyPublisher struct {
	Recipients    []string `json:"recipients"      yaml:"recipients"`
	OnlyOnFailure bool     `json:"only_on_failure" yaml:"only_on_failure"`
}

func (NotifyPublisher) Kind() string { return KindNotify }
