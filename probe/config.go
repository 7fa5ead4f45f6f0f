package probe

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/icaprobe/fetch"
	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// DefaultBranch is used when the configuration names no branch.
const DefaultBranch = "master"

// Reasons carried by configuration errors raised while parsing input.
const (
	ReasonInvalidInput  = "invalid input"
	ReasonInvalidConfig = "invalid configuration"
	ReasonMissingToken  = "missing credential"
)

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	// report yaml key names instead of Go field names
	configValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Input is the document a probe run is invoked with. JSON is accepted as YAML.
type Input struct {
	Config     Config     `yaml:"config"`
	Credential Credential `yaml:"credential"`
}

// Config locates the dataset artifact and names its label columns.
type Config struct {
	Target       string   `yaml:"target" validate:"required_if=RepoType gitlab,required_if=RepoType gcs"`
	RepoType     string   `yaml:"repo_type" validate:"required,oneof=gitlab github file gcs"`
	Project      string   `yaml:"project" validate:"required_if=RepoType gitlab,required_if=RepoType github"`
	Branch       string   `yaml:"branch"`
	ArtifactPath string   `yaml:"artifact_path" validate:"required_unless=RepoType github"`
	JobName      string   `yaml:"job_name" validate:"required_if=RepoType gitlab"`
	ArtifactName string   `yaml:"artifact_name" validate:"required_if=RepoType github"`
	LabelColumns []string `yaml:"label_columns" validate:"dive,required"`
}

// Credential carries the provider token.
type Credential struct {
	Token string `yaml:"token"`
}

// ParseInput decodes and validates raw probe input, applying defaults.
// A non-empty token replaces credential.token before the token requirement
// is checked.
func ParseInput(raw []byte, token string) (*Input, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.NewConfigurationError(ReasonInvalidInput, "Probe input is empty.")
	}

	var in Input
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return nil, errors.NewConfigurationError(ReasonInvalidInput, "Probe input cannot be decoded: %v", err)
	}
	in.applyDefaults()
	if token != "" {
		in.Credential.Token = token
	}

	if err := configValidate.Struct(&in); err != nil {
		return nil, validationError(err)
	}
	if in.requiresToken() && in.Credential.Token == "" {
		return nil, errors.NewConfigurationError(ReasonMissingToken,
			"A credential token is required for repo_type '%s'.", in.Config.RepoType)
	}
	return &in, nil
}

func (in *Input) applyDefaults() {
	c := &in.Config
	c.RepoType = strings.ToLower(strings.TrimSpace(c.RepoType))
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.RepoType != fetch.RepoGitLab {
		c.JobName = ""
	}
	if c.RepoType != fetch.RepoGitHub {
		c.ArtifactName = ""
	}
}

func (in *Input) requiresToken() bool {
	return in.Config.RepoType == fetch.RepoGitLab || in.Config.RepoType == fetch.RepoGitHub
}

// Request converts the input into an artifact fetch request.
func (in *Input) Request() fetch.Request {
	c := in.Config
	return fetch.Request{
		RepoType:     c.RepoType,
		Target:       c.Target,
		Project:      c.Project,
		Branch:       c.Branch,
		ArtifactPath: c.ArtifactPath,
		JobName:      c.JobName,
		ArtifactName: c.ArtifactName,
		Token:        in.Credential.Token,
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.NewConfigurationError(ReasonInvalidConfig, "Invalid configuration: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.NewConfigurationError(ReasonInvalidConfig, "Invalid configuration: %s.", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "Input.config.repo_type"; drop the root type
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got '%v'", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed '%s'", field, fe.Tag())
	}
}
