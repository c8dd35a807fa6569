package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

type stubStep struct{ id provision.StepID }

func (s stubStep) ID() provision.StepID { return s.id }
func (s stubStep) Check(provision.RunContext) (provision.StepStatus, error) {
	return provision.StatusSatisfied, nil
}
func (s stubStep) Plan(provision.RunContext) (provision.Diff, error) { return provision.Diff{}, nil }
func (s stubStep) Apply(provision.RunContext) error                  { return nil }
func (s stubStep) Verify(provision.RunContext) (bool, error)         { return true, nil }
func (s stubStep) Explain() provision.Explanation                    { return provision.Explanation{} }

type stubProvider struct {
	name  string
	steps []string
	err   error
}

func (p stubProvider) Name() string        { return p.name }
func (p stubProvider) Title() string       { return "Title " + p.name }
func (p stubProvider) Description() string { return "Description " + p.name }
func (p stubProvider) Compile(*config.Config) ([]provision.Step, error) {
	if p.err != nil {
		return nil, p.err
	}
	steps := make([]provision.Step, 0, len(p.steps))
	for _, id := range p.steps {
		steps = append(steps, stubStep{id: provision.MustNewStepID(id)})
	}
	return steps, nil
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	reg, err := BuildRegistry(config.Default(),
		stubProvider{name: "repository", steps: []string{"apt:sources"}},
		stubProvider{name: "telemetry"},
		stubProvider{name: "docker", steps: []string{"docker:engine", "docker:group"}},
	)
	require.NoError(t, err)

	groups := reg.Groups()
	require.Len(t, groups, 2, "empty groups are skipped")
	assert.Equal(t, "repository", groups[0].ID)
	assert.Equal(t, "Title repository", groups[0].Title)
	assert.Equal(t, "docker", groups[1].ID)
	assert.Len(t, groups[1].Steps, 2)
}

func TestBuildRegistry_Errors(t *testing.T) {
	t.Parallel()

	_, err := BuildRegistry(config.Default(), stubProvider{name: "docker", err: errors.New("bad arch list")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider docker: bad arch list")

	_, err = BuildRegistry(config.Default(),
		stubProvider{name: "docker", steps: []string{"docker:engine"}},
		stubProvider{name: "docker", steps: []string{"docker:group"}},
	)
	assert.Error(t, err)
}
