package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/core/domain"
)

func TestParseSpec_NameOnly(t *testing.T) {
	parsed := domain.ParseSpec("numpy")
	require.NotNil(t, parsed)
	assert.Equal(t, "numpy", parsed.Name)
	assert.Empty(t, parsed.CondaConstraint)
	assert.Empty(t, parsed.PipConstraint)
	assert.Empty(t, parsed.ExactVersion)
}

func TestParseSpec_LowercasesName(t *testing.T) {
	parsed := domain.ParseSpec("Flask-SQLAlchemy")
	require.NotNil(t, parsed)
	assert.Equal(t, "flask-sqlalchemy", parsed.Name)
}

func TestParseSpec_CondaVersionPin(t *testing.T) {
	parsed := domain.ParseSpec("numpy=1.11")
	require.NotNil(t, parsed)
	assert.Equal(t, "numpy", parsed.Name)
	assert.Equal(t, "=1.11", parsed.CondaConstraint)
	assert.Equal(t, "1.11", parsed.ExactVersion)
	assert.Empty(t, parsed.ExactBuild)
}

func TestParseSpec_CondaVersionBuildPin(t *testing.T) {
	parsed := domain.ParseSpec("numpy=1.11=py36_0")
	require.NotNil(t, parsed)
	assert.Equal(t, "=1.11=py36_0", parsed.CondaConstraint)
	assert.Equal(t, "1.11", parsed.ExactVersion)
	assert.Equal(t, "py36_0", parsed.ExactBuild)
}

func TestParseSpec_MultiValueVersionIsNotExact(t *testing.T) {
	for _, spec := range []string{"numpy=1.11|1.12", "numpy=1.11.*", "numpy=1.11,1.12"} {
		parsed := domain.ParseSpec(spec)
		require.NotNil(t, parsed, spec)
		assert.NotEmpty(t, parsed.CondaConstraint, spec)
		assert.Empty(t, parsed.ExactVersion, spec)
		assert.Empty(t, parsed.ExactBuild, spec)
	}
}

func TestParseSpec_PipStyleConstraint(t *testing.T) {
	parsed := domain.ParseSpec("numpy >= 1.11, < 2")
	require.NotNil(t, parsed)
	assert.Equal(t, "numpy", parsed.Name)
	assert.Equal(t, ">=1.11,<2", parsed.PipConstraint)
	assert.Empty(t, parsed.ExactVersion)
}

func TestParseSpec_PipDoubleEqualsIsExact(t *testing.T) {
	parsed := domain.ParseSpec("numpy==1.11.2")
	require.NotNil(t, parsed)
	assert.Equal(t, "==1.11.2", parsed.PipConstraint)
	assert.Equal(t, "1.11.2", parsed.ExactVersion)
	assert.Empty(t, parsed.ExactBuild)
}

func TestParseSpec_Unparsable(t *testing.T) {
	for _, spec := range []string{"", "=1.2", ">=1.0"} {
		assert.Nil(t, domain.ParseSpec(spec), spec)
	}
}

func TestSpecName(t *testing.T) {
	assert.Equal(t, "numpy", domain.SpecName("numpy=1.11=py36_0"))
	assert.Equal(t, "=bogus", domain.SpecName("=bogus"))
}
