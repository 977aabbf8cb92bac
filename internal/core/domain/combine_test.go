package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/keel/internal/core/domain"
)

func TestCombineKeepingLastDuplicate_OverridesInPlace(t *testing.T) {
	combined := domain.CombineKeepingLastDuplicate(
		[]string{"a=1", "b=1"},
		[]string{"a=2", "c=1"},
		domain.SpecName,
	)
	// the overridden entry keeps its position but carries the later
	// content
	assert.Equal(t, []string{"a=2", "b=1", "c=1"}, combined)
}

func TestCombineKeepingLastDuplicate_EmptySides(t *testing.T) {
	assert.Equal(t, []string{"a"}, domain.CombineKeepingLastDuplicate(nil, []string{"a"}, nil))
	assert.Equal(t, []string{"a"}, domain.CombineKeepingLastDuplicate([]string{"a"}, nil, nil))
	assert.Empty(t, domain.CombineKeepingLastDuplicate(nil, nil, nil))
}
