package conda

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelArgs(t *testing.T) {
	assert.Nil(t, channelArgs(nil))
	assert.Equal(t,
		[]string{"--channel", "conda-forge", "--channel", "bioconda", "--override-channels"},
		channelArgs([]string{"conda-forge", "bioconda"}))
}

func TestChannelArgs_OverrideOptOut(t *testing.T) {
	t.Setenv(noOverrideChannelsEnv, "1")
	assert.Equal(t,
		[]string{"--channel", "conda-forge"},
		channelArgs([]string{"conda-forge"}))
}

func TestExtractLinkEntries_StructuredActionObject(t *testing.T) {
	response := json.RawMessage(`{
		"actions": {
			"LINK": [
				{"name": "python", "version": "3.11.4", "build_string": "h2755cc3_0"},
				{"name": "numpy", "version": "1.26.0", "build_string": "py311_0"}
			]
		}
	}`)
	resolved := extractLinkEntries(response)
	require.Len(t, resolved, 2)
	assert.Equal(t, "python=3.11.4=h2755cc3_0", resolved[0].PinnedSpec())
	assert.Equal(t, "numpy=1.26.0=py311_0", resolved[1].PinnedSpec())
}

func TestExtractLinkEntries_ActionList(t *testing.T) {
	response := json.RawMessage(`{
		"actions": [
			{"LINK": [{"name": "python", "version": "3.11.4", "build_string": "h0_0"}]},
			{"LINK": [{"name": "pip", "version": "23.2", "build_string": "py311_0"}]}
		]
	}`)
	resolved := extractLinkEntries(response)
	require.Len(t, resolved, 2)
	assert.Equal(t, "python", resolved[0].Name)
	assert.Equal(t, "pip", resolved[1].Name)
}

func TestExtractLinkEntries_LegacyDistStrings(t *testing.T) {
	// older conda emits dist strings, sometimes with trailing junk
	// after the first whitespace
	response := json.RawMessage(`{
		"actions": {
			"LINK": ["openssl-1.0.2l-0 2", "python-3.6.1-2"]
		}
	}`)
	resolved := extractLinkEntries(response)
	require.Len(t, resolved, 2)
	assert.Equal(t, "openssl=1.0.2l=0", resolved[0].PinnedSpec())
	assert.Equal(t, "python=3.6.1=2", resolved[1].PinnedSpec())
}

func TestExtractLinkEntries_UnusableShapes(t *testing.T) {
	for name, response := range map[string]string{
		"no actions":      `{"success": true}`,
		"empty actions":   `{"actions": {}}`,
		"malformed links": `{"actions": {"LINK": [42, "noversion"]}}`,
	} {
		assert.Empty(t, extractLinkEntries(json.RawMessage(response)), name)
	}
}
