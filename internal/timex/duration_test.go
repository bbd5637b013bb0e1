package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"1.5s"`, 1500 * time.Millisecond, false},
		{"nanoseconds", `2000000000`, 2 * time.Second, false},
		{"bad string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
		{"malformed", `{`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tc.in), &d)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))
}

func TestDuration_YAML(t *testing.T) {
	var cfg struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 5s\nb: 1000\n"), &cfg))
	assert.Equal(t, 5*time.Second, cfg.A.Duration)
	assert.Equal(t, time.Microsecond, cfg.B.Duration)

	cfg.B.Duration = 2 * time.Minute
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "a: 5s\nb: 2m0s\n", string(out))
}

func TestDuration_YAMLErrors(t *testing.T) {
	var cfg struct {
		A Duration `yaml:"a"`
	}
	require.Error(t, yaml.Unmarshal([]byte("a: later\n"), &cfg))
	require.Error(t, yaml.Unmarshal([]byte("a: [1, 2]\n"), &cfg))
}
