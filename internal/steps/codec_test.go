package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodec_EncodeDecode(t *testing.T) {
	t.Run("success - steps survive encoding", func(t *testing.T) {
		// arrange
		items := []Step{
			&EnvWrapper{Variables: map[string]string{"GOFLAGS": "-mod=mod"}},
			&ShellBuilder{Script: "go test ./...", TimeoutSeconds: 600},
			&NotifyPublisher{Recipients: []string{"a@example.com", "b@example.com"}, OnlyOnFailure: true},
		}

		// act
		data, err := Default.Encode(items)
		assert.NoError(t, err)
		decoded, err := Default.Decode(data)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, items, decoded)
	})
	t.Run("failure - unknown kind", func(t *testing.T) {
		// arrange
		data := []byte("- kind: groovy\n  spec:\n    script: println 1\n")

		// act
		_, err := Default.Decode(data)

		// assert
		var kindErr UnknownKindError
		assert.True(t, errors.As(err, &kindErr))
		assert.Equal(t, "groovy", kindErr.Kind)
	})
}

func TestCodec_DecodeSpec(t *testing.T) {
	t.Run("success - json spec is accepted", func(t *testing.T) {
		// act
		s, err := Default.DecodeSpec(KindShell, []byte(`{"script": "make", "timeout_seconds": 30}`))

		// assert
		assert.NoError(t, err)
		assert.Equal(t, &ShellBuilder{Script: "make", TimeoutSeconds: 30}, s)
	})
	t.Run("success - empty spec gives zero step", func(t *testing.T) {
		// act
		s, err := Default.DecodeSpec(KindTimeout, nil)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, &TimeoutWrapper{}, s)
	})
}

func TestCodec_Clone(t *testing.T) {
	t.Run("success - clone shares no state", func(t *testing.T) {
		// arrange
		env := &EnvWrapper{Variables: map[string]string{"A": "1"}}

		// act
		cloned, err := Default.Clone([]Step{env})
		env.Variables["A"] = "2"

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "1", cloned[0].(*EnvWrapper).Variables["A"])
	})
}
