package protocol

import (
	"testing"

	"github.com/oakmill/wheelwright/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := &BuildRequest{
		Recipe:    manifest.Wheel(manifest.WheelOptions{Distribution: "ecs-composex"}),
		Resource:  "ecs-composex",
		Output:    "dist",
		Root:      ".",
		Platforms: []string{"linux/amd64"},
	}

	data, err := Encode(CmdBuild, req)
	require.NoError(t, err)

	env, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CmdBuild, env.Command)

	decoded, err := DecodePayload[BuildRequest](payload)
	require.NoError(t, err)
	assert.Equal(t, req.Resource, decoded.Resource)
	assert.Equal(t, req.Platforms, decoded.Platforms)
	require.NotNil(t, decoded.Recipe)
	assert.Len(t, decoded.Recipe.Stages, 2)
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdShutdown, nil)
	require.NoError(t, err)

	env, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CmdShutdown, env.Command)
	assert.Empty(t, payload)

	// Decoding an empty payload yields a zero value, not an error.
	res, err := DecodePayload[HistoryRequest](payload)
	require.NoError(t, err)
	assert.Zero(t, res.Limit)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode([]byte("{not json"))
	assert.ErrorIs(t, err, ErrProtocol)

	_, _, err = Decode([]byte(`{"payload": {}}`))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodePayloadError(t *testing.T) {
	_, err := DecodePayload[BuildRequest]([]byte(`"not an object"`))
	assert.ErrorIs(t, err, ErrProtocol)
}
