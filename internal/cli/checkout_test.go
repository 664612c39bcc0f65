package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/espr/internal/checkout"
	"github.com/roach88/espr/internal/model"
)

func TestRenderOrderPlaced_NotSavedLocally(t *testing.T) {
	res := &checkout.Result{
		Order:          model.Order{OrderID: "ESPR-AB12CD"},
		ServerAssigned: true,
	}

	t.Run("text", func(t *testing.T) {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		out := &OutputFormatter{Format: "text", Writer: stdout, ErrWriter: stderr, Verbose: true}

		require.NoError(t, renderOrderPlaced(out, res))
		assert.Contains(t, stdout.String(), "ESPR-AB12CD")
		assert.Contains(t, stdout.String(), "could not be saved to the history on this device")
		assert.Contains(t, stderr.String(), "order ESPR-AB12CD was not saved to the local history")
	})

	t.Run("json", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		out := &OutputFormatter{Format: "json", Writer: stdout}

		require.NoError(t, renderOrderPlaced(out, res))
		resp := decodeResponse(t, stdout.String())
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, false, data["savedLocally"])
	})

	t.Run("saved", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		out := &OutputFormatter{Format: "text", Writer: stdout}

		saved := *res
		saved.SavedLocally = true
		require.NoError(t, renderOrderPlaced(out, &saved))
		assert.NotContains(t, stdout.String(), "could not be saved")
	})
}
