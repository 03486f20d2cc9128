package csvio

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

func TestWriterFixedPrecisionOutput(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	account := engine.Account{
		ClientID:  2,
		Available: decimal.NewFromInt(3),
		Held:      decimal.Zero,
	}

	require.NoError(t, writer.Write(context.Background(), account))
	require.NoError(t, writer.Flush())

	assert.Equal(t,
		"client,available,held,total,locked\n2,3.0000,0.0000,3.0000,false\n",
		buf.String())
}

func TestWriterNegativeAndLocked(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	account := engine.Account{
		ClientID:  1,
		Available: decimal.RequireFromString("-1"),
		Held:      decimal.Zero,
		Locked:    true,
	}

	require.NoError(t, writer.Write(context.Background(), account))
	require.NoError(t, writer.Flush())

	assert.Equal(t,
		"client,available,held,total,locked\n1,-1.0000,0.0000,-1.0000,true\n",
		buf.String())
}

func TestWriterSubCentPrecision(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	account := engine.Account{
		ClientID:  9,
		Available: decimal.RequireFromString("1.12345"),
		Held:      decimal.RequireFromString("0.5"),
	}

	require.NoError(t, writer.Write(context.Background(), account))
	require.NoError(t, writer.Flush())

	assert.Equal(t,
		"client,available,held,total,locked\n9,1.1235,0.5000,1.6235,false\n",
		buf.String())
}
