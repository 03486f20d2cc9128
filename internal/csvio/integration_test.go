package csvio

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

type countingReporter struct {
	rejections int
	malformed  int
}

func (r *countingReporter) RejectedTransaction(engine.Transaction, error) { r.rejections++ }
func (r *countingReporter) MalformedRow(*engine.RowError)                 { r.malformed++ }

func runPipeline(t *testing.T, input string) (string, *countingReporter) {
	t.Helper()

	reporter := &countingReporter{}
	processor := engine.NewProcessor(reporter)

	var buf bytes.Buffer
	writer := NewWriter(&buf)
	require.NoError(t, processor.Run(context.Background(), NewReader(strings.NewReader(input)), writer))
	require.NoError(t, writer.Flush())

	return buf.String(), reporter
}

func TestSingleClientFullLifecycle(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,2\n" +
		"withdrawal,1,2,1\n" +
		"dispute,1,1,\n" +
		"resolve,1,1,\n" +
		"dispute,1,1,\n" +
		"chargeback,1,1,\n"

	output, reporter := runPipeline(t, input)

	assert.Equal(t,
		"client,available,held,total,locked\n1,-1.0000,0.0000,-1.0000,true\n",
		output)
	assert.Zero(t, reporter.rejections)
}

func TestMultipleClients(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,2\n" +
		"deposit,2,1,3\n" +
		"withdrawal,1,2,1\n" +
		"dispute,2,1,\n"

	output, reporter := runPipeline(t, input)

	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"1,1.0000,0.0000,1.0000,false\n"+
			"2,0.0000,3.0000,3.0000,false\n",
		output)
	assert.Zero(t, reporter.rejections)
}

func TestInvalidDisputeIsIgnored(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,2\n" +
		"dispute,1,2,\n"

	output, reporter := runPipeline(t, input)

	assert.Equal(t,
		"client,available,held,total,locked\n1,2.0000,0.0000,2.0000,false\n",
		output)
	assert.Equal(t, 1, reporter.rejections)
}

func TestWithdrawalCannotBeDisputed(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,2\n" +
		"withdrawal,1,2,2\n" +
		"dispute,1,2,\n"

	output, reporter := runPipeline(t, input)

	assert.Equal(t,
		"client,available,held,total,locked\n1,0.0000,0.0000,0.0000,false\n",
		output)
	assert.Equal(t, 1, reporter.rejections)
}

func TestMalformedRowsAreSkipped(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,2\n" +
		"deposit,1,2,notanumber\n" +
		"deposit,1,3,1\n"

	output, reporter := runPipeline(t, input)

	assert.Equal(t,
		"client,available,held,total,locked\n1,3.0000,0.0000,3.0000,false\n",
		output)
	assert.Equal(t, 1, reporter.malformed)
	assert.Zero(t, reporter.rejections)
}
