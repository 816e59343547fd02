package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpperSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SlotsPerEpoch", "SLOTS_PER_EPOCH"},
		{"MaxAttestations", "MAX_ATTESTATIONS"},
		{"EpochsPerHistoricalVector", "EPOCHS_PER_HISTORICAL_VECTOR"},
		{"EpochsPerEth1VotingPeriod", "EPOCHS_PER_ETH1_VOTING_PERIOD"},
		{"ETH1Voting", "ETH1_VOTING"},
		{"ETHVoting", "ETH_VOTING"},
		{"MaxBlsToExecutionChanges", "MAX_BLS_TO_EXECUTION_CHANGES"},
		{"KzgCommitmentInclusionProofDepth", "KZG_COMMITMENT_INCLUSION_PROOF_DEPTH"},
		{"MaxAttestationsElectra", "MAX_ATTESTATIONS_ELECTRA"},
		{"FieldElementsPerExtBlob", "FIELD_ELEMENTS_PER_EXT_BLOB"},
		{"BytesPerLogsBloom", "BYTES_PER_LOGS_BLOOM"},
		{"U64", "U64"},
		{"Slot", "SLOT"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, UpperSnake(tt.in))
		})
	}
}

func TestUpperSnakeDeterministic(t *testing.T) {
	for _, in := range []string{"SlotsPerEpoch", "EpochsPerEth1VotingPeriod"} {
		assert.Equal(t, UpperSnake(in), UpperSnake(in))
		// already converted names are fixed points
		assert.Equal(t, UpperSnake(in), UpperSnake(UpperSnake(in)))
	}
}
