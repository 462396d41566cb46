package ledger

import (
	"testing"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

func TestBuildTransferLegs_BalancedPair(t *testing.T) {
	legs := BuildTransferLegs("0.0.1001", "0.0.1234", 50)

	if len(legs) != 2 {
		t.Fatalf("expected two legs, got %d", len(legs))
	}
	if legs[0].AccountID != "0.0.1001" || legs[0].Amount != -50 {
		t.Fatalf("unexpected debit leg: %+v", legs[0])
	}
	if legs[1].AccountID != "0.0.1234" || legs[1].Amount != 50 {
		t.Fatalf("unexpected credit leg: %+v", legs[1])
	}
	if legs[0].Amount+legs[1].Amount != 0 {
		t.Fatal("legs must net to zero")
	}
}

func TestCheckReceiptStatus_NonSuccessIsOperationError(t *testing.T) {
	err := checkReceiptStatus("INSUFFICIENT_TOKEN_BALANCE", "Token Minting Transaction failed")
	if err == nil {
		t.Fatal("expected operation error")
	}
	if !errors.IsOperation(err) {
		t.Fatalf("expected OPERATION_ERROR, got %v", err)
	}
	if err.Error() != "[OPERATION_ERROR] Token Minting Transaction failed" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCheckReceiptStatus_SuccessPasses(t *testing.T) {
	if err := checkReceiptStatus("SUCCESS", "Token Minting Transaction failed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewHederaGateway_MissingOperatorIsConfigurationError(t *testing.T) {
	_, err := NewHederaGateway(Config{Network: "testnet"}, zap.NewNop())
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestNewHederaGateway_UnknownNetworkRejected(t *testing.T) {
	_, err := NewHederaGateway(Config{
		Network:     "devnet",
		OperatorID:  "0.0.1001",
		OperatorKey: "302e0201",
	}, zap.NewNop())
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
}
