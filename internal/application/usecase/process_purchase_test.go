package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	apperrors "github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

type purchaseGateway struct {
	calls       []string
	mintErr     error
	transferErr error
	transferTo  string
}

func (g *purchaseGateway) CreateFungibleToken(_ context.Context, _ domainledger.CreateTokenOptions) (*domainledger.TokenCreation, error) {
	g.calls = append(g.calls, "create")
	return nil, nil
}

func (g *purchaseGateway) Mint(_ context.Context, _ string, _ uint64) (*domainledger.Receipt, error) {
	g.calls = append(g.calls, "mint")
	if g.mintErr != nil {
		return nil, g.mintErr
	}
	return &domainledger.Receipt{Status: "SUCCESS", TransactionID: "mint-tx"}, nil
}

func (g *purchaseGateway) Transfer(_ context.Context, _ string, _, to string, _ int64) (*domainledger.Receipt, error) {
	g.calls = append(g.calls, "transfer")
	g.transferTo = to
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	return &domainledger.Receipt{Status: "SUCCESS", TransactionID: "transfer-tx"}, nil
}

func (g *purchaseGateway) HbarBalance(_ context.Context, _ string) (float64, error) {
	return 0, nil
}

func (g *purchaseGateway) TokenInfo(_ context.Context, _ string) (*domainledger.TokenInfo, error) {
	return nil, nil
}

func (g *purchaseGateway) Operator() string { return "0.0.1001" }

type staticResolver struct {
	account string
}

func (r *staticResolver) ResolveAccount(_ context.Context, _ string) (string, error) {
	return r.account, nil
}

func validCommand() PurchaseCommand {
	return PurchaseCommand{
		TokenID: "0.0.5005",
		Amount:  100,
		Proof: domainledger.PaymentProof{
			TxHash: "0xpaid",
			Payer:  "0xbuyer",
		},
	}
}

func TestProcessPurchase_MintThenTransfer(t *testing.T) {
	gw := &purchaseGateway{}
	uc := NewProcessPurchaseUseCase(gw, &staticResolver{account: "0.0.1234"}, zap.NewNop())

	result, err := uc.Execute(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(gw.calls) != 2 || gw.calls[0] != "mint" || gw.calls[1] != "transfer" {
		t.Fatalf("expected mint then transfer, got %v", gw.calls)
	}
	if gw.transferTo != "0.0.1234" {
		t.Fatalf("transfer must target the resolved buyer, got %q", gw.transferTo)
	}
	if result.MintTransactionID != "mint-tx" || result.TransferTransactionID != "transfer-tx" {
		t.Fatalf("transaction references lost: %+v", result)
	}
	if result.BuyerAccountID != "0.0.1234" {
		t.Fatalf("unexpected buyer %q", result.BuyerAccountID)
	}
}

func TestProcessPurchase_MissingProofRejectedBeforeLedger(t *testing.T) {
	gw := &purchaseGateway{}
	uc := NewProcessPurchaseUseCase(gw, &staticResolver{account: "0.0.1234"}, zap.NewNop())

	cmd := validCommand()
	cmd.Proof = domainledger.PaymentProof{}

	_, err := uc.Execute(context.Background(), cmd)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("ledger must not be reached, got %v", gw.calls)
	}
}

func TestProcessPurchase_NonPositiveAmountRejected(t *testing.T) {
	gw := &purchaseGateway{}
	uc := NewProcessPurchaseUseCase(gw, &staticResolver{account: "0.0.1234"}, zap.NewNop())

	cmd := validCommand()
	cmd.Amount = 0

	_, err := uc.Execute(context.Background(), cmd)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessPurchase_UnmappedPayerIsNotFound(t *testing.T) {
	gw := &purchaseGateway{}
	uc := NewProcessPurchaseUseCase(gw, &staticResolver{account: ""}, zap.NewNop())

	_, err := uc.Execute(context.Background(), validCommand())
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("nothing must be minted for an unmapped payer, got %v", gw.calls)
	}
}

func TestProcessPurchase_TransferFailureSurfacesAfterMint(t *testing.T) {
	gw := &purchaseGateway{transferErr: apperrors.NewOperationError("Token Transfer Transaction failed")}
	uc := NewProcessPurchaseUseCase(gw, &staticResolver{account: "0.0.1234"}, zap.NewNop())

	_, err := uc.Execute(context.Background(), validCommand())
	if !apperrors.IsOperation(err) {
		t.Fatalf("expected OPERATION_ERROR, got %v", err)
	}
	// 不自动重试: mint 与 transfer 各只调用一次
	if len(gw.calls) != 2 {
		t.Fatalf("no retries allowed, got %v", gw.calls)
	}
}
