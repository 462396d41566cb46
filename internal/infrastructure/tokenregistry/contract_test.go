package tokenregistry

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

func parsedABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		t.Fatalf("abi must parse: %v", err)
	}
	return parsed
}

func TestRegistryABI_AddTokenIdSelector(t *testing.T) {
	parsed := parsedABI(t)

	data, err := parsed.Pack("addTokenId", "0.0.5005")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	want := crypto.Keccak256([]byte("addTokenId(string)"))[:4]
	if !bytes.Equal(data[:4], want) {
		t.Fatalf("selector mismatch: got %x want %x", data[:4], want)
	}
}

func TestRegistryABI_GetTokenIdsRoundTrip(t *testing.T) {
	parsed := parsedABI(t)

	// Encode a return value the way the contract would, then unpack it.
	encoded, err := parsed.Methods["getTokenIds"].Outputs.Pack([]string{"0.0.5005", "0.0.5006"})
	if err != nil {
		t.Fatalf("encode outputs: %v", err)
	}

	var ids []string
	if err := parsed.UnpackIntoInterface(&ids, "getTokenIds", encoded); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(ids) != 2 || ids[0] != "0.0.5005" || ids[1] != "0.0.5006" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
