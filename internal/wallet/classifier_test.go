package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrun/wrun/internal/wallet"
)

func TestPatternClassifier_Classify(t *testing.T) {
	tests := map[string]struct {
		text string
		exp  wallet.Classification
	}{
		"a signature request should classify as signature": {
			text: "Signature request\nOnly sign this message if you fully understand it",
			exp:  wallet.Classification{Kind: wallet.KindSignature},
		},

		"a transaction confirmation should classify as transaction": {
			text: "Confirm transaction\nNetwork fee: 0.0021 ETH",
			exp:  wallet.Classification{Kind: wallet.KindTransaction},
		},

		"a connection request should classify as connect": {
			text: "app.test wants to connect to your wallet",
			exp:  wallet.Classification{Kind: wallet.KindConnect},
		},

		"unrecognized text should classify as unknown": {
			text: "Something completely different",
			exp:  wallet.Classification{Kind: wallet.KindUnknown},
		},

		"empty text should classify as unknown": {
			text: "",
			exp:  wallet.Classification{Kind: wallet.KindUnknown},
		},

		"matching is case insensitive": {
			text: "CONFIRM TRANSACTION",
			exp:  wallet.Classification{Kind: wallet.KindTransaction},
		},

		"insufficient funds should classify as error": {
			text: "You have insufficient funds for this transaction",
			exp:  wallet.Classification{Kind: wallet.KindError, ErrorKind: "insufficient-funds"},
		},

		"gas estimation failure should classify as error": {
			text: "We were not able to estimate gas for this transaction",
			exp:  wallet.Classification{Kind: wallet.KindError, ErrorKind: "gas-estimation-failed"},
		},

		"error indicators take precedence over transaction indicators": {
			text: "Confirm transaction\nNetwork fee: unknown\nInsufficient funds",
			exp:  wallet.Classification{Kind: wallet.KindError, ErrorKind: "insufficient-funds"},
		},

		"signature indicators take precedence over transaction indicators": {
			text: "Signature request\nEstimated gas: 21000",
			exp:  wallet.Classification{Kind: wallet.KindSignature},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cls := wallet.NewPatternClassifier().Classify(test.text)
			assert.Equal(t, test.exp, cls)
		})
	}
}

func TestClassificationFailed(t *testing.T) {
	assert.True(t, wallet.Classification{Kind: wallet.KindError}.Failed())
	assert.True(t, wallet.Classification{Kind: wallet.KindTransaction, ErrorKind: "transaction-error"}.Failed())
	assert.False(t, wallet.Classification{Kind: wallet.KindTransaction}.Failed())
	assert.False(t, wallet.Classification{Kind: wallet.KindUnknown}.Failed())
}
