package wallet

import "strings"

// Kind is the purpose of a wallet popup.
type Kind string

const (
	KindSignature   Kind = "signature"
	KindTransaction Kind = "transaction"
	KindConnect     Kind = "connect"
	KindUnknown     Kind = "unknown"
	KindError       Kind = "error"
)

// Classification is the transient result of inspecting one popup. It is
// computed fresh on every interrupt and discarded after the step resolves.
type Classification struct {
	Kind Kind
	// ErrorKind names the detected failure (e.g. "insufficient-funds").
	// A non-empty ErrorKind forces rejection regardless of the requested
	// policy.
	ErrorKind string
}

// Failed returns true when the popup must never be approved.
func (c Classification) Failed() bool {
	return c.Kind == KindError || c.ErrorKind != ""
}

// Classifier decides what a popup is for from its visible text. The pattern
// implementation is heuristic and wallet-version fragile; keeping it behind
// this interface lets it be swapped without touching the handler protocol.
type Classifier interface {
	Classify(text string) Classification
}

// PatternClassifier classifies popups by scanning visible text against
// ordered pattern sets. Error indicators take precedence over everything
// else: an errored transaction must never be approved.
type PatternClassifier struct {
	errorPatterns       map[string]string // pattern -> error kind
	signaturePatterns   []string
	transactionPatterns []string
	connectPatterns     []string
}

// NewPatternClassifier returns a classifier loaded with the canonical
// MetaMask-style pattern sets.
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{
		errorPatterns: map[string]string{
			"insufficient funds":    "insufficient-funds",
			"insufficient balance":  "insufficient-funds",
			"not enough funds":      "insufficient-funds",
			"transaction error":     "transaction-error",
			"gas estimation failed": "gas-estimation-failed",
			"we were not able to estimate gas": "gas-estimation-failed",
		},
		signaturePatterns: []string{
			"signature request",
			"sign this message",
			"sign message",
			"sign typed data",
		},
		transactionPatterns: []string{
			"confirm transaction",
			"transaction request",
			"network fee",
			"estimated gas",
			"gas fee",
			"total amount",
		},
		connectPatterns: []string{
			"connect with",
			"connection request",
			"connect request",
			"wants to connect",
			"connect this site",
		},
	}
}

// Classify scans the text against the ordered pattern sets:
// error > signature > transaction > connect > unknown.
func (c *PatternClassifier) Classify(text string) Classification {
	t := strings.ToLower(text)

	for pattern, kind := range c.errorPatterns {
		if strings.Contains(t, pattern) {
			return Classification{Kind: KindError, ErrorKind: kind}
		}
	}

	for _, pattern := range c.signaturePatterns {
		if strings.Contains(t, pattern) {
			return Classification{Kind: KindSignature}
		}
	}

	for _, pattern := range c.transactionPatterns {
		if strings.Contains(t, pattern) {
			return Classification{Kind: KindTransaction}
		}
	}

	for _, pattern := range c.connectPatterns {
		if strings.Contains(t, pattern) {
			return Classification{Kind: KindConnect}
		}
	}

	return Classification{Kind: KindUnknown}
}
