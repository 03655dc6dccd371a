// Package xcdp defines the typed representations of a cross-chain XCDP
// message: the ABI-facing event shape emitted by the source-chain contract,
// the canonical form stored in the contract state, and the payload relayed
// onward to a destination chain.
package xcdp

// SendMessage is the canonical stored form of an XCDPSendMessage event. It is
// borsh-serialized as part of the contract state and immutable once written.
type SendMessage struct {
	Message string
}

// SendMessageSolidity mirrors the ABI layout of the XCDPSendMessage event as
// emitted by the Solidity contract. Fields beyond the current schema are
// deliberately unhandled; this is the extension point for future event
// versions, not an error.
type SendMessageSolidity struct {
	Message string
}

// ToStored projects the ABI-facing event into its canonical stored form. The
// mapping is one-directional and lossless for the fields present.
func (e SendMessageSolidity) ToStored() SendMessage {
	return SendMessage{Message: e.Message}
}
