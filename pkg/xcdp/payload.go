package xcdp

// Payload is the inter-chain envelope handed to the relay for delivery to the
// destination chain. Routing data must be supplied by the caller; the model
// carries no default destination.
type Payload struct {
	Data                       []byte
	DestinationNetwork         string
	DestinationContractAddress [32]byte
}

func NewPayload(data []byte, destinationNetwork string, destinationContract [32]byte) Payload {
	return Payload{
		Data:                       data,
		DestinationNetwork:         destinationNetwork,
		DestinationContractAddress: destinationContract,
	}
}
