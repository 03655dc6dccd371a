// Package codec decodes the raw event bytes relayed from a source chain into
// a typed log envelope and ABI-decodes the envelope's data field against the
// XCDPSendMessage event schema.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"

	ethAbi "github.com/ethereum/go-ethereum/accounts/abi"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tidwall/gjson"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/xcdp"
)

var (
	ErrInvalidEncoding   = errors.New("event data is not valid base64")
	ErrMalformedEnvelope = errors.New("event data is not a valid log envelope")
	ErrMissingTopic      = errors.New("log envelope has no topics")
	ErrSchemaMismatch    = errors.New("log data does not match the event schema")
)

// LogEnvelope is the decoded form of the JSON log record carried inside the
// base64 event data: the log's topics and its ABI-encoded data field.
type LogEnvelope struct {
	Topics []ethCommon.Hash
	Data   []byte
}

// EventID returns the event discriminator, the textual form of the first
// topic. Callers must only invoke this on a successfully decoded envelope,
// which is guaranteed to have at least one topic.
func (l *LogEnvelope) EventID() string {
	return l.Topics[0].Hex()
}

// DecodeEventData turns raw event bytes into a LogEnvelope. The input is
// base64 text wrapping a JSON object with a "topics" array of 32-byte hex
// values and a 0x-prefixed hex "data" field. The decode is all-or-nothing.
func DecodeEventData(raw []byte) (*LogEnvelope, error) {
	decoded, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	if !gjson.ValidBytes(decoded) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedEnvelope)
	}
	body := gjson.ParseBytes(decoded)
	topics := body.Get("topics")
	data := body.Get("data")
	if !body.IsObject() || !topics.IsArray() || !data.Exists() {
		return nil, fmt.Errorf("%w: missing topics or data", ErrMalformedEnvelope)
	}

	env := &LogEnvelope{}
	for _, topic := range topics.Array() {
		if topic.Type != gjson.String {
			return nil, fmt.Errorf("%w: topic is not a string", ErrMalformedEnvelope)
		}
		env.Topics = append(env.Topics, ethCommon.HexToHash(topic.String()))
	}
	if len(env.Topics) == 0 {
		return nil, ErrMissingTopic
	}

	env.Data, err = hexutil.Decode(data.String())
	if err != nil {
		return nil, fmt.Errorf("%w: bad data field: %v", ErrMalformedEnvelope, err)
	}

	return env, nil
}

// sendMessageArgs is the fixed parameter schema of the XCDPSendMessage event:
// a single trailing UTF-8 string.
var sendMessageArgs ethAbi.Arguments

func init() {
	stringType, err := ethAbi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	sendMessageArgs = ethAbi.Arguments{{Name: "message", Type: stringType}}
}

// DecodeSendMessage ABI-decodes the envelope's data field. Either every
// declared parameter decodes or the call fails; no partial decode is
// accepted.
func DecodeSendMessage(data []byte) (xcdp.SendMessageSolidity, error) {
	values, err := sendMessageArgs.Unpack(data)
	if err != nil {
		return xcdp.SendMessageSolidity{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if len(values) != 1 {
		return xcdp.SendMessageSolidity{}, fmt.Errorf("%w: expected 1 parameter, got %d", ErrSchemaMismatch, len(values))
	}
	message, ok := values[0].(string)
	if !ok {
		return xcdp.SendMessageSolidity{}, fmt.Errorf("%w: parameter 0 is not a string", ErrSchemaMismatch)
	}

	return xcdp.SendMessageSolidity{Message: message}, nil
}

// EncodeSendMessage is the inverse of DecodeSendMessage, used to produce
// well-formed event data in tests and tooling.
func EncodeSendMessage(message string) ([]byte, error) {
	return sendMessageArgs.Pack(message)
}
