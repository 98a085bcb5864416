package ws

import (
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Client -> Server message types
const (
	MsgAimBegin uint8 = 0x01
	MsgAimMove  uint8 = 0x02
	MsgAimEnd   uint8 = 0x03
	MsgPing     uint8 = 0x04
	MsgRestart  uint8 = 0x05
)

// Server -> Client message types
const (
	MsgMatchState uint8 = 0x81
	MsgMatchStart uint8 = 0x82
	MsgMatchEvent uint8 = 0x83
	MsgPong       uint8 = 0x86
)

// Message is an outgoing frame; Payload is encoded by the connection's codec.
type Message struct {
	Type    uint8  `json:"type" msgpack:"type"`
	Tick    uint32 `json:"tick" msgpack:"tick"`
	Payload any    `json:"payload" msgpack:"payload"`
}

// Inbound is a decoded incoming frame whose payload is still raw.
type Inbound struct {
	Type    uint8
	Tick    uint32
	Payload []byte
	codec   Codec
}

// Bind decodes the payload into v.
func (in Inbound) Bind(v any) error {
	if len(in.Payload) == 0 {
		return fmt.Errorf("message 0x%02x: empty payload", in.Type)
	}
	if in.codec == nil {
		return json.Unmarshal(in.Payload, v)
	}
	return in.codec.Unmarshal(in.Payload, v)
}

type PointerPayload struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

type PingPayload struct {
	ClientTime uint64 `json:"clientTime" msgpack:"clientTime"`
}

type PongPayload struct {
	ClientTime uint64 `json:"clientTime" msgpack:"clientTime"`
	ServerTime uint64 `json:"serverTime" msgpack:"serverTime"`
}

// Codec turns messages into websocket frames and back.
type Codec interface {
	Name() string
	Frame() websocket.MessageType
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Inbound, error)
	Unmarshal(payload []byte, v any) error
}

// CodecByName returns the codec for a ?enc= value; unknown names get JSON.
func CodecByName(name string) Codec {
	if name == "msgpack" {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Frame() websocket.MessageType { return websocket.MessageText }
func (JSONCodec) Encode(msg Message) ([]byte, error) { return json.Marshal(msg) }

func (c JSONCodec) Decode(data []byte) (Inbound, error) {
	var raw struct {
		Type    uint8           `json:"type"`
		Tick    uint32          `json:"tick"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Inbound{}, fmt.Errorf("decode json frame: %w", err)
	}
	return Inbound{Type: raw.Type, Tick: raw.Tick, Payload: raw.Payload, codec: c}, nil
}

func (JSONCodec) Unmarshal(payload []byte, v any) error { return json.Unmarshal(payload, v) }

// MsgpackCodec sends binary frames.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Frame() websocket.MessageType { return websocket.MessageBinary }
func (MsgpackCodec) Encode(msg Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (c MsgpackCodec) Decode(data []byte) (Inbound, error) {
	var raw struct {
		Type    uint8              `msgpack:"type"`
		Tick    uint32             `msgpack:"tick"`
		Payload msgpack.RawMessage `msgpack:"payload"`
	}
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return Inbound{}, fmt.Errorf("decode msgpack frame: %w", err)
	}
	return Inbound{Type: raw.Type, Tick: raw.Tick, Payload: raw.Payload, codec: c}, nil
}

func (MsgpackCodec) Unmarshal(payload []byte, v any) error { return msgpack.Unmarshal(payload, v) }

// NewMessage builds an outgoing message.
func NewMessage(typ uint8, tick uint32, payload any) Message {
	return Message{Type: typ, Tick: tick, Payload: payload}
}
