package plan

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMissingTag reports an instruction payload without a usable tag byte.
var ErrMissingTag = errors.New("instruction payload missing tag")

// SentinelInstruction is the single byte encoded when a payload cannot be
// serialized. Runs still happen with it so a bad declaration degrades
// instead of aborting the unit.
const SentinelInstruction = 0xFF

// EncodePayload serializes a declared instruction payload into the wire
// bytes the program expects: the tag byte followed by a fixed field
// layout chosen by which fields are present.
//
//	{amount}           -> tag + 8-byte little-endian amount
//	{lamports, space}  -> tag + 8-byte little-endian lamports and space
//	anything else      -> tag only
//
// The field layouts are a closed set; new instruction shapes get a new
// case here. On any error the returned bytes are the one-byte sentinel,
// so callers can warn and keep going.
func EncodePayload(payload map[string]any) ([]byte, error) {
	raw, ok := payload["tag"]
	if !ok {
		return []byte{SentinelInstruction}, ErrMissingTag
	}
	tag, err := payloadInt(raw)
	if err != nil {
		return []byte{SentinelInstruction}, fmt.Errorf("%w: tag %v", ErrMissingTag, raw)
	}
	if tag < 0 || tag > 255 {
		return []byte{SentinelInstruction}, fmt.Errorf("%w: tag %d out of range", ErrMissingTag, tag)
	}

	data := []byte{byte(tag)}
	if raw, ok := payload["amount"]; ok {
		amount, err := payloadInt(raw)
		if err != nil || amount < 0 {
			return []byte{SentinelInstruction}, fmt.Errorf("payload field amount %v: not an unsigned integer", raw)
		}
		data = binary.LittleEndian.AppendUint64(data, uint64(amount))
		return data, nil
	}
	_, hasLamports := payload["lamports"]
	_, hasSpace := payload["space"]
	if hasLamports && hasSpace {
		lamports, err := payloadInt(payload["lamports"])
		if err != nil || lamports < 0 {
			return []byte{SentinelInstruction}, fmt.Errorf("payload field lamports %v: not an unsigned integer", payload["lamports"])
		}
		space, err := payloadInt(payload["space"])
		if err != nil || space < 0 {
			return []byte{SentinelInstruction}, fmt.Errorf("payload field space %v: not an unsigned integer", payload["space"])
		}
		data = binary.LittleEndian.AppendUint64(data, uint64(lamports))
		data = binary.LittleEndian.AppendUint64(data, uint64(space))
		return data, nil
	}
	return data, nil
}

// payloadInt widens the numeric types TOML and JSON decoders hand back.
func payloadInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%v is not an integer", v)
	}
}
