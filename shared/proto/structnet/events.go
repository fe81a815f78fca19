package structnet

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// EventType identifica o tipo de evento de estrutura enviado pelo servidor.
type EventType int32

const (
	EventUnknown EventType = iota
	EventCreate
	EventProgress
	EventComplete
	EventRemove
	EventSelect
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "CREATE"
	case EventProgress:
		return "PROGRESS"
	case EventComplete:
		return "COMPLETE"
	case EventRemove:
		return "REMOVE"
	case EventSelect:
		return "SELECT"
	}
	return fmt.Sprintf("EventType(%d)", int32(t))
}

// Números de campo do StructureEvent no wire format protobuf.
const (
	fieldType      protowire.Number = 1
	fieldID        protowire.Number = 2
	fieldKind      protowire.Number = 3
	fieldFaction   protowire.Number = 4
	fieldX         protowire.Number = 5
	fieldZ         protowire.Number = 6
	fieldComplete  protowire.Number = 7
	fieldProgress  protowire.Number = 8
	fieldRemaining protowire.Number = 9
	fieldPaused    protowire.Number = 10
	fieldSelected  protowire.Number = 11
)

// StructureEvent é a mensagem única do protocolo de estruturas.
// Os campos relevantes dependem do Type.
type StructureEvent struct {
	Type      EventType
	ID        string
	Kind      string // Tipo bruto da estrutura (CREATE)
	Faction   string // (CREATE)
	X, Z      float32
	Complete  bool    // (CREATE)
	Progress  float32 // (PROGRESS)
	Remaining float32 // Segundos (PROGRESS)
	Paused    bool    // (PROGRESS)
	Selected  bool    // (SELECT)
}

// Marshal codifica o evento no wire format protobuf.
// Campos com valor zero são omitidos, como no proto3.
func (m *StructureEvent) Marshal() []byte {
	var b []byte
	if m.Type != EventUnknown {
		b = protowire.AppendTag(b, fieldType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Type))
	}
	b = appendString(b, fieldID, m.ID)
	b = appendString(b, fieldKind, m.Kind)
	b = appendString(b, fieldFaction, m.Faction)
	b = appendFloat(b, fieldX, m.X)
	b = appendFloat(b, fieldZ, m.Z)
	b = appendBool(b, fieldComplete, m.Complete)
	b = appendFloat(b, fieldProgress, m.Progress)
	b = appendFloat(b, fieldRemaining, m.Remaining)
	b = appendBool(b, fieldPaused, m.Paused)
	b = appendBool(b, fieldSelected, m.Selected)
	return b
}

// Unmarshal decodifica um evento. Campos desconhecidos são ignorados.
func (m *StructureEvent) Unmarshal(data []byte) error {
	*m = StructureEvent{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("structnet: tag inválida: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("structnet: campo type: %w", protowire.ParseError(n))
			}
			m.Type = EventType(v)
			data = data[n:]
		case (num == fieldID || num == fieldKind || num == fieldFaction) && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("structnet: campo %d: %w", num, protowire.ParseError(n))
			}
			switch num {
			case fieldID:
				m.ID = v
			case fieldKind:
				m.Kind = v
			case fieldFaction:
				m.Faction = v
			}
			data = data[n:]
		case (num == fieldX || num == fieldZ || num == fieldProgress || num == fieldRemaining) && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("structnet: campo %d: %w", num, protowire.ParseError(n))
			}
			f := math.Float32frombits(v)
			switch num {
			case fieldX:
				m.X = f
			case fieldZ:
				m.Z = f
			case fieldProgress:
				m.Progress = f
			case fieldRemaining:
				m.Remaining = f
			}
			data = data[n:]
		case (num == fieldComplete || num == fieldPaused || num == fieldSelected) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("structnet: campo %d: %w", num, protowire.ParseError(n))
			}
			flag := protowire.DecodeBool(v)
			switch num {
			case fieldComplete:
				m.Complete = flag
			case fieldPaused:
				m.Paused = flag
			case fieldSelected:
				m.Selected = flag
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("structnet: campo desconhecido %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendFloat(b []byte, num protowire.Number, f float32) []byte {
	if f == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(f))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}
