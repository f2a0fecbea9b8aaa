// Package bookpb holds the wire messages exchanged over the order
// entry API and the market data stream. Messages are encoded with the
// protobuf wire format directly; field numbers are frozen and must not
// be reused.
package bookpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Side values on the wire.
const (
	SideBuy  = 0
	SideSell = 1
)

// Order type values on the wire.
const (
	TypeLimit  = 0
	TypeMarket = 1
)

// Event kind values on the wire.
const (
	KindFill   = 0
	KindCancel = 1
	KindReject = 2
)

func parseErr(n int) error {
	return fmt.Errorf("bookpb: %w", protowire.ParseError(n))
}

// Order is an order submission.
type Order struct {
	ID    uint64
	Side  uint32
	Type  uint32
	Price int64
	Qty   uint64
}

func (m *Order) Marshal(b []byte) []byte {
	if m.ID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, m.ID)
	}
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Side))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Price))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Qty)
	return b
}

func (m *Order) Unmarshal(b []byte) error {
	*m = Order{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch num {
		case 1:
			m.ID = v
		case 2:
			m.Side = uint32(v)
		case 3:
			m.Type = uint32(v)
		case 4:
			m.Price = protowire.DecodeZigZag(v)
		case 5:
			m.Qty = v
		}
	}
	return nil
}

// Trade is one execution.
type Trade struct {
	ID        uint64
	BuyOrder  uint64
	SellOrder uint64
	Price     int64
	Qty       uint64
	Timestamp int64
}

func (m *Trade) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.ID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.BuyOrder)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, m.SellOrder)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Price))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Qty)
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Timestamp))
	return b
}

func (m *Trade) Unmarshal(b []byte) error {
	*m = Trade{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch num {
		case 1:
			m.ID = v
		case 2:
			m.BuyOrder = v
		case 3:
			m.SellOrder = v
		case 4:
			m.Price = protowire.DecodeZigZag(v)
		case 5:
			m.Qty = v
		case 6:
			m.Timestamp = protowire.DecodeZigZag(v)
		}
	}
	return nil
}

// OrderAck reports the outcome of an order submission.
type OrderAck struct {
	OrderID     uint64
	Filled      uint64
	Remaining   uint64
	FullyFilled bool
	Rested      bool
	Error       string
	Trades      []Trade
}

func (m *OrderAck) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Filled)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Remaining)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, boolVarint(m.FullyFilled))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, boolVarint(m.Rested))
	if m.Error != "" {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendString(b, m.Error)
	}
	for i := range m.Trades {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Trades[i].Marshal(nil))
	}
	return b
}

func (m *OrderAck) Unmarshal(b []byte) error {
	*m = OrderAck{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch {
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			switch num {
			case 1:
				m.OrderID = v
			case 2:
				m.Filled = v
			case 3:
				m.Remaining = v
			case 4:
				m.FullyFilled = v != 0
			case 5:
				m.Rested = v != 0
			}
		case typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			switch num {
			case 6:
				m.Error = string(v)
			case 7:
				var t Trade
				if err := t.Unmarshal(v); err != nil {
					return err
				}
				m.Trades = append(m.Trades, t)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// Cancel asks for a resting order's removal.
type Cancel struct {
	OrderID uint64
}

func (m *Cancel) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderID)
	return b
}

func (m *Cancel) Unmarshal(b []byte) error {
	*m = Cancel{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			if num == 1 {
				m.OrderID = v
			}
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
	}
	return nil
}

// Modify re-prices a resting order under its existing ID.
type Modify struct {
	OrderID uint64
	Price   int64
	Qty     uint64
}

func (m *Modify) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Price))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Qty)
	return b
}

func (m *Modify) Unmarshal(b []byte) error {
	*m = Modify{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch num {
		case 1:
			m.OrderID = v
		case 2:
			m.Price = protowire.DecodeZigZag(v)
		case 3:
			m.Qty = v
		}
	}
	return nil
}

// Ack is a bare success or failure reply.
type Ack struct {
	OK    bool
	Error string
}

func (m *Ack) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, boolVarint(m.OK))
	if m.Error != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Error)
	}
	return b
}

func (m *Ack) Unmarshal(b []byte) error {
	*m = Ack{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return parseErr(n)
			}
			m.OK = v != 0
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return parseErr(n)
			}
			m.Error = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// DepthQuery asks for the top levels of the book.
type DepthQuery struct {
	Levels uint32
}

func (m *DepthQuery) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Levels))
	return b
}

func (m *DepthQuery) Unmarshal(b []byte) error {
	*m = DepthQuery{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return parseErr(n)
			}
			m.Levels = uint32(v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
	}
	return nil
}

// Level is one aggregated price level.
type Level struct {
	Price  int64
	Qty    uint64
	Orders uint32
}

func (m *Level) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Price))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Qty)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Orders))
	return b
}

func (m *Level) Unmarshal(b []byte) error {
	*m = Level{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch num {
		case 1:
			m.Price = protowire.DecodeZigZag(v)
		case 2:
			m.Qty = v
		case 3:
			m.Orders = uint32(v)
		}
	}
	return nil
}

// DepthSnap is an aggregated book snapshot, best levels first.
type DepthSnap struct {
	Bids []Level
	Asks []Level
}

func (m *DepthSnap) Marshal(b []byte) []byte {
	for i := range m.Bids {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Bids[i].Marshal(nil))
	}
	for i := range m.Asks {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Asks[i].Marshal(nil))
	}
	return b
}

func (m *DepthSnap) Unmarshal(b []byte) error {
	*m = DepthSnap{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		if typ == protowire.BytesType && (num == 1 || num == 2) {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			var lvl Level
			if err := lvl.Unmarshal(v); err != nil {
				return err
			}
			if num == 1 {
				m.Bids = append(m.Bids, lvl)
			} else {
				m.Asks = append(m.Asks, lvl)
			}
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
	}
	return nil
}

// Event is one entry on the market data stream.
type Event struct {
	Seq       uint64
	Kind      uint32
	OrderID   uint64
	Side      uint32
	Price     int64
	Qty       uint64
	Reason    string
	Timestamp int64
	Trade     *Trade
}

func (m *Event) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Seq)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Kind))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderID)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Side))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Price))
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Qty)
	if m.Reason != "" {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendString(b, m.Reason)
	}
	b = protowire.AppendTag(b, 8, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Timestamp))
	if m.Trade != nil {
		b = protowire.AppendTag(b, 9, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Trade.Marshal(nil))
	}
	return b
}

func (m *Event) Unmarshal(b []byte) error {
	*m = Event{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseErr(n)
		}
		b = b[n:]
		switch {
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			switch num {
			case 1:
				m.Seq = v
			case 2:
				m.Kind = uint32(v)
			case 3:
				m.OrderID = v
			case 4:
				m.Side = uint32(v)
			case 5:
				m.Price = protowire.DecodeZigZag(v)
			case 6:
				m.Qty = v
			case 8:
				m.Timestamp = protowire.DecodeZigZag(v)
			}
		case typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
			switch num {
			case 7:
				m.Reason = string(v)
			case 9:
				var t Trade
				if err := t.Unmarshal(v); err != nil {
					return err
				}
				m.Trade = &t
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return parseErr(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}
