package wire

import (
	"osprey/api/bookpb"
	"osprey/domain/book"
)

// EncodeEvent serializes a book event into a framed record suitable
// for the journal and the market data stream.
func EncodeEvent(ev book.Event) []byte {
	msg := bookpb.Event{
		Seq:       ev.Seq,
		Kind:      uint32(ev.Kind),
		OrderID:   uint64(ev.OrderID),
		Side:      uint32(ev.Side),
		Price:     int64(ev.Price),
		Qty:       uint64(ev.Qty),
		Reason:    ev.Reason,
		Timestamp: ev.Timestamp,
	}
	if ev.Trade != nil {
		msg.Trade = &bookpb.Trade{
			ID:        uint64(ev.Trade.ID),
			BuyOrder:  uint64(ev.Trade.BuyOrder),
			SellOrder: uint64(ev.Trade.SellOrder),
			Price:     int64(ev.Trade.Price),
			Qty:       uint64(ev.Trade.Qty),
			Timestamp: ev.Trade.Timestamp,
		}
	}
	return Frame(msg.Marshal(nil))
}

// DecodeEvent parses a framed record back into a book event.
func DecodeEvent(data []byte) (book.Event, error) {
	body, err := Unframe(data)
	if err != nil {
		return book.Event{}, err
	}
	var msg bookpb.Event
	if err := msg.Unmarshal(body); err != nil {
		return book.Event{}, err
	}
	ev := book.Event{
		Seq:       msg.Seq,
		Kind:      book.EventKind(msg.Kind),
		OrderID:   book.OrderID(msg.OrderID),
		Side:      book.Side(msg.Side),
		Price:     book.Price(msg.Price),
		Qty:       book.Quantity(msg.Qty),
		Reason:    msg.Reason,
		Timestamp: msg.Timestamp,
	}
	if msg.Trade != nil {
		ev.Trade = &book.Trade{
			ID:        book.TradeID(msg.Trade.ID),
			BuyOrder:  book.OrderID(msg.Trade.BuyOrder),
			SellOrder: book.OrderID(msg.Trade.SellOrder),
			Price:     book.Price(msg.Trade.Price),
			Qty:       book.Quantity(msg.Trade.Qty),
			Timestamp: msg.Trade.Timestamp,
		}
	}
	return ev, nil
}

// EncodeIntent serializes an order intent for the ingest feed.
func EncodeIntent(side book.Side, typ book.OrderType, price book.Price, qty book.Quantity) []byte {
	msg := bookpb.Order{
		Side:  uint32(side),
		Type:  uint32(typ),
		Price: int64(price),
		Qty:   uint64(qty),
	}
	return Frame(msg.Marshal(nil))
}

// DecodeIntent parses a framed order intent.
func DecodeIntent(data []byte) (book.BatchOrder, error) {
	body, err := Unframe(data)
	if err != nil {
		return book.BatchOrder{}, err
	}
	var msg bookpb.Order
	if err := msg.Unmarshal(body); err != nil {
		return book.BatchOrder{}, err
	}
	return book.BatchOrder{
		Side:  book.Side(msg.Side),
		Type:  book.OrderType(msg.Type),
		Price: book.Price(msg.Price),
		Qty:   book.Quantity(msg.Qty),
	}, nil
}
