package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Amount is a fixed-point monetary value. It is stored in MongoDB as a
// canonical decimal string so dashboard sums never pick up binary-float
// drift.
type Amount struct {
	decimal.Decimal
}

func NewAmount(value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("amount must not be negative: %s", value)
	}
	return Amount{d}, nil
}

func AmountFromInt(value int64) Amount {
	return Amount{decimal.NewFromInt(value)}
}

func ZeroAmount() Amount {
	return Amount{decimal.Zero}
}

// MulQuantity scales the amount by an order-line quantity.
func (a Amount) MulQuantity(quantity int) Amount {
	return Amount{a.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal)}
}

func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

func (a Amount) LessThan(b Amount) bool {
	return a.Decimal.LessThan(b.Decimal)
}

// MarshalBSONValue always writes the canonical string form.
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(a.Decimal.String())
}

// UnmarshalBSONValue accepts string, double and int encodings so documents
// written before the decimal migration still decode.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		a.Decimal = decimal.Zero
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("invalid stored amount %q: %w", value, err)
		}
		a.Decimal = d
		return nil
	case bsontype.Double:
		var value float64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		a.Decimal = decimal.NewFromFloat(value)
		return nil
	case bsontype.Int32:
		var value int32
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		a.Decimal = decimal.NewFromInt(int64(value))
		return nil
	case bsontype.Int64:
		var value int64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		a.Decimal = decimal.NewFromInt(value)
		return nil
	case bsontype.Decimal128:
		var value primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		d, err := decimal.NewFromString(value.String())
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Amount", t)
	}
}
