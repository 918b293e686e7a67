package mongo

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// NewRegistry returns the default BSON registry extended so that
// decimal.Decimal round-trips as Decimal128 instead of an opaque struct.
func NewRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{Name: "DecimalEncodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}

	d := val.Interface().(decimal.Decimal)
	d128, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return fmt.Errorf("encode decimal %s: %w", d.String(), err)
	}
	return vw.WriteDecimal128(d128)
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "DecimalDecodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}

	var (
		d   decimal.Decimal
		err error
	)

	switch vr.Type() {
	case bsontype.Decimal128:
		d128, readErr := vr.ReadDecimal128()
		if readErr != nil {
			return readErr
		}
		d, err = decimal.NewFromString(d128.String())
	case bsontype.Double:
		f, readErr := vr.ReadDouble()
		if readErr != nil {
			return readErr
		}
		d = decimal.NewFromFloat(f)
	case bsontype.Int32:
		i, readErr := vr.ReadInt32()
		if readErr != nil {
			return readErr
		}
		d = decimal.NewFromInt32(i)
	case bsontype.Int64:
		i, readErr := vr.ReadInt64()
		if readErr != nil {
			return readErr
		}
		d = decimal.NewFromInt(i)
	case bsontype.String:
		s, readErr := vr.ReadString()
		if readErr != nil {
			return readErr
		}
		d, err = decimal.NewFromString(s)
	case bsontype.Null:
		if readErr := vr.ReadNull(); readErr != nil {
			return readErr
		}
	default:
		return fmt.Errorf("cannot decode %v into decimal.Decimal", vr.Type())
	}
	if err != nil {
		return fmt.Errorf("decode decimal: %w", err)
	}

	val.Set(reflect.ValueOf(d))
	return nil
}
