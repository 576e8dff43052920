package store

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/abgdnv/inventory/internal/product"
	"google.golang.org/protobuf/encoding/protowire"
)

// File layout:
//
//	"INVT" version | {field 1: product record}* | field 15: crc32(body)
//
// Records and the trailer use protobuf wire encoding, so every record is
// length-prefixed and unknown fields can be skipped.
var fileMagic = []byte("INVT")

const formatVersion byte = 1

const (
	fieldProduct  protowire.Number = 1
	fieldChecksum protowire.Number = 15
)

const (
	fieldID       protowire.Number = 1
	fieldName     protowire.Number = 2
	fieldQuantity protowire.Number = 3
	fieldPrice    protowire.Number = 4
)

var errChecksum = errors.New("checksum mismatch")

// encodeProducts serializes products in order into the file layout.
func encodeProducts(products []product.Product) []byte {
	buf := make([]byte, 0, len(fileMagic)+1+len(products)*32)
	buf = append(buf, fileMagic...)
	buf = append(buf, formatVersion)
	headerLen := len(buf)

	var rec []byte
	for _, p := range products {
		rec = encodeRecord(rec[:0], p)
		buf = protowire.AppendTag(buf, fieldProduct, protowire.BytesType)
		buf = protowire.AppendBytes(buf, rec)
	}

	sum := crc32.ChecksumIEEE(buf[headerLen:])
	buf = protowire.AppendTag(buf, fieldChecksum, protowire.Fixed32Type)
	return protowire.AppendFixed32(buf, sum)
}

func encodeRecord(b []byte, p product.Product) []byte {
	b = protowire.AppendTag(b, fieldID, protowire.BytesType)
	b = protowire.AppendString(b, p.ID())
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name())
	b = protowire.AppendTag(b, fieldQuantity, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(p.Quantity())))
	b = protowire.AppendTag(b, fieldPrice, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(p.Price()))
}

// decodeProducts parses data written by encodeProducts.
// Every failure wraps ErrMalformed.
func decodeProducts(data []byte) ([]product.Product, error) {
	headerLen := len(fileMagic) + 1
	if len(data) < headerLen || !bytes.Equal(data[:len(fileMagic)], fileMagic) {
		return nil, fmt.Errorf("%w: missing file header", ErrMalformed)
	}
	if v := data[len(fileMagic)]; v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrMalformed, v)
	}

	body := data[headerLen:]
	products := make([]product.Product, 0)
	for off := 0; off < len(body); {
		num, typ, n := protowire.ConsumeTag(body[off:])
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		fieldStart := off
		off += n

		switch {
		case num == fieldProduct && typ == protowire.BytesType:
			rec, m := protowire.ConsumeBytes(body[off:])
			if m < 0 {
				return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, len(products), protowire.ParseError(m))
			}
			off += m
			p, err := decodeRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, len(products), err)
			}
			products = append(products, p)
		case num == fieldChecksum && typ == protowire.Fixed32Type:
			sum, m := protowire.ConsumeFixed32(body[off:])
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if off+m != len(body) {
				return nil, fmt.Errorf("%w: trailing data after checksum", ErrMalformed)
			}
			if crc32.ChecksumIEEE(body[:fieldStart]) != sum {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, errChecksum)
			}
			return products, nil
		default:
			m := protowire.ConsumeFieldValue(num, typ, body[off:])
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			off += m
		}
	}
	return nil, fmt.Errorf("%w: missing checksum", ErrMalformed)
}

func decodeRecord(rec []byte) (product.Product, error) {
	var (
		p        product.Product
		seenID   bool
		seenName bool
	)
	for len(rec) > 0 {
		num, typ, n := protowire.ConsumeTag(rec)
		if n < 0 {
			return p, protowire.ParseError(n)
		}
		rec = rec[n:]

		switch {
		case num == fieldID && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(rec)
			if m < 0 {
				return p, protowire.ParseError(m)
			}
			p.SetID(v)
			seenID = true
			n = m
		case num == fieldName && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(rec)
			if m < 0 {
				return p, protowire.ParseError(m)
			}
			p.SetName(v)
			seenName = true
			n = m
		case num == fieldQuantity && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(rec)
			if m < 0 {
				return p, protowire.ParseError(m)
			}
			p.SetQuantity(int(protowire.DecodeZigZag(v)))
			n = m
		case num == fieldPrice && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(rec)
			if m < 0 {
				return p, protowire.ParseError(m)
			}
			p.SetPrice(math.Float64frombits(v))
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, rec)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
		}
		rec = rec[n:]
	}
	if !seenID || !seenName {
		return p, errors.New("record without id or name")
	}
	return p, nil
}
