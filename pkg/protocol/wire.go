package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed 消息不是合法的 protobuf 编码
var ErrMalformed = errors.New("消息格式错误")

// encoder 按 protobuf 线格式追加字段，零值字段省略（proto3 语义）
type encoder struct {
	buf []byte
}

func (e *encoder) uint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

// int 与 proto 的 int32/int64 一致：负数按 64 位补码编码
func (e *encoder) int(num protowire.Number, v int64) {
	e.uint(num, uint64(v))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if v {
		e.uint(num, 1)
	}
}

func (e *encoder) bytes(num protowire.Number, b []byte) {
	if len(b) == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, b)
}

func (e *encoder) string(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
}

// message 嵌套消息（repeated 字段中的空消息也要写出）
func (e *encoder) message(num protowire.Number, b []byte) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, b)
}

// field 解码出的单个字段，Varint 存在 u 中，长度前缀类型存在 b 中
type field struct {
	num protowire.Number
	typ protowire.Type
	u   uint64
	b   []byte
}

func (f field) int() int64 { return int64(f.u) }
func (f field) bool() bool { return f.u != 0 }
func (f field) str() string { return string(f.b) }
func (f field) isBytes() bool { return f.typ == protowire.BytesType }

// eachField 依次回调每个已知线类型的字段，未知类型直接跳过
func eachField(data []byte, fn func(f field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("%w: 字段 %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			f.u = v
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("%w: 字段 %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			f.b = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("%w: 字段 %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
