package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPacketSize 单个数据包的最大字节数
const MaxPacketSize = 1 << 16

var (
	// ErrPacketTooLarge 长度前缀超过 MaxPacketSize
	ErrPacketTooLarge = errors.New("消息过大")
	// ErrTruncated 数据包在长度前缀声明的长度之前结束
	ErrTruncated = errors.New("消息不完整")
)

// WriteFrame 写入 4 字节大端长度前缀和数据体
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxPacketSize {
		return fmt.Errorf("%w (%d bytes)", ErrPacketTooLarge, len(data))
	}
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	_, err := w.Write(buf)
	return err
}

// ReadFrame 读取一个带长度前缀的数据包，长度为 0 时返回空切片
//
// 在长度前缀处遇到 EOF 时原样返回 io.EOF。
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxPacketSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPacketTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return data, nil
}
