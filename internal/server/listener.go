package server

import (
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

// ServerListener tcp 与 kcp 监听器的公共接口
type ServerListener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

// KCP 会话参数：nodelay 模式、10ms 内部时钟、快速重传、关闭拥塞控制
const (
	kcpNoDelay  = 1
	kcpInterval = 10
	kcpResend   = 2
	kcpNoCwnd   = 1
	kcpWindow   = 128
)

func newListener(proto, addr string) (ServerListener, error) {
	switch proto {
	case "", "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpListener{listener: listener}, nil
	case "kcp":
		listener, err := kcp.ListenWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		return &kcpListener{listener: listener}, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", proto)
	}
}

type tcpListener struct {
	listener net.Listener
}

func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	// 每个 tick 只有一个小包，关掉 Nagle
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}
	return conn, nil
}

func (l *tcpListener) Close() error {
	return l.listener.Close()
}

func (l *tcpListener) Addr() net.Addr {
	return l.listener.Addr()
}

type kcpListener struct {
	listener *kcp.Listener
}

func (l *kcpListener) Accept() (net.Conn, error) {
	session, err := l.listener.AcceptKCP()
	if err != nil {
		return nil, err
	}
	session.SetNoDelay(kcpNoDelay, kcpInterval, kcpResend, kcpNoCwnd)
	session.SetWindowSize(kcpWindow, kcpWindow)
	// 长度前缀帧依赖字节流语义
	session.SetStreamMode(true)
	return session, nil
}

func (l *kcpListener) Close() error {
	return l.listener.Close()
}

func (l *kcpListener) Addr() net.Addr {
	return l.listener.Addr()
}
