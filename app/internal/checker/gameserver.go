package checker

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// javaProbe performs a Minecraft Server List Ping: a VarInt-framed handshake
// with next-state=status followed by a status request, succeeding once the
// server answers with a status response packet.
func javaProbe(host string, port int, timeout time.Duration) Result {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	t0 := time.Now()

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return Result{}
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	// Handshake: packet id 0x00, protocol -1, host, port, next state 1.
	var body bytes.Buffer
	body.WriteByte(0x00)
	writeVarInt(&body, -1)
	writeVarInt(&body, len(host))
	body.WriteString(host)
	_ = binary.Write(&body, binary.BigEndian, uint16(port))
	writeVarInt(&body, 1)

	var pkt bytes.Buffer
	writeVarInt(&pkt, body.Len())
	pkt.Write(body.Bytes())
	// Status request: empty packet id 0x00.
	pkt.Write([]byte{0x01, 0x00})

	if _, err := conn.Write(pkt.Bytes()); err != nil {
		return Result{}
	}

	r := bufio.NewReader(conn)
	length, err := readVarInt(r)
	if err != nil || length <= 0 {
		return Result{}
	}
	packetID, err := readVarInt(r)
	if err != nil || packetID != 0x00 {
		return Result{}
	}
	payloadLen, err := readVarInt(r)
	if err != nil || payloadLen <= 0 {
		return Result{}
	}

	d := int(time.Since(t0).Milliseconds())
	return Result{OK: true, MS: &d}
}

// bedrockProbe sends a RakNet unconnected ping over UDP and accepts any
// unconnected pong (0x1c) as alive.
func bedrockProbe(host string, port int, timeout time.Duration) Result {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	t0 := time.Now()

	conn, err := net.DialTimeout("udp", addr, timeout)
	if err != nil {
		return Result{}
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	var pkt bytes.Buffer
	pkt.WriteByte(0x01)
	_ = binary.Write(&pkt, binary.BigEndian, time.Now().UnixMilli())
	pkt.Write(rakNetMagic)
	_ = binary.Write(&pkt, binary.BigEndian, int64(2))

	if _, err := conn.Write(pkt.Bytes()); err != nil {
		return Result{}
	}

	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil || n == 0 || buf[0] != 0x1c {
		return Result{}
	}

	d := int(time.Since(t0).Milliseconds())
	return Result{OK: true, MS: &d}
}

var rakNetMagic = []byte{
	0x00, 0xff, 0xff, 0x00, 0xfe, 0xfe, 0xfe, 0xfe,
	0xfd, 0xfd, 0xfd, 0xfd, 0x12, 0x34, 0x56, 0x78,
}

func writeVarInt(buf *bytes.Buffer, v int) {
	u := uint32(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if u == 0 {
			return
		}
	}
}

func readVarInt(r *bufio.Reader) (int, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int(int32(result)), nil
		}
		shift += 7
		if shift >= 32 {
			return 0, fmt.Errorf("varint too long")
		}
	}
}
