package hyperlane

import (
	"bufio"
	"crypto/ed25519"
	"fmt"
	"io"
	"sync"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/spaceerr"
)

// Conn is one hyperlane: a framed duplex byte stream to an adjacent star.
// Frames are newline-delimited JSON documents (the pack's idiomatic
// self-describing encoding, per DESIGN.md); this keeps the wire format
// debuggable with a plain `nc`/`cat` while remaining self-describing.
type Conn struct {
	rwc io.ReadWriteCloser
	r   *bufio.Scanner

	writeMu sync.Mutex

	PeerStarKey point.StarKey
	PeerPublic  ed25519.PublicKey
}

// maxFrameLine bounds a single framed line; generous enough for an
// UltraWave-boxed transport signal, small enough to reject a runaway peer.
const maxFrameLine = 16 << 20

// Handshake performs the StarlaneProtocolVersion + ReportStarKey exchange
// described in spec.md §5. On version mismatch the connection is closed
// and an error returned. sign/publicKey are this star's own Ed25519
// signing function and public key (see security.Keypair.Sign).
func Handshake(rwc io.ReadWriteCloser, self point.StarKey, sign func([]byte) []byte, publicKey ed25519.PublicKey) (*Conn, error) {
	c := &Conn{rwc: rwc, r: bufio.NewScanner(rwc)}
	c.r.Buffer(make([]byte, 0, 64*1024), maxFrameLine)

	if err := c.writeFrame(VersionFrame(ProtocolVersion)); err != nil {
		return nil, err
	}
	peerVersion, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	if peerVersion.Kind != FrameProto || peerVersion.ProtoKind != ProtoVersion {
		c.rwc.Close()
		return nil, spaceerr.BadRequest("hyperlane: expected Proto(Version) as first frame")
	}
	if peerVersion.ProtoVersion != ProtocolVersion {
		c.rwc.Close()
		return nil, spaceerr.Statusf(400, "hyperlane: protocol version mismatch: self=%d peer=%d", ProtocolVersion, peerVersion.ProtoVersion)
	}

	if err := c.writeFrame(ReportStarKeyFrame(self, sign, publicKey)); err != nil {
		return nil, err
	}
	peerKey, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	if peerKey.Kind != FrameProto || peerKey.ProtoKind != ProtoReportStarKey || peerKey.ReportStarKey == nil {
		c.rwc.Close()
		return nil, spaceerr.BadRequest("hyperlane: expected Proto(ReportStarKey) as second frame")
	}
	if len(peerKey.PublicKey) != ed25519.PublicKeySize || !ed25519.Verify(peerKey.PublicKey, []byte(peerKey.ReportStarKey.String()), peerKey.Signature) {
		c.rwc.Close()
		return nil, spaceerr.Forbidden("hyperlane: ReportStarKey signature verification failed")
	}

	c.PeerStarKey = *peerKey.ReportStarKey
	c.PeerPublic = peerKey.PublicKey
	return c, nil
}

// writeFrame encodes f and writes it as one newline-delimited line.
func (c *Conn) writeFrame(f Frame) error {
	data, err := f.Encode()
	if err != nil {
		return fmt.Errorf("hyperlane: encode frame: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.rwc.Write(data); err != nil {
		return fmt.Errorf("hyperlane: write frame: %w", err)
	}
	if _, err := c.rwc.Write([]byte("\n")); err != nil {
		return fmt.Errorf("hyperlane: write frame delimiter: %w", err)
	}
	return nil
}

// readFrame reads and decodes the next line-delimited frame.
func (c *Conn) readFrame() (Frame, error) {
	if !c.r.Scan() {
		if err := c.r.Err(); err != nil {
			return Frame{}, fmt.Errorf("hyperlane: read frame: %w", err)
		}
		return Frame{}, io.EOF
	}
	return DecodeFrame(c.r.Bytes())
}

// Send writes f to the hyperlane.
func (c *Conn) Send(f Frame) error { return c.writeFrame(f) }

// Recv reads the next frame from the hyperlane.
func (c *Conn) Recv() (Frame, error) { return c.readFrame() }

// Ping sends a Diagnose(Ping) frame; the caller is responsible for reading
// the Diagnose(Pong) reply via Recv on its own receive loop.
func (c *Conn) Ping() error { return c.writeFrame(PingFrame()) }

// Pong replies to a received Diagnose(Ping).
func (c *Conn) Pong() error { return c.writeFrame(PongFrame()) }

// Close closes the underlying stream after sending a Close frame,
// best-effort.
func (c *Conn) Close() error {
	_ = c.writeFrame(CloseFrame())
	return c.rwc.Close()
}
