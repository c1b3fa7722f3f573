package star

import (
	"io"

	"github.com/starlane-io/starlane/internal/hyperlane"
)

// Serve registers conn as a live adjacent hyperlane and pumps frames off
// it until it closes or errors: StarMessage frames are injected into the
// traversal pipeline at Gravity (spec.md §4.7's Hyp<Transport> path run in
// reverse — a peer star delivering a wave addressed through this one hop),
// Watch-kind frames are handed to the watch bus, and Diagnose(Ping) is
// answered with Pong. The peer is removed from the router once Serve
// returns, regardless of how the link ended.
func (s *Star) Serve(conn *hyperlane.Conn) error {
	s.Router.AddPeer(conn)
	defer s.Router.RemovePeer(conn.PeerStarKey)

	for {
		f, err := conn.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch f.Kind {
		case hyperlane.FrameStarMessage:
			if f.Wave != nil {
				if err := s.Pipeline.Inject(*f.Wave, true); err != nil {
					s.Logger.Printf("[star] %s inject error from %s: %v", s.Self, conn.PeerStarKey, err)
				}
			}
		case hyperlane.FrameWatch:
			s.Watch.HandleFrame(conn.PeerStarKey, f)
		case hyperlane.FrameDiagnose:
			if f.Diagnose == hyperlane.DiagnosePing {
				if err := conn.Pong(); err != nil {
					return err
				}
			}
		case hyperlane.FrameClose:
			return nil
		}
	}
}
