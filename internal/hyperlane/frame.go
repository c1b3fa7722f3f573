// Package hyperlane implements the hyperlane wire protocol (spec.md §5):
// the framed duplex-stream protocol between adjacent stars, and the
// Transport/Hop wave-wrapping used to carry a wave end-to-end across
// several hyperlane hops.
package hyperlane

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

var frameJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ProtocolVersion is this implementation's StarlaneProtocolVersion.
const ProtocolVersion int32 = 1

// FrameKind tags the Frame tagged union.
type FrameKind string

const (
	FrameProto       FrameKind = "Proto"
	FrameDiagnose    FrameKind = "Diagnose"
	FrameSearch      FrameKind = "Search"
	FrameStarMessage FrameKind = "StarMessage"
	FrameWatch       FrameKind = "Watch"
	FrameClose       FrameKind = "Close"
)

// ProtoKind distinguishes the two Proto sub-variants exchanged during the
// handshake.
type ProtoKind string

const (
	ProtoVersion      ProtoKind = "Version"
	ProtoReportStarKey ProtoKind = "ReportStarKey"
)

// DiagnoseKind is a liveness-check direction.
type DiagnoseKind string

const (
	DiagnosePing DiagnoseKind = "Ping"
	DiagnosePong DiagnoseKind = "Pong"
)

// SearchDirection tags which way a bare Search frame (distinct from a
// Search ripple wave) nudges a peer's discovery cache.
type SearchDirection string

const (
	SearchUp   SearchDirection = "Up"
	SearchDown SearchDirection = "Down"
)

// WatchKind tags the three watch-bus control messages carried over the
// wire (internal/watch owns their semantics; hyperlane only frames them).
type WatchKind string

const (
	WatchListen   WatchKind = "Watch"
	WatchUnlisten WatchKind = "UnWatch"
	WatchNotify   WatchKind = "Notify"
)

// Frame is one message on a hyperlane's framed byte stream.
type Frame struct {
	Kind FrameKind `json:"kind"`

	// Proto
	ProtoKind     ProtoKind      `json:"proto_kind,omitempty"`
	ProtoVersion  int32          `json:"proto_version,omitempty"`
	ReportStarKey *point.StarKey `json:"report_star_key,omitempty"`
	// Signature and PublicKey accompany ReportStarKey: the sending star
	// signs its own StarKey's textual form with its Ed25519 identity key
	// so the peer can verify it before trusting the handshake.
	Signature []byte `json:"signature,omitempty"`
	PublicKey []byte `json:"public_key,omitempty"`

	// Diagnose
	Diagnose DiagnoseKind `json:"diagnose,omitempty"`

	// Search
	Search SearchDirection `json:"search,omitempty"`

	// StarMessage
	Wave *wave.Wave `json:"wave,omitempty"`

	// Watch
	WatchOp       WatchKind     `json:"watch_op,omitempty"`
	WatchTopic    string        `json:"watch_topic,omitempty"`
	WatchProperty string        `json:"watch_property,omitempty"`
	WatchBody     wave.Substance `json:"watch_body,omitempty"`
}

// VersionFrame builds the first handshake frame.
func VersionFrame(v int32) Frame {
	return Frame{Kind: FrameProto, ProtoKind: ProtoVersion, ProtoVersion: v}
}

// ReportStarKeyFrame builds the second handshake frame, signed with the
// sending star's Ed25519 identity key over the StarKey's textual form.
func ReportStarKeyFrame(k point.StarKey, sign func([]byte) []byte, publicKey []byte) Frame {
	return Frame{
		Kind:          FrameProto,
		ProtoKind:     ProtoReportStarKey,
		ReportStarKey: &k,
		Signature:     sign([]byte(k.String())),
		PublicKey:     publicKey,
	}
}

// PingFrame builds a liveness-check frame; the peer must reply with
// PongFrame.
func PingFrame() Frame { return Frame{Kind: FrameDiagnose, Diagnose: DiagnosePing} }

// PongFrame builds the reply to a PingFrame.
func PongFrame() Frame { return Frame{Kind: FrameDiagnose, Diagnose: DiagnosePong} }

// StarMessageFrame wraps a wave for transmission.
func StarMessageFrame(w wave.Wave) Frame { return Frame{Kind: FrameStarMessage, Wave: &w} }

// CloseFrame requests a graceful hyperlane shutdown.
func CloseFrame() Frame { return Frame{Kind: FrameClose} }

// WatchFrame requests that the peer start forwarding notifications for
// (topic, property) to the sender.
func WatchFrame(topic, property string) Frame {
	return Frame{Kind: FrameWatch, WatchOp: WatchListen, WatchTopic: topic, WatchProperty: property}
}

// UnwatchFrame drops a previously-established Watch subscription.
func UnwatchFrame(topic, property string) Frame {
	return Frame{Kind: FrameWatch, WatchOp: WatchUnlisten, WatchTopic: topic, WatchProperty: property}
}

// NotifyFrame delivers one notification body for (topic, property) to a
// subscribed peer.
func NotifyFrame(topic, property string, body wave.Substance) Frame {
	return Frame{Kind: FrameWatch, WatchOp: WatchNotify, WatchTopic: topic, WatchProperty: property, WatchBody: body}
}

// Encode renders f as a length-prefix-free JSON document; callers write
// it to the stream via a json.Encoder-style newline-delimited framing
// (see Conn).
func (f Frame) Encode() ([]byte, error) {
	return frameJSON.Marshal(f)
}

// DecodeFrame restores a Frame from its wire encoding.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := frameJSON.Unmarshal(data, &f)
	return f, err
}
