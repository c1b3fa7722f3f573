package star

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/wave"
)

var starJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ProvisionRequest is the Hyp<Provision>{point, state} payload (spec.md
// §4.7).
type ProvisionRequest struct {
	Point point.Point
	State wave.Substance
}

// EncodeProvisionRequest serializes req into a directed wave's body.
func EncodeProvisionRequest(req ProvisionRequest) wave.Substance {
	data, err := starJSON.Marshal(req)
	if err != nil {
		return wave.Empty()
	}
	return wave.BinSubstance(data)
}

// DecodeProvisionRequest reads back a ProvisionRequest.
func DecodeProvisionRequest(s wave.Substance) (ProvisionRequest, bool) {
	if s.Kind != wave.SubstanceBin {
		return ProvisionRequest{}, false
	}
	var req ProvisionRequest
	if err := starJSON.Unmarshal(s.Bin, &req); err != nil {
		return ProvisionRequest{}, false
	}
	return req, true
}

// AssignDetails identifies the point and kind being assigned — the
// "details" half of Hyp<Assign>{details, state}.
type AssignDetails struct {
	Point point.Point
	Kind  point.Kind
}

// AssignRequest is the full Hyp<Assign>{details, state} payload.
type AssignRequest struct {
	Details AssignDetails
	State   wave.Substance
}

// EncodeAssignRequest serializes req into a directed wave's body.
func EncodeAssignRequest(req AssignRequest) wave.Substance {
	data, err := starJSON.Marshal(req)
	if err != nil {
		return wave.Empty()
	}
	return wave.BinSubstance(data)
}

// DecodeAssignRequest reads back an AssignRequest.
func DecodeAssignRequest(s wave.Substance) (AssignRequest, bool) {
	if s.Kind != wave.SubstanceBin {
		return AssignRequest{}, false
	}
	var req AssignRequest
	if err := starJSON.Unmarshal(s.Bin, &req); err != nil {
		return AssignRequest{}, false
	}
	return req, true
}

// EncodeLocation serializes a registry.Location as a Hyp<Provision>
// reply body.
func EncodeLocation(loc registry.Location) wave.Substance {
	data, err := starJSON.Marshal(loc)
	if err != nil {
		return wave.Empty()
	}
	return wave.BinSubstance(data)
}

// DecodeLocation reads back a registry.Location.
func DecodeLocation(s wave.Substance) (registry.Location, bool) {
	if s.Kind != wave.SubstanceBin {
		return registry.Location{}, false
	}
	var loc registry.Location
	if err := starJSON.Unmarshal(s.Bin, &loc); err != nil {
		return registry.Location{}, false
	}
	return loc, true
}
