package sim

import (
	"fmt"
	"math"
)

// Track is a dark line drawn on a bright floor.
type Track interface {
	Object
	// OnLine returns true when the position is over the line.
	OnLine(Pos2D) bool
	// Start returns a pose centered on the line, heading along it.
	Start() Pose2D
}

// StraightTrack is an infinite line along the X axis.
type StraightTrack struct {
	Width float64
}

// Name implements Object.
func (t *StraightTrack) Name() string {
	return "track"
}

// OnLine implements Track.
func (t *StraightTrack) OnLine(p Pos2D) bool {
	return math.Abs(p.Y) <= t.Width/2
}

// Start implements Track.
func (t *StraightTrack) Start() Pose2D {
	return Pose2D{}
}

// RingTrack is a circular line around Center, followed counterclockwise.
type RingTrack struct {
	Center Pos2D
	Radius float64
	Width  float64
}

// Name implements Object.
func (t *RingTrack) Name() string {
	return "track"
}

// OnLine implements Track.
func (t *RingTrack) OnLine(p Pos2D) bool {
	return math.Abs(p.Sub(t.Center).Len()-t.Radius) <= t.Width/2
}

// Start implements Track.
func (t *RingTrack) Start() Pose2D {
	return Pose2D{
		Pos2D:       t.Center.Add(Pos2D{X: t.Radius}),
		Orientation: AngleFromDegrees(90),
	}
}

// NewTrack creates a track by kind: straight or ring.
func NewTrack(kind string, radius, width float64) (Track, error) {
	switch kind {
	case "straight":
		return &StraightTrack{Width: width}, nil
	case "", "ring":
		return &RingTrack{Radius: radius, Width: width}, nil
	}
	return nil, fmt.Errorf("unknown track: %q", kind)
}
