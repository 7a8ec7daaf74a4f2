package gamemath

import "math"

// LaunchForApex solves a ballistic arc from the origin to a point offset by
// (dx, dy) that peaks apex units above the origin. The landing happens on the
// descending side of the arc. ok is false when the apex is below dy.
func LaunchForApex(dx, dy, apex, gravity float64) (vx, vy, t float64, ok bool) {
	if gravity <= 0 || apex < 0 {
		return 0, 0, 0, false
	}
	vy = math.Sqrt(2 * gravity * apex)
	disc := vy*vy - 2*gravity*dy
	if disc < 0 {
		return 0, 0, 0, false
	}
	t = (vy + math.Sqrt(disc)) / gravity
	if t <= 0 {
		return 0, 0, 0, false
	}
	return dx / t, vy, t, true
}

// FallTime returns how long an object released with no vertical speed takes
// to drop the given distance.
func FallTime(drop, gravity float64) float64 {
	if drop <= 0 || gravity <= 0 {
		return 0
	}
	return math.Sqrt(2 * drop / gravity)
}

// ApexHeight returns the height gained by a launch with vertical speed vy.
func ApexHeight(vy, gravity float64) float64 {
	if vy <= 0 {
		return 0
	}
	return vy * vy / (2 * gravity)
}

// ProjectilePosition returns the position t seconds after launch.
func ProjectilePosition(origin Vec2, vx, vy, gravity, t float64) Vec2 {
	return Vec2{
		X: origin.X + vx*t,
		Y: origin.Y + vy*t - 0.5*gravity*t*t,
	}
}

// SampleTrajectory appends points along the arc every step seconds to buf,
// always including the launch point and the point at duration.
func SampleTrajectory(origin Vec2, vx, vy, gravity, duration, step float64, buf []Vec2) []Vec2 {
	buf = append(buf, origin)
	if duration <= 0 || step <= 0 {
		return buf
	}
	n := int(math.Ceil(duration / step))
	for i := 1; i < n; i++ {
		buf = append(buf, ProjectilePosition(origin, vx, vy, gravity, float64(i)*step))
	}
	return append(buf, ProjectilePosition(origin, vx, vy, gravity, duration))
}
