package game

import "slices"

// MaxSeats is the number of players a two-player game binds.
const MaxSeats = 2

// AssignSeats returns the members that should hold seats: the first
// MaxSeats in join order.
func AssignSeats(members []string) []string {
	n := min(len(members), MaxSeats)
	return slices.Clone(members[:n])
}
