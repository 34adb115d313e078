package datamodels

import "fmt"

// Position is the discrete exposure to one unit of spread.
type Position int8

const (
	Short Position = -1
	Flat  Position = 0
	Long  Position = 1
)

func (p Position) IsValid() bool {
	return p == Short || p == Flat || p == Long
}

func (p Position) String() string {
	switch p {
	case Short:
		return "short"
	case Flat:
		return "flat"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("Position(%d)", int8(p))
	}
}

func (p Position) Float() float64 {
	return float64(p)
}
